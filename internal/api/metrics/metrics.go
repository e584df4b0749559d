// Package metrics defines and registers all custom Prometheus metrics
// for the account system. It is the single source of truth for metric
// names, labels, and help strings. Metrics register themselves with the
// default registry at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "account"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "not_found", or "invalid_password"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts signed tokens.
// Label:
//   - type: "access" or "refresh"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of tokens signed, labelled by token type.",
	},
	[]string{"type"},
)

// AuthRejectionsTotal counts requests rejected by the authorization guard.
// Label:
//   - reason: "missing_token" or "invalid_token"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected before reaching a handler.",
	},
	[]string{"reason"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsCreatedTotal counts accounts created through registration or
// the admin create endpoint.
var AccountsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created.",
	},
)

// BulkStatusUpdatesTotal counts rows affected by bulk status updates.
var BulkStatusUpdatesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bulk_status_updates_total",
		Help:      "Total number of account rows changed by bulk status updates.",
	},
)

// QueryDurationSeconds measures repository operation latency.
// Label:
//   - operation: repository method name (e.g. "list", "search", "create")
var QueryDurationSeconds = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "query_duration_seconds",
		Help:      "Duration of storage operations from build to scan.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation"},
)
