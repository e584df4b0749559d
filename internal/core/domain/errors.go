package domain

import "errors"

var ErrInvalidInput = errors.New("invalid input")
var ErrAccountExists = errors.New("account already exists")
var ErrAccountNotFound = errors.New("account not found")
var ErrInvalidCredentials = errors.New("invalid credentials")

// Guard rejections. Both map to 401 at the boundary; they are distinct
// so tests and metrics can tell an absent header from a bad token.
var ErrMissingToken = errors.New("missing access token")
var ErrInvalidToken = errors.New("invalid access token")

// Internal crypto failures. Always fatal to the operation, never retried.
var ErrHashing = errors.New("password hashing failed")
var ErrSigning = errors.New("token signing failed")
