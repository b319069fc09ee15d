package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the request lacks a valid authenticated identity.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidToken indicates a token that failed signature, expiry, or scope checks,
// or a refresh token that no longer matches the stored slot.
var ErrInvalidToken = errors.New("invalid token")

// ErrInvalidCredentials indicates a login attempt with an unknown email or wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailNotConfirmed indicates a login attempt before the email confirmation flow completed.
var ErrEmailNotConfirmed = errors.New("email not confirmed")
