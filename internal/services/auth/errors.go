package auth

import "errors"

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrInvalidCredentials covers both unknown email and wrong password,
// so sign-in responses cannot be used to probe for accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidTokenMissingUserID is returned for tokens without a user_id claim
var ErrInvalidTokenMissingUserID = errors.New("invalid token: missing user_id claim")

// ErrInvalidTokenMissingEmail is returned for tokens without an email claim
var ErrInvalidTokenMissingEmail = errors.New("invalid token: missing email claim")
