package auth

import "errors"

// ErrInvalidCredentials is returned on any sign-in failure; it never says
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidRefreshToken is returned when a refresh token is unknown,
// expired, or already revoked.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrGenRefreshToken is returned when we cannot mint or persist a refresh token.
var ErrGenRefreshToken = errors.New("failed to generate refresh token")

// ErrProcessPassword is returned when password hashing fails.
var ErrProcessPassword = errors.New("failed to process password")

// ErrCreateUser is returned when user creation fails for a non-duplicate reason.
var ErrCreateUser = errors.New("failed to create user")
