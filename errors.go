package memberhub

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials marks a rejected login attempt.
	TextCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	// TextCodeTokenExpired marks a token past its expiry claim.
	TextCodeTokenExpired = "AUTH_TOKEN_EXPIRED"
	// TextCodeTokenMalformed marks a token that failed to decode.
	TextCodeTokenMalformed = "AUTH_TOKEN_MALFORMED"
	// TextCodeNetworkFailure marks an unreachable backend.
	TextCodeNetworkFailure = "NETWORK_FAILURE"
	// TextCodeServerRejected marks a non-2xx response with a message payload.
	TextCodeServerRejected = "SERVER_REJECTED"
)

// ErrInvalidCredentials is returned when the server rejects a login.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their expiry claim.
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be decoded.
var ErrTokenMalformed = goerrors.New("authentication token malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode a persisted session payload
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryBadInput)

// ErrSessionRequired is returned when an operation needs an authenticated session.
var ErrSessionRequired = goerrors.New("no authenticated session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
