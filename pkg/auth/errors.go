package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when the token is not a decodable JWS
	ErrMalformedToken = errors.New("malformed token")

	// ErrMissingKeyID is returned when the token header carries no kid
	ErrMissingKeyID = errors.New("token header missing kid")

	// ErrUnknownKey is returned when no verification key matches the kid, even after a refresh
	ErrUnknownKey = errors.New("no verification key for kid")

	// ErrFetch is returned when the JWKS document could not be fetched or parsed
	ErrFetch = errors.New("failed to fetch JWKS")

	// ErrInvalidToken is returned when signature, expiry or issuer checks fail
	ErrInvalidToken = errors.New("invalid token")
)

// Reason maps a validation error to a short stable label. The label is meant
// for logs and metrics; it must never be sent back to the token presenter.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrMissingKeyID):
		return "missing_kid"
	case errors.Is(err, ErrUnknownKey):
		return "unknown_key"
	case errors.Is(err, ErrFetch):
		return "fetch_failed"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrInvalidToken):
		return "invalid"
	default:
		return "error"
	}
}
