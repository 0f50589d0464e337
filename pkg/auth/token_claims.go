package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the verified payload of an identity token. Values are only ever
// produced by TokenValidator.Validate and are not modified afterwards.
type Claims struct {
	Subject           string `json:"sub"`
	ExpiresAt         int64  `json:"exp"`
	IssuedAt          int64  `json:"iat"`
	Issuer            string `json:"iss,omitempty"`
	Audience          any    `json:"aud,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
}

var _ jwt.Claims = (*Claims)(nil)

// GetExpirationTime implements jwt.Claims
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return unixDate(c.ExpiresAt), nil
}

// GetIssuedAt implements jwt.Claims
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) {
	return unixDate(c.IssuedAt), nil
}

// GetNotBefore implements jwt.Claims. nbf is not part of the claim set.
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) {
	return nil, nil
}

// GetIssuer implements jwt.Claims
func (c *Claims) GetIssuer() (string, error) {
	return c.Issuer, nil
}

// GetSubject implements jwt.Claims
func (c *Claims) GetSubject() (string, error) {
	return c.Subject, nil
}

// GetAudience implements jwt.Claims. The audience is informational only and
// any shape is accepted; values that are not strings are dropped.
func (c *Claims) GetAudience() (jwt.ClaimStrings, error) {
	switch aud := c.Audience.(type) {
	case string:
		return jwt.ClaimStrings{aud}, nil
	case []interface{}:
		result := make(jwt.ClaimStrings, 0, len(aud))
		for _, v := range aud {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}
		return result, nil
	case []string:
		return aud, nil
	default:
		return nil, nil
	}
}

// Username returns the most human-friendly identifier the token carries
func (c *Claims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// Expiry returns exp as a time, or the zero time when exp is absent
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}

func unixDate(ts int64) *jwt.NumericDate {
	if ts == 0 {
		return nil
	}
	return jwt.NewNumericDate(time.Unix(ts, 0))
}
