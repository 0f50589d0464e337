package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestClaims_GetAudience(t *testing.T) {
	tests := []struct {
		name     string
		audience any
		want     jwt.ClaimStrings
	}{
		{name: "string", audience: "client", want: jwt.ClaimStrings{"client"}},
		{name: "decoded list", audience: []interface{}{"a", 7.0, "b"}, want: jwt.ClaimStrings{"a", "b"}},
		{name: "string list", audience: []string{"a"}, want: jwt.ClaimStrings{"a"}},
		{name: "absent", audience: nil, want: nil},
		{name: "number", audience: 12.0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &Claims{Audience: tt.audience}
			got, err := claims.GetAudience()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClaims_TimeAccessors(t *testing.T) {
	claims := &Claims{ExpiresAt: 1700000000, IssuedAt: 1699990000}

	exp, err := claims.GetExpirationTime()
	assert.NoError(t, err)
	assert.Equal(t, int64(1700000000), exp.Unix())

	iat, err := claims.GetIssuedAt()
	assert.NoError(t, err)
	assert.Equal(t, int64(1699990000), iat.Unix())

	nbf, err := claims.GetNotBefore()
	assert.NoError(t, err)
	assert.Nil(t, nbf)

	assert.Equal(t, time.Unix(1700000000, 0), claims.Expiry())

	empty := &Claims{}
	exp, _ = empty.GetExpirationTime()
	assert.Nil(t, exp)
	assert.True(t, empty.Expiry().IsZero())
}

func TestClaims_Username(t *testing.T) {
	assert.Equal(t, "alice", (&Claims{Subject: "s", Email: "a@x", PreferredUsername: "alice"}).Username())
	assert.Equal(t, "a@x", (&Claims{Subject: "s", Email: "a@x"}).Username())
	assert.Equal(t, "s", (&Claims{Subject: "s"}).Username())
}
