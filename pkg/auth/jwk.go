package auth

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// Jwk is one published key descriptor. Only RSA components are read.
type Jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg,omitempty"`
	Use string `json:"use,omitempty"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

// JwkSet is the key set document served by the issuer
type JwkSet struct {
	Keys []Jwk `json:"keys"`
}

// ParseJwkSet decodes a JWKS document. A body that is not JSON or has no
// keys array is an error; individual unusable entries are not.
func ParseJwkSet(data []byte) (*JwkSet, error) {
	var doc struct {
		Keys *[]Jwk `json:"keys"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}
	if doc.Keys == nil {
		return nil, errors.New("JWKS document has no keys array")
	}
	return &JwkSet{Keys: *doc.Keys}, nil
}

// Usable reports whether the entry carries both RSA components
func (k Jwk) Usable() bool {
	return k.N != "" && k.E != ""
}

// PublicKey derives the RSA verification key from the modulus and exponent
func (k Jwk) PublicKey() (*rsa.PublicKey, error) {
	if !k.Usable() {
		return nil, fmt.Errorf("key %s has no RSA modulus/exponent", k.Kid)
	}

	raw, err := json.Marshal(map[string]string{
		"kty": "RSA",
		"n":   k.N,
		"e":   k.E,
	})
	if err != nil {
		return nil, err
	}

	key, err := jwk.ParseKey(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key %s: %w", k.Kid, err)
	}

	var publicKey interface{}
	if err := key.Raw(&publicKey); err != nil {
		return nil, fmt.Errorf("failed to extract public key %s: %w", k.Kid, err)
	}

	rsaKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("key %s is not an RSA public key", k.Kid)
	}
	return rsaKey, nil
}
