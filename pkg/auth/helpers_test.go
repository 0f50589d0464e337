package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer   = "https://idp.example.com/realms/tasks"
	testClientID = "task-api"
	testKeyID    = "k1"
	testKeyID2   = "k2"
)

var (
	testPrivateKey  *rsa.PrivateKey
	testPrivateKey2 *rsa.PrivateKey
	// rogueKey is never published in any key set
	rogueKey *rsa.PrivateKey
	testKeys map[string]*rsa.PrivateKey
)

func init() {
	testPrivateKey = mustGenerateKey()
	testPrivateKey2 = mustGenerateKey()
	rogueKey = mustGenerateKey()

	testKeys = map[string]*rsa.PrivateKey{
		testKeyID:  testPrivateKey,
		testKeyID2: testPrivateKey2,
	}
}

func mustGenerateKey() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(fmt.Sprintf("Failed to generate test RSA key: %v", err))
	}
	return key
}

func encodeRSAPublicKeyN(key *rsa.PublicKey) string {
	return base64.RawURLEncoding.EncodeToString(key.N.Bytes())
}

func encodeRSAPublicKeyE(key *rsa.PublicKey) string {
	eBytes := []byte{byte(key.E >> 24), byte(key.E >> 16), byte(key.E >> 8), byte(key.E)}
	for len(eBytes) > 1 && eBytes[0] == 0 {
		eBytes = eBytes[1:]
	}
	return base64.RawURLEncoding.EncodeToString(eBytes)
}

// testJwk builds the published descriptor for one of the test keys
func testJwk(kid string) Jwk {
	publicKey := &testKeys[kid].PublicKey
	return Jwk{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   encodeRSAPublicKeyN(publicKey),
		E:   encodeRSAPublicKeyE(publicKey),
	}
}

func createTestJWKS(keyIDs ...string) JwkSet {
	set := JwkSet{Keys: make([]Jwk, 0, len(keyIDs))}
	for _, kid := range keyIDs {
		set.Keys = append(set.Keys, testJwk(kid))
	}
	return set
}

// jwksServer is an httptest JWKS endpoint whose key set and status can be
// changed between requests
type jwksServer struct {
	*httptest.Server

	mu     sync.Mutex
	set    JwkSet
	status int
	body   []byte
	hits   atomic.Int32
}

func newJWKSServer(t testing.TB, keyIDs ...string) *jwksServer {
	t.Helper()

	s := &jwksServer{set: createTestJWKS(keyIDs...), status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)

		s.mu.Lock()
		status, set, body := s.status, s.set, s.body
		s.mu.Unlock()

		if status != http.StatusOK {
			http.Error(w, "unavailable", status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if body != nil {
			w.Write(body)
			return
		}
		json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) setKeys(keyIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = createTestJWKS(keyIDs...)
	s.body = nil
}

func (s *jwksServer) setStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *jwksServer) setBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = []byte(body)
}

func (s *jwksServer) fetches() int {
	return int(s.hits.Load())
}

func testConfig(jwksURL string) OidcConfig {
	return OidcConfig{
		Issuer:       testIssuer,
		ClientID:     testClientID,
		JWKSURL:      jwksURL,
		FetchTimeout: 2 * time.Second,
	}
}

func newTestValidator(t testing.TB, config OidcConfig, opts ...ValidatorOption) (TokenValidator, *KeyCache) {
	t.Helper()
	keys := NewKeyCache(config, nil)
	return NewTokenValidator(config, keys, nil, opts...), keys
}

func createValidTestClaims() *Claims {
	now := time.Now()
	return &Claims{
		Subject:           "user-123",
		Issuer:            testIssuer,
		Audience:          testClientID,
		ExpiresAt:         now.Add(time.Hour).Unix(),
		IssuedAt:          now.Unix(),
		PreferredUsername: "alice",
		Email:             "alice@example.com",
	}
}

func signToken(t testing.TB, claims jwt.Claims, kid string, key *rsa.PrivateKey) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}

	tokenString, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return tokenString
}

func createTestToken(t testing.TB, claims jwt.Claims, kid string) string {
	t.Helper()

	key, ok := testKeys[kid]
	if !ok {
		t.Fatalf("Test private key not found for kid: %s", kid)
	}
	return signToken(t, claims, kid, key)
}

// memorySnapshots is an in-process SnapshotStore
type memorySnapshots struct {
	mu  sync.Mutex
	doc []byte
}

func (m *memorySnapshots) SaveJWKS(_ context.Context, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = append([]byte(nil), doc...)
	return nil
}

func (m *memorySnapshots) LoadJWKS(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil, errors.New("no snapshot")
	}
	return m.doc, nil
}

// blockingSnapshots holds every SaveJWKS until unblock or the context ends
type blockingSnapshots struct {
	release     chan struct{}
	once        sync.Once
	started     atomic.Int32
	saved       atomic.Int32
	hadDeadline atomic.Bool
}

func newBlockingSnapshots() *blockingSnapshots {
	return &blockingSnapshots{release: make(chan struct{})}
}

func (b *blockingSnapshots) unblock() {
	b.once.Do(func() { close(b.release) })
}

func (b *blockingSnapshots) SaveJWKS(ctx context.Context, _ []byte) error {
	_, ok := ctx.Deadline()
	b.hadDeadline.Store(ok)
	b.started.Add(1)

	select {
	case <-b.release:
		b.saved.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingSnapshots) LoadJWKS(_ context.Context) ([]byte, error) {
	return nil, errors.New("no snapshot")
}
