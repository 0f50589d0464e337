package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, http.MethodGet, r.Method)
			w.Write([]byte(`{"keys":[]}`))
		case "/big":
			w.Write([]byte(strings.Repeat("x", maxJWKSBodySize+10)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(server.Client())
	ctx := context.Background()

	body, err := fetcher.Fetch(ctx, server.URL+"/ok")
	require.NoError(t, err)
	assert.JSONEq(t, `{"keys":[]}`, string(body))

	_, err = fetcher.Fetch(ctx, server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 404")

	_, err = fetcher.Fetch(ctx, server.URL+"/big")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")

	_, err = fetcher.Fetch(ctx, "://bad-url")
	assert.Error(t, err)
}
