package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenHandler serves /oauth/token, recording the grant types it saw
type tokenHandler struct {
	grants    []string
	expiresIn int
}

func (h *tokenHandler) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	h.grants = append(h.grants, r.PostFormValue("grant_type"))

	expiresIn := h.expiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token":  "token-" + r.PostFormValue("grant_type"),
		"refresh_token": "refresh-1",
		"expires_in":    expiresIn,
	})
}

func newTestClient(t *testing.T, tokens *tokenHandler, handler http.HandlerFunc) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", tokens.serve)
	if handler != nil {
		mux.HandleFunc("/", handler)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewClient(server.URL, "user", "pass", WithPollInterval(time.Millisecond))
}

func TestClientLogsInWithPasswordGrant(t *testing.T) {
	tokens := &tokenHandler{}
	var gotAuth string
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "YES"})
	})

	_, err := client.GetCaseStatus(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, []string{"password"}, tokens.grants)
	assert.Equal(t, "Bearer token-password", gotAuth)
}

func TestClientReusesLiveToken(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "YES"})
	})

	ctx := context.Background()
	_, err := client.GetCaseStatus(ctx, "12345")
	require.NoError(t, err)
	_, err = client.GetCaseStatus(ctx, "12345")
	require.NoError(t, err)

	assert.Len(t, tokens.grants, 1)
}

func TestClientRefreshesExpiredToken(t *testing.T) {
	// expires_in below the safety margin makes the token stale immediately
	tokens := &tokenHandler{expiresIn: 1}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "YES"})
	})

	ctx := context.Background()
	_, err := client.GetCaseStatus(ctx, "12345")
	require.NoError(t, err)
	_, err = client.GetCaseStatus(ctx, "12345")
	require.NoError(t, err)

	require.Len(t, tokens.grants, 2)
	assert.Equal(t, "refresh_token", tokens.grants[1])
}

func TestClientRejectedCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "user", "wrong")
	_, err := client.GetCaseStatus(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrTokenRejected)
}

func TestClientServerErrorIsTransient(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetCaseStatus(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestClientGarbledResponseIsMalformed(t *testing.T) {
	tokens := &tokenHandler{}
	client := newTestClient(t, tokens, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.GetCaseStatus(context.Background(), "12345")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
