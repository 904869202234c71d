package api

import (
	"bytes"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swastiapp/swasti-server/internal/auth"
	"github.com/swastiapp/swasti-server/internal/http/response"
	"github.com/swastiapp/swasti-server/internal/identity"
	"github.com/swastiapp/swasti-server/internal/ratelimit"
	"github.com/swastiapp/swasti-server/internal/state"
	"github.com/swastiapp/swasti-server/internal/store/sqlite"
)

// testEnvelope mirrors response.Envelope with a typed payload.
type testEnvelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Success bool   `json:"success"`
}

// setupTestServer creates a test server with all dependencies.
func setupTestServer(t *testing.T) (server *Server, cleanup func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "swasti-api-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)

	// 32 bytes as hex = 64 hex chars.
	testKeyHex := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute)
	require.NoError(t, err)

	idsvc := identity.NewLocalService(st, tokens, identity.GoogleConfig{
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		ClientID:    "test-client",
		RedirectURL: "http://localhost:8080/api/v1/auth/callback",
	}, logger)

	registry := state.NewRegistry(idsvc, st, logger)

	// Generous limits so rate limiting never interferes with tests.
	limiter := ratelimit.New(1000, 1000)

	server = NewServer(registry, idsvc, st, limiter, logger)

	cleanup = func() {
		_ = st.Close()           //nolint:errcheck // Cleanup function
		_ = os.RemoveAll(tmpDir) //nolint:errcheck // Cleanup function
	}

	return server, cleanup
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.MarshalWrite(buf, body))
		reader = buf
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

// decodeEnvelope unmarshals a recorded response body into a typed envelope.
func decodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()

	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

// registerAndLogin provisions a verified account and returns its session
// token and user ID.
func registerAndLogin(t *testing.T, server *Server, email, name string) (token, userID string) {
	t.Helper()

	const password = "correct-horse-battery"

	resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    email,
		"password": password,
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	reg := decodeEnvelope[RegisterResponse](t, resp)
	require.NotEmpty(t, reg.Data.VerificationToken)

	resp = doJSON(t, server, http.MethodPost, "/api/v1/auth/verify-email", "", map[string]any{
		"token": reg.Data.VerificationToken,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	login := decodeEnvelope[loginEnvelope](t, resp)
	require.NotEmpty(t, login.Data.Token)
	require.NotEmpty(t, login.Data.User.UserID)
	return login.Data.Token, login.Data.User.UserID
}

// loginEnvelope is LoginResponse with the user payload typed for tests.
type loginEnvelope struct {
	Token string `json:"token"`
	User  struct {
		UserID string `json:"user_id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	} `json:"user"`
}

func TestHealthCheck(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var result response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
}

func TestListCategories(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	w := doJSON(t, server, http.MethodGet, "/api/v1/categories", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope[[]struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}](t, w)
	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Data, 6)
}

func TestServer_AuthRequired(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"current user", http.MethodGet, "/api/v1/users/me"},
		{"update profile", http.MethodPatch, "/api/v1/users/me"},
		{"create tip", http.MethodPost, "/api/v1/tips"},
		{"saved tips", http.MethodGet, "/api/v1/tips/saved"},
		{"save tip", http.MethodPost, "/api/v1/tips/tip-x/save"},
		{"like tip", http.MethodPost, "/api/v1/tips/tip-x/like"},
		{"comment", http.MethodPost, "/api/v1/tips/tip-x/comments"},
		{"follow", http.MethodPost, "/api/v1/users/user-x/follow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, server, tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
