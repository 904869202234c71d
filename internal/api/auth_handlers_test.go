package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swastiapp/swasti-server/internal/ratelimit"
)

func TestRegister_Success(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    "maya@example.com",
		"password": "SecurePassword123",
		"name":     "Maya",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	envelope := decodeEnvelope[RegisterResponse](t, resp)
	assert.True(t, envelope.Success)
	assert.NotEmpty(t, envelope.Data.VerificationToken)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	body := map[string]any{
		"email":    "maya@example.com",
		"password": "SecurePassword123",
		"name":     "Maya",
	}
	resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", body)
	assert.Equal(t, http.StatusConflict, resp.Code)

	envelope := decodeEnvelope[any](t, resp)
	assert.False(t, envelope.Success)
	assert.Equal(t, "ALREADY_REGISTERED", envelope.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tests := []struct {
		name string
		body map[string]any
	}{
		{
			name: "missing email",
			body: map[string]any{"password": "SecurePassword123"},
		},
		{
			name: "invalid email format",
			body: map[string]any{"email": "not-an-email", "password": "SecurePassword123"},
		},
		{
			name: "password too short",
			body: map[string]any{"email": "maya@example.com", "password": "short"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestLogin_BeforeVerification(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    "maya@example.com",
		"password": "SecurePassword123",
		"name":     "Maya",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "maya@example.com",
		"password": "SecurePassword123",
	})

	assert.Equal(t, http.StatusForbidden, resp.Code)

	envelope := decodeEnvelope[any](t, resp)
	assert.Equal(t, "EMAIL_UNVERIFIED", envelope.Code)
}

func TestLogin_Success(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	token, _ := registerAndLogin(t, server, "maya@example.com", "Maya")
	require.NotEmpty(t, token)

	resp := doJSON(t, server, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}](t, resp)
	assert.Equal(t, "Maya", envelope.Data.Name)
	assert.Equal(t, "maya@example.com", envelope.Data.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	registerAndLogin(t, server, "maya@example.com", "Maya")

	resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "maya@example.com",
		"password": "wrong-password-entirely",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	envelope := decodeEnvelope[any](t, resp)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Code)
}

func TestLogout_InvalidatesToken(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	token, _ := registerAndLogin(t, server, "maya@example.com", "Maya")

	resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = doJSON(t, server, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGoogleFlow(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doJSON(t, server, http.MethodGet, "/api/v1/auth/google", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	envelope := decodeEnvelope[GoogleLoginResponse](t, resp)
	require.NotEmpty(t, envelope.Data.AuthURL)

	authURL, err := url.Parse(envelope.Data.AuthURL)
	require.NoError(t, err)
	oauthState := authURL.Query().Get("state")
	require.NotEmpty(t, oauthState)

	// Complete the callback as the provider would.
	q := url.Values{}
	q.Set("state", oauthState)
	q.Set("email", "fed@example.com")
	q.Set("name", "Fed User")
	callback := doJSON(t, server, http.MethodGet, "/api/v1/auth/callback?"+q.Encode(), "", nil)
	require.Equal(t, http.StatusOK, callback.Code, callback.Body.String())

	login := decodeEnvelope[loginEnvelope](t, callback)
	assert.NotEmpty(t, login.Data.Token)
	assert.Equal(t, "Fed User", login.Data.User.Name)

	// The state is single use.
	replay := doJSON(t, server, http.MethodGet, "/api/v1/auth/callback?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestVerifyEmail_BadToken(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := doJSON(t, server, http.MethodPost, "/api/v1/auth/verify-email", "", map[string]any{
		"token": "not-a-real-token",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRateLimit_Auth(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	// Swap in a tiny limiter so exhaustion is immediate.
	server.authLimiter = ratelimit.New(0.01, 2)

	var last *httptest.ResponseRecorder
	for range 5 {
		last = doJSON(t, server, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
			"email":    "maya@example.com",
			"password": "whatever-password",
		})
	}

	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}
