package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	s, err := New(models.AuthConfig{
		Enabled: true,
		Secret:  testSecret,
		Users: []models.AuthUser{
			{Username: "officer", PasswordHash: string(hash), Role: "admin"},
			{Username: "clerk", PasswordHash: string(hash)},
		},
	})
	require.NoError(t, err)
	return s
}

func TestNew_WeakSecret(t *testing.T) {
	_, err := New(models.AuthConfig{Enabled: true, Secret: "short"})
	assert.ErrorIs(t, err, ErrWeakSecret)

	s, err := New(models.AuthConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, s.Enabled())
}

func TestGenerateAndValidateToken(t *testing.T) {
	s := newTestService(t)

	token, expires, err := s.GenerateToken("officer", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), expires, time.Minute)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "officer", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "officer", claims.Subject)
}

func TestValidateToken_Rejects(t *testing.T) {
	s := newTestService(t)

	other, err := New(models.AuthConfig{Enabled: true, Secret: "another-secret-of-enough-length"})
	require.NoError(t, err)
	foreign, _, err := other.GenerateToken("officer", "admin")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "officer"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	expired := newTestService(t)
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, _, err := expired.GenerateToken("officer", "admin")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"alg none":     none,
		"expired":      old,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	s := newTestService(t)

	role, err := s.Authenticate("officer", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", role)

	role, err = s.Authenticate("clerk", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "operator", role)

	_, err = s.Authenticate("officer", "wrong")
	assert.Error(t, err)
	_, err = s.Authenticate("nobody", "s3cret")
	assert.Error(t, err)
}

func TestLoginHandler(t *testing.T) {
	s := newTestService(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"username":"officer","password":"s3cret"}`, http.StatusOK},
		{"bad password", `{"username":"officer","password":"nope"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":"officer"}`, http.StatusBadRequest},
		{"bad json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)

			if tt.status != http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"success":false`)
				return
			}
			var resp LoginResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.True(t, resp.Success)
			assert.Equal(t, "admin", resp.Role)
			_, err := s.ValidateToken(resp.Token)
			assert.NoError(t, err)
		})
	}
}

func TestLoginHandler_Disabled(t *testing.T) {
	s, err := New(models.AuthConfig{})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	s.LoginHandler(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJWTMiddleware(t *testing.T) {
	s := newTestService(t)
	token, _, err := s.GenerateToken("officer", "admin")
	require.NoError(t, err)

	var seen *Claims
	h := s.JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		method string
		path   string
		header string
		status int
		claims bool
	}{
		{"public health", http.MethodGet, "/api/health", "", http.StatusNoContent, false},
		{"public login", http.MethodPost, "/api/login", "", http.StatusNoContent, false},
		{"preflight", http.MethodOptions, "/api/tasks", "", http.StatusNoContent, false},
		{"missing token", http.MethodGet, "/api/tasks", "", http.StatusUnauthorized, false},
		{"not bearer", http.MethodGet, "/api/tasks", "Basic abc", http.StatusUnauthorized, false},
		{"bad token", http.MethodGet, "/api/tasks", "Bearer abc", http.StatusUnauthorized, false},
		{"valid token", http.MethodGet, "/api/tasks", "Bearer " + token, http.StatusNoContent, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.claims {
				require.NotNil(t, seen)
				assert.Equal(t, "officer", seen.Username)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestJWTMiddleware_Disabled(t *testing.T) {
	s, err := New(models.AuthConfig{})
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	s.JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
