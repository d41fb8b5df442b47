// Package auth protects the API with HS256 JWTs issued to configured operators.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/banrakshak/fra-ocr-service/internal/models"
)

// TokenExpiry is how long an issued token stays valid
const TokenExpiry = 24 * time.Hour

const minSecretLen = 16

var (
	ErrNoClaims      = errors.New("no claims in context")
	ErrWeakSecret    = fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	ErrInvalidToken  = errors.New("invalid token")
	ErrAuthDisabled  = errors.New("authentication is disabled")
	errBadCredential = errors.New("invalid credentials")
)

// Claims carried by an operator token
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

type claimsKey struct{}

// Service issues and checks tokens. A disabled service lets every request through.
type Service struct {
	enabled bool
	secret  []byte
	users   map[string]models.AuthUser
	now     func() time.Time
}

// New creates the auth service from config. Enabled auth needs a secret of at least 16 bytes.
func New(cfg models.AuthConfig) (*Service, error) {
	s := &Service{
		enabled: cfg.Enabled,
		secret:  []byte(cfg.Secret),
		users:   make(map[string]models.AuthUser, len(cfg.Users)),
		now:     time.Now,
	}
	for _, u := range cfg.Users {
		s.users[u.Username] = u
	}
	if s.enabled && len(s.secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	return s, nil
}

// Enabled reports whether requests must carry a token.
func (s *Service) Enabled() bool { return s.enabled }

// GenerateToken signs a token for the operator.
func (s *Service) GenerateToken(username, role string) (string, time.Time, error) {
	if !s.enabled {
		return "", time.Time{}, ErrAuthDisabled
	}
	now := s.now()
	expires := now.Add(TokenExpiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Username: username,
		Role:     role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// ValidateToken parses tokenStr, accepting only HS256.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// public paths never need a token
var publicPaths = map[string]bool{
	"/":                  true,
	"/api/health":        true,
	"/api/login":         true,
	"/api/assets/health": true,
}

// JWTMiddleware rejects requests without a valid Bearer token, except public
// paths and CORS preflights.
func (s *Service) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.enabled || publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.ValidateToken(tokenStr)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// GetClaimsFromContext returns the claims the middleware stored.
func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, ErrNoClaims
	}
	return claims, nil
}
