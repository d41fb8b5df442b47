package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	ExpiresAt string `json:"expires_at"`
}

// HashPassword returns the bcrypt hash stored in config for an operator.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// Authenticate checks the operator's password against its bcrypt hash.
func (s *Service) Authenticate(username, password string) (string, error) {
	user, ok := s.users[username]
	if !ok || user.PasswordHash == "" {
		// keep timing similar for unknown users
		bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZsF0xG0wPZ8dxk1mPXYa5y"), []byte(password))
		return "", errBadCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", errBadCredential
	}
	role := user.Role
	if role == "" {
		role = "operator"
	}
	return role, nil
}

// LoginHandler handles operator authentication
func (s *Service) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !s.enabled {
		writeError(w, http.StatusNotFound, ErrAuthDisabled.Error())
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	role, err := s.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, expires, err := s.GenerateToken(req.Username, role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		Success:   true,
		Token:     token,
		Username:  req.Username,
		Role:      role,
		ExpiresAt: expires.Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": message})
}
