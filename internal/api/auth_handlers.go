package api

import (
	"encoding/json"
	"net/http"

	"github.com/sanhik/contentos/internal/auth"
	"github.com/sanhik/contentos/internal/models"
)

// AuthHandler serves registration and token issuance. These routes live
// outside the auth middleware.
type AuthHandler struct {
	users  *auth.Store
	tokens *auth.Tokens
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(users *auth.Store, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register handles POST /auth/register.
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Username == "" || len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, errorBody("username and a password of at least 8 characters are required"))
		return
	}
	if req.Username == models.MainBranch {
		writeJSON(w, http.StatusBadRequest, errorBody("username is reserved"))
		return
	}
	u, err := a.users.Create(req.Username, req.Password, req.Email, req.FullName)
	if err != nil {
		writeError(w, err, "register failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"username": u.Username, "role": u.Role})
}

// Token handles POST /auth/token: password login returning a bearer token.
func (a *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	u, err := a.users.Authenticate(req.Username, req.Password)
	if err != nil {
		writeError(w, err, "login failed")
		return
	}
	token, err := a.tokens.Issue(u)
	if err != nil {
		writeError(w, err, "token issue failed")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}
