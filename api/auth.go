package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/models"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/repository"
	"github.com/bahrain-bp/mow-TunnelGuard-sub000/pkg/roles"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	users         repository.UserRepo
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(users repository.UserRepo, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{users: users, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) issueToken(u *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    string(u.Role),
		"exp":     time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, "missing fields", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(user)
	if err != nil {
		writeError(w, "error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{User: user, Token: tokenStr}, http.StatusOK)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if !validateRequest(r.Context(), w, "user_create", body) {
		return
	}

	var req registerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	existing, err := h.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		writeError(w, "error checking email", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		writeError(w, "email already in use", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	role := roles.Role(req.Role)
	if role == "" {
		role = roles.Public
	}
	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hash),
		Role:     role,
		Status:   models.StatusActive,
	}
	id, err := h.users.CreateUser(ctx, user)
	if err != nil {
		writeError(w, "error creating user", http.StatusInternalServerError)
		return
	}
	user.ID = id

	tokenStr, err := h.issueToken(user)
	if err != nil {
		writeError(w, "error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{User: user, Token: tokenStr}, http.StatusCreated)
}
