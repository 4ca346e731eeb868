package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/studymatch/backend/internal/httpjson"
	"github.com/studymatch/backend/internal/logger"
	"github.com/studymatch/backend/internal/models"
	"github.com/studymatch/backend/internal/requestdata"
)

// UserStore is satisfied by *Store.
type UserStore interface {
	CreateUser(email, name, hashedPassword string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUser(id int64) (*models.User, error)
}

type Handler struct {
	store  UserStore
	tokens *Tokens
	log    *logger.Logger
}

func NewHandler(store UserStore, tokens *Tokens, log *logger.Logger) *Handler {
	return &Handler{store: store, tokens: tokens, log: log.With("component", "AuthHandler")}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" || req.Password == "" {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email, name, and password are required"})
		return
	}

	if len(req.Password) < 8 {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Password must be at least 8 characters"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpjson.Write(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	user, err := h.store.CreateUser(req.Email, req.Name, string(hashedPassword))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			httpjson.Write(w, http.StatusConflict, models.ErrorResponse{Error: "An account with this email already exists"})
			return
		}
		h.log.Error("Create user failed", "error", err)
		httpjson.Write(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create account"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		httpjson.Write(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	httpjson.Write(w, http.StatusCreated, models.AuthResponse{Token: token, User: *user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.Password == "" {
		httpjson.Write(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		h.log.Error("Login lookup failed", "error", err)
		httpjson.Write(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	if user == nil {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	token, err := h.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		httpjson.Write(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	httpjson.Write(w, http.StatusOK, models.AuthResponse{Token: token, User: *user})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestdata.UserID(r.Context())
	if !ok {
		httpjson.Write(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	user, err := h.store.GetUser(userID)
	if err != nil || user == nil {
		httpjson.Write(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}

	httpjson.Write(w, http.StatusOK, user)
}
