package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/industico-be/internal/auth"
	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/middleware"
	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/models/dto"
	"github.com/hongminglow/industico-be/internal/storage"
)

// AuthHandler owns token issuance and the admin status lookup.
type AuthHandler struct {
	store  storage.UserStore
	tokens *auth.TokenManager
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(store storage.UserStore, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens}
}

// Register attaches auth routes to the router.
func (h *AuthHandler) Register(r gin.IRouter, gates Gates) {
	r.POST("/login", h.handleLogin)
	r.GET("/admin/:email", gates.Token, h.handleAdminStatus)
}

func (h *AuthHandler) handleLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		respond.Error(c, http.StatusBadRequest, "email is required")
		return
	}

	doc, err := h.store.FindUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Error(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Printf("%s login failed: error fetching user %s: %v", middleware.RequestID(c), email, err)
		respond.Error(c, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	// Accounts created through a social sign-in carry no password hash.
	if user := models.UserFromDocument(doc); user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respond.Error(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
	}

	token, err := h.tokens.Generate(email)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(c, http.StatusOK, dto.LoginResponse{AccessToken: token})
}

func (h *AuthHandler) handleAdminStatus(c *gin.Context) {
	doc, err := h.store.FindUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		storeFailure(c, "fetch user", err)
		return
	}
	respond.JSON(c, http.StatusOK, dto.AdminStatus{Admin: models.UserFromDocument(doc).IsAdmin()})
}
