package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/middleware"
	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

// UserHandler owns user upsert, lookup and admin promotion.
type UserHandler struct {
	store storage.UserStore
}

func NewUserHandler(store storage.UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// Register attaches user routes to the router.
func (h *UserHandler) Register(r gin.IRouter, gates Gates) {
	r.PUT("/user/:email", gates.Identify, h.upsert)
	r.GET("/user/:email", h.get)
	r.GET("/user", gates.Token, gates.Admin, h.list)
	r.PUT("/user/admin/:email", gates.Token, gates.Admin, h.promote)
}

// upsert merges the body into the user keyed by email. Roles are only granted through promote,
// and a plain password is stored as a bcrypt hash. Once a password is set, only the account owner
// holding a valid token may replace it.
func (h *UserHandler) upsert(c *gin.Context) {
	user, ok := decodeDocument(c)
	if !ok {
		return
	}
	delete(user, models.FieldRole)
	delete(user, models.FieldPasswordHash)
	delete(user, models.FieldID)

	email := c.Param("email")
	if raw, present := user[models.FieldPassword]; present {
		delete(user, models.FieldPassword)
		if !h.mayChangePassword(c, email) {
			return
		}
		password, _ := raw.(string)
		if strings.TrimSpace(password) == "" {
			respond.Error(c, http.StatusBadRequest, "password must be a non-empty string")
			return
		}
		hash, err := hashPassword(password)
		if err != nil {
			if errors.Is(err, bcrypt.ErrPasswordTooLong) {
				respond.Error(c, http.StatusBadRequest, "password is too long")
				return
			}
			respond.Error(c, http.StatusInternalServerError, "failed to hash password")
			return
		}
		user[models.FieldPasswordHash] = hash
	}

	result, err := h.store.UpsertUser(c.Request.Context(), email, user)
	if err != nil {
		storeFailure(c, "upsert user", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

// mayChangePassword writes the rejection itself and reports false when the caller may not set
// the password for email.
func (h *UserHandler) mayChangePassword(c *gin.Context, email string) bool {
	existing, err := h.store.FindUserByEmail(c.Request.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		return true
	}
	if err != nil {
		storeFailure(c, "fetch user", err)
		return false
	}
	if models.UserFromDocument(existing).PasswordHash == "" || middleware.Email(c) == email {
		return true
	}
	respond.Error(c, http.StatusForbidden, "forbidden access")
	return false
}

func (h *UserHandler) get(c *gin.Context) {
	user, err := h.store.FindUserByEmail(c.Request.Context(), c.Param("email"))
	respondDocument(c, redactUser(user), err, "fetch user")
}

func (h *UserHandler) list(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		storeFailure(c, "list users", err)
		return
	}
	for i := range users {
		users[i] = redactUser(users[i])
	}
	respond.JSON(c, http.StatusOK, users)
}

func (h *UserHandler) promote(c *gin.Context) {
	result, err := h.store.PromoteToAdmin(c.Request.Context(), c.Param("email"))
	if err != nil {
		storeFailure(c, "promote user", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

func redactUser(user models.Document) models.Document {
	if _, ok := user[models.FieldPasswordHash]; !ok {
		return user
	}
	out := user.Clone()
	delete(out, models.FieldPasswordHash)
	return out
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
