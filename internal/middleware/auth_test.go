package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/industico-be/internal/auth"
	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
	"github.com/hongminglow/industico-be/internal/storage/memory"
)

// brokenUsers fails every lookup.
type brokenUsers struct {
	storage.UserStore
}

func (brokenUsers) FindUserByEmail(context.Context, string) (models.Document, error) {
	return nil, errors.New("connection reset")
}

func newGatedRouter(tokens *auth.TokenManager, users storage.UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", RequireToken(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, Email(c))
	})
	router.GET("/whoami", IdentifyToken(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, Email(c))
	})
	router.GET("/admin", RequireToken(tokens), RequireAdmin(users), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func do(t *testing.T, h http.Handler, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestRequireToken(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	router := newGatedRouter(tokens, storage.NewRepository(memory.NewStore(), true))

	token, err := tokens.Generate("buyer@example.com")
	require.NoError(t, err)
	foreign, err := auth.NewTokenManager("other", "test", time.Hour).Generate("buyer@example.com")
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty bearer", "Bearer   ", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusForbidden},
		{"foreign secret", "Bearer " + foreign, http.StatusForbidden},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, "/me", tt.authorization)
			assert.Equal(t, tt.wantStatus, rec.Code)
			switch tt.wantStatus {
			case http.StatusOK:
				assert.Equal(t, "buyer@example.com", rec.Body.String())
			case http.StatusUnauthorized:
				assert.Equal(t, "unauthorized access", messageOf(t, rec))
			case http.StatusForbidden:
				assert.Equal(t, "forbidden access", messageOf(t, rec))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	repo := storage.NewRepository(memory.NewStore(), true)
	_, err := repo.UpsertUser(ctx, "admin@example.com", models.Document{"name": "Root"})
	require.NoError(t, err)
	_, err = repo.PromoteToAdmin(ctx, "admin@example.com")
	require.NoError(t, err)
	_, err = repo.UpsertUser(ctx, "buyer@example.com", models.Document{"name": "Buyer"})
	require.NoError(t, err)

	router := newGatedRouter(tokens, repo)
	bearer := func(email string) string {
		token, err := tokens.Generate(email)
		require.NoError(t, err)
		return "Bearer " + token
	}

	assert.Equal(t, http.StatusUnauthorized, do(t, router, "/admin", "").Code)
	assert.Equal(t, http.StatusOK, do(t, router, "/admin", bearer("admin@example.com")).Code)
	assert.Equal(t, http.StatusForbidden, do(t, router, "/admin", bearer("buyer@example.com")).Code)

	unknown := do(t, router, "/admin", bearer("ghost@example.com"))
	assert.Equal(t, http.StatusForbidden, unknown.Code)
	assert.Equal(t, "forbidden access", messageOf(t, unknown))

	broken := newGatedRouter(tokens, brokenUsers{})
	assert.Equal(t, http.StatusInternalServerError, do(t, broken, "/admin", bearer("admin@example.com")).Code)
}

func TestIdentifyTokenNeverRejects(t *testing.T) {
	tokens := auth.NewTokenManager("secret", "test", time.Hour)
	router := newGatedRouter(tokens, storage.NewRepository(memory.NewStore(), true))

	token, err := tokens.Generate("buyer@example.com")
	require.NoError(t, err)

	tests := map[string]struct {
		authorization string
		wantEmail     string
	}{
		"anonymous": {authorization: "", wantEmail: ""},
		"garbage":   {authorization: "Bearer nope", wantEmail: ""},
		"valid":     {authorization: "Bearer " + token, wantEmail: "buyer@example.com"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, router, "/whoami", tt.authorization)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantEmail, rec.Body.String())
		})
	}
}
