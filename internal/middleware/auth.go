package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/auth"
	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

const emailKey = "email"

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// RequireToken rejects requests without a bearer token with 401 and requests with an invalid or
// expired token with 403. On success the token's email claim is available through Email.
func RequireToken(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Abort(c, http.StatusUnauthorized, "unauthorized access")
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			respond.Abort(c, http.StatusForbidden, "forbidden access")
			return
		}

		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// IdentifyToken attaches the email claim of a valid bearer token and never rejects the request.
// Public routes use it to tell an account owner from an anonymous caller.
func IdentifyToken(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if claims, err := tokens.Verify(raw); err == nil {
				c.Set(emailKey, claims.Email)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireToken. It resolves the verified email to a user and lets the
// request through only when that user has the admin role; an unknown user is forbidden.
func RequireAdmin(users storage.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := Email(c)
		if email == "" {
			respond.Abort(c, http.StatusUnauthorized, "unauthorized access")
			return
		}

		doc, err := users.FindUserByEmail(c.Request.Context(), email)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Abort(c, http.StatusForbidden, "forbidden access")
			return
		case err != nil:
			log.Printf("%s role lookup for %s failed: %v", RequestID(c), email, err)
			respond.Abort(c, http.StatusInternalServerError, "failed to verify role")
			return
		}

		if !models.UserFromDocument(doc).IsAdmin() {
			respond.Abort(c, http.StatusForbidden, "forbidden access")
			return
		}
		c.Next()
	}
}

// Email returns the email claim attached by RequireToken.
func Email(c *gin.Context) string {
	return c.GetString(emailKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
