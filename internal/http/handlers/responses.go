package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/middleware"
	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

// Gates are the access-control middlewares handlers attach to protected routes.
type Gates struct {
	Token gin.HandlerFunc
	Admin gin.HandlerFunc
	// Identify records the caller's email when a valid token is present but lets anonymous requests through.
	Identify gin.HandlerFunc
}

// decodeDocument reads the request body as a free-form JSON object.
func decodeDocument(c *gin.Context) (models.Document, bool) {
	var doc models.Document
	if err := json.NewDecoder(c.Request.Body).Decode(&doc); err != nil || doc == nil {
		respond.Error(c, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	return doc, true
}

// respondDocument writes a single document; a missing document is rendered as null.
func respondDocument(c *gin.Context, doc models.Document, err error, action string) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.JSON(c, http.StatusOK, nil)
		return
	}
	if err != nil {
		storeFailure(c, action, err)
		return
	}
	respond.JSON(c, http.StatusOK, doc)
}

func storeFailure(c *gin.Context, action string, err error) {
	if errors.Is(err, storage.ErrAlreadyExists) {
		respond.Error(c, http.StatusConflict, "record already exists")
		return
	}
	log.Printf("%s %s: %v", middleware.RequestID(c), action, err)
	respond.Error(c, http.StatusInternalServerError, "failed to "+action)
}
