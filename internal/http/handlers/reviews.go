package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/storage"
)

type ReviewHandler struct {
	store storage.ReviewStore
}

func NewReviewHandler(store storage.ReviewStore) *ReviewHandler {
	return &ReviewHandler{store: store}
}

func (h *ReviewHandler) Register(r gin.IRouter, gates Gates) {
	r.GET("/review", h.list)
	r.POST("/review", gates.Token, h.create)
}

func (h *ReviewHandler) list(c *gin.Context) {
	reviews, err := h.store.ListReviews(c.Request.Context())
	if err != nil {
		storeFailure(c, "list reviews", err)
		return
	}
	respond.JSON(c, http.StatusOK, reviews)
}

func (h *ReviewHandler) create(c *gin.Context) {
	review, ok := decodeDocument(c)
	if !ok {
		return
	}
	result, err := h.store.CreateReview(c.Request.Context(), review)
	if err != nil {
		storeFailure(c, "create review", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}
