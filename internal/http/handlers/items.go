package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/storage"
)

// ItemHandler serves the tool catalogue.
type ItemHandler struct {
	store storage.ItemStore
}

func NewItemHandler(store storage.ItemStore) *ItemHandler {
	return &ItemHandler{store: store}
}

// Register attaches item routes; writes are admin-only.
func (h *ItemHandler) Register(r gin.IRouter, gates Gates) {
	r.GET("/items", h.list)
	r.GET("/items/:id", h.get)
	r.POST("/items", gates.Token, gates.Admin, h.create)
	r.DELETE("/items/:id", gates.Token, gates.Admin, h.delete)
}

func (h *ItemHandler) list(c *gin.Context) {
	items, err := h.store.ListItems(c.Request.Context())
	if err != nil {
		storeFailure(c, "list items", err)
		return
	}
	respond.JSON(c, http.StatusOK, items)
}

func (h *ItemHandler) get(c *gin.Context) {
	item, err := h.store.FindItem(c.Request.Context(), c.Param("id"))
	respondDocument(c, item, err, "fetch item")
}

func (h *ItemHandler) create(c *gin.Context) {
	item, ok := decodeDocument(c)
	if !ok {
		return
	}
	result, err := h.store.CreateItem(c.Request.Context(), item)
	if err != nil {
		storeFailure(c, "create item", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

func (h *ItemHandler) delete(c *gin.Context) {
	result, err := h.store.DeleteItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, "delete item", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}
