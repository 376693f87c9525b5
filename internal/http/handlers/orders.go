package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/middleware"
	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

// OrderHandler serves orders and the payment confirmation that marks them paid.
type OrderHandler struct {
	store storage.OrderStore
	users storage.UserStore
}

func NewOrderHandler(store storage.OrderStore, users storage.UserStore) *OrderHandler {
	return &OrderHandler{store: store, users: users}
}

// Register attaches order routes to the router. Every route needs a token; listing all orders needs admin.
// An existing order is only visible to and changeable by the email it was placed under, or an admin.
func (h *OrderHandler) Register(r gin.IRouter, gates Gates) {
	r.POST("/order", gates.Token, h.create)
	r.GET("/order/:email", gates.Token, h.listByEmail)
	r.DELETE("/order/:id", gates.Token, h.delete)
	r.PATCH("/order/:id", gates.Token, h.confirmPayment)
	r.GET("/orders/:id", gates.Token, h.get)
	r.GET("/orders", gates.Token, gates.Admin, h.list)
}

func (h *OrderHandler) create(c *gin.Context) {
	order, ok := decodeDocument(c)
	if !ok {
		return
	}
	result, err := h.store.CreateOrder(c.Request.Context(), order)
	if err != nil {
		storeFailure(c, "create order", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

// listByEmail returns the caller's own orders; asking for someone else's is forbidden.
func (h *OrderHandler) listByEmail(c *gin.Context) {
	email := c.Param("email")
	if email != middleware.Email(c) {
		respond.Error(c, http.StatusForbidden, "forbidden access")
		return
	}
	orders, err := h.store.FindOrdersByEmail(c.Request.Context(), email)
	if err != nil {
		storeFailure(c, "list orders", err)
		return
	}
	respond.JSON(c, http.StatusOK, orders)
}

func (h *OrderHandler) get(c *gin.Context) {
	order, err := h.store.FindOrder(c.Request.Context(), c.Param("id"))
	if err == nil && !h.authorize(c, order) {
		return
	}
	respondDocument(c, order, err, "fetch order")
}

func (h *OrderHandler) list(c *gin.Context) {
	orders, err := h.store.ListOrders(c.Request.Context())
	if err != nil {
		storeFailure(c, "list orders", err)
		return
	}
	respond.JSON(c, http.StatusOK, orders)
}

func (h *OrderHandler) delete(c *gin.Context) {
	if !h.authorizeByID(c) {
		return
	}
	result, err := h.store.DeleteOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailure(c, "delete order", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

// confirmPayment records the payment result in the body and marks the order paid.
func (h *OrderHandler) confirmPayment(c *gin.Context) {
	payment, ok := decodeDocument(c)
	if !ok {
		return
	}
	if !h.authorizeByID(c) {
		return
	}
	result, err := h.store.ConfirmPayment(c.Request.Context(), c.Param("id"), payment)
	if err != nil {
		storeFailure(c, "confirm payment", err)
		return
	}
	respond.JSON(c, http.StatusOK, result)
}

// authorizeByID checks access to the order named in the path. A missing order passes so that
// deletes report zero and confirmations still record the payment.
func (h *OrderHandler) authorizeByID(c *gin.Context) bool {
	order, err := h.store.FindOrder(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		return true
	}
	if err != nil {
		storeFailure(c, "fetch order", err)
		return false
	}
	return h.authorize(c, order)
}

// authorize writes 403 and reports false unless the caller placed order or is an admin.
func (h *OrderHandler) authorize(c *gin.Context, order models.Document) bool {
	caller := middleware.Email(c)
	if caller != "" && order.String(models.FieldEmail) == caller {
		return true
	}
	user, err := h.users.FindUserByEmail(c.Request.Context(), caller)
	switch {
	case err == nil && models.UserFromDocument(user).IsAdmin():
		return true
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		storeFailure(c, "verify role", err)
		return false
	}
	respond.Error(c, http.StatusForbidden, "forbidden access")
	return false
}
