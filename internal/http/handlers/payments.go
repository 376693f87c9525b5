package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hongminglow/industico-be/internal/http/respond"
	"github.com/hongminglow/industico-be/internal/middleware"
	"github.com/hongminglow/industico-be/internal/models/dto"
	"github.com/hongminglow/industico-be/internal/payments"
)

// PaymentHandler creates processor payment intents for checkout.
type PaymentHandler struct {
	intents  payments.IntentCreator
	currency string
}

func NewPaymentHandler(intents payments.IntentCreator, currency string) *PaymentHandler {
	return &PaymentHandler{intents: intents, currency: currency}
}

func (h *PaymentHandler) Register(r gin.IRouter, gates Gates) {
	r.POST("/create-payment-intent", gates.Token, h.createIntent)
}

func (h *PaymentHandler) createIntent(c *gin.Context) {
	var req dto.PaymentIntentRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	price, err := payments.ParsePrice(req.TotalPrice)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "totalPrice must be a number")
		return
	}

	intent, err := h.intents.CreateIntent(c.Request.Context(), payments.MinorUnits(price), h.currency)
	if err != nil {
		if errors.Is(err, payments.ErrNotConfigured) {
			respond.Error(c, http.StatusServiceUnavailable, "payments are not available")
			return
		}
		log.Printf("%s create payment intent: %v", middleware.RequestID(c), err)
		respond.Error(c, http.StatusBadGateway, "failed to create payment intent")
		return
	}
	respond.JSON(c, http.StatusOK, dto.PaymentIntentResponse{ClientSecret: intent.ClientSecret})
}
