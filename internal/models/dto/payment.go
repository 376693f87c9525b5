package dto

import "encoding/json"

// PaymentIntentRequest carries the order total; the storefront sends it as a number or a numeric string.
type PaymentIntentRequest struct {
	TotalPrice json.RawMessage `json:"totalPrice"`
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
