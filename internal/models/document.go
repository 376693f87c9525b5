package models

import "maps"

// Document is a schemaless record as stored in a collection and returned to clients.
type Document map[string]any

// String returns the value at key when it is a string, or "".
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	return maps.Clone(d)
}

// Field names written by the payment confirmation sequence.
const (
	FieldOrderID       = "orderId"
	FieldPaid          = "paid"
	FieldStatus        = "status"
	FieldTransactionID = "transactionId"
)

// PaymentRecord returns the payment document persisted for an order confirmation.
func PaymentRecord(orderID string, payload Document) Document {
	record := payload.Clone()
	record[FieldOrderID] = orderID
	return record
}

// PaidOrderUpdate returns the fields set on an order once its payment is recorded.
func PaidOrderUpdate(payload Document) Document {
	return Document{
		FieldPaid:          true,
		FieldStatus:        payload[FieldStatus],
		FieldTransactionID: payload[FieldTransactionID],
	}
}
