package models

// RoleAdmin is the only role the backend recognises; users without it are customers.
const RoleAdmin = "admin"

// Collection names inside the storefront database.
const (
	CollectionItems    = "tools"
	CollectionUsers    = "users"
	CollectionOrders   = "orders"
	CollectionPayments = "payments"
	CollectionReviews  = "reviews"
)
