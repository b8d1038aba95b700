package models

import "time"

type Order struct {
	ID              int           `json:"id"`
	TransactionCode string        `json:"transaction_code"`
	CustomerName    string        `json:"customer_name"`
	Type            OrderType     `json:"type"`
	Total           int64         `json:"total"`
	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Note            *string       `json:"note,omitempty"`
	DeliveryAddress *string       `json:"delivery_address,omitempty"`
	Table           *TableRef     `json:"table,omitempty"`
	Items           []OrderLine   `json:"items,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// OrderLine carries a snapshot of the product at order time. It is not a
// live catalog reference: menu price changes must not rewrite history.
type OrderLine struct {
	Quantity    int     `json:"quantity"`
	Note        *string `json:"note,omitempty"`
	ProductName string  `json:"product_name"`
	UnitPrice   int64   `json:"unit_price"`
}

type TableRef struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateOrderRequest struct {
	CustomerName    string      `json:"customer_name" binding:"required"`
	Type            OrderType   `json:"type" binding:"required"`
	Note            *string     `json:"note,omitempty"`
	DeliveryAddress *string     `json:"delivery_address,omitempty"`
	Table           *TableRef   `json:"table,omitempty"`
	Items           []OrderLine `json:"items" binding:"required"`
}

type SetStatusRequest struct {
	Status        *Status        `json:"status,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
}
