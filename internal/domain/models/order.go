package models

import "time"

const (
	PaymentMethodCOD   = 2
	PaymentMethodPayOS = 3
)

type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId,omitempty"`
	AddressID       string      `json:"addressId"`
	TotalAmount     float64     `json:"totalAmount"`
	PaymentMethodID int         `json:"paymentMethodId"`
	Status          string      `json:"status,omitempty"`
	Payment         *Payment    `json:"payment,omitempty"`
	Items           []OrderItem `json:"orderItems,omitempty"`
	CreatedAt       time.Time   `json:"createdAt,omitempty"`
	UpdatedAt       time.Time   `json:"updatedAt,omitempty"`
}

type OrderItem struct {
	ID        string  `json:"id,omitempty"`
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Price     float64 `json:"price"`
}

type Payment struct {
	ID      string  `json:"id,omitempty"`
	OrderID string  `json:"orderId,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	Status  string  `json:"status,omitempty"`
	PayURL  string  `json:"payUrl,omitempty"`
}

// Receipt описывает итог оформления заказа.
type Receipt struct {
	Order  Order  `json:"order"`
	PayURL string `json:"payUrl,omitempty"`
}
