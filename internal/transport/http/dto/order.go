package dto

type AddCartItemInput struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type UpdateCartItemInput struct {
	CartID    string `json:"cartId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type RemoveCartItemInput struct {
	CartID    string `json:"cartId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
}

type CreateOrderInput struct {
	AddressID       string  `json:"addressId" validate:"required"`
	TotalAmount     float64 `json:"totalAmount" validate:"gte=0"`
	PaymentMethodID int     `json:"paymentMethodId" validate:"required,oneof=2 3"`
}

type OrderItemInput struct {
	OrderID   string  `json:"orderId" validate:"required"`
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	UnitPrice float64 `json:"unitPrice" validate:"gte=0"`
	Price     float64 `json:"price" validate:"gte=0"`
}

type PaymentInput struct {
	OrderID         string  `json:"orderId" validate:"required"`
	Amount          float64 `json:"amount,omitempty" validate:"gte=0"`
	PaymentMethodID int     `json:"paymentMethodId,omitempty" validate:"omitempty,oneof=2 3"`
}

type AddressInput struct {
	FullName   string `json:"fullName" validate:"required"`
	Phone      string `json:"phone" validate:"required,phone"`
	Street     string `json:"street" validate:"required"`
	Ward       string `json:"ward" validate:"required"`
	District   string `json:"district" validate:"required"`
	Province   string `json:"province" validate:"required"`
	Country    string `json:"country,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	IsDefault  bool   `json:"isDefault"`
}

// CheckoutItem описывает позицию покупки «купить сейчас» в обход корзины.
type CheckoutItem struct {
	ProductID string  `json:"productId" validate:"required"`
	// цена из браузера не используется, заказ считается по каталогу
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
}

type CheckoutInput struct {
	AddressID       string         `json:"addressId" validate:"required"`
	PaymentMethodID int            `json:"paymentMethodId" validate:"required,oneof=2 3"`
	Items           []CheckoutItem `json:"items,omitempty" validate:"omitempty,dive"`
}
