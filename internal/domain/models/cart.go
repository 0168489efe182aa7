package models

import "time"

type CartItem struct {
	ProductID       string  `json:"productId"`
	ProductName     string  `json:"productName"`
	Price           float64 `json:"price"`
	Quantity        int     `json:"quantity"`
	ProductImageURL string  `json:"productImageUrl,omitempty"`
	Slug            string  `json:"slug,omitempty"`
}

type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Items     []CartItem `json:"items"`
}

// Subtotal считает сумму позиций корзины без доставки.
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.Items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		sum += item.Price * float64(qty)
	}

	return sum
}
