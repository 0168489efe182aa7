package models

import "time"

type ProductImage struct {
	ID          string    `json:"id,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	URL         string    `json:"url"`
	IsThumbnail bool      `json:"isThumbnail"`
	ProductID   string    `json:"productId,omitempty"`
}

type Product struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Price         float64        `json:"price"`
	Height        float64        `json:"height"`
	Width         float64        `json:"width"`
	Length        float64        `json:"length"`
	StockQty      int            `json:"stockQty"`
	Description   string         `json:"description"`
	CategoryID    string         `json:"categoryId,omitempty"`
	CategoryName  string         `json:"categoryName,omitempty"`
	MaterialID    string         `json:"materialId,omitempty"`
	MaterialName  string         `json:"materialName,omitempty"`
	IsActive      bool           `json:"isActive"`
	ProductImages []ProductImage `json:"productImages"`
}

// Thumbnail возвращает адрес миниатюры товара или первой картинки.
func (p Product) Thumbnail() string {
	for _, img := range p.ProductImages {
		if img.IsThumbnail {
			return img.URL
		}
	}

	if len(p.ProductImages) > 0 {
		return p.ProductImages[0].URL
	}

	return ""
}

type Category struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Desc      string    `json:"desc"`
	IsActive  bool      `json:"isActive"`
}

type Material struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Name         string    `json:"name"`
	Unit         string    `json:"unit"`
	StockQty     int       `json:"stockQty"`
	ThresholdQty int       `json:"thresholdQty"`
	Price        *float64  `json:"price"`
	Description  *string   `json:"description"`
	IsActive     bool      `json:"isActive"`
}

// Page описывает страницу списка в формате бэкенда.
type Page[T any] struct {
	Count int `json:"count"`
	Limit int `json:"limit"`
	Page  int `json:"page"`
	Data  []T `json:"data"`
}
