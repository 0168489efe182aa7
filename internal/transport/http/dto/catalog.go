package dto

import (
	"net/url"
	"strconv"
)

type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// WithDefaults подставляет limit по умолчанию и отбрасывает отрицательный offset.
func (p Pagination) WithDefaults(limit int) Pagination {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = limit
	}

	return p
}

func (p Pagination) Query() url.Values {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(p.Offset))
	q.Set("limit", strconv.Itoa(p.Limit))

	return q
}

type ImageInput struct {
	URL         string `json:"url" validate:"required,url"`
	IsThumbnail bool   `json:"isThumbnail"`
}

type ProductInput struct {
	Name        string       `json:"name" validate:"required"`
	Price       float64      `json:"price" validate:"gte=0"`
	Height      float64      `json:"height" validate:"gte=0"`
	Width       float64      `json:"width" validate:"gte=0"`
	Length      float64      `json:"length" validate:"gte=0"`
	StockQty    int          `json:"stockQty" validate:"gte=0"`
	Description string       `json:"description" validate:"required"`
	CategoryID  string       `json:"categoryId" validate:"required"`
	MaterialID  string       `json:"materialId" validate:"required"`
	Images      []ImageInput `json:"images,omitempty" validate:"omitempty,dive"`
}

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
	Desc string `json:"desc" validate:"required"`
}

type MaterialInput struct {
	Name         string  `json:"name" validate:"required"`
	Unit         string  `json:"unit" validate:"required"`
	StockQty     int     `json:"stockQty" validate:"gte=0"`
	ThresholdQty int     `json:"thresholdQty" validate:"gte=0"`
	Price        string  `json:"price" validate:"required,numeric"`
	Description  *string `json:"description,omitempty"`
}

type ActiveInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}
