package models

import "time"

const (
	CustomStatusPending    = "PENDING"
	CustomStatusAccepted   = "ACCEPTED"
	CustomStatusInProgress = "IN_PROGRESS"
	CustomStatusCompleted  = "COMPLETED"
	CustomStatusRejected   = "REJECTED"
)

// ProductCustom описывает заказ игрушки по собственному дизайну покупателя.
type ProductCustom struct {
	ID              string         `json:"id"`
	CharacterName   string         `json:"characterName"`
	CharacterDesign string         `json:"characterDesign"`
	Height          string         `json:"height"`
	Width           string         `json:"width"`
	Length          string         `json:"length"`
	Note            string         `json:"note"`
	Accessory       []string       `json:"accessory"`
	IsActive        bool           `json:"isActive"`
	UserID          int64          `json:"userId"`
	Status          *string        `json:"status"`
	Price           *float64       `json:"price"`
	ProductImages   []ProductImage `json:"productImages"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

func (p ProductCustom) StatusOrDefault() string {
	if p.Status == nil || *p.Status == "" {
		return CustomStatusPending
	}

	return *p.Status
}
