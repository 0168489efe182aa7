package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"handmade_shop/internal/domain/models"
	"handmade_shop/internal/lib/apiclient"
	"handmade_shop/internal/lib/logger/sl"
	"handmade_shop/internal/transport/http/dto"
)

const (
	DefaultCustomLimit = 25

	customPath     = "/product-catalog/product-custom"
	customMinePath = "/product-catalog/product-custom-by-current-user"
)

var ErrNoUser = errors.New("user id is unknown")

type ClientProvider interface {
	Client(sessionID string) (*apiclient.Client, error)
}

// Payload описывает заявку на игрушку в формате бэкенда.
type Payload struct {
	UserID          string   `json:"userId"`
	CharacterName   string   `json:"characterName"`
	CharacterDesign string   `json:"characterDesign"`
	Height          string   `json:"height"`
	Width           string   `json:"width"`
	Length          string   `json:"length"`
	Note            string   `json:"note"`
	Accessory       []string `json:"accessory"`
	Images          []string `json:"images"`
}

type CustomService struct {
	log     *slog.Logger
	clients ClientProvider
}

func NewCustomService(log *slog.Logger, clients ClientProvider) *CustomService {
	return &CustomService{
		log:     log,
		clients: clients,
	}
}

func (s *CustomService) Create(ctx context.Context, sessionID, userID string, input dto.DesignInput) error {
	const op = "services.CustomService.Create"

	log := s.log.With(
		slog.String("op", op),
		slog.String("character", input.CharacterName),
	)

	if userID == "" {
		return fmt.Errorf("%s: %w", op, ErrNoUser)
	}

	client, err := s.clients.Client(sessionID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := client.Post(ctx, customPath, BuildPayload(userID, input)); err != nil {
		log.Warn("failed to create custom product", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("custom product requested")

	return nil
}

func (s *CustomService) Mine(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.ProductCustom], error) {
	const op = "services.CustomService.Mine"

	result, err := s.list(ctx, sessionID, customMinePath, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// All отдаёт все заявки магазина, только для администратора.
func (s *CustomService) All(ctx context.Context, sessionID string, page dto.Pagination) (*models.Page[models.ProductCustom], error) {
	const op = "services.CustomService.All"

	result, err := s.list(ctx, sessionID, customPath, page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *CustomService) list(ctx context.Context, sessionID, path string, page dto.Pagination) (*models.Page[models.ProductCustom], error) {
	client, err := s.clients.Client(sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := client.Get(ctx, path, apiclient.WithQueryValues(page.WithDefaults(DefaultCustomLimit).Query()))
	if err != nil {
		return nil, err
	}

	var result models.Page[models.ProductCustom]
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

// BuildPayload переводит форму дизайна в заявку бэкенда.
func BuildPayload(userID string, input dto.DesignInput) Payload {
	design := input.CharacterDesignType
	if design == dto.DesignOther {
		design = "custom: " + strings.TrimSpace(input.CharacterDesignCustomNote)
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}

	return Payload{
		UserID:          userID,
		CharacterName:   input.CharacterName,
		CharacterDesign: design,
		Height:          input.Height,
		Width:           input.Width,
		Length:          input.Length,
		Note:            input.Note,
		Accessory:       accessoryList(input.Accessories),
		Images:          images,
	}
}

// accessoryList кодирует аксессуары строками вида "slot:value:#RRGGBB".
func accessoryList(a dto.DesignAccessories) []string {
	list := make([]string, 0, 3)

	if v := slotValue(a.Head, a.HeadCustomNote); v != "" {
		list = append(list, "head:"+v+":"+a.HeadColor)
	}
	if v := slotValue(a.Neck, a.NeckCustomNote); v != "" {
		list = append(list, "neck:"+v+":"+a.NeckColor)
	}
	if a.SideFlowers != "" && a.SideFlowers != dto.AccessoryNone {
		list = append(list, "sideFlowers:"+a.SideFlowers+":"+a.Color)
	}

	return list
}

func slotValue(value, note string) string {
	if value == "" || value == dto.AccessoryNone {
		return ""
	}

	if note = strings.TrimSpace(note); value == dto.AccessoryOther && note != "" {
		return "custom:" + note
	}

	return value
}
