package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/emoji"
)

// EmojiHandler serves the read-only catalog endpoints.
type EmojiHandler struct {
	catalog *emoji.Catalog
	logger  *slog.Logger
}

func NewEmojiHandler(catalog *emoji.Catalog, logger *slog.Logger) *EmojiHandler {
	return &EmojiHandler{catalog: catalog, logger: logger}
}

// EmojiListResponse wraps catalog listings.
type EmojiListResponse struct {
	Emojis []*domain.EmojiAsset `json:"emojis"`
	Count  int                  `json:"count"`
}

// List GET /v1/emojis - full catalog in insertion order
func (h *EmojiHandler) List(c *fiber.Ctx) error {
	assets := h.catalog.All()
	return c.JSON(EmojiListResponse{Emojis: assets, Count: len(assets)})
}

// ByExpression GET /v1/emojis/:expression - catalog entries for one label
func (h *EmojiHandler) ByExpression(c *fiber.Ctx) error {
	expr := domain.Expression(c.Params("expression"))
	if !expr.Valid() {
		return domain.ErrValidationFailed
	}

	assets := h.catalog.ByExpression(expr)
	if len(assets) == 0 {
		return domain.ErrEmojiNotFound
	}
	return c.JSON(EmojiListResponse{Emojis: assets, Count: len(assets)})
}
