package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/overlay"
	"github.com/facemoji/facemoji/internal/pipeline"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// ImagePipeline is the pipeline slice the process endpoints use.
type ImagePipeline interface {
	DetectAndClassify(ctx context.Context, image []byte) (*pipeline.DetectResult, error)
	Composite(ctx context.Context, image []byte, faceIndex int, assetID string, cfg overlay.Config) ([]byte, error)
}

// ProcessHandler serves the still-image analysis and overlay endpoints.
type ProcessHandler struct {
	pipeline ImagePipeline
	logger   *slog.Logger
}

func NewProcessHandler(p ImagePipeline, logger *slog.Logger) *ProcessHandler {
	return &ProcessHandler{pipeline: p, logger: logger}
}

// DetectFaceResponse is the payload for POST /v1/detect-face.
type DetectFaceResponse struct {
	Status           string                 `json:"status"`
	ProcessingTimeMs int64                  `json:"processing_time_ms"`
	FaceCount        int                    `json:"face_count"`
	PrimaryFace      *pipeline.FaceAnalysis `json:"primary_face"`
	Recommendation   domain.Recommendation  `json:"emoji_recommendation"`
}

// DetectFace POST /v1/detect-face - analyze faces in an uploaded image
func (h *ProcessHandler) DetectFace(c *fiber.Ctx) error {
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("detect face: %w", err)
	}

	result, err := h.pipeline.DetectAndClassify(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	primary := &result.Faces[0]
	return c.JSON(DetectFaceResponse{
		Status:           "success",
		ProcessingTimeMs: result.ProcessingMs,
		FaceCount:        len(result.Faces),
		PrimaryFace:      primary,
		Recommendation:   primary.Recommendation,
	})
}

// ProcessImage POST /v1/process-image - composite an emoji overlay and
// return the rendered JPEG
func (h *ProcessHandler) ProcessImage(c *fiber.Ctx) error {
	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return fmt.Errorf("process image: %w", err)
	}

	assetID := strings.TrimSpace(c.FormValue("emoji_id"))

	cfg := overlay.DefaultConfig()
	if v := c.FormValue("size"); v != "" {
		if cfg.Size, err = parseUnitValue(v, "size", 0.1, 3.0); err != nil {
			return err
		}
	}
	if v := c.FormValue("opacity"); v != "" {
		if cfg.Opacity, err = parseUnitValue(v, "opacity", 0, 1); err != nil {
			return err
		}
	}
	if v := c.FormValue("horizontal_offset"); v != "" {
		if cfg.OffsetX, err = parseUnitValue(v, "horizontal_offset", -1, 1); err != nil {
			return err
		}
	}
	if v := c.FormValue("vertical_offset"); v != "" {
		if cfg.OffsetY, err = parseUnitValue(v, "vertical_offset", -1, 1); err != nil {
			return err
		}
	}

	faceIndex := pipeline.AllFaces
	if v := c.FormValue("face_index"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return domain.ErrValidationFailed.WithError(fmt.Errorf("face_index must be an integer"))
		}
		faceIndex = idx
	}

	rendered, err := h.pipeline.Composite(c.Context(), imageBytes, faceIndex, assetID, cfg)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="facemoji.jpg"`)
	return c.Send(rendered)
}

func parseUnitValue(raw, field string, min, max float64) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < min || v > max {
		return 0, domain.ErrValidationFailed.WithError(
			fmt.Errorf("%s must be a number in [%g, %g]", field, min, max))
	}
	return v, nil
}

func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
