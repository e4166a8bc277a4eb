package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/facemoji/facemoji/internal/domain"
)

// JobTracker is the batch job surface the handler drives.
type JobTracker interface {
	Create(ctx context.Context, frames [][]byte, opts domain.JobOptions) (uuid.UUID, error)
	Status(ctx context.Context, id uuid.UUID) (*domain.Job, error)
}

// JobHandler serves batch job creation and polling.
type JobHandler struct {
	tracker JobTracker
	logger  *slog.Logger
}

func NewJobHandler(tracker JobTracker, logger *slog.Logger) *JobHandler {
	return &JobHandler{tracker: tracker, logger: logger}
}

// CreateJobResponse is the payload for POST /v1/jobs.
type CreateJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Create POST /v1/jobs - submit a multi-frame batch job. Frames arrive as
// repeated multipart "frames" files.
func (h *JobHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	files := form.File["frames"]
	if len(files) == 0 {
		return domain.ErrEmptyJob
	}

	frames := make([][]byte, 0, len(files))
	for _, file := range files {
		if file.Size == 0 || file.Size > maxImageSize {
			return domain.ErrInvalidImage
		}
		f, err := file.Open()
		if err != nil {
			return domain.ErrInvalidImage.WithError(err)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return domain.ErrInvalidImage.WithError(err)
		}
		frames = append(frames, data)
	}

	var opts domain.JobOptions
	if v := c.FormValue("min_confidence"); v != "" {
		minConf, err := strconv.ParseFloat(v, 64)
		if err != nil || minConf < 0 || minConf > 1 {
			return domain.ErrValidationFailed.WithError(fmt.Errorf("min_confidence must be in [0, 1]"))
		}
		opts.MinConfidence = minConf
	}

	jobID, err := h.tracker.Create(c.Context(), frames, opts)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(CreateJobResponse{
		JobID:  jobID.String(),
		Status: string(domain.JobPending),
	})
}

// Status GET /v1/jobs/:id - poll a job record
func (h *JobHandler) Status(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(fmt.Errorf("job id must be a uuid"))
	}

	j, err := h.tracker.Status(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(j)
}
