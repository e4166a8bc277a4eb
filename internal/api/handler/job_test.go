package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/facemoji/facemoji/internal/domain"
)

type MockJobTracker struct {
	mock.Mock
}

func (m *MockJobTracker) Create(ctx context.Context, frames [][]byte, opts domain.JobOptions) (uuid.UUID, error) {
	args := m.Called(ctx, frames, opts)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJobTracker) Status(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func jobApp(tracker JobTracker) *fiber.App {
	return newTestApp(func(app *fiber.App) {
		h := NewJobHandler(tracker, testLogger())
		app.Post("/v1/jobs", h.Create)
		app.Get("/v1/jobs/:id", h.Status)
	})
}

// framesForm builds a multipart body with repeated "frames" files plus any
// extra string fields.
func framesForm(t *testing.T, frames [][]byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for i, frame := range frames {
		part, err := w.CreateFormFile("frames", "frame.jpg")
		require.NoError(t, err)
		_, err = part.Write(frame)
		require.NoError(t, err, "frame %d", i)
	}
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestCreateJob_Accepted(t *testing.T) {
	jobID := uuid.New()
	tracker := new(MockJobTracker)
	tracker.On("Create", mock.Anything, [][]byte{[]byte("f0"), []byte("f1")}, domain.JobOptions{}).
		Return(jobID, nil)

	app := jobApp(tracker)
	body, contentType := framesForm(t, [][]byte{[]byte("f0"), []byte("f1")}, nil)
	req, _ := http.NewRequest(http.MethodPost, "/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var payload CreateJobResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, jobID.String(), payload.JobID)
	assert.Equal(t, "pending", payload.Status)
	tracker.AssertExpectations(t)
}

func TestCreateJob_MinConfidence(t *testing.T) {
	tracker := new(MockJobTracker)
	tracker.On("Create", mock.Anything, mock.Anything, domain.JobOptions{MinConfidence: 0.7}).
		Return(uuid.New(), nil)

	app := jobApp(tracker)
	body, contentType := framesForm(t, [][]byte{[]byte("f0")}, map[string]string{"min_confidence": "0.7"})
	req, _ := http.NewRequest(http.MethodPost, "/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	tracker.AssertExpectations(t)
}

func TestCreateJob_InvalidMinConfidence(t *testing.T) {
	tracker := new(MockJobTracker)
	app := jobApp(tracker)

	body, contentType := framesForm(t, [][]byte{[]byte("f0")}, map[string]string{"min_confidence": "1.5"})
	req, _ := http.NewRequest(http.MethodPost, "/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, resp).Error.Code)
	tracker.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateJob_NoFrames(t *testing.T) {
	tracker := new(MockJobTracker)
	app := jobApp(tracker)

	body, contentType := framesForm(t, nil, map[string]string{"min_confidence": "0.5"})
	req, _ := http.NewRequest(http.MethodPost, "/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "EMPTY_JOB", decodeError(t, resp).Error.Code)
}

func TestJobStatus_Found(t *testing.T) {
	jobID := uuid.New()
	tracker := new(MockJobTracker)
	tracker.On("Status", mock.Anything, jobID).Return(&domain.Job{
		ID:        jobID,
		Status:    domain.JobComplete,
		CreatedAt: time.Now(),
	}, nil)

	app := jobApp(tracker)
	req, _ := http.NewRequest(http.MethodGet, "/v1/jobs/"+jobID.String(), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload domain.Job
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, jobID, payload.ID)
	assert.Equal(t, domain.JobComplete, payload.Status)
}

func TestJobStatus_InvalidID(t *testing.T) {
	tracker := new(MockJobTracker)
	app := jobApp(tracker)

	req, _ := http.NewRequest(http.MethodGet, "/v1/jobs/not-a-uuid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, resp).Error.Code)
	tracker.AssertNotCalled(t, "Status", mock.Anything, mock.Anything)
}

func TestJobStatus_NotFound(t *testing.T) {
	tracker := new(MockJobTracker)
	tracker.On("Status", mock.Anything, mock.Anything).Return(nil, domain.ErrJobNotFound)

	app := jobApp(tracker)
	req, _ := http.NewRequest(http.MethodGet, "/v1/jobs/"+uuid.NewString(), nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "JOB_NOT_FOUND", decodeError(t, resp).Error.Code)
}
