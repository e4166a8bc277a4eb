package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/facemoji/facemoji/internal/api/middleware"
	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/overlay"
	"github.com/facemoji/facemoji/internal/pipeline"
)

type MockImagePipeline struct {
	mock.Mock
}

func (m *MockImagePipeline) DetectAndClassify(ctx context.Context, image []byte) (*pipeline.DetectResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.DetectResult), args.Error(1)
}

func (m *MockImagePipeline) Composite(ctx context.Context, image []byte, faceIndex int, assetID string, cfg overlay.Config) ([]byte, error) {
	args := m.Called(ctx, image, faceIndex, assetID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestApp(register func(app *fiber.App)) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(testLogger()),
	})
	register(app)
	return app
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// imageForm builds a multipart body with an "image" part carrying the given
// content type, plus any extra string fields.
func imageForm(t *testing.T, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func detectResult() *pipeline.DetectResult {
	return &pipeline.DetectResult{
		Faces: []pipeline.FaceAnalysis{
			{
				Face: domain.FaceObservation{
					Expression: domain.ExpressionResult{Primary: domain.ExpressionHappy, Confidence: 0.8},
					Confidence: 0.95,
				},
				Recommendation: domain.Recommendation{ExpressionMatched: domain.ExpressionHappy},
			},
			{
				Face: domain.FaceObservation{
					Expression: domain.ExpressionResult{Primary: domain.ExpressionNeutral, Confidence: 0.5},
					Confidence: 0.7,
				},
			},
		},
		ImageWidth:   640,
		ImageHeight:  480,
		ProcessingMs: 12,
	}
}

func TestDetectFace_Success(t *testing.T) {
	p := new(MockImagePipeline)
	p.On("DetectAndClassify", mock.Anything, []byte("jpeg-bytes")).Return(detectResult(), nil)

	app := newTestApp(func(app *fiber.App) {
		app.Post("/v1/detect-face", NewProcessHandler(p, testLogger()).DetectFace)
	})

	body, contentType := imageForm(t, "image/jpeg", []byte("jpeg-bytes"), nil)
	req, _ := http.NewRequest(http.MethodPost, "/v1/detect-face", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload DetectFaceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "success", payload.Status)
	assert.Equal(t, 2, payload.FaceCount)
	require.NotNil(t, payload.PrimaryFace)
	assert.Equal(t, domain.ExpressionHappy, payload.PrimaryFace.Face.Expression.Primary)
	assert.Equal(t, domain.ExpressionHappy, payload.Recommendation.ExpressionMatched)
	p.AssertExpectations(t)
}

func TestDetectFace_MissingImage(t *testing.T) {
	p := new(MockImagePipeline)
	app := newTestApp(func(app *fiber.App) {
		app.Post("/v1/detect-face", NewProcessHandler(p, testLogger()).DetectFace)
	})

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	require.NoError(t, w.Close())

	req, _ := http.NewRequest(http.MethodPost, "/v1/detect-face", buf)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, resp).Error.Code)
	p.AssertNotCalled(t, "DetectAndClassify", mock.Anything, mock.Anything)
}

func TestDetectFace_UnsupportedContentType(t *testing.T) {
	p := new(MockImagePipeline)
	app := newTestApp(func(app *fiber.App) {
		app.Post("/v1/detect-face", NewProcessHandler(p, testLogger()).DetectFace)
	})

	body, contentType := imageForm(t, "image/gif", []byte("gif-bytes"), nil)
	req, _ := http.NewRequest(http.MethodPost, "/v1/detect-face", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_IMAGE", decodeError(t, resp).Error.Code)
}

func TestDetectFace_NoFaceDetected(t *testing.T) {
	p := new(MockImagePipeline)
	p.On("DetectAndClassify", mock.Anything, mock.Anything).Return(nil, domain.ErrNoFaceDetected)

	app := newTestApp(func(app *fiber.App) {
		app.Post("/v1/detect-face", NewProcessHandler(p, testLogger()).DetectFace)
	})

	body, contentType := imageForm(t, "image/jpeg", []byte("jpeg-bytes"), nil)
	req, _ := http.NewRequest(http.MethodPost, "/v1/detect-face", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NO_FACE_DETECTED", decodeError(t, resp).Error.Code)
}

func TestProcessImage_Success(t *testing.T) {
	p := new(MockImagePipeline)
	p.On("Composite", mock.Anything, []byte("jpeg-bytes"), pipeline.AllFaces, "", overlay.DefaultConfig()).
		Return([]byte("rendered-jpeg"), nil)

	app := newTestApp(func(app *fiber.App) {
		app.Post("/v1/process-image", NewProcessHandler(p, testLogger()).ProcessImage)
	})

	body, contentType := imageForm(t, "image/jpeg", []byte("jpeg-bytes"), nil)
	req, _ := http.NewRequest(http.MethodPost, "/v1/process-image", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "facemoji.jpg")

	rendered, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("rendered-jpeg"), rendered)
	p.AssertExpectations(t)
}

func TestProcessImage_ForwardsOverlayConfig(t *testing.T) {
	expected := overlay.Config{Size: 1.5, Opacity: 0.5, OffsetX: 0.25, OffsetY: -0.5}

	p := new(MockImagePipeline)
	p.On("Composite", mock.Anything, mock.Anything, 1, "happy_001", expected).
		Return([]byte("rendered"), nil)

	app := newTestApp(func(app *fiber.App) {
		app.Post("/v1/process-image", NewProcessHandler(p, testLogger()).ProcessImage)
	})

	body, contentType := imageForm(t, "image/png", []byte("png-bytes"), map[string]string{
		"emoji_id":          "happy_001",
		"size":              "1.5",
		"opacity":           "0.5",
		"horizontal_offset": "0.25",
		"vertical_offset":   "-0.5",
		"face_index":        "1",
	})
	req, _ := http.NewRequest(http.MethodPost, "/v1/process-image", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	p.AssertExpectations(t)
}

func TestProcessImage_RejectsOutOfRangeOverlayValues(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"size too small", "size", "0.01"},
		{"size too large", "size", "5"},
		{"opacity above one", "opacity", "1.5"},
		{"offset below range", "horizontal_offset", "-2"},
		{"offset not a number", "vertical_offset", "up"},
		{"face index not an integer", "face_index", "first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(MockImagePipeline)
			app := newTestApp(func(app *fiber.App) {
				app.Post("/v1/process-image", NewProcessHandler(p, testLogger()).ProcessImage)
			})

			body, contentType := imageForm(t, "image/jpeg", []byte("jpeg-bytes"), map[string]string{
				tt.field: tt.value,
			})
			req, _ := http.NewRequest(http.MethodPost, "/v1/process-image", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
			assert.Equal(t, "VALIDATION_FAILED", decodeError(t, resp).Error.Code)
			p.AssertNotCalled(t, "Composite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestProcessImage_UnknownEmoji(t *testing.T) {
	p := new(MockImagePipeline)
	p.On("Composite", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrEmojiNotFound)

	app := newTestApp(func(app *fiber.App) {
		app.Post("/v1/process-image", NewProcessHandler(p, testLogger()).ProcessImage)
	})

	body, contentType := imageForm(t, "image/jpeg", []byte("jpeg-bytes"), map[string]string{
		"emoji_id": "nope",
	})
	req, _ := http.NewRequest(http.MethodPost, "/v1/process-image", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "EMOJI_NOT_FOUND", decodeError(t, resp).Error.Code)
}
