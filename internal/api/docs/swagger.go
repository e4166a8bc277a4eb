// Package docs declares the Swagger description of the v1 API.
package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// DetectFaceData represents the detect-face response
type DetectFaceData struct {
	Status           string `json:"status" example:"success"`
	ProcessingTimeMs int64  `json:"processing_time_ms" example:"42"`
	FaceCount        int    `json:"face_count" example:"1"`
}

// EmojiAssetData represents one catalog entry
type EmojiAssetData struct {
	ID                  string  `json:"id" example:"happy_001"`
	Emoji               string  `json:"emoji" example:"😀"`
	Expression          string  `json:"expression" example:"happy"`
	ConfidenceThreshold float64 `json:"confidence_threshold" example:"0.7"`
	Placement           string  `json:"placement" example:"face"`
}

// EmojiListData represents a catalog listing
type EmojiListData struct {
	Emojis []EmojiAssetData `json:"emojis"`
	Count  int              `json:"count" example:"12"`
}

// CreateJobData represents the job creation response
type CreateJobData struct {
	JobID  string `json:"job_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status string `json:"status" example:"pending"`
}

// JobStatusData represents a polled job record
type JobStatusData struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status    string `json:"status" example:"complete"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at" example:"2026-01-01T00:00:00Z"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "FaceMoji API",
		Version:     "v1.0.0",
		Description: "Face expression analysis and emoji overlay service",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		endpoint.New(
			endpoint.POST,
			"/detect-face",
			endpoint.WithTags("Process"),
			endpoint.WithSummary("Detect faces and classify expressions"),
			endpoint.WithDescription("Detects faces in the uploaded image, classifies each expression, and returns the primary face with an emoji recommendation."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DetectFaceData{}, "200", "Analysis completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/process-image",
			endpoint.WithTags("Process"),
			endpoint.WithSummary("Composite an emoji overlay onto the image"),
			endpoint.WithDescription("Renders the selected (or recommended) emoji over the detected faces and returns the composited JPEG."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.MIME("image/jpeg")}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(struct{}{}, "200", "Composited image"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "EMOJI_NOT_FOUND", Message: "Emoji asset not found in catalog"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INVALID_IMAGE", Message: "Invalid image format or corrupted file"}, "422", "Unprocessable Entity"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/emojis",
			endpoint.WithTags("Catalog"),
			endpoint.WithSummary("List the emoji catalog"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmojiListData{}, "200", "Catalog listing"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/emojis/{expression}",
			endpoint.WithTags("Catalog"),
			endpoint.WithSummary("List catalog entries for an expression"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("expression", parameter.Path, parameter.WithDescription("Expression label (happy, surprised, laughing, angry, sleepy, neutral)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EmojiListData{}, "200", "Catalog entries"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "EMOJI_NOT_FOUND", Message: "Emoji asset not found in catalog"}, "404", "Not Found"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/jobs",
			endpoint.WithTags("Jobs"),
			endpoint.WithSummary("Create a batch processing job"),
			endpoint.WithDescription("Accepts multiple frames as multipart files and processes them asynchronously; poll the returned job id for results."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CreateJobData{}, "202", "Job accepted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "EMPTY_JOB", Message: "Job must contain at least one frame"}, "422", "Unprocessable Entity"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/jobs/{id}",
			endpoint.WithTags("Jobs"),
			endpoint.WithSummary("Poll a job"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Job identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(JobStatusData{}, "200", "Current job record"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "JOB_NOT_FOUND", Message: "Job not found or expired"}, "404", "Not Found"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)
	return sw
}
