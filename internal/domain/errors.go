package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so wrapped copies created via WithError still
// compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 404,
	}

	ErrEmojiNotFound = &AppError{
		Code:       "EMOJI_NOT_FOUND",
		Message:    "Emoji asset not found in catalog",
		StatusCode: 404,
	}

	ErrInvalidCatalog = &AppError{
		Code:       "INVALID_CATALOG",
		Message:    "Emoji catalog failed validation",
		StatusCode: 500,
	}

	ErrInvalidFrame = &AppError{
		Code:       "INVALID_FRAME",
		Message:    "Frame is missing required fields",
		StatusCode: 422,
	}

	ErrSessionNotFound = &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "No active session for this device",
		StatusCode: 404,
	}

	ErrJobNotFound = &AppError{
		Code:       "JOB_NOT_FOUND",
		Message:    "Job not found or expired",
		StatusCode: 404,
	}

	ErrJobTerminal = &AppError{
		Code:       "JOB_TERMINAL",
		Message:    "Job already reached a terminal state",
		StatusCode: 409,
	}

	ErrEmptyJob = &AppError{
		Code:       "EMPTY_JOB",
		Message:    "Job must contain at least one frame",
		StatusCode: 422,
	}

	ErrStoreUnavailable = &AppError{
		Code:       "STORE_UNAVAILABLE",
		Message:    "Persistent store is unavailable",
		StatusCode: 503,
	}

	ErrProviderUnavailable = &AppError{
		Code:       "PROVIDER_UNAVAILABLE",
		Message:    "Landmark provider is unavailable",
		StatusCode: 503,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Rate limit exceeded, please try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}
)
