package rekognition

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/facemoji/facemoji/internal/domain"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeInvalidParameter   = "InvalidParameterException"
	errCodeThrottling         = "ThrottlingException"
	errCodeServiceUnavailable = "ServiceUnavailableException"
)

// mapAPIError translates AWS API errors into domain errors
func mapAPIError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch apiErr.ErrorCode() {
	case errCodeInvalidImageFormat, errCodeImageTooLarge, errCodeInvalidParameter:
		return domain.ErrInvalidImage.WithError(err)
	case errCodeThrottling, errCodeServiceUnavailable, errCodeAccessDenied:
		return domain.ErrProviderUnavailable.WithError(err)
	default:
		return err
	}
}
