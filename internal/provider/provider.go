package provider

import (
	"context"

	"github.com/facemoji/facemoji/internal/domain"
)

// LandmarkProvider is the boundary to the face landmark extraction model.
// Implementations must return an empty slice (not an error) when no face is
// found in a well-formed image.
type LandmarkProvider interface {
	// Detect finds faces in the image and returns one Detection per face,
	// each with a full 68-point landmark set in pixel coordinates.
	Detect(ctx context.Context, image []byte) ([]Detection, error)
}

// Detection is one detected face before expression classification.
type Detection struct {
	BoundingBox domain.BoundingBox `json:"bounding_box"`
	Landmarks   domain.LandmarkSet `json:"landmarks"`
	Confidence  float64            `json:"confidence"`
}
