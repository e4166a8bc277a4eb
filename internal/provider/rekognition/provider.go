package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider implements provider.LandmarkProvider using AWS Rekognition.
// Rekognition returns a sparse set of named landmarks; the adapter projects
// them onto the 68-point topology the classifier expects, interpolating the
// points Rekognition does not report.
type Provider struct {
	client *Client
}

var _ provider.LandmarkProvider = (*Provider)(nil)

// NewProvider creates a new Rekognition landmark provider
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &Provider{client: client}, nil
}

func validateImage(img []byte) error {
	if len(img) < minImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too small (%d bytes, minimum %d)", len(img), minImageSize))
	}
	if len(img) > maxImageSize {
		return domain.ErrInvalidImage.WithError(fmt.Errorf("image too large (%d bytes, maximum %d)", len(img), maxImageSize))
	}
	return nil
}

// Detect detects faces using the Rekognition DetectFaces API.
// Returns an empty slice if no faces are detected (not an error).
func (p *Provider) Detect(ctx context.Context, img []byte) ([]provider.Detection, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}

	// Rekognition reports coordinates as ratios of the image dimensions
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	imgW, imgH := float64(cfg.Width), float64(cfg.Height)

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: img,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", mapAPIError(err))
	}

	detections := make([]provider.Detection, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		if detail.BoundingBox == nil {
			continue
		}

		box := domain.BoundingBox{
			X:      float64(derefF32(detail.BoundingBox.Left)) * imgW,
			Y:      float64(derefF32(detail.BoundingBox.Top)) * imgH,
			Width:  float64(derefF32(detail.BoundingBox.Width)) * imgW,
			Height: float64(derefF32(detail.BoundingBox.Height)) * imgH,
		}

		detections = append(detections, provider.Detection{
			BoundingBox: box,
			Landmarks:   expandLandmarks(detail.Landmarks, box, imgW, imgH),
			Confidence:  float64(derefF32(detail.Confidence)) / 100,
		})
	}

	return detections, nil
}

func derefF32(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}
