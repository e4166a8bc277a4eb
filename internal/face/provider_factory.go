package face

import (
	"context"
	"fmt"

	"github.com/facemoji/facemoji/internal/config"
	"github.com/facemoji/facemoji/internal/provider"
	"github.com/facemoji/facemoji/internal/provider/mock"
	"github.com/facemoji/facemoji/internal/provider/rekognition"
)

// ProviderType defines supported landmark provider types
type ProviderType string

const (
	// ProviderTypeMock is the deterministic synthetic provider (local, for dev/test)
	ProviderTypeMock ProviderType = "mock"
	// ProviderTypeRekognition is the AWS Rekognition provider (cloud, for prod)
	ProviderTypeRekognition ProviderType = "rekognition"
)

// NewLandmarkProvider creates a LandmarkProvider instance based on configuration
//
// Environment variables:
//   - PROVIDER_TYPE: "mock" or "rekognition" (default: "mock")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: via AWS SDK credential chain
func NewLandmarkProvider(ctx context.Context, cfg *config.Config) (provider.LandmarkProvider, error) {
	providerType := ProviderType(cfg.ProviderType)

	switch providerType {
	case ProviderTypeRekognition:
		rekogCfg := rekognition.Config{Region: cfg.AWSRegion}
		if rekogCfg.Region == "" {
			rekogCfg = rekognition.DefaultConfig()
		}

		prov, err := rekognition.NewProvider(ctx, rekogCfg)
		if err != nil {
			return nil, fmt.Errorf("create rekognition provider: %w", err)
		}
		return prov, nil

	case ProviderTypeMock, "":
		// Default to the synthetic provider for dev/test environments
		return mock.New(), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s)",
			cfg.ProviderType, ProviderTypeMock, ProviderTypeRekognition)
	}
}
