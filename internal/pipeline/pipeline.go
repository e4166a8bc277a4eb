// Package pipeline orchestrates the detect, classify, recommend and composite
// stages behind the HTTP and streaming surfaces.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/emoji"
	"github.com/facemoji/facemoji/internal/expression"
	"github.com/facemoji/facemoji/internal/overlay"
	"github.com/facemoji/facemoji/internal/provider"
)

// AllFaces selects every detected face in Composite.
const AllFaces = -1

// FaceAnalysis is the full per-face result of a pipeline run.
type FaceAnalysis struct {
	Face           domain.FaceObservation `json:"face"`
	Recommendation domain.Recommendation  `json:"recommendation"`
}

// DetectResult is the outcome of DetectAndClassify on a single image.
type DetectResult struct {
	Faces        []FaceAnalysis `json:"faces"`
	ImageWidth   int            `json:"image_width"`
	ImageHeight  int            `json:"image_height"`
	ProcessingMs int64          `json:"processing_ms"`
}

type Pipeline struct {
	provider    provider.LandmarkProvider
	classifier  *expression.Classifier
	catalog     *emoji.Catalog
	recommender *emoji.Recommender
	compositor  *overlay.Compositor
	assets      overlay.AssetSource
	logger      *slog.Logger
}

func New(
	landmarkProvider provider.LandmarkProvider,
	catalog *emoji.Catalog,
	assets overlay.AssetSource,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		provider:    landmarkProvider,
		classifier:  expression.NewClassifier(),
		catalog:     catalog,
		recommender: emoji.NewRecommender(catalog),
		compositor:  overlay.NewCompositor(logger),
		assets:      assets,
		logger:      logger,
	}
}

// DetectAndClassify runs detection on the image and classifies every face.
// Returns ErrNoFaceDetected when the provider finds nothing.
func (p *Pipeline) DetectAndClassify(ctx context.Context, imageBytes []byte) (*DetectResult, error) {
	start := time.Now()

	detections, err := p.provider.Detect(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	if len(detections) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	result := &DetectResult{Faces: make([]FaceAnalysis, 0, len(detections))}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(imageBytes)); err == nil {
		result.ImageWidth = cfg.Width
		result.ImageHeight = cfg.Height
	}

	for _, d := range detections {
		expr := p.classifier.Classify(d.Landmarks)
		result.Faces = append(result.Faces, FaceAnalysis{
			Face: domain.FaceObservation{
				BoundingBox: d.BoundingBox,
				Landmarks:   d.Landmarks,
				Expression:  expr,
				Confidence:  d.Confidence,
			},
			Recommendation: p.recommender.Recommend(expr),
		})
	}

	result.ProcessingMs = time.Since(start).Milliseconds()
	p.logger.Debug("image analyzed",
		"faces", len(result.Faces),
		"image_bytes", len(imageBytes),
		"processing_ms", result.ProcessingMs,
	)

	return result, nil
}

// Recommend maps a classification to emoji candidates.
func (p *Pipeline) Recommend(expr domain.ExpressionResult) domain.Recommendation {
	return p.recommender.Recommend(expr)
}

// Composite overlays an emoji on the faces in the image and returns the
// re-encoded JPEG. faceIndex selects a single face, or AllFaces for every
// one. An empty assetID uses each face's recommended primary. A face whose
// overlay fails is logged and skipped; the remaining faces still render.
func (p *Pipeline) Composite(ctx context.Context, imageBytes []byte, faceIndex int, assetID string, cfg overlay.Config) ([]byte, error) {
	analysis, err := p.DetectAndClassify(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	if faceIndex != AllFaces && (faceIndex < 0 || faceIndex >= len(analysis.Faces)) {
		return nil, domain.ErrValidationFailed.WithError(
			fmt.Errorf("face index %d out of range, image has %d faces", faceIndex, len(analysis.Faces)))
	}

	var requested *domain.EmojiAsset
	if assetID != "" {
		asset, ok := p.catalog.ByID(assetID)
		if !ok {
			return nil, domain.ErrEmojiNotFound
		}
		requested = asset
	}

	canvas, err := overlay.Decode(imageBytes)
	if err != nil {
		return nil, err
	}

	rendered := 0
	for i, fa := range analysis.Faces {
		if faceIndex != AllFaces && i != faceIndex {
			continue
		}

		asset := requested
		if asset == nil {
			asset = fa.Recommendation.Primary.Asset
		}
		if asset == nil {
			p.logger.Warn("no asset for face, skipping", "face_index", i)
			continue
		}

		raster, err := p.assets.Raster(ctx, asset)
		if err != nil {
			p.logger.Warn("asset raster failed, skipping face", "face_index", i, "asset_id", asset.ID, "error", err)
			continue
		}

		if err := p.compositor.Composite(canvas, &fa.Face, asset, raster, cfg); err != nil {
			p.logger.Warn("composite failed, skipping face", "face_index", i, "asset_id", asset.ID, "error", err)
			continue
		}
		rendered++
	}

	p.logger.Debug("overlay rendered", "faces", rendered, "asset_id", assetID)

	return overlay.EncodeJPEG(canvas)
}
