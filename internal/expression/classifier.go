// Package expression derives a categorical facial expression from 68-point
// landmark geometry. The classifier is a fixed decision tree over four scalar
// features; it has no learned parameters and is fully deterministic.
package expression

import (
	"math"

	"github.com/facemoji/facemoji/internal/domain"
)

// Classification thresholds. Tunable, but the branch order in Classify must
// stay fixed: the first matching rule wins.
const (
	mouthOpenThreshold     = 0.3
	mouthWideThresholdPx   = 60.0
	eyeOpenThreshold       = 0.25
	eyeClosedThreshold     = 0.2
	eyebrowRaisedThreshold = 20.0
)

// Branch confidences. Heuristic scores attached per branch, not computed
// from feature magnitude.
const (
	confSurprised          = 0.8
	confLaughing           = 0.7
	confHappy              = 0.85
	confAngry              = 0.7
	confSurprisedSecondary = 0.6
	confSleepy             = 0.6
	confNeutral            = 0.5
)

// Classifier converts a landmark set into an ExpressionResult.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify never fails: malformed input (wrong point count, degenerate
// geometry that would divide by zero) yields the neutral fallback with the
// Degraded flag set instead of an error.
func (c *Classifier) Classify(landmarks domain.LandmarkSet) domain.ExpressionResult {
	if !landmarks.Valid() {
		return degradedNeutral()
	}

	features, ok := c.Features(landmarks)
	if !ok {
		return degradedNeutral()
	}

	result := classify(features)
	result.Features = features
	return result
}

// Features computes the four geometric features from the landmark regions.
// ok is false when the geometry is degenerate (zero-span mouth or eye).
func (c *Classifier) Features(landmarks domain.LandmarkSet) (domain.FeatureVector, bool) {
	mouth := landmarks.Mouth()

	// Inner-lip triples; corner-to-corner span normalizes for face size
	topLip := domain.Centroid(mouth[13:16])
	bottomLip := domain.Centroid(mouth[17:20])
	mouthWidth := mouth[0].Dist(mouth[6])
	if mouthWidth == 0 {
		return domain.FeatureVector{}, false
	}
	mouthOpenness := math.Abs(topLip.Y-bottomLip.Y) / mouthWidth

	leftEAR, okL := eyeAspectRatio(landmarks.LeftEye())
	rightEAR, okR := eyeAspectRatio(landmarks.RightEye())
	if !okL || !okR {
		return domain.FeatureVector{}, false
	}
	eyeOpenness := (leftEAR + rightEAR) / 2

	brows := landmarks.Eyebrows()
	leftBrow := domain.Centroid(brows[0:3])
	rightBrow := domain.Centroid(brows[5:8])
	leftEye := domain.Centroid(landmarks.LeftEye())
	rightEye := domain.Centroid(landmarks.RightEye())
	eyebrowElevation := (math.Abs(leftBrow.Y-leftEye.Y) + math.Abs(rightBrow.Y-rightEye.Y)) / 2

	return domain.FeatureVector{
		MouthOpenness:    mouthOpenness,
		MouthWidth:       mouthWidth,
		EyeOpenness:      eyeOpenness,
		EyebrowElevation: eyebrowElevation,
	}, true
}

// eyeAspectRatio is the classic EAR: vertical lid spans over twice the
// horizontal corner span.
func eyeAspectRatio(eye []domain.Point) (float64, bool) {
	a := eye[1].Dist(eye[5])
	b := eye[2].Dist(eye[4])
	c := eye[0].Dist(eye[3])
	if c == 0 {
		return 0, false
	}
	return (a + b) / (2 * c), true
}

// classify walks the rule tree. Branch order is load-bearing.
func classify(f domain.FeatureVector) domain.ExpressionResult {
	switch {
	case f.MouthOpenness > mouthOpenThreshold && f.EyeOpenness > eyeOpenThreshold:
		return domain.ExpressionResult{
			Primary:             domain.ExpressionSurprised,
			Confidence:          confSurprised,
			Secondary:           domain.ExpressionLaughing,
			SecondaryConfidence: confLaughing,
		}
	case f.MouthOpenness > mouthOpenThreshold:
		return domain.ExpressionResult{
			Primary:    domain.ExpressionLaughing,
			Confidence: confLaughing,
		}
	case f.MouthWidth > mouthWideThresholdPx:
		return domain.ExpressionResult{
			Primary:    domain.ExpressionHappy,
			Confidence: confHappy,
		}
	case f.EyebrowElevation > eyebrowRaisedThreshold && f.EyeOpenness < eyeOpenThreshold:
		return domain.ExpressionResult{
			Primary:             domain.ExpressionAngry,
			Confidence:          confAngry,
			Secondary:           domain.ExpressionSurprised,
			SecondaryConfidence: confSurprisedSecondary,
		}
	case f.EyebrowElevation > eyebrowRaisedThreshold:
		return domain.ExpressionResult{
			Primary:    domain.ExpressionSurprised,
			Confidence: confSurprisedSecondary,
		}
	case f.EyeOpenness < eyeClosedThreshold:
		return domain.ExpressionResult{
			Primary:    domain.ExpressionSleepy,
			Confidence: confSleepy,
		}
	default:
		return domain.ExpressionResult{
			Primary:    domain.ExpressionNeutral,
			Confidence: confNeutral,
		}
	}
}

func degradedNeutral() domain.ExpressionResult {
	return domain.ExpressionResult{
		Primary:    domain.ExpressionNeutral,
		Confidence: confNeutral,
		Degraded:   true,
	}
}
