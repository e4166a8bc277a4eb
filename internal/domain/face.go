package domain

// Expression is a coarse categorical label derived from landmark geometry.
type Expression string

const (
	ExpressionHappy     Expression = "happy"
	ExpressionSurprised Expression = "surprised"
	ExpressionLaughing  Expression = "laughing"
	ExpressionAngry     Expression = "angry"
	ExpressionSleepy    Expression = "sleepy"
	ExpressionNeutral   Expression = "neutral"
)

// Expressions lists every label the classifier can produce.
var Expressions = []Expression{
	ExpressionHappy,
	ExpressionSurprised,
	ExpressionLaughing,
	ExpressionAngry,
	ExpressionSleepy,
	ExpressionNeutral,
}

// Valid reports whether e is a known expression label.
func (e Expression) Valid() bool {
	for _, known := range Expressions {
		if e == known {
			return true
		}
	}
	return false
}

// FeatureVector holds the raw geometric features the classifier derives
// from a landmark set. MouthOpenness and EyeOpenness are ratios;
// MouthWidth and EyebrowElevation are in pixels.
type FeatureVector struct {
	MouthOpenness    float64 `json:"mouth_openness"`
	MouthWidth       float64 `json:"mouth_width"`
	EyeOpenness      float64 `json:"eye_openness"`
	EyebrowElevation float64 `json:"eyebrow_elevation"`
}

// ExpressionResult is the classifier output for one face. Confidence values
// are heuristic branch scores, not calibrated probabilities; only their
// ordering is meaningful. Degraded marks a neutral fallback produced from
// malformed or degenerate input rather than a genuine classification.
type ExpressionResult struct {
	Primary             Expression    `json:"primary"`
	Confidence          float64       `json:"confidence"`
	Secondary           Expression    `json:"secondary,omitempty"`
	SecondaryConfidence float64       `json:"secondary_confidence,omitempty"`
	Features            FeatureVector `json:"features"`
	Degraded            bool          `json:"degraded,omitempty"`
}

// FaceObservation is one detected face. It is owned exclusively by the
// pipeline invocation that produced it and is never retained across frames.
type FaceObservation struct {
	BoundingBox BoundingBox      `json:"bounding_box"`
	Landmarks   LandmarkSet      `json:"landmarks"`
	Expression  ExpressionResult `json:"expression"`
	Confidence  float64          `json:"confidence"`
}
