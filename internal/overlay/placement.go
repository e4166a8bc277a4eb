// Package overlay computes emoji placement from facial landmarks and
// alpha-blends assets onto source images.
package overlay

import (
	"fmt"

	"github.com/facemoji/facemoji/internal/domain"
)

// Placement is the anchoring strategy for an overlay category. Different
// overlay types anchor to different facial structures, so placement is a
// closed enum rather than per-asset free-form coordinates.
type Placement int

const (
	// PlacementFace centers the overlay on the face bounding box
	PlacementFace Placement = iota
	// PlacementHead floats the overlay above the head (ears, horns)
	PlacementHead
	// PlacementHeadTop floats higher above the head (crown, hat)
	PlacementHeadTop
	// PlacementEyes centers on the midpoint between the eyes (glasses)
	PlacementEyes
	// PlacementNose hangs below the nose tip (mustache)
	PlacementNose
	// PlacementMouth hangs below the mouth (beard)
	PlacementMouth
)

// Upward offsets for head-mounted overlays, as a fraction of the inter-eye
// distance. The crown multiplier is deliberately larger than the ears one;
// a visual-design choice, not a physical constraint.
const (
	headOffsetFactor    = 0.5
	headTopOffsetFactor = 1.0
)

// Downward offsets for nose/mouth overlays, as a fraction of face height.
const (
	noseDropFactor  = 0.10
	mouthDropFactor = 0.20
)

var placementNames = map[Placement]string{
	PlacementFace:    "face",
	PlacementHead:    "head",
	PlacementHeadTop: "head_top",
	PlacementEyes:    "eyes",
	PlacementNose:    "nose",
	PlacementMouth:   "mouth",
}

// placementAliases maps catalog category names onto strategies.
var placementAliases = map[string]Placement{
	"face":     PlacementFace,
	"head":     PlacementHead,
	"ears":     PlacementHead,
	"horns":    PlacementHead,
	"head_top": PlacementHeadTop,
	"crown":    PlacementHeadTop,
	"hat":      PlacementHeadTop,
	"eyes":     PlacementEyes,
	"glasses":  PlacementEyes,
	"nose":     PlacementNose,
	"mustache": PlacementNose,
	"mouth":    PlacementMouth,
	"beard":    PlacementMouth,
}

func (p Placement) String() string {
	if name, ok := placementNames[p]; ok {
		return name
	}
	return fmt.Sprintf("placement(%d)", int(p))
}

// ParsePlacement resolves a catalog placement string to a strategy.
func ParsePlacement(s string) (Placement, error) {
	if p, ok := placementAliases[s]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown placement %q", s)
}

// Anchor computes the overlay center point for a face, before user offsets.
func (p Placement) Anchor(face *domain.FaceObservation) domain.Point {
	box := face.BoundingBox
	center := domain.Point{X: box.X + box.Width/2, Y: box.Y + box.Height/2}

	if !face.Landmarks.Valid() {
		// Without landmarks only box-relative strategies are meaningful
		return center
	}

	leftEye := domain.Centroid(face.Landmarks.LeftEye())
	rightEye := domain.Centroid(face.Landmarks.RightEye())
	interEye := leftEye.Dist(rightEye)

	switch p {
	case PlacementHead:
		return domain.Point{X: center.X, Y: box.Y - headOffsetFactor*interEye}
	case PlacementHeadTop:
		return domain.Point{X: center.X, Y: box.Y - headTopOffsetFactor*interEye}
	case PlacementEyes:
		return domain.Point{
			X: (leftEye.X + rightEye.X) / 2,
			Y: (leftEye.Y + rightEye.Y) / 2,
		}
	case PlacementNose:
		tip := face.Landmarks.NoseTip()
		return domain.Point{X: tip.X, Y: tip.Y + noseDropFactor*box.Height}
	case PlacementMouth:
		mouth := domain.Centroid(face.Landmarks.Mouth())
		return domain.Point{X: mouth.X, Y: mouth.Y + mouthDropFactor*box.Height}
	default:
		return center
	}
}
