package rekognition

import (
	"math"

	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/facemoji/facemoji/internal/domain"
)

// expandLandmarks projects Rekognition's named landmarks onto the 68-point
// topology. Points Rekognition does not report are interpolated between the
// ones it does; a landmark missing from the response entirely falls back to
// its canonical position inside the face box.
func expandLandmarks(landmarks []types.Landmark, box domain.BoundingBox, imgW, imgH float64) domain.LandmarkSet {
	known := make(map[types.LandmarkType]domain.Point, len(landmarks))
	for _, lm := range landmarks {
		if lm.X == nil || lm.Y == nil {
			continue
		}
		known[lm.Type] = domain.Point{
			X: float64(*lm.X) * imgW,
			Y: float64(*lm.Y) * imgH,
		}
	}

	// canonical position inside the box, used when Rekognition omits a point
	at := func(x, y float64) domain.Point {
		return domain.Point{X: box.X + x*box.Width, Y: box.Y + y*box.Height}
	}
	get := func(t types.LandmarkType, fx, fy float64) domain.Point {
		if p, ok := known[t]; ok {
			return p
		}
		return at(fx, fy)
	}

	pts := make(domain.LandmarkSet, 0, domain.LandmarkCount)

	// Jaw line (0-16) through the five jaw anchors
	jaw := []domain.Point{
		get(types.LandmarkTypeUpperJawlineLeft, 0.0, 0.45),
		get(types.LandmarkTypeMidJawlineLeft, 0.12, 0.80),
		get(types.LandmarkTypeChinBottom, 0.5, 1.0),
		get(types.LandmarkTypeMidJawlineRight, 0.88, 0.80),
		get(types.LandmarkTypeUpperJawlineRight, 1.0, 0.45),
	}
	pts = append(pts, samplePolyline(jaw, 17)...)

	// Eyebrows (17-26)
	leftBrow := []domain.Point{
		get(types.LandmarkTypeLeftEyeBrowLeft, 0.17, 0.24),
		get(types.LandmarkTypeLeftEyeBrowUp, 0.30, 0.19),
		get(types.LandmarkTypeLeftEyeBrowRight, 0.42, 0.24),
	}
	rightBrow := []domain.Point{
		get(types.LandmarkTypeRightEyeBrowLeft, 0.58, 0.24),
		get(types.LandmarkTypeRightEyeBrowUp, 0.70, 0.19),
		get(types.LandmarkTypeRightEyeBrowRight, 0.83, 0.24),
	}
	pts = append(pts, samplePolyline(leftBrow, 5)...)
	pts = append(pts, samplePolyline(rightBrow, 5)...)

	// Nose bridge (27-30) from between the eyes down to the tip
	eyeMid := midpoint(
		get(types.LandmarkTypeEyeLeft, 0.30, 0.33),
		get(types.LandmarkTypeEyeRight, 0.70, 0.33),
	)
	noseTip := get(types.LandmarkTypeNose, 0.5, 0.55)
	for i := 1; i <= 4; i++ {
		pts = append(pts, lerp(eyeMid, noseTip, float64(i)/4))
	}

	// Nose base (31-35)
	noseBase := []domain.Point{
		get(types.LandmarkTypeNoseLeft, 0.40, 0.60),
		noseTip,
		get(types.LandmarkTypeNoseRight, 0.60, 0.60),
	}
	pts = append(pts, samplePolyline(noseBase, 5)...)

	// Eyes (36-41, 42-47)
	pts = append(pts, eyePoints(
		get(types.LandmarkTypeLeftEyeLeft, 0.23, 0.33),
		get(types.LandmarkTypeLeftEyeRight, 0.37, 0.33),
		get(types.LandmarkTypeLeftEyeUp, 0.30, 0.31),
		get(types.LandmarkTypeLeftEyeDown, 0.30, 0.35),
	)...)
	pts = append(pts, eyePoints(
		get(types.LandmarkTypeRightEyeLeft, 0.63, 0.33),
		get(types.LandmarkTypeRightEyeRight, 0.77, 0.33),
		get(types.LandmarkTypeRightEyeUp, 0.70, 0.31),
		get(types.LandmarkTypeRightEyeDown, 0.70, 0.35),
	)...)

	// Mouth: outer ring (48-59) and inner ring (60-67) on ellipses through
	// the four reported mouth extremes
	mouthLeft := get(types.LandmarkTypeMouthLeft, 0.35, 0.70)
	mouthRight := get(types.LandmarkTypeMouthRight, 0.65, 0.70)
	mouthUp := get(types.LandmarkTypeMouthUp, 0.5, 0.66)
	mouthDown := get(types.LandmarkTypeMouthDown, 0.5, 0.74)

	cx := (mouthLeft.X + mouthRight.X) / 2
	cy := (mouthUp.Y + mouthDown.Y) / 2
	rx := (mouthRight.X - mouthLeft.X) / 2
	ry := (mouthDown.Y - mouthUp.Y) / 2

	for i := 0; i < 12; i++ {
		theta := math.Pi + math.Pi*float64(i)/6
		pts = append(pts, domain.Point{X: cx + rx*math.Cos(theta), Y: cy + ry*math.Sin(theta)})
	}
	for i := 0; i < 8; i++ {
		theta := math.Pi + math.Pi*float64(i)/4
		pts = append(pts, domain.Point{X: cx + 0.6*rx*math.Cos(theta), Y: cy + 0.4*ry*math.Sin(theta)})
	}

	return pts
}

// eyePoints builds the 6 lid points of one eye from its four extremes.
func eyePoints(left, right, up, down domain.Point) []domain.Point {
	cx := (left.X + right.X) / 2
	return []domain.Point{
		left,
		{X: (left.X + cx) / 2, Y: up.Y},
		{X: (cx + right.X) / 2, Y: up.Y},
		right,
		{X: (cx + right.X) / 2, Y: down.Y},
		{X: (left.X + cx) / 2, Y: down.Y},
	}
}

// samplePolyline returns n evenly spaced points along the polyline.
func samplePolyline(anchors []domain.Point, n int) []domain.Point {
	out := make([]domain.Point, 0, n)
	segments := len(anchors) - 1
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1) * float64(segments)
		seg := int(t)
		if seg >= segments {
			seg = segments - 1
		}
		out = append(out, lerp(anchors[seg], anchors[seg+1], t-float64(seg)))
	}
	return out
}

func lerp(a, b domain.Point, t float64) domain.Point {
	return domain.Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

func midpoint(a, b domain.Point) domain.Point {
	return lerp(a, b, 0.5)
}
