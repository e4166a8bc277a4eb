package domain

import "math"

// Point is a single facial landmark in image pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the euclidean distance to another point.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BoundingBox is the face area in the image, in pixels.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LandmarkCount is the number of points produced by the 68-point face model.
const LandmarkCount = 68

// Landmark index ranges of the 68-point model. Region accessors below are
// fixed-offset views into the full set, never separate allocations.
const (
	eyebrowStart  = 17
	eyebrowEnd    = 27
	noseStart     = 27
	noseEnd       = 36
	leftEyeStart  = 36
	leftEyeEnd    = 42
	rightEyeStart = 42
	rightEyeEnd   = 48
	mouthStart    = 48
	mouthEnd      = 68
)

// LandmarkSet is an ordered sequence of 68 facial landmarks.
type LandmarkSet []Point

// Valid reports whether the set has exactly the 68 points the model produces.
func (l LandmarkSet) Valid() bool {
	return len(l) == LandmarkCount
}

func (l LandmarkSet) Eyebrows() []Point { return l[eyebrowStart:eyebrowEnd] }
func (l LandmarkSet) Nose() []Point     { return l[noseStart:noseEnd] }
func (l LandmarkSet) LeftEye() []Point  { return l[leftEyeStart:leftEyeEnd] }
func (l LandmarkSet) RightEye() []Point { return l[rightEyeStart:rightEyeEnd] }
func (l LandmarkSet) Mouth() []Point    { return l[mouthStart:mouthEnd] }

// NoseTip returns the tip of the nose (point 30 in the 68-point model).
func (l LandmarkSet) NoseTip() Point { return l[30] }

// Centroid returns the mean position of a group of points.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, p := range points {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(points))
	return Point{X: sx / n, Y: sy / n}
}
