package mock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/provider"
)

const minImageSize = 1000

// Provider implements provider.LandmarkProvider for tests and development.
// It synthesizes a single deterministic face from the image content, so the
// same payload always produces the same landmarks.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

// Detect returns one synthetic face centered in the image. Payloads that are
// not decodable raster data are still accepted (above a minimum size) and get
// a face laid out on a nominal 640x480 canvas.
func (p *Provider) Detect(ctx context.Context, img []byte) ([]provider.Detection, error) {
	if len(img) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	width, height := 640, 480
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(img)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	side := 0.5 * math.Min(float64(width), float64(height))
	box := domain.BoundingBox{
		X:      (float64(width) - side) / 2,
		Y:      (float64(height) - side) / 2,
		Width:  side,
		Height: side,
	}

	landmarks := Landmarks(box)
	jitter(landmarks, img)

	return []provider.Detection{
		{
			BoundingBox: box,
			Landmarks:   landmarks,
			Confidence:  0.95,
		},
	}, nil
}

// Landmarks lays out a canonical 68-point face inside the given box:
// open eyes, closed mouth, level eyebrows.
func Landmarks(box domain.BoundingBox) domain.LandmarkSet {
	pts := make(domain.LandmarkSet, 0, domain.LandmarkCount)

	at := func(x, y float64) domain.Point {
		return domain.Point{X: box.X + x*box.Width, Y: box.Y + y*box.Height}
	}

	// Jaw line (0-16): lower half-ellipse from left temple to right temple
	for i := 0; i <= 16; i++ {
		theta := math.Pi + math.Pi*float64(i)/16
		pts = append(pts, at(0.5+0.5*math.Cos(theta), 0.5-0.5*math.Sin(theta)))
	}

	// Eyebrows (17-26)
	for i := 0; i < 5; i++ {
		t := float64(i) / 4
		pts = append(pts, at(0.17+0.25*t, 0.22-0.03*math.Sin(math.Pi*t)))
	}
	for i := 0; i < 5; i++ {
		t := float64(i) / 4
		pts = append(pts, at(0.58+0.25*t, 0.22-0.03*math.Sin(math.Pi*t)))
	}

	// Nose bridge (27-30) and base (31-35)
	for i := 0; i < 4; i++ {
		pts = append(pts, at(0.5, 0.30+0.25*float64(i)/3))
	}
	for i := 0; i < 5; i++ {
		pts = append(pts, at(0.40+0.20*float64(i)/4, 0.60))
	}

	// Eyes (36-41, 42-47)
	pts = append(pts, eye(at, 0.30, 0.33)...)
	pts = append(pts, eye(at, 0.70, 0.33)...)

	// Mouth: outer ring (48-59), inner ring (60-67)
	for i := 0; i < 12; i++ {
		theta := math.Pi + math.Pi*float64(i)/6
		pts = append(pts, at(0.5+0.15*math.Cos(theta), 0.70+0.05*math.Sin(theta)))
	}
	for i := 0; i < 8; i++ {
		theta := math.Pi + math.Pi*float64(i)/4
		pts = append(pts, at(0.5+0.09*math.Cos(theta), 0.70+0.02*math.Sin(theta)))
	}

	return pts
}

// eye returns the 6 lid points of one eye with an aspect ratio around 0.3.
func eye(at func(x, y float64) domain.Point, cx, cy float64) []domain.Point {
	const rx, ry = 0.07, 0.021
	return []domain.Point{
		at(cx-rx, cy),
		at(cx-rx/2, cy-ry),
		at(cx+rx/2, cy-ry),
		at(cx+rx, cy),
		at(cx+rx/2, cy+ry),
		at(cx-rx/2, cy+ry),
	}
}

// jitter shifts each landmark by at most one pixel, derived from the image
// hash so detection stays deterministic per payload.
func jitter(pts domain.LandmarkSet, img []byte) {
	hash := sha256.Sum256(img)
	for i := range pts {
		b := hash[i%len(hash)]
		pts[i].X += float64(b%3) - 1
		pts[i].Y += float64((b>>2)%3) - 1
	}
}

var _ provider.LandmarkProvider = (*Provider)(nil)
