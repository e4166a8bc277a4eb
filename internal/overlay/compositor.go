package overlay

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/facemoji/facemoji/internal/domain"
)

// Config are the user-tunable compositing parameters. Offsets are fractions
// of the face width/height, applied to the anchor as pixel deltas.
type Config struct {
	Size    float64 `json:"size"`
	Opacity float64 `json:"opacity"`
	OffsetX float64 `json:"horizontal_offset"`
	OffsetY float64 `json:"vertical_offset"`
}

// DefaultConfig covers the face at full opacity with no offset.
func DefaultConfig() Config {
	return Config{Size: 1.0, Opacity: 1.0}
}

// Compositor alpha-blends emoji assets onto images.
type Compositor struct {
	logger *slog.Logger
}

func NewCompositor(logger *slog.Logger) *Compositor {
	return &Compositor{logger: logger}
}

// Composite draws the asset raster over dst in place. The overlay is scaled
// to a square of (face width × cfg.Size), centered on the placement anchor,
// shifted by the configured offsets, and clipped to both the destination and
// the overlay bounds, so partially off-canvas placement is not an error.
func (c *Compositor) Composite(dst *image.RGBA, face *domain.FaceObservation, asset *domain.EmojiAsset, overlayImg image.Image, cfg Config) error {
	if dst == nil || face == nil || asset == nil || overlayImg == nil {
		return fmt.Errorf("composite: nil input")
	}

	placement, err := ParsePlacement(asset.Placement)
	if err != nil {
		return fmt.Errorf("composite %s: %w", asset.ID, err)
	}

	side := int(math.Round(face.BoundingBox.Width * cfg.Size))
	if side <= 0 {
		return fmt.Errorf("composite %s: non-positive overlay size", asset.ID)
	}

	scaled := Resize(overlayImg, side, side)

	anchor := placement.Anchor(face)
	x0 := int(math.Round(anchor.X + cfg.OffsetX*face.BoundingBox.Width - float64(side)/2))
	y0 := int(math.Round(anchor.Y + cfg.OffsetY*face.BoundingBox.Height - float64(side)/2))

	blend(dst, scaled, image.Pt(x0, y0), cfg.Opacity)
	return nil
}

// blend alpha-composites src over dst with its top-left corner at origin.
// Per pixel: out = a*src + (1-a)*dst with a = srcAlpha*opacity; src carries
// premultiplied channels, so its color term is scaled by opacity only.
func blend(dst *image.RGBA, src *image.RGBA, origin image.Point, opacity float64) {
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}

	target := src.Bounds().Add(origin).Intersect(dst.Bounds())
	if target.Empty() {
		return
	}

	for y := target.Min.Y; y < target.Max.Y; y++ {
		for x := target.Min.X; x < target.Max.X; x++ {
			sp := src.PixOffset(x-origin.X, y-origin.Y)
			dp := dst.PixOffset(x, y)

			a := float64(src.Pix[sp+3]) / 255 * opacity
			if a == 0 {
				continue
			}

			for ch := 0; ch < 3; ch++ {
				s := float64(src.Pix[sp+ch])
				d := float64(dst.Pix[dp+ch])
				dst.Pix[dp+ch] = uint8(math.Round(s*opacity + (1-a)*d))
			}
		}
	}
}

// Resize scales src to w×h with bilinear sampling.
func Resize(src image.Image, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	bounds := src.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return out
	}

	for y := 0; y < h; y++ {
		fy := (float64(y) + 0.5) * float64(srcH) / float64(h)
		y0 := clamp(int(fy-0.5), 0, srcH-1)
		y1 := clamp(y0+1, 0, srcH-1)
		wy := fy - 0.5 - float64(y0)
		if wy < 0 {
			wy = 0
		}

		for x := 0; x < w; x++ {
			fx := (float64(x) + 0.5) * float64(srcW) / float64(w)
			x0 := clamp(int(fx-0.5), 0, srcW-1)
			x1 := clamp(x0+1, 0, srcW-1)
			wx := fx - 0.5 - float64(x0)
			if wx < 0 {
				wx = 0
			}

			r00, g00, b00, a00 := rgba8(src, bounds.Min.X+x0, bounds.Min.Y+y0)
			r10, g10, b10, a10 := rgba8(src, bounds.Min.X+x1, bounds.Min.Y+y0)
			r01, g01, b01, a01 := rgba8(src, bounds.Min.X+x0, bounds.Min.Y+y1)
			r11, g11, b11, a11 := rgba8(src, bounds.Min.X+x1, bounds.Min.Y+y1)

			p := out.PixOffset(x, y)
			out.Pix[p+0] = bilerp(r00, r10, r01, r11, wx, wy)
			out.Pix[p+1] = bilerp(g00, g10, g01, g11, wx, wy)
			out.Pix[p+2] = bilerp(b00, b10, b01, b11, wx, wy)
			out.Pix[p+3] = bilerp(a00, a10, a01, a11, wx, wy)
		}
	}

	return out
}

func rgba8(img image.Image, x, y int) (r, g, b, a float64) {
	r16, g16, b16, a16 := img.At(x, y).RGBA()
	return float64(r16 >> 8), float64(g16 >> 8), float64(b16 >> 8), float64(a16 >> 8)
}

func bilerp(v00, v10, v01, v11, wx, wy float64) uint8 {
	top := v00 + (v10-v00)*wx
	bottom := v01 + (v11-v01)*wx
	return uint8(math.Round(top + (bottom-top)*wy))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
