package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/provider/mock"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func testFace() *domain.FaceObservation {
	box := domain.BoundingBox{X: 20, Y: 20, Width: 60, Height: 60}
	return &domain.FaceObservation{
		BoundingBox: box,
		Landmarks:   mock.Landmarks(box),
		Expression:  domain.ExpressionResult{Primary: domain.ExpressionNeutral},
		Confidence:  0.9,
	}
}

func testAsset() *domain.EmojiAsset {
	return &domain.EmojiAsset{
		ID:         "test_overlay",
		Expression: domain.ExpressionNeutral,
		Placement:  "face",
	}
}

func testCompositor() *Compositor {
	return NewCompositor(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestComposite_OpacityZeroLeavesDestinationUnchanged(t *testing.T) {
	dst := solid(100, 100, color.RGBA{R: 0, G: 0, B: 255, A: 255})
	before := make([]uint8, len(dst.Pix))
	copy(before, dst.Pix)

	cfg := DefaultConfig()
	cfg.Opacity = 0

	err := testCompositor().Composite(dst, testFace(), testAsset(), solid(32, 32, color.RGBA{R: 255, A: 255}), cfg)
	require.NoError(t, err)

	assert.Equal(t, before, dst.Pix)
}

func TestComposite_FullOpacityReplacesOverlayRegion(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	dst := solid(100, 100, blue)

	err := testCompositor().Composite(dst, testFace(), testAsset(), solid(32, 32, red), DefaultConfig())
	require.NoError(t, err)

	// The face box is 60px wide centered at (50,50), so the overlay spans
	// [20,80) on both axes
	assert.Equal(t, red, dst.RGBAAt(50, 50))
	assert.Equal(t, red, dst.RGBAAt(21, 21))
	assert.Equal(t, red, dst.RGBAAt(79, 79))
	assert.Equal(t, blue, dst.RGBAAt(5, 5))
	assert.Equal(t, blue, dst.RGBAAt(81, 50))
}

func TestComposite_HalfOpacityBlends(t *testing.T) {
	dst := solid(100, 100, color.RGBA{A: 255})
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	cfg := DefaultConfig()
	cfg.Opacity = 0.5

	err := testCompositor().Composite(dst, testFace(), testAsset(), solid(32, 32, white), cfg)
	require.NoError(t, err)

	got := dst.RGBAAt(50, 50)
	assert.InDelta(t, 128, int(got.R), 1)
	assert.InDelta(t, 128, int(got.G), 1)
	assert.InDelta(t, 128, int(got.B), 1)
}

func TestComposite_TransparentSourcePixelsSkipped(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	dst := solid(100, 100, blue)

	err := testCompositor().Composite(dst, testFace(), testAsset(), solid(32, 32, color.RGBA{}), DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, blue, dst.RGBAAt(50, 50))
}

func TestComposite_ClipsOffCanvasPlacement(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	dst := solid(100, 100, blue)

	box := domain.BoundingBox{X: -30, Y: -30, Width: 60, Height: 60}
	face := &domain.FaceObservation{BoundingBox: box, Landmarks: mock.Landmarks(box)}

	err := testCompositor().Composite(dst, face, testAsset(), solid(32, 32, red), DefaultConfig())
	require.NoError(t, err)

	// Overlay spans [-30,30); only the on-canvas quadrant changes
	assert.Equal(t, red, dst.RGBAAt(0, 0))
	assert.Equal(t, red, dst.RGBAAt(29, 29))
	assert.Equal(t, blue, dst.RGBAAt(31, 31))
}

func TestComposite_AppliesOffsets(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	dst := solid(200, 200, blue)

	cfg := DefaultConfig()
	cfg.OffsetX = 1.0 // one face width to the right

	err := testCompositor().Composite(dst, testFace(), testAsset(), solid(32, 32, red), cfg)
	require.NoError(t, err)

	assert.Equal(t, blue, dst.RGBAAt(50, 50))
	assert.Equal(t, red, dst.RGBAAt(110, 50))
}

func TestComposite_UnknownPlacement(t *testing.T) {
	asset := testAsset()
	asset.Placement = "forehead"

	err := testCompositor().Composite(solid(100, 100, color.RGBA{A: 255}), testFace(), asset, solid(32, 32, color.RGBA{A: 255}), DefaultConfig())
	assert.Error(t, err)
}

func TestComposite_NonPositiveSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Size = 0

	err := testCompositor().Composite(solid(100, 100, color.RGBA{A: 255}), testFace(), testAsset(), solid(32, 32, color.RGBA{A: 255}), cfg)
	assert.Error(t, err)
}

func TestResize(t *testing.T) {
	red := color.RGBA{R: 200, G: 40, B: 10, A: 255}
	out := Resize(solid(64, 64, red), 17, 31)

	assert.Equal(t, 17, out.Bounds().Dx())
	assert.Equal(t, 31, out.Bounds().Dy())

	// Uniform input stays uniform under bilinear sampling
	for _, pt := range []image.Point{{0, 0}, {8, 15}, {16, 30}} {
		assert.Equal(t, red, out.RGBAAt(pt.X, pt.Y))
	}
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		in   string
		want Placement
	}{
		{"face", PlacementFace},
		{"head", PlacementHead},
		{"ears", PlacementHead},
		{"crown", PlacementHeadTop},
		{"hat", PlacementHeadTop},
		{"glasses", PlacementEyes},
		{"mustache", PlacementNose},
		{"beard", PlacementMouth},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlacement(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePlacement("forehead")
	assert.Error(t, err)
}

func TestAnchor_Placements(t *testing.T) {
	face := testFace()
	box := face.BoundingBox
	center := domain.Point{X: box.X + box.Width/2, Y: box.Y + box.Height/2}

	leftEye := domain.Centroid(face.Landmarks.LeftEye())
	rightEye := domain.Centroid(face.Landmarks.RightEye())

	assert.Equal(t, center, PlacementFace.Anchor(face))

	eyes := PlacementEyes.Anchor(face)
	assert.InDelta(t, (leftEye.X+rightEye.X)/2, eyes.X, 0.001)
	assert.InDelta(t, (leftEye.Y+rightEye.Y)/2, eyes.Y, 0.001)

	head := PlacementHead.Anchor(face)
	headTop := PlacementHeadTop.Anchor(face)
	assert.Less(t, head.Y, box.Y)
	assert.Less(t, headTop.Y, head.Y, "crown sits higher than ears")
	assert.Equal(t, center.X, head.X)

	nose := PlacementNose.Anchor(face)
	assert.Greater(t, nose.Y, face.Landmarks.NoseTip().Y)

	mouth := PlacementMouth.Anchor(face)
	assert.Greater(t, mouth.Y, domain.Centroid(face.Landmarks.Mouth()).Y)
	assert.Greater(t, mouth.Y, nose.Y)
}

func TestAnchor_WithoutLandmarksFallsBackToCenter(t *testing.T) {
	face := &domain.FaceObservation{
		BoundingBox: domain.BoundingBox{X: 10, Y: 10, Width: 40, Height: 40},
	}
	center := domain.Point{X: 30, Y: 30}

	for _, p := range []Placement{PlacementFace, PlacementHead, PlacementEyes, PlacementNose, PlacementMouth} {
		assert.Equal(t, center, p.Anchor(face))
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	src := solid(40, 30, color.RGBA{R: 10, G: 200, B: 90, A: 255})

	jpegBytes, err := EncodeJPEG(src)
	require.NoError(t, err)
	decoded, err := Decode(jpegBytes)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), decoded.Bounds())

	pngBytes, err := EncodePNG(src)
	require.NoError(t, err)
	decoded, err = Decode(pngBytes)
	require.NoError(t, err)
	assert.Equal(t, src.RGBAAt(5, 5), decoded.RGBAAt(5, 5))
}

func TestCodec_InvalidBytes(t *testing.T) {
	_, err := Decode([]byte("not an image"))
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}
