package overlay

import (
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/facemoji/facemoji/internal/domain"
)

const (
	assetFetchTimeout = 5 * time.Second
	maxAssetBytes     = 2 << 20
	placeholderSide   = 128
)

// AssetSource resolves an emoji asset to its raster.
type AssetSource interface {
	Raster(ctx context.Context, asset *domain.EmojiAsset) (*image.RGBA, error)
}

// AssetCache fetches asset rasters over HTTP and memoizes them by asset id.
// Assets without a URL, and assets whose fetch fails, fall back to a
// generated placeholder so a broken CDN never fails a composite.
type AssetCache struct {
	client *http.Client
	logger *slog.Logger

	mu      sync.RWMutex
	rasters map[string]*image.RGBA
}

func NewAssetCache(logger *slog.Logger) *AssetCache {
	return &AssetCache{
		client:  &http.Client{Timeout: assetFetchTimeout},
		logger:  logger,
		rasters: make(map[string]*image.RGBA),
	}
}

func (c *AssetCache) Raster(ctx context.Context, asset *domain.EmojiAsset) (*image.RGBA, error) {
	if asset == nil {
		return nil, fmt.Errorf("asset raster: nil asset")
	}

	c.mu.RLock()
	cached, ok := c.rasters[asset.ID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	raster := c.fetch(ctx, asset)
	if raster == nil {
		raster = Placeholder(asset)
	}

	c.mu.Lock()
	c.rasters[asset.ID] = raster
	c.mu.Unlock()

	return raster, nil
}

func (c *AssetCache) fetch(ctx context.Context, asset *domain.EmojiAsset) *image.RGBA {
	if asset.URL == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.URL, nil)
	if err != nil {
		c.logger.Warn("asset fetch request failed", "asset_id", asset.ID, "error", err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("asset fetch failed", "asset_id", asset.ID, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("asset fetch non-200", "asset_id", asset.ID, "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		c.logger.Warn("asset read failed", "asset_id", asset.ID, "error", err)
		return nil
	}

	raster, err := Decode(data)
	if err != nil {
		c.logger.Warn("asset decode failed", "asset_id", asset.ID, "error", err)
		return nil
	}
	return raster
}

// Placeholder renders a flat circle whose color is derived from the asset id,
// with transparent corners so it still composites like real emoji art.
func Placeholder(asset *domain.EmojiAsset) *image.RGBA {
	sum := sha256.Sum256([]byte(asset.ID))
	fill := color.RGBA{R: sum[0], G: sum[1], B: sum[2], A: 255}

	img := image.NewRGBA(image.Rect(0, 0, placeholderSide, placeholderSide))
	r := placeholderSide / 2
	for y := 0; y < placeholderSide; y++ {
		for x := 0; x < placeholderSide; x++ {
			dx := x - r
			dy := y - r
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return img
}
