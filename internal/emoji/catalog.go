// Package emoji holds the overlay asset catalog and the recommendation
// engine that ranks catalog entries against a classified expression.
package emoji

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/facemoji/facemoji/internal/domain"
	"github.com/facemoji/facemoji/internal/overlay"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

type catalogFile struct {
	Emojis []domain.EmojiAsset `yaml:"emojis"`
}

// Catalog is the process-wide read-only emoji registry. It is initialized
// once at startup and never mutated afterwards, so lookups need no locking.
type Catalog struct {
	assets       []domain.EmojiAsset
	byID         map[string]*domain.EmojiAsset
	byExpression map[domain.Expression][]*domain.EmojiAsset
}

// Load reads the catalog from path, or the embedded default catalog when
// path is empty. The catalog must contain at least one neutral entry.
func Load(path string) (*Catalog, error) {
	raw := defaultCatalogYAML
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
	}
	return Parse(raw)
}

// Parse builds and validates a catalog from YAML.
func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, domain.ErrInvalidCatalog.WithError(err)
	}
	if len(file.Emojis) == 0 {
		return nil, domain.ErrInvalidCatalog.WithError(fmt.Errorf("catalog has no entries"))
	}

	c := &Catalog{
		assets:       file.Emojis,
		byID:         make(map[string]*domain.EmojiAsset, len(file.Emojis)),
		byExpression: make(map[domain.Expression][]*domain.EmojiAsset),
	}

	for i := range c.assets {
		asset := &c.assets[i]

		if asset.ID == "" {
			return nil, domain.ErrInvalidCatalog.WithError(fmt.Errorf("entry %d has no id", i))
		}
		if _, dup := c.byID[asset.ID]; dup {
			return nil, domain.ErrInvalidCatalog.WithError(fmt.Errorf("duplicate id %q", asset.ID))
		}
		if asset.ConfidenceThreshold < 0 || asset.ConfidenceThreshold > 1 {
			return nil, domain.ErrInvalidCatalog.WithError(fmt.Errorf("%s: threshold %v out of range", asset.ID, asset.ConfidenceThreshold))
		}
		if _, err := overlay.ParsePlacement(asset.Placement); err != nil {
			return nil, domain.ErrInvalidCatalog.WithError(fmt.Errorf("%s: %w", asset.ID, err))
		}

		c.byID[asset.ID] = asset
		c.byExpression[asset.Expression] = append(c.byExpression[asset.Expression], asset)
	}

	if len(c.byExpression[domain.ExpressionNeutral]) == 0 {
		return nil, domain.ErrInvalidCatalog.WithError(fmt.Errorf("catalog has no neutral entry"))
	}

	return c, nil
}

// ByID looks up an asset by its catalog id.
func (c *Catalog) ByID(id string) (*domain.EmojiAsset, bool) {
	asset, ok := c.byID[id]
	return asset, ok
}

// ByExpression returns the assets tagged with the expression, in catalog
// insertion order.
func (c *Catalog) ByExpression(e domain.Expression) []*domain.EmojiAsset {
	return c.byExpression[e]
}

// All returns every asset in catalog insertion order.
func (c *Catalog) All() []*domain.EmojiAsset {
	out := make([]*domain.EmojiAsset, len(c.assets))
	for i := range c.assets {
		out[i] = &c.assets[i]
	}
	return out
}

// DefaultNeutral returns the first neutral entry; validation guarantees one.
func (c *Catalog) DefaultNeutral() *domain.EmojiAsset {
	return c.byExpression[domain.ExpressionNeutral][0]
}

func (c *Catalog) Len() int {
	return len(c.assets)
}
