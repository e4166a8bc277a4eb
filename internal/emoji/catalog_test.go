package emoji

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facemoji/facemoji/internal/domain"
)

func TestLoad_EmbeddedDefault(t *testing.T) {
	catalog, err := Load("")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, catalog.Len(), 7)

	happy, ok := catalog.ByID("happy_001")
	require.True(t, ok)
	assert.Equal(t, domain.ExpressionHappy, happy.Expression)
	assert.Equal(t, "😀", happy.Emoji)
	assert.InDelta(t, 0.7, happy.ConfidenceThreshold, 0.001)
	assert.Contains(t, happy.AnchorPoints, "left_eye")

	// Every expression the classifier can produce has at least one entry
	for _, expr := range domain.Expressions {
		assert.NotEmpty(t, catalog.ByExpression(expr), "no entry for %s", expr)
	}

	assert.Equal(t, "neutral_001", catalog.DefaultNeutral().ID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/catalog.yaml")
	assert.Error(t, err)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "empty catalog",
			yaml: "emojis: []",
		},
		{
			name: "missing id",
			yaml: `
emojis:
  - emoji: "😐"
    expression: neutral
    placement: face
`,
		},
		{
			name: "duplicate id",
			yaml: `
emojis:
  - id: a
    expression: neutral
    placement: face
  - id: a
    expression: neutral
    placement: face
`,
		},
		{
			name: "threshold out of range",
			yaml: `
emojis:
  - id: a
    expression: neutral
    confidence_threshold: 1.5
    placement: face
`,
		},
		{
			name: "unknown placement",
			yaml: `
emojis:
  - id: a
    expression: neutral
    placement: forehead
`,
		},
		{
			name: "no neutral entry",
			yaml: `
emojis:
  - id: a
    expression: happy
    placement: face
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
		})
	}
}

func TestCatalog_InsertionOrderPreserved(t *testing.T) {
	catalog, err := Parse([]byte(`
emojis:
  - id: first
    expression: neutral
    placement: face
  - id: second
    expression: neutral
    placement: face
  - id: third
    expression: neutral
    placement: face
`))
	require.NoError(t, err)

	var ids []string
	for _, asset := range catalog.ByExpression(domain.ExpressionNeutral) {
		ids = append(ids, asset.ID)
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids)
}
