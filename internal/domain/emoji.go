package domain

// EmojiAsset is one overlay asset from the catalog. The catalog is loaded
// once at startup and never mutated, so assets can be shared freely.
type EmojiAsset struct {
	ID                  string            `json:"id" yaml:"id"`
	Emoji               string            `json:"emoji" yaml:"emoji"`
	Expression          Expression        `json:"expression" yaml:"expression"`
	ConfidenceThreshold float64           `json:"confidence_threshold" yaml:"confidence_threshold"`
	URL                 string            `json:"url" yaml:"url"`
	Placement           string            `json:"placement" yaml:"placement"`
	AnchorPoints        map[string][2]int `json:"anchor_points" yaml:"anchor_points"`
	Width               int               `json:"width" yaml:"width"`
	Height              int               `json:"height" yaml:"height"`
}

// ScoredEmoji pairs an asset with its recommendation score.
type ScoredEmoji struct {
	Asset *EmojiAsset `json:"asset"`
	Score float64     `json:"score"`
}

// Recommendation is the ranked output of the recommendation engine.
// Degraded marks the hardcoded neutral fallback returned when the engine
// could not score candidates; callers can distinguish it from a genuine
// neutral match without relying on error control flow.
type Recommendation struct {
	Primary           ScoredEmoji   `json:"primary"`
	Alternatives      []ScoredEmoji `json:"alternatives"`
	ExpressionMatched Expression    `json:"expression_matched"`
	Confidence        float64       `json:"confidence"`
	Degraded          bool          `json:"degraded,omitempty"`
}
