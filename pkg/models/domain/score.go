package domain

// ScoreWeights tunes the opportunity-score heuristic for missing keywords.
// The score is monotonically increasing in search volume and decreasing in
// the competitor's position and the keyword difficulty.
type ScoreWeights struct {
	// VolumeWeight multiplies the keyword's search volume.
	VolumeWeight float64 `mapstructure:"volume_weight" validate:"gt=0"`
	// DifficultyWeight scales the difficulty proxy added to the denominator.
	DifficultyWeight float64 `mapstructure:"difficulty_weight" validate:"gte=0"`
	// MissingPositionPenalty stands in for the competitor's position when the
	// provider returned none. It must be large, never zero.
	MissingPositionPenalty int `mapstructure:"missing_position_penalty" validate:"gt=0"`
}

// DefaultScoreWeights returns the weights used when no configuration
// overrides them.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		VolumeWeight:           1.0,
		DifficultyWeight:       0.5,
		MissingPositionPenalty: 100,
	}
}
