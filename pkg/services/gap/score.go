package gap

import "github.com/seo-tools/keyword-gap/pkg/models/domain"

// OpportunityScore ranks how valuable it would be to target a keyword the
// caller does not rank for. It grows with search volume and shrinks as the
// competitor's position or the difficulty proxy grows:
//
//	score = (volumeWeight * volume) / (theirPosition + difficultyWeight*difficulty + 1)
//
// The +1 keeps the denominator positive for position 0. A record without a
// position uses the configured penalty instead of zero, a record without a
// volume scores zero.
func OpportunityScore(rec domain.KeywordRecord, w domain.ScoreWeights) float64 {
	volume := 0
	if rec.SearchVolume != nil {
		volume = *rec.SearchVolume
	}
	if volume <= 0 {
		return 0
	}

	position := w.MissingPositionPenalty
	if rec.Position != nil && *rec.Position > 0 {
		position = *rec.Position
	}

	difficulty := 0
	if rec.Difficulty != nil {
		difficulty = *rec.Difficulty
	}

	denom := float64(position) + w.DifficultyWeight*float64(difficulty) + 1
	return w.VolumeWeight * float64(volume) / denom
}
