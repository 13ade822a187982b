package gap

import (
	"testing"

	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_CountIdentity(t *testing.T) {
	entries := []domain.GapEntry{
		{Keyword: "a", Kind: domain.EntryKindOverlap},
		{Keyword: "b", Kind: domain.EntryKindMissing},
		{Keyword: "c", Kind: domain.EntryKindMissing},
		{Keyword: "d", Kind: domain.EntryKindOverlap},
		{Keyword: "e", Kind: domain.EntryKindMissing},
	}

	summary := Aggregate(entries, 10, 7)

	assert.Equal(t, 10, summary.TotalYourKeywords)
	assert.Equal(t, 7, summary.TotalTheirKeywords)
	assert.Equal(t, 2, summary.OverlapCount)
	assert.Equal(t, 3, summary.MissingCount)
	assert.Equal(t, len(entries), summary.OverlapCount+summary.MissingCount)
}

func TestAggregate_Empty(t *testing.T) {
	summary := Aggregate(nil, 0, 0)
	assert.Equal(t, domain.KPISummary{}, summary)
}

func TestCharts(t *testing.T) {
	entries := []domain.GapEntry{
		{Keyword: "shared", Kind: domain.EntryKindOverlap},
		{Keyword: "plotted", Kind: domain.EntryKindMissing, SearchVolume: intPtr(1200), Difficulty: intPtr(35)},
		{Keyword: "sparse", Kind: domain.EntryKindMissing},
	}
	summary := Aggregate(entries, 5, 3)

	charts := Charts(entries, summary)

	assert.Equal(t, 1, charts.Breakdown.Overlap)
	assert.Equal(t, 4, charts.Breakdown.YourOnly, "your-only = your total minus overlap")
	assert.Equal(t, 2, charts.Breakdown.TheirOnly)

	require.Len(t, charts.MissingScatter, 2)
	assert.Contains(t, charts.MissingScatter, domain.ScatterPoint{Keyword: "plotted", Volume: 1200, Difficulty: 35})
	assert.Contains(t, charts.MissingScatter, domain.ScatterPoint{Keyword: "sparse"})
}

func TestCharts_YourOnlyNeverNegative(t *testing.T) {
	// Duplicate collapse can leave the overlap count above the raw your total.
	entries := []domain.GapEntry{
		{Keyword: "a", Kind: domain.EntryKindOverlap},
		{Keyword: "b", Kind: domain.EntryKindOverlap},
	}
	summary := Aggregate(entries, 1, 2)

	charts := Charts(entries, summary)
	assert.Equal(t, 0, charts.Breakdown.YourOnly)
}
