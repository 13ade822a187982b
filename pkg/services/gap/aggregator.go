package gap

import "github.com/seo-tools/keyword-gap/pkg/models/domain"

// Aggregate reduces classified entries to dashboard counts. The raw fetch
// sizes are passed through because your-only keywords never become entries
// and so cannot be recovered from the entry set.
// Invariant: OverlapCount + MissingCount == len(entries).
func Aggregate(entries []domain.GapEntry, yourTotal, theirTotal int) domain.KPISummary {
	summary := domain.KPISummary{
		TotalYourKeywords:  yourTotal,
		TotalTheirKeywords: theirTotal,
	}
	for _, e := range entries {
		switch e.Kind {
		case domain.EntryKindOverlap:
			summary.OverlapCount++
		case domain.EntryKindMissing:
			summary.MissingCount++
		}
	}
	return summary
}

// Charts builds the chart-ready projections consumed by the dashboard:
// a volume/difficulty scatter of missing keywords and the three-way
// overlap / your-only / their-only breakdown.
func Charts(entries []domain.GapEntry, summary domain.KPISummary) domain.ChartData {
	charts := domain.ChartData{
		MissingScatter: make([]domain.ScatterPoint, 0, summary.MissingCount),
		Breakdown: domain.Breakdown{
			Overlap:   summary.OverlapCount,
			YourOnly:  max(summary.TotalYourKeywords-summary.OverlapCount, 0),
			TheirOnly: summary.MissingCount,
		},
	}

	for _, e := range entries {
		if e.Kind != domain.EntryKindMissing {
			continue
		}
		point := domain.ScatterPoint{Keyword: e.Keyword}
		if e.SearchVolume != nil {
			point.Volume = *e.SearchVolume
		}
		if e.Difficulty != nil {
			point.Difficulty = *e.Difficulty
		}
		charts.MissingScatter = append(charts.MissingScatter, point)
	}

	return charts
}
