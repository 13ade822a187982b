package domain

// EntryKind classifies a keyword within a gap report.
type EntryKind string

const (
	// EntryKindMissing means the competitor ranks and the caller does not.
	EntryKindMissing EntryKind = "missing"
	// EntryKindOverlap means both domains rank for the keyword.
	EntryKindOverlap EntryKind = "overlap"
)

// GapEntry is the classification result for one keyword within a report.
//
// Delta is defined only for overlap entries and follows the convention
// Delta = YourPosition - TheirPosition: positive means the caller ranks
// worse than the competitor. OpportunityScore is defined only for missing
// entries.
type GapEntry struct {
	Keyword          string
	Kind             EntryKind
	YourPosition     *int
	TheirPosition    *int
	Delta            *int
	OpportunityScore *float64
	SearchVolume     *int
	CPC              *float64
	Difficulty       *int
	SERPFeatures     []string
}

// KPISummary is the dashboard-facing reduction of a classified report.
// Your-only keywords are tracked here in aggregate; they are never
// materialized as entries.
type KPISummary struct {
	TotalYourKeywords  int
	TotalTheirKeywords int
	OverlapCount       int
	MissingCount       int
}

// ScatterPoint is one missing keyword plotted as volume vs. difficulty.
type ScatterPoint struct {
	Keyword    string
	Volume     int
	Difficulty int
}

// Breakdown is the three-way split of the keyword universe of a report.
type Breakdown struct {
	Overlap   int
	YourOnly  int
	TheirOnly int
}

// ChartData holds the chart-ready projections of a completed report.
type ChartData struct {
	MissingScatter []ScatterPoint
	Breakdown      Breakdown
}
