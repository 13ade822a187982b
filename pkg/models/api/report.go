package api

import "time"

// CreateReportRequest is the body of POST /api/v1/reports.
type CreateReportRequest struct {
	YourDomain       string `json:"your_domain" validate:"required"`
	CompetitorDomain string `json:"competitor_domain" validate:"required"`
	Market           string `json:"market" validate:"required"`
	Freshness        string `json:"freshness" validate:"omitempty,oneof=live 24h 7d"`
}

// Report is the API projection of a gap report.
type Report struct {
	ID               string      `json:"id"`
	YourDomain       string      `json:"your_domain"`
	CompetitorDomain string      `json:"competitor_domain"`
	Market           string      `json:"market"`
	Freshness        string      `json:"freshness"`
	Status           string      `json:"status"`
	Warnings         []string    `json:"warnings,omitempty"`
	Error            string      `json:"error,omitempty"`
	Summary          *KPISummary `json:"summary,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// KPISummary carries the dashboard counts for a completed report.
type KPISummary struct {
	TotalYourKeywords  int `json:"total_your_keywords"`
	TotalTheirKeywords int `json:"total_their_keywords"`
	OverlapCount       int `json:"overlap_count"`
	MissingCount       int `json:"missing_count"`
}

// GapEntry is one classified keyword row.
type GapEntry struct {
	Keyword          string   `json:"keyword"`
	Kind             string   `json:"kind"`
	YourPosition     *int     `json:"your_position"`
	TheirPosition    *int     `json:"their_position"`
	Delta            *int     `json:"delta,omitempty"`
	OpportunityScore *float64 `json:"opportunity_score,omitempty"`
	SearchVolume     *int     `json:"search_volume,omitempty"`
	CPC              *float64 `json:"cpc,omitempty"`
	Difficulty       *int     `json:"difficulty,omitempty"`
	SERPFeatures     []string `json:"serp_features,omitempty"`
}

// EntriesPage is one page of gap entries plus the total for pagination.
type EntriesPage struct {
	Entries    []GapEntry `json:"entries"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalCount int        `json:"total_count"`
}

// ReportsPage is one page of reports.
type ReportsPage struct {
	Reports    []Report `json:"reports"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalCount int      `json:"total_count"`
}

// ScatterPoint plots one missing keyword as volume vs. difficulty.
type ScatterPoint struct {
	Keyword    string `json:"keyword"`
	Volume     int    `json:"volume"`
	Difficulty int    `json:"difficulty"`
}

// Breakdown is the three-way split used for the pie chart.
type Breakdown struct {
	Overlap   int `json:"overlap"`
	YourOnly  int `json:"your_only"`
	TheirOnly int `json:"their_only"`
}

// ChartData is the chart-ready projection of a completed report.
type ChartData struct {
	MissingScatter []ScatterPoint `json:"missing_scatter"`
	Breakdown      Breakdown      `json:"breakdown"`
}

// Error is the uniform error body for API failures.
type Error struct {
	Message string `json:"message"`
}
