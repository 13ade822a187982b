package store

import "time"

// Report is the persisted row shape of a gap report.
type Report struct {
	ID               string
	YourDomain       string
	CompetitorDomain string
	Market           string
	Freshness        string
	Status           string
	Warnings         []string
	YourTotal        int
	TheirTotal       int
	Error            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GapEntry is the persisted row shape of one classified keyword.
type GapEntry struct {
	ReportID         string
	Keyword          string
	Kind             string
	YourPosition     *int
	TheirPosition    *int
	Delta            *int
	OpportunityScore *float64
	SearchVolume     *int
	CPC              *float64
	Difficulty       *int
	SERPFeatures     []string
}

// EntryCounts groups entry totals per kind for one report.
type EntryCounts struct {
	Overlap int
	Missing int
}
