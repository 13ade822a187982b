package domain

import "time"

// ReportStatus is the lifecycle state of a gap report.
// Transitions: queued -> running -> done | failed. Terminal states are
// immutable except for deletion.
type ReportStatus string

const (
	ReportStatusQueued  ReportStatus = "queued"
	ReportStatusRunning ReportStatus = "running"
	ReportStatusDone    ReportStatus = "done"
	ReportStatusFailed  ReportStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s ReportStatus) Terminal() bool {
	return s == ReportStatusDone || s == ReportStatusFailed
}

// GapReport is one comparison run between two domains.
type GapReport struct {
	ID               string
	YourDomain       string // canonicalized
	CompetitorDomain string // canonicalized
	Market           string
	Freshness        Freshness
	Status           ReportStatus
	// Warnings collects non-fatal data-quality notices, e.g. duplicate
	// keywords collapsed during classification.
	Warnings   []string
	YourTotal  int // raw fetch size for the caller's domain
	TheirTotal int // raw fetch size for the competitor's domain
	Error      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
