package domain

// Freshness controls how stale a cached keyword set may be.
type Freshness string

const (
	FreshnessLive Freshness = "live"
	Freshness24h  Freshness = "24h"
	Freshness7d   Freshness = "7d"
)

// KeywordQuery identifies one keyword-set fetch against the SERP data provider.
type KeywordQuery struct {
	Domain    string // canonical host, see services/domains.Normalize
	Market    string // provider location/language code, e.g. "en-US"
	Freshness Freshness
}

// KeywordRecord is one ranked keyword for one domain at one point in time.
// Records are immutable; a fresh fetch produces a new set.
type KeywordRecord struct {
	Keyword      string // original casing preserved for display
	Position     *int   // SERP rank, nil if not ranking
	SearchVolume *int
	CPC          *float64
	Difficulty   *int // 0-100 ranking difficulty proxy
	SERPFeatures []string
}
