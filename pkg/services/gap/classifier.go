// Package gap holds the pure core of competitor gap analysis: classifying
// two keyword sets into missing/overlap entries, scoring missing keywords
// and reducing the result to dashboard KPIs. Nothing in this package
// performs I/O.
package gap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seo-tools/keyword-gap/pkg/models/domain"
)

// Result is the outcome of one classification. Warnings carry non-fatal
// data-quality notices; they never abort a report.
type Result struct {
	Entries  []domain.GapEntry
	Warnings []string
}

// Classifier partitions two keyword sets into gap entries.
type Classifier struct {
	weights domain.ScoreWeights
}

func NewClassifier(weights domain.ScoreWeights) *Classifier {
	return &Classifier{weights: weights}
}

// Classify compares the caller's keywords against the competitor's.
// Keywords only the competitor ranks for become missing entries with an
// opportunity score; keywords both rank for become overlap entries with
// Delta = YourPosition - TheirPosition (positive: the caller ranks worse).
// Keywords only the caller ranks for are not materialized; they surface in
// the aggregate KPIs alone.
//
// Inputs are never mutated and the returned entries carry no defined order.
// Duplicate keyword text within one side is an upstream fetch defect: the
// first record wins and a warning is recorded.
func (c *Classifier) Classify(yours, theirs []domain.KeywordRecord) Result {
	var warnings []string

	yourIndex, dups := indexByKeyword(yours)
	for _, kw := range dups {
		warnings = append(warnings, fmt.Sprintf("duplicate keyword %q in your keyword set collapsed to one record", kw))
	}
	theirIndex, dups := indexByKeyword(theirs)
	for _, kw := range dups {
		warnings = append(warnings, fmt.Sprintf("duplicate keyword %q in competitor keyword set collapsed to one record", kw))
	}

	entries := make([]domain.GapEntry, 0, len(theirIndex))
	for kw, their := range theirIndex {
		your, both := yourIndex[kw]
		if !both {
			score := OpportunityScore(their, c.weights)
			entries = append(entries, domain.GapEntry{
				Keyword:          their.Keyword,
				Kind:             domain.EntryKindMissing,
				TheirPosition:    their.Position,
				OpportunityScore: &score,
				SearchVolume:     their.SearchVolume,
				CPC:              their.CPC,
				Difficulty:       their.Difficulty,
				SERPFeatures:     their.SERPFeatures,
			})
			continue
		}

		entry := domain.GapEntry{
			Keyword:       their.Keyword,
			Kind:          domain.EntryKindOverlap,
			YourPosition:  your.Position,
			TheirPosition: their.Position,
			SearchVolume:  their.SearchVolume,
			CPC:           their.CPC,
			Difficulty:    their.Difficulty,
			SERPFeatures:  their.SERPFeatures,
		}
		if your.Position != nil && their.Position != nil {
			delta := *your.Position - *their.Position
			entry.Delta = &delta
		}
		entries = append(entries, entry)
	}

	return Result{Entries: entries, Warnings: warnings}
}

// indexByKeyword maps normalized keyword text to its record. The returned
// list names keywords that appeared more than once.
func indexByKeyword(records []domain.KeywordRecord) (map[string]domain.KeywordRecord, []string) {
	index := make(map[string]domain.KeywordRecord, len(records))
	var dups []string
	for _, rec := range records {
		key := normalizeKeyword(rec.Keyword)
		if _, seen := index[key]; seen {
			dups = append(dups, key)
			continue
		}
		index[key] = rec
	}
	return index, dups
}

func normalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}

// SortMissing orders missing entries by opportunity score, best first.
// This is the presentation default, not a classifier guarantee.
func SortMissing(entries []domain.GapEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return scoreOf(entries[i]) > scoreOf(entries[j])
	})
}

// SortOverlap orders overlap entries worst performance gap first, i.e.
// largest positive delta first.
func SortOverlap(entries []domain.GapEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return deltaOf(entries[i]) > deltaOf(entries[j])
	})
}

func scoreOf(e domain.GapEntry) float64 {
	if e.OpportunityScore == nil {
		return 0
	}
	return *e.OpportunityScore
}

func deltaOf(e domain.GapEntry) int {
	if e.Delta == nil {
		return 0
	}
	return *e.Delta
}
