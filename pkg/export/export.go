// Package export renders gap entries for download as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/seo-tools/keyword-gap/pkg/adapters"
	"github.com/seo-tools/keyword-gap/pkg/models/api"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
)

// Format names a supported export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV, Format(""):
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/csv"
}

// Entries writes the entries to w in the requested format.
func Entries(w io.Writer, entries []domain.GapEntry, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, entries)
	}
	return writeCSV(w, entries)
}

func writeJSON(w io.Writer, entries []domain.GapEntry) error {
	out := make([]api.GapEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, adapters.MapEntryDomainToAPI(e))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"keyword", "kind", "your_position", "their_position", "delta",
	"opportunity_score", "search_volume", "cpc", "difficulty", "serp_features",
}

func writeCSV(w io.Writer, entries []domain.GapEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range entries {
		row := []string{
			e.Keyword,
			string(e.Kind),
			formatInt(e.YourPosition),
			formatInt(e.TheirPosition),
			formatInt(e.Delta),
			formatFloat(e.OpportunityScore),
			formatInt(e.SearchVolume),
			formatFloat(e.CPC),
			formatInt(e.Difficulty),
			strings.Join(e.SERPFeatures, "|"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %q: %w", e.Keyword, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
