package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/seo-tools/keyword-gap/pkg/models/domain"
)

// Analysis is one finished comparison, shaped for console output.
type Analysis struct {
	YourDomain       string
	CompetitorDomain string
	Market           string
	Summary          domain.KPISummary
	Top              []domain.GapEntry
	Warnings         []string
}

type TableConfig struct {
	KeywordWidth  int
	KindWidth     int
	PositionWidth int
	ScoreWidth    int
	VolumeWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		KeywordWidth:  44,
		KindWidth:     8,
		PositionWidth: 12,
		ScoreWidth:    12,
		VolumeWidth:   10,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(analysis *Analysis) error {
	funcMap := template.FuncMap{
		"formatRow": func(keyword, kind, positions, score, volume string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %*s | %*s |",
				c.config.KeywordWidth, truncate(keyword, c.config.KeywordWidth),
				c.config.KindWidth, kind,
				c.config.PositionWidth, positions,
				c.config.ScoreWidth, score,
				c.config.VolumeWidth, volume)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.KeywordWidth+2),
				strings.Repeat("-", c.config.KindWidth+2),
				strings.Repeat("-", c.config.PositionWidth+2),
				strings.Repeat("-", c.config.ScoreWidth+2),
				strings.Repeat("-", c.config.VolumeWidth+2))
		},
		"positions": formatPositions,
		"score":     formatScore,
		"volume":    formatVolume,
	}

	tmpl := `
Keyword gap: {{.YourDomain}} vs {{.CompetitorDomain}} ({{.Market}})

Your keywords:        {{.Summary.TotalYourKeywords}}
Competitor keywords:  {{.Summary.TotalTheirKeywords}}
Overlap:              {{.Summary.OverlapCount}}
Missing:              {{.Summary.MissingCount}}
{{if .Warnings}}
Warnings:
{{range .Warnings}}  - {{.}}
{{end}}{{end}}
{{separator}}
{{formatRow "Keyword" "Kind" "You / Them" "Score" "Volume"}}
{{separator}}
{{range .Top}}{{formatRow .Keyword (printf "%s" .Kind) (positions .) (score .) (volume .)}}
{{end}}{{separator}}
`

	t, err := template.New("analysis").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, analysis)
}

// truncate shortens s to width runes; byte slicing would split
// multi-byte keywords.
func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}

func formatPositions(e domain.GapEntry) string {
	yours := "-"
	if e.YourPosition != nil {
		yours = fmt.Sprintf("%d", *e.YourPosition)
	}
	theirs := "-"
	if e.TheirPosition != nil {
		theirs = fmt.Sprintf("%d", *e.TheirPosition)
	}
	return yours + " / " + theirs
}

func formatScore(e domain.GapEntry) string {
	if e.OpportunityScore == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *e.OpportunityScore)
}

func formatVolume(e domain.GapEntry) string {
	if e.SearchVolume == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *e.SearchVolume)
}
