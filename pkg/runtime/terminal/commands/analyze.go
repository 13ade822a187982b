package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	fileexport "github.com/seo-tools/keyword-gap/pkg/export"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	"github.com/seo-tools/keyword-gap/pkg/runtime/terminal/export"
	"github.com/seo-tools/keyword-gap/pkg/services/domains"
	"github.com/seo-tools/keyword-gap/pkg/services/gap"
	"github.com/seo-tools/keyword-gap/pkg/services/keywords"
)

type AnalyzeCmd struct {
	yourDomain       string
	competitorDomain string
	market           string
	freshness        string
	top              int
	outputPath       string
	outputFormat     string

	fetcher    keywords.Fetcher
	classifier *gap.Classifier
	reporter   *export.Reporter
}

func NewAnalyzeCmd(fetcher keywords.Fetcher, classifier *gap.Classifier, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{fetcher: fetcher, classifier: classifier, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare two domains' ranked keywords",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.yourDomain, "your", "", "Your domain")
	cmd.Flags().StringVar(&ac.competitorDomain, "competitor", "", "Competitor domain")
	cmd.Flags().StringVar(&ac.market, "market", "", "Market, e.g. en-US")
	cmd.Flags().StringVar(&ac.freshness, "freshness", "24h", "Data freshness: live, 24h or 7d")
	cmd.Flags().IntVar(&ac.top, "top", 20, "Number of entries to print")
	cmd.Flags().StringVar(&ac.outputPath, "output", "", "Write the full entry list to this file")
	cmd.Flags().StringVar(&ac.outputFormat, "format", "csv", "File output format: csv or json")

	_ = cmd.MarkFlagRequired("your")
	_ = cmd.MarkFlagRequired("competitor")
	_ = cmd.MarkFlagRequired("market")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	yours := domains.Normalize(ac.yourDomain)
	theirs := domains.Normalize(ac.competitorDomain)
	switch {
	case yours == "" || theirs == "":
		return fmt.Errorf("both domains must be valid host names")
	case yours == theirs:
		return fmt.Errorf("domains %q and %q normalize to the same host", ac.yourDomain, ac.competitorDomain)
	}

	freshness := domain.Freshness(ac.freshness)
	switch freshness {
	case domain.FreshnessLive, domain.Freshness24h, domain.Freshness7d:
	default:
		return fmt.Errorf("unsupported freshness %q", ac.freshness)
	}

	var yourRecords, theirRecords []domain.KeywordRecord
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		yourRecords, err = ac.fetcher.Fetch(groupCtx, domain.KeywordQuery{
			Domain: yours, Market: ac.market, Freshness: freshness,
		})
		return err
	})
	g.Go(func() error {
		var err error
		theirRecords, err = ac.fetcher.Fetch(groupCtx, domain.KeywordQuery{
			Domain: theirs, Market: ac.market, Freshness: freshness,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to fetch keyword sets: %w", err)
	}

	result := ac.classifier.Classify(yourRecords, theirRecords)
	summary := gap.Aggregate(result.Entries, len(yourRecords), len(theirRecords))

	entries := result.Entries
	gap.SortMissing(entries)

	top := entries
	if ac.top > 0 && len(top) > ac.top {
		top = top[:ac.top]
	}

	if err := ac.reporter.Handle(&export.Analysis{
		YourDomain:       yours,
		CompetitorDomain: theirs,
		Market:           ac.market,
		Summary:          summary,
		Top:              top,
		Warnings:         result.Warnings,
	}); err != nil {
		return err
	}

	if ac.outputPath != "" {
		return ac.writeFile(entries)
	}
	return nil
}

func (ac *AnalyzeCmd) writeFile(entries []domain.GapEntry) error {
	format, err := fileexport.ParseFormat(ac.outputFormat)
	if err != nil {
		return err
	}

	f, err := os.Create(ac.outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := fileexport.Entries(f, entries, format); err != nil {
		return fmt.Errorf("failed to write %s output: %w", format, err)
	}
	return nil
}
