// Package report orchestrates the gap-report lifecycle: validation,
// concurrent keyword-set fetches, classification, aggregation and
// persistence. State machine: queued -> running -> done | failed.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/seo-tools/keyword-gap/pkg/adapters"
	"github.com/seo-tools/keyword-gap/pkg/metrics"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	"github.com/seo-tools/keyword-gap/pkg/models/store"
	"github.com/seo-tools/keyword-gap/pkg/services/domains"
	"github.com/seo-tools/keyword-gap/pkg/services/gap"
	"github.com/seo-tools/keyword-gap/pkg/services/keywords"
	reportstore "github.com/seo-tools/keyword-gap/pkg/store/postgres/report"
)

// Input validation errors, surfaced before any fetch is dispatched.
var (
	ErrSameDomain     = errors.New("your domain and the competitor domain are the same")
	ErrInvalidDomain  = errors.New("domain is not valid")
	ErrMissingMarket  = errors.New("market is required")
	ErrReportNotDone  = errors.New("report is not done yet")
	ErrReportNotFound = reportstore.ErrReportNotFound
)

// CreateRequest carries a validated comparison request.
type CreateRequest struct {
	YourDomain       string
	CompetitorDomain string
	Market           string
	Freshness        domain.Freshness
}

// EntriesQuery shapes one page of entries.
type EntriesQuery struct {
	Kind     string
	Sort     string
	Page     int
	PageSize int
}

type Controller interface {
	// CreateReport validates the request, persists a queued report and
	// starts the analysis asynchronously. Callers poll GetReport.
	CreateReport(ctx context.Context, req CreateRequest) (*domain.GapReport, error)
	GetReport(ctx context.Context, id string) (*domain.GapReport, *domain.KPISummary, error)
	ListReports(ctx context.Context, page, pageSize int) ([]domain.GapReport, int, error)
	ListEntries(ctx context.Context, id string, query EntriesQuery) ([]domain.GapEntry, int, error)
	GetCharts(ctx context.Context, id string) (*domain.ChartData, error)
	DeleteReport(ctx context.Context, id string) error
}

type Config struct {
	// RunTimeout bounds one full analysis run (both fetches plus
	// persistence).
	RunTimeout time.Duration
}

type controller struct {
	store      reportstore.Store
	fetcher    keywords.Fetcher
	classifier *gap.Classifier
	metrics    *metrics.Metrics
	runTimeout time.Duration
}

func NewController(
	store reportstore.Store,
	fetcher keywords.Fetcher,
	classifier *gap.Classifier,
	m *metrics.Metrics,
	cfg Config,
) Controller {
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &controller{
		store:      store,
		fetcher:    fetcher,
		classifier: classifier,
		metrics:    m,
		runTimeout: cfg.RunTimeout,
	}
}

func (c *controller) CreateReport(ctx context.Context, req CreateRequest) (*domain.GapReport, error) {
	yours := domains.Normalize(req.YourDomain)
	theirs := domains.Normalize(req.CompetitorDomain)

	switch {
	case yours == "" || theirs == "":
		return nil, ErrInvalidDomain
	case yours == theirs:
		return nil, ErrSameDomain
	case req.Market == "":
		return nil, ErrMissingMarket
	}

	freshness := req.Freshness
	if freshness == "" {
		freshness = domain.Freshness24h
	}

	now := time.Now().UTC()
	report := domain.GapReport{
		ID:               uuid.NewString(),
		YourDomain:       yours,
		CompetitorDomain: theirs,
		Market:           req.Market,
		Freshness:        freshness,
		Status:           domain.ReportStatusQueued,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := c.store.CreateReport(ctx, adapters.MapReportDomainToStore(report)); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	// The run outlives the request; only the logger is carried over.
	runCtx := zerolog.Ctx(ctx).With().Str("report_id", report.ID).Logger().WithContext(context.Background())
	go c.run(runCtx, report)

	return &report, nil
}

func (c *controller) run(ctx context.Context, report domain.GapReport) {
	logger := zerolog.Ctx(ctx)
	ctx, cancel := context.WithTimeout(ctx, c.runTimeout)
	defer cancel()

	if err := c.store.MarkRunning(ctx, report.ID); err != nil {
		logger.Error().Err(err).Msg("failed to mark report running")
		return
	}

	var yours, theirs []domain.KeywordRecord
	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		yours, err = c.fetch(groupCtx, report, report.YourDomain)
		return err
	})
	g.Go(func() error {
		var err error
		theirs, err = c.fetch(groupCtx, report, report.CompetitorDomain)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("keyword fetch failed, failing report")
		c.fail(ctx, report.ID, userFacingFetchMessage(err))
		return
	}

	result := c.classifier.Classify(yours, theirs)
	for _, warning := range result.Warnings {
		logger.Warn().Str("warning", warning).Msg("classification data-quality warning")
	}

	summary := gap.Aggregate(result.Entries, len(yours), len(theirs))
	c.metrics.EntriesClassified.WithLabelValues(string(domain.EntryKindMissing)).Add(float64(summary.MissingCount))
	c.metrics.EntriesClassified.WithLabelValues(string(domain.EntryKindOverlap)).Add(float64(summary.OverlapCount))

	report.Warnings = result.Warnings
	report.YourTotal = summary.TotalYourKeywords
	report.TheirTotal = summary.TotalTheirKeywords

	rows := make([]store.GapEntry, 0, len(result.Entries))
	for _, entry := range result.Entries {
		rows = append(rows, adapters.MapEntryDomainToStore(report.ID, entry))
	}

	if err := c.store.CompleteReport(ctx, adapters.MapReportDomainToStore(report), rows); err != nil {
		logger.Error().Err(err).Msg("failed to persist classification result")
		c.fail(ctx, report.ID, "failed to store analysis results, please re-run the comparison")
		return
	}

	c.metrics.ReportsByStatus.WithLabelValues(string(domain.ReportStatusDone)).Inc()
	logger.Info().
		Int("overlap", summary.OverlapCount).
		Int("missing", summary.MissingCount).
		Msg("gap report completed")
}

func (c *controller) fetch(ctx context.Context, report domain.GapReport, host string) ([]domain.KeywordRecord, error) {
	start := time.Now()
	records, err := c.fetcher.Fetch(ctx, domain.KeywordQuery{
		Domain:    host,
		Market:    report.Market,
		Freshness: report.Freshness,
	})
	c.metrics.ObserveFetch("dataforseo", start, err, keywords.IsRetryable(err))
	if err != nil {
		return nil, fmt.Errorf("fetch keywords for %s: %w", host, err)
	}
	return records, nil
}

func (c *controller) fail(ctx context.Context, id, cause string) {
	// The run context may already be expired when a fetch times out; the
	// status write gets its own deadline so the report still reaches
	// failed instead of sticking in running.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := c.store.FailReport(ctx, id, cause); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark report failed")
		return
	}
	c.metrics.ReportsByStatus.WithLabelValues(string(domain.ReportStatusFailed)).Inc()
}

func (c *controller) GetReport(ctx context.Context, id string) (*domain.GapReport, *domain.KPISummary, error) {
	row, err := c.store.GetReport(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	report := adapters.MapReportStoreToDomain(*row)

	if report.Status != domain.ReportStatusDone {
		return &report, nil, nil
	}

	// KPI counts are recomputed from the entries rather than stored.
	counts, err := c.store.CountEntries(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate report counts: %w", err)
	}
	summary := &domain.KPISummary{
		TotalYourKeywords:  report.YourTotal,
		TotalTheirKeywords: report.TheirTotal,
		OverlapCount:       counts.Overlap,
		MissingCount:       counts.Missing,
	}
	return &report, summary, nil
}

func (c *controller) ListReports(ctx context.Context, page, pageSize int) ([]domain.GapReport, int, error) {
	rows, total, err := c.store.ListReports(ctx, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	reports := make([]domain.GapReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, adapters.MapReportStoreToDomain(row))
	}
	return reports, total, nil
}

func (c *controller) ListEntries(ctx context.Context, id string, query EntriesQuery) ([]domain.GapEntry, int, error) {
	// Entries only exist once the report is done; surface not-found for
	// unknown reports instead of an empty page.
	if _, err := c.store.GetReport(ctx, id); err != nil {
		return nil, 0, err
	}

	rows, total, err := c.store.ListEntries(ctx, id, reportstore.ListOptions{
		Kind:     query.Kind,
		Sort:     sortOrder(query),
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	entries := make([]domain.GapEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, adapters.MapEntryStoreToDomain(row))
	}
	return entries, total, nil
}

func (c *controller) GetCharts(ctx context.Context, id string) (*domain.ChartData, error) {
	report, summary, err := c.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportStatusDone || summary == nil {
		return nil, ErrReportNotDone
	}

	// The scatter is capped at one store page of the best-scoring missing
	// keywords, which is plenty for a chart.
	rows, _, err := c.store.ListEntries(ctx, id, reportstore.ListOptions{
		Kind:     string(domain.EntryKindMissing),
		Sort:     reportstore.SortOpportunity,
		Page:     1,
		PageSize: reportstore.MaxPageSize,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]domain.GapEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, adapters.MapEntryStoreToDomain(row))
	}

	charts := gap.Charts(entries, *summary)
	return &charts, nil
}

func (c *controller) DeleteReport(ctx context.Context, id string) error {
	return c.store.DeleteReport(ctx, id)
}

// userFacingFetchMessage distinguishes "try again later" from a permanent
// failure in the message shown on a failed report.
func userFacingFetchMessage(err error) string {
	if keywords.IsRetryable(err) {
		return "the keyword data provider is temporarily unavailable, please try again later"
	}
	return "keyword data could not be retrieved for one of the domains"
}

func sortOrder(query EntriesQuery) reportstore.SortOrder {
	switch query.Sort {
	case "delta":
		return reportstore.SortDelta
	case "opportunity", "":
		// Default presentation order: missing by opportunity, and delta
		// ordering must be requested explicitly.
		if query.Kind == string(domain.EntryKindOverlap) {
			return reportstore.SortDelta
		}
		return reportstore.SortOpportunity
	default:
		return reportstore.SortOpportunity
	}
}
