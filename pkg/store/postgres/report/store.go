// Package report persists gap reports and their classified entries.
package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seo-tools/keyword-gap/pkg/models/store"
)

var ErrReportNotFound = errors.New("report not found")

// SortOrder selects the presentation ordering of an entry page.
type SortOrder string

const (
	// SortOpportunity orders missing entries best opportunity first.
	SortOpportunity SortOrder = "opportunity"
	// SortDelta orders overlap entries worst performance gap first.
	SortDelta SortOrder = "delta"
)

// ListOptions shape one page of entries.
type ListOptions struct {
	Kind     string // "" means all kinds
	Sort     SortOrder
	Page     int // 1-based
	PageSize int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Store supports the full report lifecycle: creation, status transitions,
// bulk entry insertion on completion, paginated reads, counts, deletion.
type Store interface {
	CreateReport(ctx context.Context, report store.Report) error
	GetReport(ctx context.Context, id string) (*store.Report, error)
	ListReports(ctx context.Context, page, pageSize int) ([]store.Report, int, error)
	MarkRunning(ctx context.Context, id string) error
	CompleteReport(ctx context.Context, report store.Report, entries []store.GapEntry) error
	FailReport(ctx context.Context, id string, cause string) error
	ListEntries(ctx context.Context, reportID string, opts ListOptions) ([]store.GapEntry, int, error)
	CountEntries(ctx context.Context, reportID string) (*store.EntryCounts, error)
	DeleteReport(ctx context.Context, id string) error
}

type reportStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &reportStore{db: db}, nil
}

func (s *reportStore) CreateReport(ctx context.Context, report store.Report) error {
	warnings, err := json.Marshal(emptyIfNil(report.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	query := `
		INSERT INTO gap_reports (
			id, your_domain, competitor_domain, market, freshness, status,
			warnings, your_total, their_total, error, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = s.db.ExecContext(ctx, query,
		report.ID,
		report.YourDomain,
		report.CompetitorDomain,
		report.Market,
		report.Freshness,
		report.Status,
		warnings,
		report.YourTotal,
		report.TheirTotal,
		report.Error,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *reportStore) GetReport(ctx context.Context, id string) (*store.Report, error) {
	query := `
		SELECT id, your_domain, competitor_domain, market, freshness, status,
		       warnings, your_total, their_total, error, created_at, updated_at
		FROM gap_reports
		WHERE id = $1`

	row := s.db.QueryRowContext(ctx, query, id)
	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

func (s *reportStore) ListReports(ctx context.Context, page, pageSize int) ([]store.Report, int, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gap_reports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	query := `
		SELECT id, your_domain, competitor_domain, market, freshness, status,
		       warnings, your_total, their_total, error, created_at, updated_at
		FROM gap_reports
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]store.Report, 0, pageSize)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, total, rows.Err()
}

func (s *reportStore) MarkRunning(ctx context.Context, id string) error {
	query := `
		UPDATE gap_reports
		SET status = 'running', updated_at = $2
		WHERE id = $1 AND status = 'queued'`

	return s.transition(ctx, query, id)
}

// CompleteReport transitions the report to done and inserts its entries in
// one transaction so readers never observe a done report with partial rows.
func (s *reportStore) CompleteReport(ctx context.Context, report store.Report, entries []store.GapEntry) error {
	warnings, err := json.Marshal(emptyIfNil(report.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE gap_reports
		SET status = 'done', warnings = $2, your_total = $3, their_total = $4, updated_at = $5
		WHERE id = $1 AND status = 'running'`,
		report.ID, warnings, report.YourTotal, report.TheirTotal, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("complete report: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrReportNotFound
	}

	if err := addEntries(ctx, tx, report.ID, entries); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *reportStore) FailReport(ctx context.Context, id string, cause string) error {
	query := `
		UPDATE gap_reports
		SET status = 'failed', error = $3, updated_at = $2
		WHERE id = $1 AND status IN ('queued', 'running')`

	res, err := s.db.ExecContext(ctx, query, id, time.Now().UTC(), cause)
	if err != nil {
		return fmt.Errorf("fail report: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (s *reportStore) ListEntries(ctx context.Context, reportID string, opts ListOptions) ([]store.GapEntry, int, error) {
	opts.Page, opts.PageSize = normalizePage(opts.Page, opts.PageSize)

	where := `WHERE report_id = $1`
	args := []any{reportID}
	if opts.Kind != "" {
		where += ` AND kind = $2`
		args = append(args, opts.Kind)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM gap_entries ` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT report_id, keyword, kind, your_position, their_position, delta,
		       opportunity_score, search_volume, cpc, difficulty, serp_features
		FROM gap_entries
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		where, orderClause(opts.Sort), len(args)+1, len(args)+2)
	args = append(args, opts.PageSize, (opts.Page-1)*opts.PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]store.GapEntry, 0, opts.PageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, total, rows.Err()
}

func (s *reportStore) CountEntries(ctx context.Context, reportID string) (*store.EntryCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'overlap'),
			COUNT(*) FILTER (WHERE kind = 'missing')
		FROM gap_entries
		WHERE report_id = $1`

	var counts store.EntryCounts
	if err := s.db.QueryRowContext(ctx, query, reportID).Scan(&counts.Overlap, &counts.Missing); err != nil {
		return nil, fmt.Errorf("count entries by kind: %w", err)
	}
	return &counts, nil
}

// DeleteReport removes the report row; entries go with it via the cascade.
func (s *reportStore) DeleteReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM gap_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

func (s *reportStore) transition(ctx context.Context, query, id string) error {
	res, err := s.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

func addEntries(ctx context.Context, tx *sql.Tx, reportID string, entries []store.GapEntry) error {
	if len(entries) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO gap_entries (
			report_id, keyword, kind, your_position, their_position, delta,
			opportunity_score, search_volume, cpc, difficulty, serp_features
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		features, err := json.Marshal(emptyIfNil(entry.SERPFeatures))
		if err != nil {
			return fmt.Errorf("marshal serp features: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			reportID,
			entry.Keyword,
			entry.Kind,
			entry.YourPosition,
			entry.TheirPosition,
			entry.Delta,
			entry.OpportunityScore,
			entry.SearchVolume,
			entry.CPC,
			entry.Difficulty,
			features,
		)
		if err != nil {
			return fmt.Errorf("insert entry %q: %w", entry.Keyword, err)
		}
	}
	return nil
}

func orderClause(sort SortOrder) string {
	switch sort {
	case SortDelta:
		return "delta DESC NULLS LAST, keyword"
	case SortOpportunity:
		return "opportunity_score DESC NULLS LAST, keyword"
	default:
		return "opportunity_score DESC NULLS LAST, keyword"
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*store.Report, error) {
	var (
		report      store.Report
		warningsRaw []byte
		errMsg      sql.NullString
	)
	err := row.Scan(
		&report.ID,
		&report.YourDomain,
		&report.CompetitorDomain,
		&report.Market,
		&report.Freshness,
		&report.Status,
		&warningsRaw,
		&report.YourTotal,
		&report.TheirTotal,
		&errMsg,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(warningsRaw) > 0 {
		if err := json.Unmarshal(warningsRaw, &report.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
	}
	if errMsg.Valid {
		report.Error = &errMsg.String
	}
	return &report, nil
}

func scanEntry(row rowScanner) (*store.GapEntry, error) {
	var (
		entry       store.GapEntry
		featuresRaw []byte
	)
	err := row.Scan(
		&entry.ReportID,
		&entry.Keyword,
		&entry.Kind,
		&entry.YourPosition,
		&entry.TheirPosition,
		&entry.Delta,
		&entry.OpportunityScore,
		&entry.SearchVolume,
		&entry.CPC,
		&entry.Difficulty,
		&featuresRaw,
	)
	if err != nil {
		return nil, err
	}
	if len(featuresRaw) > 0 {
		if err := json.Unmarshal(featuresRaw, &entry.SERPFeatures); err != nil {
			return nil, fmt.Errorf("unmarshal serp features: %w", err)
		}
	}
	return &entry, nil
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
