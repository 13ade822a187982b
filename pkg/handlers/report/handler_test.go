package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/seo-tools/keyword-gap/pkg/models/api"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	reportsvc "github.com/seo-tools/keyword-gap/pkg/services/report"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) CreateReport(ctx context.Context, req reportsvc.CreateRequest) (*domain.GapReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GapReport), args.Error(1)
}

func (m *mockController) GetReport(ctx context.Context, id string) (*domain.GapReport, *domain.KPISummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var summary *domain.KPISummary
	if args.Get(1) != nil {
		summary = args.Get(1).(*domain.KPISummary)
	}
	return args.Get(0).(*domain.GapReport), summary, args.Error(2)
}

func (m *mockController) ListReports(ctx context.Context, page, pageSize int) ([]domain.GapReport, int, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.GapReport), args.Int(1), args.Error(2)
}

func (m *mockController) ListEntries(
	ctx context.Context,
	id string,
	query reportsvc.EntriesQuery,
) ([]domain.GapEntry, int, error) {
	args := m.Called(ctx, id, query)
	return args.Get(0).([]domain.GapEntry), args.Int(1), args.Error(2)
}

func (m *mockController) GetCharts(ctx context.Context, id string) (*domain.ChartData, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChartData), args.Error(1)
}

func (m *mockController) DeleteReport(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestRouter(ctrl *mockController) *chi.Mux {
	h := NewHandler(ctrl)
	router := chi.NewRouter()
	router.Route("/api/v1/reports", func(r chi.Router) {
		r.Post("/", h.CreateReport)
		r.Get("/", h.ListReports)
		r.Get("/{id}", h.GetReport)
		r.Get("/{id}/entries", h.ListEntries)
		r.Get("/{id}/charts", h.GetCharts)
		r.Get("/{id}/export", h.ExportEntries)
		r.Delete("/{id}", h.DeleteReport)
	})
	return router
}

func sampleReport() *domain.GapReport {
	now := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)
	return &domain.GapReport{
		ID:               "rep-1",
		YourDomain:       "example.com",
		CompetitorDomain: "rival.com",
		Market:           "en-US",
		Freshness:        domain.Freshness24h,
		Status:           domain.ReportStatusQueued,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestHandler_CreateReport(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("CreateReport", mock.Anything, reportsvc.CreateRequest{
		YourDomain:       "example.com",
		CompetitorDomain: "rival.com",
		Market:           "en-US",
		Freshness:        domain.Freshness24h,
	}).Return(sampleReport(), nil)

	body := `{"your_domain":"example.com","competitor_domain":"rival.com","market":"en-US","freshness":"24h"}`
	rec := httptest.NewRecorder()
	newTestRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body)))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp api.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rep-1", resp.ID)
	assert.Equal(t, "queued", resp.Status)
	ctrl.AssertExpectations(t)
}

func TestHandler_CreateReport_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"your_domain":`},
		{"missing market", `{"your_domain":"a.com","competitor_domain":"b.com"}`},
		{"bad freshness", `{"your_domain":"a.com","competitor_domain":"b.com","market":"en-US","freshness":"1h"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := new(mockController)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(tc.body))
			newTestRouter(ctrl).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			ctrl.AssertNotCalled(t, "CreateReport")
		})
	}
}

func TestHandler_CreateReport_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"same domain", reportsvc.ErrSameDomain, http.StatusBadRequest},
		{"invalid domain", reportsvc.ErrInvalidDomain, http.StatusBadRequest},
		{"internal", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	body := `{"your_domain":"a.com","competitor_domain":"b.com","market":"en-US"}`
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := new(mockController)
			ctrl.On("CreateReport", mock.Anything, mock.Anything).Return(nil, tc.err)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
			newTestRouter(ctrl).ServeHTTP(rec, req)

			assert.Equal(t, tc.expectedStatus, rec.Code)

			var resp api.Error
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestHandler_GetReport_WithSummary(t *testing.T) {
	report := sampleReport()
	report.Status = domain.ReportStatusDone
	report.YourTotal = 120
	report.TheirTotal = 300

	ctrl := new(mockController)
	ctrl.On("GetReport", mock.Anything, "rep-1").Return(report, &domain.KPISummary{
		TotalYourKeywords:  120,
		TotalTheirKeywords: 300,
		OverlapCount:       80,
		MissingCount:       220,
	}, nil)

	rec := httptest.NewRecorder()
	newTestRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/rep-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 220, resp.Summary.MissingCount)
}

func TestHandler_GetReport_NotFound(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("GetReport", mock.Anything, "nope").Return(nil, nil, reportsvc.ErrReportNotFound)

	rec := httptest.NewRecorder()
	newTestRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_ListEntries_QueryParams(t *testing.T) {
	theirPos := 4
	ctrl := new(mockController)
	ctrl.On("ListEntries", mock.Anything, "rep-1", reportsvc.EntriesQuery{
		Kind:     "missing",
		Sort:     "opportunity",
		Page:     2,
		PageSize: 25,
	}).Return([]domain.GapEntry{
		{Keyword: "best crm", Kind: domain.EntryKindMissing, TheirPosition: &theirPos},
	}, 51, nil)

	rec := httptest.NewRecorder()
	path := "/api/v1/reports/rep-1/entries?kind=missing&sort=opportunity&page=2&page_size=25"
	newTestRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp api.EntriesPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 51, resp.TotalCount)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "best crm", resp.Entries[0].Keyword)
	ctrl.AssertExpectations(t)
}

func TestHandler_ListEntries_RejectsUnknownKind(t *testing.T) {
	ctrl := new(mockController)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/rep-1/entries?kind=bogus", nil)
	newTestRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ctrl.AssertNotCalled(t, "ListEntries")
}

func TestHandler_GetCharts_NotDone(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("GetCharts", mock.Anything, "rep-1").Return(nil, reportsvc.ErrReportNotDone)

	rec := httptest.NewRecorder()
	newTestRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/rep-1/charts", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_ExportEntries_CSV(t *testing.T) {
	theirPos := 3
	done := sampleReport()
	done.Status = domain.ReportStatusDone

	ctrl := new(mockController)
	ctrl.On("GetReport", mock.Anything, "rep-1").Return(done, nil, nil)
	ctrl.On("ListEntries", mock.Anything, "rep-1", mock.Anything).Return([]domain.GapEntry{
		{Keyword: "crm pricing", Kind: domain.EntryKindMissing, TheirPosition: &theirPos},
	}, 1, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/rep-1/export?format=csv", nil)
	newTestRouter(ctrl).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "gap-report-rep-1.csv")

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "crm pricing", rows[1][0])
}

func TestHandler_ExportEntries_NotDone(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("GetReport", mock.Anything, "rep-1").Return(sampleReport(), nil, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/rep-1/export", nil)
	newTestRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	ctrl.AssertNotCalled(t, "ListEntries")
}

func TestHandler_ExportEntries_UnsupportedFormat(t *testing.T) {
	ctrl := new(mockController)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/rep-1/export?format=xml", nil)
	newTestRouter(ctrl).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ctrl.AssertNotCalled(t, "ListEntries")
}

func TestHandler_DeleteReport(t *testing.T) {
	ctrl := new(mockController)
	ctrl.On("DeleteReport", mock.Anything, "rep-1").Return(nil)

	rec := httptest.NewRecorder()
	newTestRouter(ctrl).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/reports/rep-1", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	ctrl.AssertExpectations(t)
}
