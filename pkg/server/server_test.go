package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/seo-tools/keyword-gap/pkg/models/api"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	"github.com/seo-tools/keyword-gap/pkg/services/report"
)

type mockController struct {
	mock.Mock
}

func (m *mockController) CreateReport(ctx context.Context, req report.CreateRequest) (*domain.GapReport, error) {
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
	query report.EntriesQuery,
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

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))

	ctrl := new(mockController)
	registry := prometheus.NewRegistry()

	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			Reports:  ctrl,
			Registry: registry,
			Logger:   logger,
		},
	}
	router := ConfigureRouter(config)
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	created := time.Date(2025, 6, 13, 10, 0, 0, 0, time.UTC)
	queued := &domain.GapReport{
		ID:               "rep-1",
		YourDomain:       "example.com",
		CompetitorDomain: "rival.com",
		Market:           "en-US",
		Freshness:        domain.Freshness24h,
		Status:           domain.ReportStatusQueued,
		CreatedAt:        created,
		UpdatedAt:        created,
	}

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func()
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:   "CreateReport",
			method: http.MethodPost,
			path:   "/api/v1/reports",
			body:   `{"your_domain":"example.com","competitor_domain":"rival.com","market":"en-US"}`,
			setupMocks: func() {
				ctrl.On("CreateReport", mock.Anything, report.CreateRequest{
					YourDomain:       "example.com",
					CompetitorDomain: "rival.com",
					Market:           "en-US",
				}).Return(queued, nil)
			},
			expectedStatus: http.StatusAccepted,
			check: func(t *testing.T, body []byte) {
				var resp api.Report
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "rep-1", resp.ID)
			},
		},
		{
			name:   "ListReports",
			method: http.MethodGet,
			path:   "/api/v1/reports?page=1&page_size=20",
			setupMocks: func() {
				ctrl.On("ListReports", mock.Anything, 1, 20).
					Return([]domain.GapReport{*queued}, 1, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var resp api.ReportsPage
				require.NoError(t, json.Unmarshal(body, &resp))
				require.Len(t, resp.Reports, 1)
				assert.Equal(t, 1, resp.TotalCount)
			},
		},
		{
			name:   "GetReport_NotFound",
			method: http.MethodGet,
			path:   "/api/v1/reports/missing",
			setupMocks: func() {
				ctrl.On("GetReport", mock.Anything, "missing").
					Return(nil, nil, report.ErrReportNotFound)
			},
			expectedStatus: http.StatusNotFound,
			check: func(t *testing.T, body []byte) {
				var resp api.Error
				require.NoError(t, json.Unmarshal(body, &resp))
				assert.Equal(t, "report not found", resp.Message)
			},
		},
		{
			name:           "Healthz",
			method:         http.MethodGet,
			path:           "/healthz",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.Equal(t, "ok", string(body))
			},
		},
		{
			name:           "Metrics",
			method:         http.MethodGet,
			path:           "/metrics",
			setupMocks:     func() {},
			expectedStatus: http.StatusOK,
			check:          func(t *testing.T, body []byte) {},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.setupMocks()

			var reqBody io.Reader
			if tc.body != "" {
				reqBody = strings.NewReader(tc.body)
			}
			req, err := http.NewRequest(tc.method, testServer.URL+tc.path, reqBody)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err, "Failed to send request")
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode, "Status code mismatch")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "Failed to read response body")
			tc.check(t, body)
		})
	}
}
