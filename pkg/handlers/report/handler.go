// Package report exposes gap reports over HTTP.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/seo-tools/keyword-gap/pkg/adapters"
	"github.com/seo-tools/keyword-gap/pkg/export"
	"github.com/seo-tools/keyword-gap/pkg/models/api"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	reportsvc "github.com/seo-tools/keyword-gap/pkg/services/report"
)

type Handler struct {
	reports  reportsvc.Controller
	validate *validator.Validate
}

func NewHandler(reports reportsvc.Controller) *Handler {
	return &Handler{
		reports:  reports,
		validate: validator.New(),
	}
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req api.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	report, err := h.reports.CreateReport(r.Context(), reportsvc.CreateRequest{
		YourDomain:       req.YourDomain,
		CompetitorDomain: req.CompetitorDomain,
		Market:           req.Market,
		Freshness:        domain.Freshness(req.Freshness),
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusAccepted, adapters.MapReportDomainToAPI(*report))
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, summary, err := h.reports.GetReport(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response := adapters.MapReportDomainToAPI(*report)
	if summary != nil {
		s := adapters.MapKPIDomainToAPI(*summary)
		response.Summary = &s
	}
	respondJSON(w, r, http.StatusOK, response)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 20)

	reports, total, err := h.reports.ListReports(r.Context(), page, pageSize)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response := api.ReportsPage{
		Reports:    make([]api.Report, 0, len(reports)),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}
	for _, report := range reports {
		response.Reports = append(response.Reports, adapters.MapReportDomainToAPI(report))
	}
	respondJSON(w, r, http.StatusOK, response)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != string(domain.EntryKindMissing) && kind != string(domain.EntryKindOverlap) {
		respondError(w, http.StatusBadRequest, "kind must be 'missing' or 'overlap'")
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	entries, total, err := h.reports.ListEntries(r.Context(), id, reportsvc.EntriesQuery{
		Kind:     kind,
		Sort:     r.URL.Query().Get("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	response := api.EntriesPage{
		Entries:    make([]api.GapEntry, 0, len(entries)),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}
	for _, entry := range entries {
		response.Entries = append(response.Entries, adapters.MapEntryDomainToAPI(entry))
	}
	respondJSON(w, r, http.StatusOK, response)
}

func (h *Handler) GetCharts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	charts, err := h.reports.GetCharts(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, adapters.MapChartDataDomainToAPI(*charts))
}

func (h *Handler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Entries exist only for completed reports; an empty file for a
	// pending one would be indistinguishable from a real empty result.
	rep, _, err := h.reports.GetReport(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if rep.Status != domain.ReportStatusDone {
		h.respondServiceError(w, r, reportsvc.ErrReportNotDone)
		return
	}

	// Page through the store until every entry is collected.
	var all []domain.GapEntry
	for page := 1; ; page++ {
		entries, total, err := h.reports.ListEntries(r.Context(), id, reportsvc.EntriesQuery{
			Page:     page,
			PageSize: 500,
		})
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		all = append(all, entries...)
		if len(all) >= total || len(entries) == 0 {
			break
		}
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "gap-report-"+id+"."+string(format)))
	if err := export.Entries(w, all, format); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("report_id", id).Msg("failed to write export")
	}
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.reports.DeleteReport(r.Context(), id); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reportsvc.ErrReportNotFound):
		respondError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, reportsvc.ErrSameDomain),
		errors.Is(err, reportsvc.ErrInvalidDomain),
		errors.Is(err, reportsvc.ErrMissingMarket):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, reportsvc.ErrReportNotDone):
		respondError(w, http.StatusConflict, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("report request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Error{Message: message})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
