package adapters

import (
	"slices"

	"github.com/seo-tools/keyword-gap/pkg/models/api"
	"github.com/seo-tools/keyword-gap/pkg/models/domain"
	"github.com/seo-tools/keyword-gap/pkg/models/store"
)

func MapReportDomainToStore(r domain.GapReport) store.Report {
	row := store.Report{
		ID:               r.ID,
		YourDomain:       r.YourDomain,
		CompetitorDomain: r.CompetitorDomain,
		Market:           r.Market,
		Freshness:        string(r.Freshness),
		Status:           string(r.Status),
		Warnings:         slices.Clone(r.Warnings),
		YourTotal:        r.YourTotal,
		TheirTotal:       r.TheirTotal,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.Error != "" {
		e := r.Error
		row.Error = &e
	}
	return row
}

func MapReportStoreToDomain(row store.Report) domain.GapReport {
	r := domain.GapReport{
		ID:               row.ID,
		YourDomain:       row.YourDomain,
		CompetitorDomain: row.CompetitorDomain,
		Market:           row.Market,
		Freshness:        domain.Freshness(row.Freshness),
		Status:           domain.ReportStatus(row.Status),
		Warnings:         slices.Clone(row.Warnings),
		YourTotal:        row.YourTotal,
		TheirTotal:       row.TheirTotal,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.Error != nil {
		r.Error = *row.Error
	}
	return r
}

func MapReportDomainToAPI(r domain.GapReport) api.Report {
	return api.Report{
		ID:               r.ID,
		YourDomain:       r.YourDomain,
		CompetitorDomain: r.CompetitorDomain,
		Market:           r.Market,
		Freshness:        string(r.Freshness),
		Status:           string(r.Status),
		Warnings:         slices.Clone(r.Warnings),
		Error:            r.Error,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func MapEntryDomainToStore(reportID string, e domain.GapEntry) store.GapEntry {
	return store.GapEntry{
		ReportID:         reportID,
		Keyword:          e.Keyword,
		Kind:             string(e.Kind),
		YourPosition:     e.YourPosition,
		TheirPosition:    e.TheirPosition,
		Delta:            e.Delta,
		OpportunityScore: e.OpportunityScore,
		SearchVolume:     e.SearchVolume,
		CPC:              e.CPC,
		Difficulty:       e.Difficulty,
		SERPFeatures:     slices.Clone(e.SERPFeatures),
	}
}

func MapEntryStoreToDomain(row store.GapEntry) domain.GapEntry {
	return domain.GapEntry{
		Keyword:          row.Keyword,
		Kind:             domain.EntryKind(row.Kind),
		YourPosition:     row.YourPosition,
		TheirPosition:    row.TheirPosition,
		Delta:            row.Delta,
		OpportunityScore: row.OpportunityScore,
		SearchVolume:     row.SearchVolume,
		CPC:              row.CPC,
		Difficulty:       row.Difficulty,
		SERPFeatures:     slices.Clone(row.SERPFeatures),
	}
}

func MapEntryDomainToAPI(e domain.GapEntry) api.GapEntry {
	return api.GapEntry{
		Keyword:          e.Keyword,
		Kind:             string(e.Kind),
		YourPosition:     e.YourPosition,
		TheirPosition:    e.TheirPosition,
		Delta:            e.Delta,
		OpportunityScore: e.OpportunityScore,
		SearchVolume:     e.SearchVolume,
		CPC:              e.CPC,
		Difficulty:       e.Difficulty,
		SERPFeatures:     slices.Clone(e.SERPFeatures),
	}
}

func MapKPIDomainToAPI(s domain.KPISummary) api.KPISummary {
	return api.KPISummary{
		TotalYourKeywords:  s.TotalYourKeywords,
		TotalTheirKeywords: s.TotalTheirKeywords,
		OverlapCount:       s.OverlapCount,
		MissingCount:       s.MissingCount,
	}
}

func MapChartDataDomainToAPI(c domain.ChartData) api.ChartData {
	out := api.ChartData{
		MissingScatter: make([]api.ScatterPoint, 0, len(c.MissingScatter)),
		Breakdown: api.Breakdown{
			Overlap:   c.Breakdown.Overlap,
			YourOnly:  c.Breakdown.YourOnly,
			TheirOnly: c.Breakdown.TheirOnly,
		},
	}
	for _, p := range c.MissingScatter {
		out.MissingScatter = append(out.MissingScatter, api.ScatterPoint{
			Keyword:    p.Keyword,
			Volume:     p.Volume,
			Difficulty: p.Difficulty,
		})
	}
	return out
}
