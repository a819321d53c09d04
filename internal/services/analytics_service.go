package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/yukikurage/crm-api/internal/authz"
	"github.com/yukikurage/crm-api/internal/cache"
	"github.com/yukikurage/crm-api/internal/constants"
	"github.com/yukikurage/crm-api/internal/models"
	"github.com/yukikurage/crm-api/internal/repository"
)

var ErrInvalidSummaryDays = fmt.Errorf("summary window must be between 1 and 365 days: %w", models.ErrBusinessRuleViolation)

// StatusSummary is the per-status slice of the summary report.
type StatusSummary struct {
	Status      models.DealStatus `json:"status"`
	Count       int64             `json:"count"`
	TotalAmount float64           `json:"total_amount"`
}

// SummaryReport aggregates an organization's deals per status over a rolling
// window of days.
type SummaryReport struct {
	Days         int             `json:"days"`
	TotalDeals   int64           `json:"total_deals"`
	TotalAmount  float64         `json:"total_amount"`
	AvgWonAmount *float64        `json:"avg_won_amount"`
	NewDeals     int64           `json:"new_deals_last_n_days"`
	ByStatus     []StatusSummary `json:"by_status"`
}

// StageFunnel is one pipeline stage of the funnel report.
// ConversionFromPrevious is the percentage of the previous stage's total that
// reached this stage; it is null for the first stage and whenever the
// previous stage is empty.
type StageFunnel struct {
	Stage                  models.DealStage `json:"stage"`
	StageOrder             int              `json:"stage_order"`
	TotalCount             int64            `json:"total_count"`
	StatusBreakdown        map[string]int64 `json:"status_breakdown"`
	ConversionFromPrevious *float64         `json:"conversion_from_previous"`
}

// FunnelReport lists every pipeline stage in order, including empty ones.
type FunnelReport struct {
	Stages []StageFunnel `json:"stages"`
}

// AnalyticsService computes summary and funnel reports over an organization's
// deals. Organization-wide results are cached; member-scoped results are
// always computed fresh so the shared cache can never leak another user's
// numbers. Cache failures degrade to a database read and never fail the
// request.
type AnalyticsService struct {
	dealRepo repository.DealRepository
	cache    cache.Cache
	ttl      time.Duration
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(dealRepo repository.DealRepository, c cache.Cache, ttl time.Duration) *AnalyticsService {
	return &AnalyticsService{
		dealRepo: dealRepo,
		cache:    c,
		ttl:      ttl,
	}
}

// Summary returns the per-status deal summary for the principal's
// organization. days bounds the new-deal count window; zero means the
// default of 30.
func (s *AnalyticsService) Summary(ctx authz.Context, days int) (*SummaryReport, error) {
	if days == 0 {
		days = constants.DefaultSummaryDays
	}
	if days < 1 || days > constants.MaxSummaryDays {
		return nil, ErrInvalidSummaryDays
	}

	ownerScope := ctx.OwnerScope()
	cacheable := ownerScope == nil
	key := fmt.Sprintf("summary:%d:%d", ctx.OrganizationID, days)

	if cacheable {
		var cached SummaryReport
		hit, err := cache.GetJSON(s.cache, key, &cached)
		if err != nil {
			log.Printf("analytics cache read failed for %s: %v", key, err)
		}
		if hit {
			return &cached, nil
		}
	}

	since := time.Now().AddDate(0, 0, -days)
	rows, err := s.dealRepo.Summarize(ctx.OrganizationID, ownerScope, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize deals: %w", err)
	}

	report := buildSummaryReport(days, rows)

	if cacheable {
		if err := cache.SetJSON(s.cache, key, report, s.ttl); err != nil {
			log.Printf("analytics cache write failed for %s: %v", key, err)
		}
	}

	return report, nil
}

// Funnel returns per-stage deal counts with status breakdowns and
// stage-to-stage conversion rates for the principal's organization.
func (s *AnalyticsService) Funnel(ctx authz.Context) (*FunnelReport, error) {
	ownerScope := ctx.OwnerScope()
	cacheable := ownerScope == nil
	key := fmt.Sprintf("funnel:%d", ctx.OrganizationID)

	if cacheable {
		var cached FunnelReport
		hit, err := cache.GetJSON(s.cache, key, &cached)
		if err != nil {
			log.Printf("analytics cache read failed for %s: %v", key, err)
		}
		if hit {
			return &cached, nil
		}
	}

	rows, err := s.dealRepo.FunnelCounts(ctx.OrganizationID, ownerScope)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate funnel: %w", err)
	}

	report := buildFunnelReport(rows)

	if cacheable {
		if err := cache.SetJSON(s.cache, key, report, s.ttl); err != nil {
			log.Printf("analytics cache write failed for %s: %v", key, err)
		}
	}

	return report, nil
}

// InvalidateOrganization drops every cached report for an organization. Used
// by the deal service after any write that changes the aggregates.
func (s *AnalyticsService) InvalidateOrganization(organizationID uint64) {
	summaryPattern := fmt.Sprintf("summary:%d:*", organizationID)
	if err := s.cache.DeletePattern(summaryPattern); err != nil {
		log.Printf("analytics cache invalidation failed for %s: %v", summaryPattern, err)
	}

	funnelKey := fmt.Sprintf("funnel:%d", organizationID)
	if err := s.cache.Delete(funnelKey); err != nil {
		log.Printf("analytics cache invalidation failed for %s: %v", funnelKey, err)
	}
}

func buildSummaryReport(days int, rows []repository.StatusAggregate) *SummaryReport {
	byStatus := make(map[models.DealStatus]repository.StatusAggregate, len(rows))
	for _, row := range rows {
		byStatus[row.Status] = row
	}

	report := &SummaryReport{Days: days}
	for _, status := range models.AllDealStatuses() {
		row := byStatus[status]
		report.ByStatus = append(report.ByStatus, StatusSummary{
			Status:      status,
			Count:       row.Count,
			TotalAmount: round2(row.TotalAmount),
		})
		report.TotalDeals += row.Count
		report.TotalAmount += row.TotalAmount
		report.NewDeals += row.NewDeals

		if status == models.DealStatusWon && row.AvgWonAmount != nil {
			avg := round2(*row.AvgWonAmount)
			report.AvgWonAmount = &avg
		}
	}
	report.TotalAmount = round2(report.TotalAmount)

	return report
}

func buildFunnelReport(rows []repository.StageStatusCount) *FunnelReport {
	totals := make(map[models.DealStage]int64)
	breakdowns := make(map[models.DealStage]map[string]int64)

	for _, row := range rows {
		if !row.Stage.Valid() {
			continue
		}
		if breakdowns[row.Stage] == nil {
			breakdowns[row.Stage] = make(map[string]int64)
		}
		breakdowns[row.Stage][string(row.Status)] += row.Count
		totals[row.Stage] += row.Count
	}

	report := &FunnelReport{}
	var previousTotal *int64
	for _, stage := range models.AllDealStages() {
		total := totals[stage]
		breakdown := breakdowns[stage]
		if breakdown == nil {
			breakdown = map[string]int64{}
		}

		// Undefined for the first stage and when the previous stage is
		// empty, never coerced to zero.
		var conversion *float64
		if previousTotal != nil && *previousTotal > 0 {
			rate := round2(float64(total) / float64(*previousTotal) * 100)
			conversion = &rate
		}

		report.Stages = append(report.Stages, StageFunnel{
			Stage:                  stage,
			StageOrder:             models.StageOrder[stage],
			TotalCount:             total,
			StatusBreakdown:        breakdown,
			ConversionFromPrevious: conversion,
		})

		stageTotal := total
		previousTotal = &stageTotal
	}

	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
