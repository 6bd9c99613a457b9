package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/civicfix/civicfix-api/internal/dto"
	"github.com/civicfix/civicfix-api/internal/models"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
	"github.com/civicfix/civicfix-api/pkg/export"
)

type statsProvider interface {
	TotalIssues(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	TopAreas(ctx context.Context, limit int) ([]models.AreaCount, error)
	CountVerifiedOpen(ctx context.Context) (int, error)
}

type ledgerCounter interface {
	CountByAction(ctx context.Context, action models.LedgerAction) (int, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// topAreaLimit bounds the area breakdown to the largest groups.
const topAreaLimit = 5

// DashboardService composes the read-only aggregation report for
// operators. Total votes come from the ledger, which is the value the
// per-issue counters must agree with.
type DashboardService struct {
	stats  statsProvider
	ledger ledgerCounter
	csv    tableRenderer
	logger *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(stats statsProvider, ledger ledgerCounter, csv tableRenderer, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{stats: stats, ledger: ledger, csv: csv, logger: logger}
}

// Overview gathers current counts straight from the store.
func (s *DashboardService) Overview(ctx context.Context) (*dto.DashboardResponse, error) {
	total, err := s.stats.TotalIssues(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count issues")
	}
	byStatus, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count statuses")
	}
	byCategory, err := s.stats.CountByCategory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count categories")
	}
	topAreas, err := s.stats.TopAreas(ctx, topAreaLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count areas")
	}
	verifiedOpen, err := s.stats.CountVerifiedOpen(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count verified issues")
	}
	totalVotes, err := s.ledger.CountByAction(ctx, models.ActionVote)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count votes")
	}

	return &dto.DashboardResponse{
		TotalIssues:  total,
		TotalVotes:   totalVotes,
		ByStatus:     byStatus,
		ByCategory:   byCategory,
		TopAreas:     topAreas,
		VerifiedOpen: verifiedOpen,
	}, nil
}

// ExportCSV renders the category breakdown as a CSV download.
func (s *DashboardService) ExportCSV(ctx context.Context) ([]byte, string, error) {
	overview, err := s.Overview(ctx)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Header:  []string{"category", "count"},
		Records: make([][]string, 0, len(overview.ByCategory)),
	}
	for _, c := range overview.ByCategory {
		table.Records = append(table.Records, []string{string(c.Category), strconv.Itoa(c.Count)})
	}

	payload, err := s.csv.Render(table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, "issues-by-category.csv", nil
}
