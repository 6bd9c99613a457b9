package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/pkg/export"
)

type mockStats struct {
	total        int
	byStatus     []models.StatusCount
	byCategory   []models.CategoryCount
	topAreas     []models.AreaCount
	verifiedOpen int
	err          error
}

func (m *mockStats) TotalIssues(ctx context.Context) (int, error) {
	return m.total, m.err
}

func (m *mockStats) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return m.byStatus, m.err
}

func (m *mockStats) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	return m.byCategory, m.err
}

func (m *mockStats) TopAreas(ctx context.Context, limit int) ([]models.AreaCount, error) {
	return m.topAreas, m.err
}

func (m *mockStats) CountVerifiedOpen(ctx context.Context) (int, error) {
	return m.verifiedOpen, m.err
}

type mockLedgerCounter struct {
	count int
	err   error
}

func (m *mockLedgerCounter) CountByAction(ctx context.Context, action models.LedgerAction) (int, error) {
	return m.count, m.err
}

func TestDashboardOverview(t *testing.T) {
	stats := &mockStats{
		total: 12,
		byStatus: []models.StatusCount{
			{Status: models.StatusPending, Count: 8},
			{Status: models.StatusResolved, Count: 4},
		},
		byCategory: []models.CategoryCount{
			{Category: models.CategoryGarbage, Count: 7},
			{Category: models.CategoryRoad, Count: 5},
		},
		topAreas:     []models.AreaCount{{AreaName: "Central", Count: 6}},
		verifiedOpen: 3,
	}
	svc := NewDashboardService(stats, &mockLedgerCounter{count: 41}, export.NewCSVExporter(), nil)

	res, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, res.TotalIssues)
	assert.Equal(t, 41, res.TotalVotes, "vote total comes from the ledger, not the counters")
	assert.Len(t, res.ByStatus, 2)
	assert.Equal(t, 3, res.VerifiedOpen)
}

func TestDashboardOverviewPropagatesStoreFailure(t *testing.T) {
	stats := &mockStats{err: assert.AnError}
	svc := NewDashboardService(stats, &mockLedgerCounter{}, export.NewCSVExporter(), nil)

	_, err := svc.Overview(context.Background())
	assert.Error(t, err)
}

func TestDashboardExportCSV(t *testing.T) {
	stats := &mockStats{
		byCategory: []models.CategoryCount{
			{Category: models.CategoryGarbage, Count: 7},
			{Category: models.CategoryRoad, Count: 5},
		},
	}
	svc := NewDashboardService(stats, &mockLedgerCounter{}, export.NewCSVExporter(), nil)

	payload, filename, err := svc.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "issues-by-category.csv", filename)
	assert.Equal(t, "category,count\nGarbage,7\nRoad/Pothole,5\n", string(payload))
}
