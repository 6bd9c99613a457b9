package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/civicfix/civicfix-api/internal/models"
)

// StatsRepository exposes read-only aggregation queries for the operator
// dashboard. No caching sits in front of these: results reflect store
// state at query time.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository instantiates the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// TotalIssues returns the number of issue records.
func (r *StatsRepository) TotalIssues(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM issues`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count issues: %w", err)
	}
	return total, nil
}

// CountByStatus returns per-status issue counts.
func (r *StatsRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM issues GROUP BY status ORDER BY status ASC`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count issues by status: %w", err)
	}
	return counts, nil
}

// CountByCategory returns per-category issue counts, largest first.
// Category name breaks ties so the ordering is deterministic.
func (r *StatsRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT category, COUNT(*) AS count FROM issues GROUP BY category ORDER BY count DESC, category ASC`
	var counts []models.CategoryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count issues by category: %w", err)
	}
	return counts, nil
}

// TopAreas returns the issue counts of the largest area groups, largest
// first, limited to the requested number. Area name breaks ties.
func (r *StatsRepository) TopAreas(ctx context.Context, limit int) ([]models.AreaCount, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `SELECT area_name, COUNT(*) AS count FROM issues GROUP BY area_name ORDER BY count DESC, area_name ASC LIMIT $1`
	var counts []models.AreaCount
	if err := r.db.SelectContext(ctx, &counts, query, limit); err != nil {
		return nil, fmt.Errorf("count issues by area: %w", err)
	}
	return counts, nil
}

// CountVerifiedOpen returns the number of verified issues not yet resolved.
func (r *StatsRepository) CountVerifiedOpen(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM issues WHERE is_verified = TRUE AND status <> $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, models.StatusResolved); err != nil {
		return 0, fmt.Errorf("count verified open issues: %w", err)
	}
	return total, nil
}
