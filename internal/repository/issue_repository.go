package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/civicfix/civicfix-api/internal/models"
)

const issueColumns = `id, category, description, longitude, latitude, area_name, image_path, status, votes, likes, is_verified, owner_id, created_at, updated_at`

// IssueRepository provides database access for issue records.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new instance of IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts a new issue record.
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	if issue.Status == "" {
		issue.Status = models.StatusPending
	}

	const query = `INSERT INTO issues (id, category, description, longitude, latitude, area_name, image_path, status, votes, likes, is_verified, owner_id, created_at, updated_at)
		VALUES (:id, :category, :description, :longitude, :latitude, :area_name, :image_path, :status, :votes, :likes, :is_verified, :owner_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, issue); err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	return nil
}

// FindByID returns an issue by identifier.
func (r *IssueRepository) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id = $1 LIMIT 1`, issueColumns)
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find issue by id: %w", err)
	}
	return &issue, nil
}

// List returns issues matching the filter, newest first. Ranking happens
// in the caller; the store only provides a deterministic base order.
func (r *IssueRepository) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	baseQuery := fmt.Sprintf(`SELECT %s FROM issues WHERE 1=1`, issueColumns)
	var conditions []string
	var args []interface{}

	if filter.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY created_at DESC"

	var issues []models.Issue
	if err := r.db.SelectContext(ctx, &issues, baseQuery, args...); err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

// SetStatus writes the lifecycle status of an issue. A missing issue
// yields sql.ErrNoRows.
func (r *IssueRepository) SetStatus(ctx context.Context, id string, status models.IssueStatus) error {
	const query = `UPDATE issues SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set issue status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set issue status result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkVerified flips is_verified to true. The update is conditional on
// the flag still being false, so concurrent triggers are idempotent: only
// the first writer performs a write. It reports whether this call flipped
// the flag.
func (r *IssueRepository) MarkVerified(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE issues SET is_verified = TRUE, updated_at = $2 WHERE id = $1 AND is_verified = FALSE`
	res, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("mark issue verified: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark issue verified result: %w", err)
	}
	return affected > 0, nil
}
