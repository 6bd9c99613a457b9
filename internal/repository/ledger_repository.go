package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/civicfix/civicfix-api/internal/models"
)

// foreignKeyViolation is the PostgreSQL error code for FK breaches.
const foreignKeyViolation = "23503"

// ErrAlreadyRecorded signals that the (actor, issue, action) pair already
// exists in the ledger.
var ErrAlreadyRecorded = errors.New("ledger entry already recorded")

// ErrNotLikeable signals that the target issue is missing or not in the
// Resolved state required for likes.
var ErrNotLikeable = errors.New("issue missing or not resolved")

// LedgerRepository owns the append-only ledger of per-user actions and the
// counter increments paired with them. The composite UNIQUE constraint on
// (user_id, issue_id, action) makes the database the arbiter of
// first-writer-wins; the ledger write and the matching counter bump run in
// one transaction so no partial pair is ever visible.
type LedgerRepository struct {
	db *sqlx.DB
}

// NewLedgerRepository creates a new instance of LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// CastVote records a vote ledger entry and increments the issue's vote
// counter atomically. It returns the updated vote count. A duplicate
// (actor, issue) pair yields ErrAlreadyRecorded; a missing issue trips the
// issue_id foreign key on the insert and yields sql.ErrNoRows.
func (r *LedgerRepository) CastVote(ctx context.Context, userID, issueID string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin vote tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insert = `INSERT INTO ledger_entries (id, user_id, issue_id, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, issue_id, action) DO NOTHING`
	res, err := tx.ExecContext(ctx, insert, uuid.NewString(), userID, issueID, models.ActionVote, time.Now().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("record vote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("record vote result: %w", err)
	}
	if affected == 0 {
		return 0, ErrAlreadyRecorded
	}

	const increment = `UPDATE issues SET votes = votes + 1, updated_at = $2 WHERE id = $1 RETURNING votes`
	var votes int
	if err := tx.GetContext(ctx, &votes, increment, issueID, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sql.ErrNoRows
		}
		return 0, fmt.Errorf("increment votes: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit vote tx: %w", err)
	}
	return votes, nil
}

// CastLike records a like ledger entry and increments the issue's like
// counter atomically. Likes are only accepted while the issue is Resolved:
// the increment is conditional on status, and a failed condition rolls the
// whole pair back yielding ErrNotLikeable. A duplicate pair on a Resolved
// issue yields ErrAlreadyRecorded.
func (r *LedgerRepository) CastLike(ctx context.Context, userID, issueID string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin like tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const increment = `UPDATE issues SET likes = likes + 1, updated_at = $3 WHERE id = $1 AND status = $2 RETURNING likes`
	var likes int
	if err := tx.GetContext(ctx, &likes, increment, issueID, models.StatusResolved, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotLikeable
		}
		return 0, fmt.Errorf("increment likes: %w", err)
	}

	const insert = `INSERT INTO ledger_entries (id, user_id, issue_id, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, issue_id, action) DO NOTHING`
	res, err := tx.ExecContext(ctx, insert, uuid.NewString(), userID, issueID, models.ActionLike, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("record like: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("record like result: %w", err)
	}
	if affected == 0 {
		return 0, ErrAlreadyRecorded
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit like tx: %w", err)
	}
	return likes, nil
}

// HasActed reports whether the actor already holds a ledger entry for the
// given issue and action.
func (r *LedgerRepository) HasActed(ctx context.Context, userID, issueID string, action models.LedgerAction) (bool, error) {
	const query = `SELECT COUNT(*) FROM ledger_entries WHERE user_id = $1 AND issue_id = $2 AND action = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, issueID, action); err != nil {
		return false, fmt.Errorf("check ledger entry: %w", err)
	}
	return count > 0, nil
}

// CountByIssue returns the number of ledger entries for an issue and
// action. This is the authoritative value the issue counters must agree
// with.
func (r *LedgerRepository) CountByIssue(ctx context.Context, issueID string, action models.LedgerAction) (int, error) {
	const query = `SELECT COUNT(*) FROM ledger_entries WHERE issue_id = $1 AND action = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, issueID, action); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}

// IssueIDsByActor returns every issue id the actor holds a ledger entry
// for under the given action. Used to decorate listings with per-viewer
// vote state in one query.
func (r *LedgerRepository) IssueIDsByActor(ctx context.Context, userID string, action models.LedgerAction) ([]string, error) {
	const query = `SELECT issue_id FROM ledger_entries WHERE user_id = $1 AND action = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID, action); err != nil {
		return nil, fmt.Errorf("list ledger entries by actor: %w", err)
	}
	return ids, nil
}

// CountByAction returns the total number of ledger entries for an action
// across all issues.
func (r *LedgerRepository) CountByAction(ctx context.Context, action models.LedgerAction) (int, error) {
	const query = `SELECT COUNT(*) FROM ledger_entries WHERE action = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, action); err != nil {
		return 0, fmt.Errorf("count ledger actions: %w", err)
	}
	return count, nil
}
