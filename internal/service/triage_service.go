package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/internal/repository"
	"github.com/civicfix/civicfix-api/pkg/config"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
)

type triageLedger interface {
	CastVote(ctx context.Context, userID, issueID string) (int, error)
	CastLike(ctx context.Context, userID, issueID string) (int, error)
}

type triageIssueStore interface {
	SetStatus(ctx context.Context, id string, status models.IssueStatus) error
	MarkVerified(ctx context.Context, id string) (bool, error)
}

// TriageService applies community signals to issues: votes, likes, the
// auto-verification trigger, and administrator lifecycle transitions.
type TriageService struct {
	ledger  triageLedger
	issues  triageIssueStore
	metrics *MetricsService
	logger  *zap.Logger
	triage  config.TriageConfig
}

// NewTriageService constructs a TriageService.
func NewTriageService(ledger triageLedger, issues triageIssueStore, metrics *MetricsService, logger *zap.Logger, triage config.TriageConfig) *TriageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if triage.VoteThreshold <= 0 {
		triage.VoteThreshold = 5
	}
	return &TriageService{ledger: ledger, issues: issues, metrics: metrics, logger: logger, triage: triage}
}

// Vote records one vote per actor per issue and returns the updated
// count. When the count reaches the verification threshold the issue is
// flipped to verified through an idempotent conditional update, so
// concurrent voters crossing the threshold together are harmless.
func (s *TriageService) Vote(ctx context.Context, userID, issueID string) (int, error) {
	votes, err := s.ledger.CastVote(ctx, userID, issueID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyRecorded) {
			s.metrics.RecordDuplicateVote()
			return 0, appErrors.Clone(appErrors.ErrAlreadyVoted, "")
		}
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record vote")
	}
	s.metrics.RecordVote()

	if votes >= s.triage.VoteThreshold {
		flipped, err := s.issues.MarkVerified(ctx, issueID)
		if err != nil {
			// The vote itself stood; verification converges on a later
			// trigger because the update is conditional and re-runnable.
			s.logger.Warn("auto-verification update failed", zap.String("issue_id", issueID), zap.Error(err))
		} else if flipped {
			s.metrics.RecordVerification()
			s.logger.Info("issue auto-verified",
				zap.String("issue_id", issueID),
				zap.Int("votes", votes),
			)
		}
	}

	return votes, nil
}

// Like records one like per actor per Resolved issue and returns the
// updated count.
func (s *TriageService) Like(ctx context.Context, userID, issueID string) (int, error) {
	likes, err := s.ledger.CastLike(ctx, userID, issueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotLikeable) {
			return 0, appErrors.Clone(appErrors.ErrInvalidProblem, "")
		}
		if errors.Is(err, repository.ErrAlreadyRecorded) {
			return 0, appErrors.Clone(appErrors.ErrAlreadyLiked, "")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record like")
	}
	return likes, nil
}

// SetStatus writes a new lifecycle status. Only the configured
// administrator identity may transition issues; the three states may be
// set freely (no forward-only enforcement, matching the product
// behaviour observed in the field).
func (s *TriageService) SetStatus(ctx context.Context, actorEmail, issueID string, status models.IssueStatus) error {
	if !s.triage.IsAdministrator(actorEmail) {
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrInvalidStatus, "")
	}

	if err := s.issues.SetStatus(ctx, issueID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.logger.Info("issue status updated",
		zap.String("issue_id", issueID),
		zap.String("status", string(status)),
		zap.String("actor", actorEmail),
	)
	return nil
}

// IsAdministrator exposes the capability check for handlers and
// middleware so the comparison mechanism stays in one place.
func (s *TriageService) IsAdministrator(email string) bool {
	return s.triage.IsAdministrator(email)
}
