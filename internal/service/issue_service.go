package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/civicfix/civicfix-api/internal/dto"
	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/internal/scoring"
	"github.com/civicfix/civicfix-api/pkg/config"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
)

type issueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
}

type actorLedger interface {
	IssueIDsByActor(ctx context.Context, userID string, action models.LedgerAction) ([]string, error)
}

// IssueService covers issue intake and ranked listings.
type IssueService struct {
	issues    issueStore
	ledger    actorLedger
	validator *validator.Validate
	logger    *zap.Logger
	triage    config.TriageConfig
	now       func() time.Time
}

// NewIssueService constructs an IssueService.
func NewIssueService(issues issueStore, ledger actorLedger, validate *validator.Validate, logger *zap.Logger, triage config.TriageConfig) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if triage.TopN <= 0 {
		triage.TopN = 5
	}
	return &IssueService{
		issues:    issues,
		ledger:    ledger,
		validator: validate,
		logger:    logger,
		triage:    triage,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create persists a new issue for the given owner. Coordinates are
// immutable after this point; a missing or zero pair is rejected.
func (s *IssueService) Create(ctx context.Context, ownerID string, req dto.CreateIssueRequest, imagePath *string) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}
	if req.Longitude == 0 && req.Latitude == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidLocation, "")
	}
	category := models.IssueCategory(req.Category)
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown issue category")
	}

	issue := &models.Issue{
		Category:    category,
		Description: req.Description,
		Longitude:   req.Longitude,
		Latitude:    req.Latitude,
		AreaName:    req.AreaName,
		ImagePath:   imagePath,
		Status:      models.StatusPending,
		OwnerID:     ownerID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}

	s.logger.Info("issue created",
		zap.String("issue_id", issue.ID),
		zap.String("category", string(issue.Category)),
		zap.String("area", issue.AreaName),
	)
	return issue, nil
}

// Get returns a single issue with its current score.
func (s *IssueService) Get(ctx context.Context, id, viewerID string) (*dto.RankedIssue, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}

	ranked := dto.RankedIssue{Issue: *issue, Score: scoring.Score(*issue, s.now())}
	if viewerID != "" {
		voted, err := s.votedSet(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		_, ranked.HasVoted = voted[issue.ID]
	}
	return &ranked, nil
}

// ListRanked returns the issues matching the filter ordered by priority
// score. The priority flag marks membership in the top-N computed over
// the pending subset of the listing, mirroring the home page behaviour;
// the export gate ranks the whole population instead.
func (s *IssueService) ListRanked(ctx context.Context, filter models.IssueFilter, viewerID string) (*dto.IssueListResponse, error) {
	issues, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}

	now := s.now()
	pending := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Status == models.StatusPending {
			pending = append(pending, issue)
		}
	}
	topIDs := scoring.TopIDs(pending, now, s.triage.TopN)

	var voted map[string]struct{}
	if viewerID != "" {
		voted, err = s.votedSet(ctx, viewerID)
		if err != nil {
			return nil, err
		}
	}

	ranked := scoring.Rank(issues, now)
	result := make([]dto.RankedIssue, 0, len(ranked))
	for _, r := range ranked {
		entry := dto.RankedIssue{Issue: r.Issue, Score: r.Score}
		_, entry.Priority = topIDs[r.Issue.ID]
		if voted != nil {
			_, entry.HasVoted = voted[r.Issue.ID]
		}
		result = append(result, entry)
	}

	return &dto.IssueListResponse{Issues: result, GeneratedAt: now}, nil
}

func (s *IssueService) votedSet(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	ids, err := s.ledger.IssueIDsByActor(ctx, viewerID, models.ActionVote)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vote history")
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
