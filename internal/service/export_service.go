package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/internal/scoring"
	"github.com/civicfix/civicfix-api/pkg/config"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
	"github.com/civicfix/civicfix-api/pkg/export"
)

type exportIssueStore interface {
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// ExportService implements the export gate and report rendering. The gate
// is a whole-population rank check recomputed on every request: an issue
// is exportable iff it is verified and currently among the top-N scored
// issues overall.
type ExportService struct {
	issues   exportIssueStore
	renderer reportRenderer
	logger   *zap.Logger
	triage   config.TriageConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(issues exportIssueStore, renderer reportRenderer, logger *zap.Logger, triage config.TriageConfig) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if triage.TopN <= 0 {
		triage.TopN = 5
	}
	return &ExportService{
		issues:   issues,
		renderer: renderer,
		logger:   logger,
		triage:   triage,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CanExport applies the gate predicate to an issue given the current
// top-N id set.
func CanExport(issue models.Issue, topIDs map[string]struct{}) bool {
	if !issue.IsVerified {
		return false
	}
	_, ok := topIDs[issue.ID]
	return ok
}

// Export renders the verified report for an issue, or fails with
// NotFound / ExportDenied.
func (s *ExportService) Export(ctx context.Context, issueID string) ([]byte, string, error) {
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}

	population, err := s.issues.List(ctx, models.IssueFilter{})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank issues")
	}

	now := s.now()
	topIDs := scoring.TopIDs(population, now, s.triage.TopN)
	if !CanExport(*issue, topIDs) {
		return nil, "", appErrors.Clone(appErrors.ErrExportDenied, "")
	}

	report := export.Report{
		IssueID:     issue.ID,
		Category:    string(issue.Category),
		Description: issue.Description,
		AreaName:    issue.AreaName,
		Longitude:   issue.Longitude,
		Latitude:    issue.Latitude,
		Status:      string(issue.Status),
		Votes:       issue.Votes,
		Likes:       issue.Likes,
		Score:       scoring.Score(*issue, now),
		Verified:    issue.IsVerified,
		ReportedAt:  issue.CreatedAt.Format(time.RFC3339),
	}
	payload, err := s.renderer.Render(report)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	filename := fmt.Sprintf("issue-report-%s.pdf", issue.ID)
	s.logger.Info("issue report exported", zap.String("issue_id", issue.ID))
	return payload, filename, nil
}
