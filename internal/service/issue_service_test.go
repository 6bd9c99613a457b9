package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicfix/civicfix-api/internal/dto"
	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/pkg/config"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
)

type mockIssueStore struct {
	created    *models.Issue
	createErr  error
	byID       *models.Issue
	findErr    error
	listed     []models.Issue
	listErr    error
	lastFilter models.IssueFilter
}

func (m *mockIssueStore) Create(ctx context.Context, issue *models.Issue) error {
	if m.createErr != nil {
		return m.createErr
	}
	issue.ID = "generated"
	m.created = issue
	return nil
}

func (m *mockIssueStore) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.byID, nil
}

func (m *mockIssueStore) List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}

type mockActorLedger struct {
	ids []string
	err error
}

func (m *mockActorLedger) IssueIDsByActor(ctx context.Context, userID string, action models.LedgerAction) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ids, nil
}

var listNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newIssueServiceForTest(store *mockIssueStore, ledger *mockActorLedger) *IssueService {
	svc := NewIssueService(store, ledger, nil, nil, config.TriageConfig{TopN: 2})
	svc.now = func() time.Time { return listNow }
	return svc
}

func validCreateRequest() dto.CreateIssueRequest {
	return dto.CreateIssueRequest{
		Category:    string(models.CategoryRoad),
		Description: "pothole on main street",
		Longitude:   106.8,
		Latitude:    -6.2,
		AreaName:    "Central",
	}
}

func TestCreateIssueDefaultsToPending(t *testing.T) {
	store := &mockIssueStore{}
	svc := newIssueServiceForTest(store, &mockActorLedger{})

	issue, err := svc.Create(context.Background(), "u1", validCreateRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, issue.Status)
	assert.Equal(t, "u1", issue.OwnerID)
	assert.False(t, issue.IsVerified)
	assert.Zero(t, issue.Votes)
}

func TestCreateIssueRejectsZeroCoordinates(t *testing.T) {
	svc := newIssueServiceForTest(&mockIssueStore{}, &mockActorLedger{})

	req := validCreateRequest()
	req.Longitude = 0
	req.Latitude = 0

	_, err := svc.Create(context.Background(), "u1", req, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidLocation.Code, appErrors.FromError(err).Code)
}

func TestCreateIssueRejectsUnknownCategory(t *testing.T) {
	svc := newIssueServiceForTest(&mockIssueStore{}, &mockActorLedger{})

	req := validCreateRequest()
	req.Category = "Sinkholes"

	_, err := svc.Create(context.Background(), "u1", req, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateIssueRejectsMissingDescription(t *testing.T) {
	svc := newIssueServiceForTest(&mockIssueStore{}, &mockActorLedger{})

	req := validCreateRequest()
	req.Description = ""

	_, err := svc.Create(context.Background(), "u1", req, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetIssueNotFound(t *testing.T) {
	store := &mockIssueStore{findErr: sql.ErrNoRows}
	svc := newIssueServiceForTest(store, &mockActorLedger{})

	_, err := svc.Get(context.Background(), "missing", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestListRankedOrdersAndFlagsPriority(t *testing.T) {
	aged := func(id string, votes int, status models.IssueStatus) models.Issue {
		return models.Issue{
			ID:        id,
			Votes:     votes,
			Category:  models.CategoryOther,
			Status:    status,
			CreatedAt: listNow,
		}
	}
	store := &mockIssueStore{listed: []models.Issue{
		aged("p1", 5, models.StatusPending),
		aged("p2", 4, models.StatusPending),
		aged("p3", 3, models.StatusPending),
		aged("r1", 9, models.StatusResolved),
	}}
	svc := newIssueServiceForTest(store, &mockActorLedger{})

	res, err := svc.ListRanked(context.Background(), models.IssueFilter{}, "")
	require.NoError(t, err)
	require.Len(t, res.Issues, 4)

	// Scores order the whole listing, resolved issues included.
	assert.Equal(t, "r1", res.Issues[0].ID)

	// Priority marks the top 2 of the pending subset only.
	flags := map[string]bool{}
	for _, issue := range res.Issues {
		flags[issue.ID] = issue.Priority
	}
	assert.True(t, flags["p1"])
	assert.True(t, flags["p2"])
	assert.False(t, flags["p3"])
	assert.False(t, flags["r1"], "resolved issues never carry the priority flag")
}

func TestListRankedDecoratesVoteState(t *testing.T) {
	store := &mockIssueStore{listed: []models.Issue{
		{ID: "i1", Category: models.CategoryOther, Status: models.StatusPending, CreatedAt: listNow},
		{ID: "i2", Category: models.CategoryOther, Status: models.StatusPending, CreatedAt: listNow},
	}}
	ledger := &mockActorLedger{ids: []string{"i2"}}
	svc := newIssueServiceForTest(store, ledger)

	res, err := svc.ListRanked(context.Background(), models.IssueFilter{}, "u1")
	require.NoError(t, err)

	voted := map[string]bool{}
	for _, issue := range res.Issues {
		voted[issue.ID] = issue.HasVoted
	}
	assert.False(t, voted["i1"])
	assert.True(t, voted["i2"])
}

func TestListRankedAnonymousSkipsLedger(t *testing.T) {
	store := &mockIssueStore{listed: []models.Issue{
		{ID: "i1", Category: models.CategoryOther, Status: models.StatusPending, CreatedAt: listNow},
	}}
	ledger := &mockActorLedger{err: assert.AnError}
	svc := newIssueServiceForTest(store, ledger)

	// No viewer id, so the failing ledger is never consulted.
	res, err := svc.ListRanked(context.Background(), models.IssueFilter{}, "")
	require.NoError(t, err)
	assert.False(t, res.Issues[0].HasVoted)
}
