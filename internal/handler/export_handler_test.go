package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/internal/service"
	"github.com/civicfix/civicfix-api/pkg/config"
	"github.com/civicfix/civicfix-api/pkg/export"
)

type fakeRenderer struct{}

func (fakeRenderer) Render(report export.Report) ([]byte, error) {
	return []byte("%PDF-1.4 fake"), nil
}

func newExportHandlerForTest(store *fakeIssueStore) *ExportHandler {
	svc := service.NewExportService(store, fakeRenderer{}, nil, config.TriageConfig{TopN: 5})
	return NewExportHandler(svc)
}

func TestExportDeniedForUnverifiedIssue(t *testing.T) {
	issue := models.Issue{
		ID:        "i1",
		Category:  models.CategoryRoad,
		Status:    models.StatusPending,
		Votes:     50,
		CreatedAt: time.Now().UTC(),
	}
	store := &fakeIssueStore{byID: &issue, listed: []models.Issue{issue}}
	h := newExportHandlerForTest(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/issues/i1/export", "")
	c.Params = gin.Params{{Key: "id", Value: "i1"}}

	h.Export(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "EXPORT_DENIED")
}

func TestExportStreamsPDF(t *testing.T) {
	issue := models.Issue{
		ID:         "i1",
		Category:   models.CategoryRoad,
		Status:     models.StatusPending,
		Votes:      10,
		IsVerified: true,
		CreatedAt:  time.Now().UTC(),
	}
	store := &fakeIssueStore{byID: &issue, listed: []models.Issue{issue}}
	h := newExportHandlerForTest(store)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, http.MethodGet, "/issues/i1/export", "")
	c.Params = gin.Params{{Key: "id", Value: "i1"}}

	h.Export(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "issue-report-i1.pdf")
	assert.Contains(t, rec.Body.String(), "%PDF")
}
