package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/civicfix/civicfix-api/internal/dto"
	"github.com/civicfix/civicfix-api/internal/models"
	"github.com/civicfix/civicfix-api/internal/service"
	appErrors "github.com/civicfix/civicfix-api/pkg/errors"
	"github.com/civicfix/civicfix-api/pkg/response"
	"github.com/civicfix/civicfix-api/pkg/storage"
)

// IssueHandler wires the issue intake, listing and triage endpoints.
type IssueHandler struct {
	issues  *service.IssueService
	triage  *service.TriageService
	uploads *storage.LocalStorage
	maxSize int64
	logger  *zap.Logger
}

// NewIssueHandler creates a new handler.
func NewIssueHandler(issues *service.IssueService, triage *service.TriageService, uploads *storage.LocalStorage, maxUploadSize int64, logger *zap.Logger) *IssueHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueHandler{issues: issues, triage: triage, uploads: uploads, maxSize: maxUploadSize, logger: logger}
}

// Create reports a new issue. The payload is multipart form data with an
// optional image part.
func (h *IssueHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrLoginRequired)
		return
	}

	var req dto.CreateIssueRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid issue payload"))
		return
	}

	var imagePath *string
	fileHeader, err := c.FormFile("image")
	if err == nil && fileHeader != nil {
		if h.maxSize > 0 && fileHeader.Size > h.maxSize {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image exceeds the maximum upload size"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read image"))
			return
		}
		defer file.Close() //nolint:errcheck

		path, err := h.uploads.SaveStream(fileHeader.Filename, file)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image"))
			return
		}
		imagePath = &path
	}

	issue, err := h.issues.Create(c.Request.Context(), claims.UserID, req, imagePath)
	if err != nil {
		// An already stored image for a rejected issue is orphaned; clean it up.
		if imagePath != nil {
			if cleanupErr := h.uploads.Delete(*imagePath); cleanupErr != nil {
				h.logger.Warn("failed to remove orphaned upload", zap.String("path", *imagePath), zap.Error(cleanupErr))
			}
		}
		response.Error(c, err)
		return
	}

	response.Created(c, issue)
}

// List returns all issues ranked by priority score. Filters are optional
// query parameters; viewers with a token get per-issue vote state.
func (h *IssueHandler) List(c *gin.Context) {
	filter := models.IssueFilter{}
	if raw := c.Query("status"); raw != "" {
		status := models.IssueStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrInvalidStatus, ""))
			return
		}
		filter.Status = &status
	}
	if raw := c.Query("category"); raw != "" {
		category := models.IssueCategory(raw)
		if !category.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown issue category"))
			return
		}
		filter.Category = &category
	}

	viewerID := ""
	if claims := claimsFromContext(c); claims != nil {
		viewerID = claims.UserID
	}

	res, err := h.issues.ListRanked(c.Request.Context(), filter, viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Mine returns the authenticated user's own reports, ranked.
func (h *IssueHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrLoginRequired)
		return
	}

	res, err := h.issues.ListRanked(c.Request.Context(), models.IssueFilter{OwnerID: claims.UserID}, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Get returns a single issue with its current score.
func (h *IssueHandler) Get(c *gin.Context) {
	viewerID := ""
	if claims := claimsFromContext(c); claims != nil {
		viewerID = claims.UserID
	}

	issue, err := h.issues.Get(c.Request.Context(), c.Param("id"), viewerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, issue)
}

// Vote records the caller's vote on an issue.
func (h *IssueHandler) Vote(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrLoginRequired)
		return
	}

	votes, err := h.triage.Vote(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.VoteResponse{Votes: votes})
}

// Like records the caller's like on a resolved issue.
func (h *IssueHandler) Like(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrLoginRequired)
		return
	}

	likes, err := h.triage.Like(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.LikeResponse{Likes: likes})
}

// UpdateStatus transitions an issue's lifecycle state. Administrator only.
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrLoginRequired)
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	if err := h.triage.SetStatus(c.Request.Context(), claims.Email, c.Param("id"), models.IssueStatus(req.Status)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
