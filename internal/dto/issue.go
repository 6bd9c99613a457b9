package dto

import (
	"time"

	"github.com/civicfix/civicfix-api/internal/models"
)

// CreateIssueRequest is the multipart form payload for reporting a problem.
// The image part is handled separately by the upload storage.
type CreateIssueRequest struct {
	Category    string  `form:"category" validate:"required"`
	Description string  `form:"description" validate:"required,max=2000"`
	Longitude   float64 `form:"longitude"`
	Latitude    float64 `form:"latitude"`
	AreaName    string  `form:"area_name" validate:"required,max=200"`
}

// RankedIssue decorates an issue with its priority score and rank data
// for listing responses.
type RankedIssue struct {
	models.Issue
	Score    int  `json:"score"`
	Priority bool `json:"priority"`
	HasVoted bool `json:"has_voted"`
}

// VoteResponse reports the vote counter after a successful vote.
type VoteResponse struct {
	Votes int `json:"votes"`
}

// LikeResponse reports the like counter after a successful like.
type LikeResponse struct {
	Likes int `json:"likes"`
}

// UpdateStatusRequest carries the new lifecycle status for an issue.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// IssueListResponse wraps a ranked listing.
type IssueListResponse struct {
	Issues      []RankedIssue `json:"issues"`
	GeneratedAt time.Time     `json:"generated_at"`
}
