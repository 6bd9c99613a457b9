package dto

import "github.com/civicfix/civicfix-api/internal/models"

// DashboardResponse aggregates repository-wide counts for the operator
// dashboard. It reflects store state at query time; nothing is cached.
type DashboardResponse struct {
	TotalIssues  int                    `json:"total_issues"`
	TotalVotes   int                    `json:"total_votes"`
	ByStatus     []models.StatusCount   `json:"by_status"`
	ByCategory   []models.CategoryCount `json:"by_category"`
	TopAreas     []models.AreaCount     `json:"top_areas"`
	VerifiedOpen int                    `json:"verified_open"`
}
