// Package scoring implements the priority scoring and ranking rules of
// the issue triage engine. Everything here is a pure function of its
// inputs so rankings are reproducible and directly testable.
package scoring

import (
	"sort"
	"time"

	"github.com/civicfix/civicfix-api/internal/models"
)

// VerifiedBonus is added to the score of community-verified issues.
const VerifiedBonus = 5

// Score computes the priority score of an issue snapshot at the given
// instant:
//
//	votes*2 + whole elapsed days + category weight + 5 if verified
//
// Partial days contribute nothing; negative ages (clock skew) clamp to 0.
func Score(issue models.Issue, now time.Time) int {
	score := issue.Votes * 2
	score += ageInDays(issue.CreatedAt, now)
	score += issue.Category.Weight()
	if issue.IsVerified {
		score += VerifiedBonus
	}
	return score
}

// Ranked pairs an issue with its computed score.
type Ranked struct {
	Issue models.Issue
	Score int
}

// Rank orders issues by score descending. The sort is stable: equal
// scores keep their original relative order so repeated runs over the
// same snapshot produce identical rankings.
func Rank(issues []models.Issue, now time.Time) []Ranked {
	ranked := make([]Ranked, len(issues))
	for i, issue := range issues {
		ranked[i] = Ranked{Issue: issue, Score: Score(issue, now)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// TopIDs returns the ids of the first n entries of Rank over the given
// population.
func TopIDs(issues []models.Issue, now time.Time, n int) map[string]struct{} {
	ranked := Rank(issues, now)
	if n > len(ranked) {
		n = len(ranked)
	}
	ids := make(map[string]struct{}, n)
	for _, r := range ranked[:n] {
		ids[r.Issue.ID] = struct{}{}
	}
	return ids
}

func ageInDays(createdAt, now time.Time) int {
	if now.Before(createdAt) {
		return 0
	}
	return int(now.Sub(createdAt).Hours() / 24)
}
