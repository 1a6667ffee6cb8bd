// Package ranking derives the leaderboard from stored submissions.
package ranking

import (
	"sort"

	"github.com/okian/abalone/internal/domain/model"
	"github.com/okian/abalone/internal/domain/types"
)

// Rank orders submissions by ascending score and assigns 1-based ranks.
// Equal scores keep their input order, so callers pass submissions in
// arrival order. The input slice is not modified.
func Rank(subs []model.Submission) []types.Entry {
	sorted := make([]model.Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score < sorted[j].Score
	})

	entries := make([]types.Entry, len(sorted))
	for i, s := range sorted {
		members := s.TeamMembers
		if members == nil {
			members = []string{}
		}
		entries[i] = types.Entry{
			Rank:     i + 1,
			Avatar:   s.Avatar,
			TeamName: s.TeamName,
			Members:  members,
			Score:    s.Score,
		}
	}
	return entries
}
