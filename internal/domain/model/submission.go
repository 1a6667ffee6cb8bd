// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Submission is one team's scored upload. It is created only after scoring
// succeeds and is never modified afterwards.
type Submission struct {
	ID          uuid.UUID
	TeamName    string
	TeamMembers []string
	Avatar      string  // optional; empty when unset
	Score       float64 // RMSE against the reference answers, lower is better
	SubmittedAt time.Time
}

// NewSubmission builds a Submission with a fresh id. submittedAt is stored in UTC.
func NewSubmission(teamName string, members []string, score float64, submittedAt time.Time) Submission {
	return Submission{
		ID:          uuid.New(),
		TeamName:    teamName,
		TeamMembers: members,
		Score:       score,
		SubmittedAt: submittedAt.UTC(),
	}
}

// SplitMembers splits the raw comma-separated member list literally.
// Entries are not trimmed and empty entries are kept: "Alice, Bob" yields
// ["Alice", " Bob"].
func SplitMembers(raw string) []string {
	return strings.Split(raw, ",")
}

// CountMembers counts the entries of a split member list that name someone.
// Blank entries left by stray commas are not people.
func CountMembers(members []string) int {
	n := 0
	for _, m := range members {
		if strings.TrimSpace(m) != "" {
			n++
		}
	}
	return n
}
