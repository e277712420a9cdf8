package domain

import (
	"strings"
	"time"
)

// ContributionKind distinguishes a brand new cheatsheet from an edit to an existing one.
type ContributionKind string

const (
	ContributionNew         ContributionKind = "new"
	ContributionImprovement ContributionKind = "improvement"
)

// ParseContributionKind normalises raw. Empty input means a new cheatsheet.
func ParseContributionKind(raw string) (ContributionKind, bool) {
	switch k := ContributionKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case "":
		return ContributionNew, true
	case ContributionNew, ContributionImprovement:
		return k, true
	}
	return "", false
}

// Contribution is a submitted cheatsheet awaiting review.
type Contribution struct {
	ID          string           `json:"id"`
	Kind        ContributionKind `json:"kind"`
	Cheatsheet  string           `json:"cheatsheet,omitempty"`
	Title       string           `json:"title,omitempty"`
	Category    Category         `json:"category,omitempty"`
	Content     string           `json:"content"`
	Email       string           `json:"email,omitempty"`
	SubmittedAt time.Time        `json:"submittedAt"`
}
