package model

import (
	"fmt"
	"time"
)

// GitHubTimeLayout is the timestamp format used by the GitHub REST API.
const GitHubTimeLayout = "2006-01-02T15:04:05Z"

// ElapsedHours returns the hours between two GitHub timestamps. The boolean is
// false when either timestamp is empty or cannot be parsed.
func ElapsedHours(createdAt, closedAt string) (float64, bool) {
	if createdAt == "" || closedAt == "" {
		return 0, false
	}

	created, err := parseGitHubTime(createdAt)
	if err != nil {
		return 0, false
	}
	closed, err := parseGitHubTime(closedAt)
	if err != nil {
		return 0, false
	}

	return ReviewHours(created, closed)
}

// ReviewHours returns the hours elapsed from createdAt to closedAt. A zero
// time on either side means the value is undefined.
func ReviewHours(createdAt, closedAt time.Time) (float64, bool) {
	if createdAt.IsZero() || closedAt.IsZero() {
		return 0, false
	}
	return closedAt.Sub(createdAt).Seconds() / 3600, true
}

func parseGitHubTime(s string) (time.Time, error) {
	t, err := time.Parse(GitHubTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse github time %q: %w", s, err)
	}
	return t, nil
}
