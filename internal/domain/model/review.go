package model

import (
	"strings"
	"time"
)

// Review represents a review submitted on a pull request.
type Review struct {
	ID            int64
	ReviewerLogin string
	State         ReviewState
	SubmittedAt   time.Time
	IsBot         bool // Set from the account type reported by GitHub.
}

// HumanReviews returns the reviews not attributable to an automated account.
// A review counts as automated when GitHub flags the account as a bot, the
// login carries the "[bot]" suffix, or the login is listed in botLogins
// (compared case-insensitively).
func HumanReviews(reviews []Review, botLogins []string) []Review {
	human := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		if IsBotLogin(r.ReviewerLogin, r.IsBot, botLogins) {
			continue
		}
		human = append(human, r)
	}
	return human
}

// IsBotLogin reports whether the account is automated.
func IsBotLogin(login string, flaggedBot bool, botLogins []string) bool {
	if flaggedBot || strings.HasSuffix(strings.ToLower(login), "[bot]") {
		return true
	}
	for _, b := range botLogins {
		if strings.EqualFold(login, b) {
			return true
		}
	}
	return false
}
