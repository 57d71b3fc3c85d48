package model

import "time"

// PullRequest is a closed pull request as listed on a repository page, before
// its detail and reviews are fetched.
type PullRequest struct {
	Number       int
	RepoFullName string
	Title        string
	Author       string // Empty when the author account was deleted.
	AuthorIsBot  bool
	Body         string
	CreatedAt    time.Time
	ClosedAt     time.Time
	MergedAt     time.Time // Zero when the pull request was closed without merge.
}

// PRDetail holds the counters only the single pull request endpoint reports
// reliably.
type PRDetail struct {
	Additions      int
	Deletions      int
	ChangedFiles   int
	Comments       int
	ReviewComments int
}

// PullRequestRecord is one row of the collected dataset. Records are built once
// by NewPullRequestRecord and never mutated afterwards.
type PullRequestRecord struct {
	RepoFullName   string
	Number         int
	CreatedAt      time.Time
	ClosedAt       time.Time
	MergedAt       time.Time
	ReviewHours    float64
	Additions      int
	Deletions      int
	ChangedFiles   int
	BodyLength     int
	Comments       int
	ReviewComments int
	HumanReviews   int
	Participants   int
	State          PRState
	Title          string
	Author         string
}

// NewPullRequestRecord assembles a record from the listed pull request, its
// detail counters and its human reviews. The second return value is false when
// the pull request does not qualify for the dataset: it needs at least one
// human review and more than one hour between creation and closure.
func NewPullRequestRecord(pr PullRequest, detail PRDetail, humanReviews []Review) (PullRequestRecord, bool) {
	hours, ok := ReviewHours(pr.CreatedAt, pr.ClosedAt)
	if !ok || hours <= MinReviewHours || len(humanReviews) < MinHumanReviews {
		return PullRequestRecord{}, false
	}

	state := PRStateClosed
	if !pr.MergedAt.IsZero() {
		state = PRStateMerged
	}

	return PullRequestRecord{
		RepoFullName:   pr.RepoFullName,
		Number:         pr.Number,
		CreatedAt:      pr.CreatedAt,
		ClosedAt:       pr.ClosedAt,
		MergedAt:       pr.MergedAt,
		ReviewHours:    hours,
		Additions:      detail.Additions,
		Deletions:      detail.Deletions,
		ChangedFiles:   detail.ChangedFiles,
		BodyLength:     len([]rune(pr.Body)),
		Comments:       detail.Comments,
		ReviewComments: detail.ReviewComments,
		HumanReviews:   len(humanReviews),
		Participants:   CountParticipants(pr.Author, humanReviews),
		State:          state,
		Title:          pr.Title,
		Author:         pr.Author,
	}, true
}

// CountParticipants returns the size of the set formed by the author and the
// reviewer logins. An empty author does not count.
func CountParticipants(author string, reviews []Review) int {
	seen := make(map[string]struct{}, len(reviews)+1)
	if author != "" {
		seen[author] = struct{}{}
	}
	for _, r := range reviews {
		if r.ReviewerLogin == "" {
			continue
		}
		seen[r.ReviewerLogin] = struct{}{}
	}
	return len(seen)
}

// Size returns the total number of changed lines.
func (r PullRequestRecord) Size() int {
	return r.Additions + r.Deletions
}
