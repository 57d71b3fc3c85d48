package model

// PRState represents the final state of a collected pull request.
type PRState string

const (
	PRStateMerged PRState = "merged"
	PRStateClosed PRState = "closed"
)

// ReviewState represents the state of a review.
type ReviewState string

const (
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
	ReviewStateCommented        ReviewState = "commented"
	ReviewStatePending          ReviewState = "pending"
	ReviewStateDismissed        ReviewState = "dismissed"
)

// Inclusion thresholds for the dataset.
const (
	MinHumanReviews = 1
	MinReviewHours  = 1.0
	MinClosedPRs    = 100
)
