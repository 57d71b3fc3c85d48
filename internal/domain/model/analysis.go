package model

import "time"

// Variable names a numeric column of the dataset used in the analysis.
type Variable string

const (
	VariableSize         Variable = "size"
	VariableBodyLength   Variable = "body_length"
	VariableParticipants Variable = "participants"
	VariableHumanReviews Variable = "human_reviews"
	VariableReviewHours  Variable = "review_hours"
)

// Value returns the variable's value for r. Size is additions plus deletions.
func (v Variable) Value(r PullRequestRecord) float64 {
	switch v {
	case VariableSize:
		return float64(r.Size())
	case VariableBodyLength:
		return float64(r.BodyLength)
	case VariableParticipants:
		return float64(r.Participants)
	case VariableHumanReviews:
		return float64(r.HumanReviews)
	case VariableReviewHours:
		return r.ReviewHours
	default:
		return 0
	}
}

// Correlation is the association between a characteristic and an outcome.
// Coefficients and p-values are NaN when they are undefined, e.g. a constant
// column or fewer than three observations.
type Correlation struct {
	X         Variable
	Y         Variable
	N         int
	Spearman  float64
	SpearmanP float64
	Pearson   float64
	PearsonP  float64
}

// GroupComparison is a Mann-Whitney U test of one variable between merged and
// closed pull requests.
type GroupComparison struct {
	Variable     Variable
	MergedN      int
	ClosedN      int
	MergedMedian float64
	ClosedMedian float64
	U            float64 // U statistic of the merged group.
	Z            float64
	P            float64
}

// Analysis is the full statistical summary of a dataset.
type Analysis struct {
	GeneratedAt  time.Time
	Records      int
	Repositories int
	Merged       int
	Closed       int
	Correlations []Correlation
	Comparisons  []GroupComparison
}
