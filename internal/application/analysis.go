package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ericfisherdev/prstudy/internal/domain/model"
	"github.com/ericfisherdev/prstudy/internal/domain/port/driven"
)

// correlationPairs lists the characteristic/outcome pairs that are tested.
var correlationPairs = []struct{ x, y model.Variable }{
	{model.VariableSize, model.VariableReviewHours},
	{model.VariableBodyLength, model.VariableReviewHours},
	{model.VariableParticipants, model.VariableReviewHours},
	{model.VariableHumanReviews, model.VariableReviewHours},
	{model.VariableSize, model.VariableHumanReviews},
	{model.VariableBodyLength, model.VariableHumanReviews},
	{model.VariableParticipants, model.VariableHumanReviews},
}

// comparedVariables are tested between merged and closed pull requests.
var comparedVariables = []model.Variable{
	model.VariableSize,
	model.VariableBodyLength,
	model.VariableParticipants,
	model.VariableHumanReviews,
	model.VariableReviewHours,
}

// AnalysisService computes the statistical summary of a collected dataset.
type AnalysisService struct {
	source driven.RecordSource
	now    func() time.Time
}

// NewAnalysisService creates an AnalysisService reading from source.
func NewAnalysisService(source driven.RecordSource) *AnalysisService {
	return &AnalysisService{source: source, now: time.Now}
}

// Run loads the dataset and analyzes it.
func (s *AnalysisService) Run(ctx context.Context) (model.Analysis, error) {
	records, err := s.source.LoadAll(ctx)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("load dataset: %w", err)
	}

	slog.Info("dataset loaded", "records", len(records))

	a := Analyze(records)
	a.GeneratedAt = s.now().UTC()
	return a, nil
}

// Analyze computes correlations over all records and merged/closed group
// comparisons.
func Analyze(records []model.PullRequestRecord) model.Analysis {
	a := model.Analysis{Records: len(records)}

	repos := make(map[string]struct{})
	for _, r := range records {
		repos[r.RepoFullName] = struct{}{}
		if r.State == model.PRStateMerged {
			a.Merged++
		} else {
			a.Closed++
		}
	}
	a.Repositories = len(repos)

	for _, p := range correlationPairs {
		a.Correlations = append(a.Correlations, correlate(records, p.x, p.y))
	}
	for _, v := range comparedVariables {
		a.Comparisons = append(a.Comparisons, compareGroups(records, v))
	}

	return a
}

func column(records []model.PullRequestRecord, v model.Variable) []float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = v.Value(r)
	}
	return values
}

func correlate(records []model.PullRequestRecord, x, y model.Variable) model.Correlation {
	xs, ys := column(records, x), column(records, y)
	c := model.Correlation{
		X:         x,
		Y:         y,
		N:         len(records),
		Spearman:  math.NaN(),
		SpearmanP: math.NaN(),
		Pearson:   math.NaN(),
		PearsonP:  math.NaN(),
	}
	if c.N < 3 {
		return c
	}

	c.Pearson = stat.Correlation(xs, ys, nil)
	c.PearsonP = correlationPValue(c.Pearson, c.N)
	c.Spearman = stat.Correlation(ranks(xs), ranks(ys), nil)
	c.SpearmanP = correlationPValue(c.Spearman, c.N)
	return c
}

// correlationPValue is the two-sided p-value of the t-test for a correlation
// coefficient r over n observations.
func correlationPValue(r float64, n int) float64 {
	if math.IsNaN(r) || n < 3 {
		return math.NaN()
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// ranks assigns 1-based ranks, giving tied values the average of the ranks
// they span.
func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case values[a] < values[b]:
			return -1
		case values[a] > values[b]:
			return 1
		default:
			return 0
		}
	})

	out := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && values[idx[j]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			out[idx[k]] = avg
		}
		i = j
	}
	return out
}

func compareGroups(records []model.PullRequestRecord, v model.Variable) model.GroupComparison {
	var merged, closed []float64
	for _, r := range records {
		if r.State == model.PRStateMerged {
			merged = append(merged, v.Value(r))
		} else {
			closed = append(closed, v.Value(r))
		}
	}

	g := model.GroupComparison{
		Variable:     v,
		MergedN:      len(merged),
		ClosedN:      len(closed),
		MergedMedian: median(merged),
		ClosedMedian: median(closed),
		U:            math.NaN(),
		Z:            math.NaN(),
		P:            math.NaN(),
	}
	if len(merged) == 0 || len(closed) == 0 {
		return g
	}

	g.U, g.Z, g.P = mannWhitneyU(merged, closed)
	return g
}

// mannWhitneyU returns the U statistic of sample a and the two-sided p-value
// of the normal approximation with tie and continuity correction.
func mannWhitneyU(a, b []float64) (u, z, p float64) {
	n1, n2 := float64(len(a)), float64(len(b))
	n := n1 + n2

	combined := make([]float64, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	r := ranks(combined)

	var rankSum float64
	for i := range a {
		rankSum += r[i]
	}
	u = rankSum - n1*(n1+1)/2

	var tieTerm float64
	for _, t := range tieCounts(combined) {
		tieTerm += t*t*t - t
	}

	mu := n1 * n2 / 2
	sigma := math.Sqrt(n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1))))
	if sigma == 0 {
		return u, math.NaN(), math.NaN()
	}

	z = math.Max(math.Abs(u-mu)-0.5, 0) / sigma
	if u < mu {
		z = -z
	}
	p = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return u, z, math.Min(p, 1)
}

// tieCounts returns the size of every group of equal values.
func tieCounts(values []float64) []float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var counts []float64
	for i := 0; i < len(sorted); {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > 1 {
			counts = append(counts, float64(j-i))
		}
		i = j
	}
	return counts
}

// median is the empirical median of values, NaN when empty. For an even
// count it is the lower of the two middle values.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
