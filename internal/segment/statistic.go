package segment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// SplitStatistic scores every candidate bisection of values. The returned
// slice has len(values)-1 entries; entry i describes the split whose left
// partition is values[:i+1]. Undefined scores are NaN.
type SplitStatistic func(values []float64) []float64

// partialSums holds, for each candidate split, the sum and sum of squares of
// the left partition values[:k] and of the right partition values[k:].
type partialSums struct {
	left, leftSq   []float64
	right, rightSq []float64
}

func newPartialSums(values []float64) partialSums {
	n := len(values)
	sq := make([]float64, n)
	floats.MulTo(sq, values, values)

	ps := partialSums{
		left:    floats.CumSum(make([]float64, n-1), values[:n-1]),
		leftSq:  floats.CumSum(make([]float64, n-1), sq[:n-1]),
		right:   suffixSums(values[1:]),
		rightSq: suffixSums(sq[1:]),
	}
	return ps
}

// suffixSums returns out[i] = sum(s[i:]), accumulated from the tail.
func suffixSums(s []float64) []float64 {
	rev := make([]float64, len(s))
	copy(rev, s)
	floats.Reverse(rev)
	out := floats.CumSum(make([]float64, len(rev)), rev)
	floats.Reverse(out)
	return out
}

// CumulativeQ is the variance-reduction statistic
//
//	Q(k) = 1 - (SSE_left(k) + SSE_right(k)) / SSE_total
//
// i.e. the share of the total sum of squared deviations removed by cutting
// at k. Higher is better. Prefix and suffix sums keep it O(n).
//
// Left sums run over values[:n-1] and right sums over values[1:], so k
// ranges over 1..n-1 and neither partition is ever empty.
func CumulativeQ(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return []float64{}
	}

	ps := newPartialSums(values)
	total := floats.Sum(values)
	sse := floats.Dot(values, values) - total*total/float64(n)

	out := make([]float64, n-1)
	for i := range out {
		k := float64(i + 1)
		sseLeft := ps.leftSq[i] - ps.left[i]*ps.left[i]/k
		sseRight := ps.rightSq[i] - ps.right[i]*ps.right[i]/(float64(n)-k)
		out[i] = finiteOrNaN(1 - (sseLeft+sseRight)/sse)
	}
	return out
}

// CumulativeP is the mean of the bias-corrected coefficients of variation of
// the two partitions. Lower is better. A partition with fewer than two values
// or a zero sum has no defined coefficient, so its split scores NaN.
func CumulativeP(values []float64) []float64 {
	n := len(values)
	if n < 2 {
		return []float64{}
	}

	ps := newPartialSums(values)

	out := make([]float64, n-1)
	for i := range out {
		k := i + 1
		cvLeft := coefficientOfVariation(k, ps.left[i], ps.leftSq[i])
		cvRight := coefficientOfVariation(n-k, ps.right[i], ps.rightSq[i])
		out[i] = finiteOrNaN((cvLeft + cvRight) / 2)
	}
	return out
}

// coefficientOfVariation computes sqrt((m*SSQ/S^2 - 1) * m/(m-1)) from the
// count, sum and sum of squares of a partition.
func coefficientOfVariation(count int, sum, sumSq float64) float64 {
	if count < 2 || sum == 0 {
		return math.NaN()
	}
	m := float64(count)
	return math.Sqrt((m*sumSq/(sum*sum) - 1) * m / (m - 1))
}

// finiteOrNaN folds ±Inf into NaN. A constant series has SSE_total == 0 and
// rounding decides between 0/0 and x/0; both mean "no usable score".
func finiteOrNaN(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// statisticFor maps an objective onto its statistic and search direction.
func statisticFor(objective Objective) (SplitStatistic, Goal, error) {
	switch objective {
	case ObjectiveSHS:
		return CumulativeQ, Maximize, nil
	case ObjectiveMCV:
		return CumulativeP, Minimize, nil
	case ObjectiveCDA:
		return nil, 0, fmt.Errorf("%w: %q", ErrNotImplemented, objective)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownObjective, objective)
	}
}
