package segment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// OptimalBisections finds the best legal split of one window.
//
// Each variable is scored with stat over the same candidate range; the
// composite score is the mean across variables. Candidates come from
// EligibilityMask(lengths, minLength). The returned indices are local to the
// window (1 <= k <= len(lengths)-1) and ascending. With TieAll every index
// that attains the extreme composite score is returned, with TieFirst only
// the leftmost one.
//
// NaN composite scores never win. If no index is eligible, or every eligible
// score is NaN, the window cannot be split and an error wrapping
// ErrInfeasibleConstraint is returned.
func OptimalBisections(variables [][]float64, lengths []float64, minLength float64, stat SplitStatistic, goal Goal, ties TieMode) ([]int, error) {
	if len(variables) == 0 {
		return nil, ErrNoVariables
	}
	n := len(lengths)
	for i, v := range variables {
		if len(v) != n {
			return nil, fmt.Errorf("%w: variable %d has %d values for %d lengths", ErrVariableCount, i, len(v), n)
		}
	}

	mask, err := EligibilityMask(lengths, minLength)
	if err != nil {
		return nil, err
	}
	first, last, ok := eligibleSplits(mask)
	if !ok {
		return nil, fmt.Errorf("%w: %d rows totalling %g with minimum %g", ErrNoEligibleSplit, n, floats.Sum(lengths), minLength)
	}

	// scores[j] belongs to split first+j.
	scores := make([]float64, last-first+1)
	for _, v := range variables {
		floats.Add(scores, stat(v)[first-1:last])
	}
	floats.Scale(1/float64(len(variables)), scores)

	best, found := extreme(scores, goal)
	if !found {
		return nil, fmt.Errorf("%w: splits %d..%d", ErrNoComparableSplit, first, last)
	}

	var splits []int
	for j, s := range scores {
		if s != best {
			continue
		}
		splits = append(splits, first+j)
		if ties == TieFirst {
			break
		}
	}
	return splits, nil
}

// extreme returns the maximum (or minimum) of the non-NaN scores.
func extreme(scores []float64, goal Goal) (float64, bool) {
	best := math.NaN()
	for _, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		if math.IsNaN(best) ||
			(goal == Maximize && s > best) ||
			(goal == Minimize && s < best) {
			best = s
		}
	}
	return best, !math.IsNaN(best)
}
