package segment

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// EligibilityMask reports, per row, whether a split may be placed there.
//
// Row r is provisionally eligible when the cumulative length through r and
// the cumulative length from r to the end both exceed minLength. Every
// ineligible row then also disqualifies its immediate neighbours, which
// keeps a one-row margin past the minimum-length boundary on each side.
//
// A split at k (left partition rows [0, k)) is legal when mask[k] is true
// and 1 <= k <= n-1. With non-negative lengths the eligible rows form one
// contiguous run; anything else means the lengths cannot honour the minimum
// and ErrNonContiguousMask is returned.
func EligibilityMask(lengths []float64, minLength float64) ([]bool, error) {
	n := len(lengths)
	if n == 0 {
		return []bool{}, nil
	}

	left := floats.CumSum(make([]float64, n), lengths)
	right := suffixSums(lengths)

	ineligible := make([]bool, n)
	for i := range lengths {
		ineligible[i] = left[i] <= minLength || right[i] <= minLength
	}

	mask := make([]bool, n)
	for i := range mask {
		broadened := ineligible[i] ||
			(i > 0 && ineligible[i-1]) ||
			(i < n-1 && ineligible[i+1])
		mask[i] = !broadened
	}

	if runs := eligibleRuns(mask); runs > 1 {
		return nil, fmt.Errorf("%w: %d separate eligible runs for minimum length %g", ErrNonContiguousMask, runs, minLength)
	}
	return mask, nil
}

// eligibleRuns counts maximal runs of true values.
func eligibleRuns(mask []bool) int {
	runs := 0
	for i, ok := range mask {
		if ok && (i == 0 || !mask[i-1]) {
			runs++
		}
	}
	return runs
}

// eligibleSplits returns the first and last legal split index, or ok=false
// when none exists.
func eligibleSplits(mask []bool) (first, last int, ok bool) {
	first, last = -1, -1
	for k := 1; k < len(mask); k++ {
		if !mask[k] {
			continue
		}
		if first < 0 {
			first = k
		}
		last = k
	}
	return first, last, first >= 0
}
