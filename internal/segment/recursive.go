package segment

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// series is the owned working copy of one segmentation call: rows sorted by
// chainage, incomplete rows removed. Windows over it are sub-slices, never
// copies.
type series struct {
	values  [][]float64 // values[v][i] is variable v at row i
	lengths []float64
}

func (s *series) len() int {
	return len(s.lengths)
}

// window returns the variables restricted to rows [lo, hi).
func (s *series) window(lo, hi int) [][]float64 {
	w := make([][]float64, len(s.values))
	for v := range s.values {
		w[v] = s.values[v][lo:hi]
	}
	return w
}

func (s *series) segmentLength(lo, hi int) float64 {
	return roundLength(floats.Sum(s.lengths[lo:hi]))
}

// splitter bisects a series until every segment fits the maximum length.
type splitter struct {
	stat   SplitStatistic
	goal   Goal
	ties   TieMode
	rng    LengthRange
	logger *zap.SugaredLogger
}

// split runs the bisection rounds and returns the final split points and the
// number of rounds. The first round bisects the whole series; each later
// round bisects, on its own window, every segment still longer than the
// maximum. Each round adds at least one interior split to every over-long
// segment or fails, so at most n rounds are possible.
func (sp *splitter) split(s *series) ([]int, int, error) {
	n := s.len()

	splits, err := OptimalBisections(s.values, s.lengths, sp.rng.Min, sp.stat, sp.goal, sp.ties)
	if err != nil {
		return nil, 0, fmt.Errorf("initial bisection of %d rows: %w", n, err)
	}
	rounds := 1

	for {
		bounds := boundaries(splits, n)
		over := sp.overLong(s, bounds)
		sp.logger.Debugw("bisection round complete",
			"round", rounds,
			"splits", len(splits),
			"over_long", len(over),
		)
		if len(over) == 0 {
			return splits, rounds, nil
		}
		if rounds >= n {
			return nil, rounds, fmt.Errorf("%w after %d rounds", ErrNotConverged, rounds)
		}

		var added []int
		for _, seg := range over {
			lo, hi := bounds[seg], bounds[seg+1]
			local, err := OptimalBisections(s.window(lo, hi), s.lengths[lo:hi], sp.rng.Min, sp.stat, sp.goal, sp.ties)
			if err != nil {
				return nil, rounds, fmt.Errorf("segment rows [%d, %d) of length %g exceeds maximum %g: %w",
					lo, hi, s.segmentLength(lo, hi), sp.rng.Max, err)
			}
			for _, k := range local {
				added = append(added, lo+k)
			}
		}
		splits = mergeSplits(splits, added)
		rounds++
	}
}

// overLong returns the positions (in bounds) of segments longer than the
// maximum.
func (sp *splitter) overLong(s *series, bounds []int) []int {
	var over []int
	for i := 0; i+1 < len(bounds); i++ {
		if s.segmentLength(bounds[i], bounds[i+1]) > sp.rng.Max {
			over = append(over, i)
		}
	}
	return over
}

// boundaries brackets the split points with 0 and n.
func boundaries(splits []int, n int) []int {
	b := make([]int, 0, len(splits)+2)
	b = append(b, 0)
	b = append(b, splits...)
	return append(b, n)
}

// mergeSplits returns the sorted union of two split sets.
func mergeSplits(splits, added []int) []int {
	merged := make([]int, 0, len(splits)+len(added))
	merged = append(merged, splits...)
	merged = append(merged, added...)
	slices.Sort(merged)
	return slices.Compact(merged)
}
