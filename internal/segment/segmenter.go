// Package segment partitions measurements taken along a road's chainage into
// contiguous, internally homogeneous segments.
//
// The engine bisects the series at the split that best separates it according
// to the chosen objective (variance reduction for SHS, coefficient of
// variation for MCV), subject to a minimum segment length, and keeps bisecting
// any segment longer than the maximum until every segment fits.
package segment

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Segmenter runs one segmentation objective. It holds no per-call state and
// is safe for concurrent use.
type Segmenter struct {
	objective Objective
	stat      SplitStatistic
	goal      Goal
	ties      TieMode
	logger    *zap.SugaredLogger
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithTieMode selects how tied optimal splits are handled. The default is
// TieAll.
func WithTieMode(mode TieMode) Option {
	return func(s *Segmenter) {
		s.ties = mode
	}
}

// WithLogger sets the logger used for per-round debug output.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Segmenter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSegmenter creates a Segmenter for objective. Unknown objectives and the
// unimplemented CDA objective are rejected here rather than at Segment time.
func NewSegmenter(objective Objective, opts ...Option) (*Segmenter, error) {
	statistic, goal, err := statisticFor(objective)
	if err != nil {
		return nil, err
	}

	s := &Segmenter{
		objective: objective,
		stat:      statistic,
		goal:      goal,
		ties:      TieAll,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run is a convenience wrapper around NewSegmenter and Segmenter.Segment.
func Run(obs []Observation, objective Objective, lengthRange *LengthRange, opts ...Option) (*Result, error) {
	s, err := NewSegmenter(objective, opts...)
	if err != nil {
		return nil, err
	}
	return s.Segment(obs, lengthRange)
}

// Objective returns the objective this Segmenter was built for.
func (s *Segmenter) Objective() Objective {
	return s.objective
}

// Segment assigns a segment id to every observation.
//
// Rows with a missing (NaN) value, or a Start or End that is not finite, are
// left out and labelled 0. The remaining
// rows are sorted by Start; ties keep their input order. If lengthRange is
// nil the fallback range from LengthRange applies. Labels in the result are
// in input order; obs is not modified.
func (s *Segmenter) Segment(obs []Observation, lengthRange *LengthRange) (*Result, error) {
	if err := checkValueCounts(obs); err != nil {
		return nil, err
	}

	kept := completeRows(obs)
	sort.SliceStable(kept, func(i, j int) bool {
		return obs[kept[i]].Start < obs[kept[j]].Start
	})
	work := buildSeries(obs, kept)

	rng, err := resolveRange(lengthRange, work.lengths)
	if err != nil {
		return nil, err
	}

	var (
		splits []int
		rounds int
	)
	if total := work.segmentLength(0, work.len()); total > rng.Max {
		sp := &splitter{stat: s.stat, goal: s.goal, ties: s.ties, rng: rng, logger: s.logger}
		splits, rounds, err = sp.split(work)
		if err != nil {
			return nil, fmt.Errorf("%s segmentation: %w", s.objective, err)
		}
	}

	result := buildResult(obs, kept, work, boundaries(splits, work.len()))
	result.Range = rng
	result.Iterations = rounds

	s.logger.Debugw("segmentation finished",
		"objective", s.objective,
		"rows", len(obs),
		"excluded", len(obs)-len(kept),
		"segments", len(result.Segments),
		"rounds", rounds,
	)
	return result, nil
}

func checkValueCounts(obs []Observation) error {
	if len(obs) == 0 {
		return nil
	}
	want := len(obs[0].Values)
	if want == 0 {
		return ErrNoVariables
	}
	for i, o := range obs {
		if len(o.Values) != want {
			return fmt.Errorf("%w: row %d has %d values, expected %d", ErrVariableCount, i, len(o.Values), want)
		}
	}
	return nil
}

// completeRows returns the indices of observations with a finite measure
// range and no missing values.
func completeRows(obs []Observation) []int {
	kept := make([]int, 0, len(obs))
	for i, o := range obs {
		if finite(o.Start) && finite(o.End) && !hasNaN(o.Values) {
			kept = append(kept, i)
		}
	}
	return kept
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func buildSeries(obs []Observation, kept []int) *series {
	work := &series{lengths: make([]float64, len(kept))}
	if len(kept) == 0 {
		return work
	}

	work.values = make([][]float64, len(obs[kept[0]].Values))
	for v := range work.values {
		work.values[v] = make([]float64, len(kept))
	}
	for i, idx := range kept {
		work.lengths[i] = obs[idx].Length()
		for v, x := range obs[idx].Values {
			work.values[v][i] = x
		}
	}
	return work
}

// resolveRange validates the caller's range or derives the fallback one.
func resolveRange(lengthRange *LengthRange, lengths []float64) (LengthRange, error) {
	if lengthRange == nil {
		if len(lengths) == 0 {
			return LengthRange{}, nil
		}
		return LengthRange{
			Min: floats.Min(lengths),
			Max: roundLength(floats.Sum(lengths)),
		}, nil
	}

	rng := *lengthRange
	switch {
	case math.IsNaN(rng.Min) || math.IsNaN(rng.Max):
		return rng, fmt.Errorf("%w: NaN bound in (%g, %g)", ErrInvalidLengthRange, rng.Min, rng.Max)
	case rng.Min < 0 || rng.Max < 0:
		return rng, fmt.Errorf("%w: negative bound in (%g, %g)", ErrInvalidLengthRange, rng.Min, rng.Max)
	case rng.Min > rng.Max:
		return rng, fmt.Errorf("%w: minimum %g exceeds maximum %g", ErrInvalidLengthRange, rng.Min, rng.Max)
	}
	return rng, nil
}

func buildResult(obs []Observation, kept []int, work *series, bounds []int) *Result {
	result := &Result{Labels: make([]Label, len(obs))}
	if work.len() == 0 {
		return result
	}

	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		seg := Segment{
			ID:     i + 1,
			Lo:     lo,
			Hi:     hi,
			Start:  obs[kept[lo]].Start,
			End:    obs[kept[hi-1]].End,
			Length: work.segmentLength(lo, hi),
			Means:  make([]float64, len(work.values)),
		}
		for v := range work.values {
			seg.Means[v] = stat.Mean(work.values[v][lo:hi], nil)
		}
		for r := lo; r < hi; r++ {
			result.Labels[kept[r]] = Label{SegmentID: seg.ID, SegmentStart: r == lo}
		}
		result.Segments = append(result.Segments, seg)
	}
	return result
}
