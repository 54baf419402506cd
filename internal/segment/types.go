package segment

import "math"

// Observation is a single measured interval along the linear reference
// (chainage). Values holds one entry per monitored variable, in the order
// the variable names were given to the Segmenter. NaN marks a missing value.
type Observation struct {
	Start  float64
	End    float64
	Values []float64
}

// Length returns End-Start rounded to 10 decimal places, which removes the
// drift left behind by repeated chainage subtraction.
func (o Observation) Length() float64 {
	return roundLength(o.End - o.Start)
}

// LengthRange bounds the total length of a segment.
//
// Passing a nil *LengthRange to Segment selects the fallback range
// (shortest row length, total length). Because the maximum then equals the
// whole table length, the table is returned as a single segment; callers
// that want an actual segmentation must supply a range.
type LengthRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Objective identifies the split criterion.
type Objective string

const (
	// ObjectiveSHS is spatial heterogeneity segmentation: maximise the
	// variance-reduction statistic Q.
	ObjectiveSHS Objective = "shs"

	// ObjectiveMCV minimises the mean coefficient of variation P of the two
	// partitions.
	ObjectiveMCV Objective = "mcv"

	// ObjectiveCDA is the cumulative difference approach. It is recognised
	// but not implemented.
	ObjectiveCDA Objective = "cda"
)

// Goal is the direction of the bisection search.
type Goal int

const (
	Maximize Goal = iota
	Minimize
)

func (g Goal) String() string {
	if g == Minimize {
		return "min"
	}
	return "max"
}

// TieMode controls what OptimalBisections returns when several candidate
// splits share the extreme score.
type TieMode int

const (
	// TieAll returns every index attaining the extreme score. A single
	// bisection may then produce more than two sub-segments. This is the
	// default and reproduces the R hsegment package output.
	TieAll TieMode = iota

	// TieFirst returns only the leftmost extreme index.
	TieFirst
)

// Segment is a contiguous run [Lo, Hi) of the sorted, filtered working
// sequence.
type Segment struct {
	ID     int       `json:"id"`
	Lo     int       `json:"lo"`
	Hi     int       `json:"hi"`
	Start  float64   `json:"start"`
	End    float64   `json:"end"`
	Length float64   `json:"length"`
	Means  []float64 `json:"means"`
}

// Rows returns the number of observations in the segment.
func (s Segment) Rows() int {
	return s.Hi - s.Lo
}

// Label is the per-row output. SegmentID is 0 for rows that were excluded
// because a monitored value was missing.
type Label struct {
	SegmentID    int  `json:"segment_id"`
	SegmentStart bool `json:"segment_start"`
}

// Result holds the labels for every input observation, in input order, and
// the segments in chainage order.
type Result struct {
	Labels   []Label     `json:"labels"`
	Segments []Segment   `json:"segments"`
	Range    LengthRange `json:"range"`

	// Iterations counts bisection rounds, including the initial one. It is
	// zero when the table fitted the maximum length without splitting.
	Iterations int `json:"iterations"`
}

func roundLength(v float64) float64 {
	return math.Round(v*1e10) / 1e10
}
