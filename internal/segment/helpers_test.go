package segment

// Falling weight deflectometer readings on H001, 10 m intervals.
var deflection = []float64{
	179.37, 177.12, 179.06, 212.65, 175.35, 188.66, 188.31, 174.48,
	210.28, 260.05, 228.83, 226.33, 245.53, 315.77, 373.86, 333.56,
}

var (
	varA = []float64{1, 2, 3, 4, 2, 3, 1, 5, 3, 4, 6, 4, 3, 7, 5, 6, 4, 5}
	varB = []float64{3, 2, 1, 3, 5, 6, 5, 6, 4, 7, 9, 4, 3, 2, 3, 1, 3, 2}
)

// chainage returns observations on a 0.01 km grid starting at 0, one per
// row of the given variable columns.
func chainage(columns ...[]float64) []Observation {
	n := len(columns[0])
	obs := make([]Observation, n)
	for i := range obs {
		values := make([]float64, len(columns))
		for v, col := range columns {
			values[v] = col[i]
		}
		obs[i] = Observation{
			Start:  float64(i) / 100,
			End:    float64(i+1) / 100,
			Values: values,
		}
	}
	return obs
}

func uniformLengths(n int, length float64) []float64 {
	l := make([]float64, n)
	for i := range l {
		l[i] = length
	}
	return l
}

func segmentIDs(res *Result) []int {
	ids := make([]int, len(res.Labels))
	for i, l := range res.Labels {
		ids[i] = l.SegmentID
	}
	return ids
}

// runs expands (id, count) pairs into a label sequence.
func runs(pairs ...int) []int {
	var ids []int
	for i := 0; i+1 < len(pairs); i += 2 {
		for j := 0; j < pairs[i+1]; j++ {
			ids = append(ids, pairs[i])
		}
	}
	return ids
}
