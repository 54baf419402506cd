package segment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimalBisections(t *testing.T) {
	steps := []float64{0, 0, 0, 10, 10, 10, 0, 0, 0}

	tests := []struct {
		name      string
		variables [][]float64
		lengths   []float64
		minLength float64
		stat      SplitStatistic
		goal      Goal
		ties      TieMode
		expected  []int
	}{
		{
			name:      "deflection max Q",
			variables: [][]float64{deflection},
			lengths:   uniformLengths(16, 0.01),
			minLength: 0.03,
			stat:      CumulativeQ,
			goal:      Maximize,
			expected:  []int{9},
		},
		{
			name:      "deflection min P",
			variables: [][]float64{deflection},
			lengths:   uniformLengths(16, 0.01),
			minLength: 0.03,
			stat:      CumulativeP,
			goal:      Minimize,
			expected:  []int{9},
		},
		{
			name:      "two variables averaged",
			variables: [][]float64{varA, varB},
			lengths:   uniformLengths(18, 0.01),
			minLength: 0.02,
			stat:      CumulativeQ,
			goal:      Maximize,
			expected:  []int{13},
		},
		{
			name:      "symmetric step returns all ties",
			variables: [][]float64{steps},
			lengths:   uniformLengths(9, 1),
			minLength: 0.5,
			stat:      CumulativeQ,
			goal:      Maximize,
			ties:      TieAll,
			expected:  []int{3, 6},
		},
		{
			name:      "symmetric step first tie only",
			variables: [][]float64{steps},
			lengths:   uniformLengths(9, 1),
			minLength: 0.5,
			stat:      CumulativeQ,
			goal:      Maximize,
			ties:      TieFirst,
			expected:  []int{3},
		},
		{
			name:      "NaN scores at the edges are skipped",
			variables: [][]float64{{1, 1, 1, 3, 3, 3, 1, 1, 1}},
			lengths:   uniformLengths(9, 1),
			minLength: 0.5,
			stat:      CumulativeP,
			goal:      Minimize,
			expected:  []int{3, 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := OptimalBisections(tt.variables, tt.lengths, tt.minLength, tt.stat, tt.goal, tt.ties)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, splits)
		})
	}
}

func TestOptimalBisectionsErrors(t *testing.T) {
	tests := []struct {
		name      string
		variables [][]float64
		lengths   []float64
		minLength float64
		stat      SplitStatistic
		goal      Goal
		err       error
	}{
		{
			name:      "window shorter than twice the minimum",
			variables: [][]float64{deflection[9:]},
			lengths:   uniformLengths(7, 0.01),
			minLength: 0.03,
			stat:      CumulativeQ,
			goal:      Maximize,
			err:       ErrNoEligibleSplit,
		},
		{
			name:      "single row",
			variables: [][]float64{{5}},
			lengths:   []float64{1},
			minLength: 0,
			stat:      CumulativeQ,
			goal:      Maximize,
			err:       ErrNoEligibleSplit,
		},
		{
			name:      "only single-row partitions",
			variables: [][]float64{{4, 7}},
			lengths:   []float64{1, 1},
			minLength: 0,
			stat:      CumulativeP,
			goal:      Minimize,
			err:       ErrNoComparableSplit,
		},
		{
			name:      "constant window",
			variables: [][]float64{{2, 2, 2, 2, 2, 2}},
			lengths:   uniformLengths(6, 1),
			minLength: 0.5,
			stat:      CumulativeQ,
			goal:      Maximize,
			err:       ErrNoComparableSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := OptimalBisections(tt.variables, tt.lengths, tt.minLength, tt.stat, tt.goal, TieAll)
			assert.Nil(t, splits)
			assert.ErrorIs(t, err, tt.err)
			assert.ErrorIs(t, err, ErrInfeasibleConstraint)
		})
	}
}

func TestOptimalBisectionsBadInput(t *testing.T) {
	_, err := OptimalBisections(nil, []float64{1, 1}, 0, CumulativeQ, Maximize, TieAll)
	assert.ErrorIs(t, err, ErrNoVariables)

	_, err = OptimalBisections([][]float64{{1, 2, 3}}, []float64{1, 1}, 0, CumulativeQ, Maximize, TieAll)
	assert.ErrorIs(t, err, ErrVariableCount)
}
