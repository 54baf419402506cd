package segment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestCumulativeQGolden(t *testing.T) {
	expected := []float64{
		0.04582494, 0.10266886, 0.16409027, 0.16409040, 0.24921584,
		0.31932834, 0.40606724, 0.55653928, 0.62684644, 0.55570908,
		0.60795648, 0.70864689, 0.79360021, 0.60877663, 0.19950557,
	}

	q := CumulativeQ(deflection)

	require.Len(t, q, len(deflection)-1)
	assert.InDeltaSlice(t, expected, q, 1e-8)
}

// TestCumulativeQMatchesVariance checks the prefix-sum form against the
// direct definition 1 - (n_a var_a + n_b var_b) / (n var).
func TestCumulativeQMatchesVariance(t *testing.T) {
	populationVariance := func(x []float64) float64 {
		_, v := stat.PopMeanVariance(x, nil)
		return v
	}

	for _, tt := range []struct {
		name   string
		values []float64
	}{
		{"var_a", varA},
		{"var_b", varB},
		{"deflection", deflection},
	} {
		t.Run(tt.name, func(t *testing.T) {
			n := float64(len(tt.values))
			divisor := populationVariance(tt.values) * n

			q := CumulativeQ(tt.values)
			for k := 1; k < len(tt.values); k++ {
				left, right := tt.values[:k], tt.values[k:]
				want := 1 - (float64(len(left))*populationVariance(left)+float64(len(right))*populationVariance(right))/divisor
				assert.InDelta(t, want, q[k-1], 1e-7, "split %d", k)
			}
		})
	}
}

func TestCumulativeP(t *testing.T) {
	expected := []float64{
		math.NaN(), 0.13826267, 0.13535809, 0.18093424, 0.17329022,
		0.16609326, 0.15778659, 0.14244179, 0.14085252, 0.17717902,
		0.17267438, 0.15317450, 0.11531484, 0.13731777, math.NaN(),
	}

	p := CumulativeP(deflection)

	require.Len(t, p, len(expected))
	for i, want := range expected {
		if math.IsNaN(want) {
			assert.True(t, math.IsNaN(p[i]), "split %d: single-value partition must be NaN, got %v", i+1, p[i])
			continue
		}
		assert.InDelta(t, want, p[i], 1e-7, "split %d", i+1)
	}
}

func TestCumulativePZeroSum(t *testing.T) {
	p := CumulativeP([]float64{1, -1, 2, 3})

	require.Len(t, p, 3)
	assert.True(t, math.IsNaN(p[0]), "single value on the left")
	assert.True(t, math.IsNaN(p[1]), "left partition sums to zero")
	assert.True(t, math.IsNaN(p[2]), "single value on the right")
}

func TestStatisticsShortInput(t *testing.T) {
	for _, values := range [][]float64{nil, {}, {42}} {
		assert.Empty(t, CumulativeQ(values))
		assert.Empty(t, CumulativeP(values))
	}
}

func TestCumulativeQConstantSeries(t *testing.T) {
	for _, q := range CumulativeQ([]float64{2, 2, 2, 2, 2}) {
		assert.True(t, math.IsNaN(q), "constant series has no variance to explain, got %v", q)
	}
}

func TestStatisticFor(t *testing.T) {
	tests := []struct {
		objective Objective
		goal      Goal
		err       error
	}{
		{ObjectiveSHS, Maximize, nil},
		{ObjectiveMCV, Minimize, nil},
		{ObjectiveCDA, 0, ErrNotImplemented},
		{"shs2", 0, ErrUnknownObjective},
		{"", 0, ErrUnknownObjective},
	}

	for _, tt := range tests {
		t.Run(string(tt.objective), func(t *testing.T) {
			fn, goal, err := statisticFor(tt.objective)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Nil(t, fn)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, fn)
			assert.Equal(t, tt.goal, goal)
		})
	}
}
