package segment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentGroups(t *testing.T) {
	s, err := NewSegmenter(ObjectiveSHS)
	require.NoError(t, err)

	groups := []Group{
		{Key: "H001/L1", Observations: chainage(deflection)},
		{Key: "H001/R1", Observations: chainage(deflection[:8])},
		{Key: "H002/L1", Observations: chainage(deflection)},
	}

	for _, workers := range []int{0, 1, 2} {
		results, err := s.SegmentGroups(context.Background(), groups, &LengthRange{Min: 0.030, Max: 0.080}, workers)
		require.NoError(t, err)
		require.Len(t, results, len(groups))

		for i, g := range groups {
			assert.Equal(t, g.Key, results[i].Key)
		}
		assert.Equal(t, runs(1, 4, 2, 5, 3, 7), segmentIDs(results[0].Result))
		assert.Equal(t, runs(1, 8), segmentIDs(results[1].Result))
		assert.Equal(t, segmentIDs(results[0].Result), segmentIDs(results[2].Result))
	}
}

func TestSegmentGroupsError(t *testing.T) {
	s, err := NewSegmenter(ObjectiveSHS)
	require.NoError(t, err)

	groups := []Group{
		{Key: "ok", Observations: chainage(deflection[:5])},
		{Key: "too short", Observations: chainage(deflection)},
	}

	results, err := s.SegmentGroups(context.Background(), groups, &LengthRange{Min: 0.05, Max: 0.06}, 1)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, ErrNoEligibleSplit)
	assert.ErrorContains(t, err, `group "too short"`)
}

func TestSegmentGroupsCancelled(t *testing.T) {
	s, err := NewSegmenter(ObjectiveMCV)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.SegmentGroups(ctx, []Group{{Key: "a", Observations: chainage(deflection)}}, nil, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
