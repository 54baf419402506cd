package segment

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Group is one independently segmented series, typically a single
// road/carriageway/direction combination.
type Group struct {
	Key          string
	Observations []Observation
}

// GroupResult pairs a group key with its segmentation.
type GroupResult struct {
	Key    string  `json:"key"`
	Result *Result `json:"result"`
}

// SegmentGroups segments each group independently, running up to workers
// groups at once (workers <= 0 means no limit). A group's own bisection
// rounds are always sequential. Results are returned in the order of groups.
// The first failure cancels groups that have not started and is returned
// with the group key attached.
func (s *Segmenter) SegmentGroups(ctx context.Context, groups []Group, lengthRange *LengthRange, workers int) ([]GroupResult, error) {
	results := make([]GroupResult, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Segment(group.Observations, lengthRange)
			if err != nil {
				return fmt.Errorf("group %q: %w", group.Key, err)
			}
			results[i] = GroupResult{Key: group.Key, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
