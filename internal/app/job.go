package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chrissnell/hsegment/internal/constants"
	"github.com/chrissnell/hsegment/internal/dataset"
	"github.com/chrissnell/hsegment/internal/segment"
	"github.com/chrissnell/hsegment/pkg/config"
	"github.com/chrissnell/hsegment/pkg/responseformat"
	"go.uber.org/zap"
)

// JobSummary describes the outcome of one job.
type JobSummary struct {
	RunID     string            `json:"run_id"`
	Job       string            `json:"job"`
	Objective segment.Objective `json:"objective"`
	Variables []string          `json:"variables"`
	Rows      int               `json:"rows"`
	Groups    []GroupSummary    `json:"groups"`
}

// GroupSummary describes the segmentation of one group of rows.
type GroupSummary struct {
	Key        string              `json:"key"`
	Rows       int                 `json:"rows"`
	Excluded   int                 `json:"excluded"`
	Iterations int                 `json:"iterations"`
	Range      segment.LengthRange `json:"range"`
	Segments   []segment.Segment   `json:"segments"`
}

// Segments returns the total number of segments over all groups.
func (s *JobSummary) Segments() int {
	n := 0
	for _, g := range s.Groups {
		n += len(g.Segments)
	}
	return n
}

func segmenterOptions(job *config.JobData, logger *zap.SugaredLogger) []segment.Option {
	opts := []segment.Option{segment.WithLogger(logger)}
	if job.Ties == "first" {
		opts = append(opts, segment.WithTieMode(segment.TieFirst))
	}
	return opts
}

func lengthRange(job *config.JobData) *segment.LengthRange {
	if job.LengthRange == nil {
		return nil
	}
	return &segment.LengthRange{Min: job.LengthRange.Min, Max: job.LengthRange.Max}
}

func (a *App) runJob(ctx context.Context, runID string, job *config.JobData, logger *zap.SugaredLogger) (*JobSummary, error) {
	segmenter, err := segment.NewSegmenter(segment.Objective(job.Objective), segmenterOptions(job, logger)...)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.ReadFile(job.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	parts, err := ds.Partition(job.GroupBy)
	if err != nil {
		return nil, err
	}

	measure := segment.MeasureRange{Start: job.Measure.Start, End: job.Measure.End}
	columns := append([]string{measure.Start, measure.End}, job.Variables...)

	groups := make([]segment.Group, len(parts))
	for i, part := range parts {
		table, err := ds.Table(part.Rows, columns...)
		if err != nil {
			return nil, err
		}
		obs, err := table.Observations(measure, job.Variables)
		if err != nil {
			return nil, err
		}
		groups[i] = segment.Group{Key: part.Key, Observations: obs}
	}
	logger.Debugw("input loaded", "rows", ds.Len(), "groups", len(groups))

	results, err := segmenter.SegmentGroups(ctx, groups, lengthRange(job), job.Workers)
	if err != nil {
		return nil, err
	}

	labels := make([]segment.Label, ds.Len())
	summary := &JobSummary{
		RunID:     runID,
		Job:       job.Name,
		Objective: segmenter.Objective(),
		Variables: job.Variables,
		Rows:      ds.Len(),
		Groups:    make([]GroupSummary, len(results)),
	}
	for i, res := range results {
		excluded := 0
		for j, label := range res.Result.Labels {
			labels[parts[i].Rows[j]] = label
			if label.SegmentID == 0 {
				excluded++
			}
		}
		summary.Groups[i] = GroupSummary{
			Key:        res.Key,
			Rows:       len(res.Result.Labels),
			Excluded:   excluded,
			Iterations: res.Result.Iterations,
			Range:      res.Result.Range,
			Segments:   res.Result.Segments,
		}
	}

	if err := writeLabelled(job.Output, ds, labels); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	if job.Summary != "" {
		if err := a.writeSummary(job, summary); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	return summary, nil
}

// writeLabelled writes the input rows with the segment id and segment start
// marker appended. Rows excluded for missing values get empty cells.
func writeLabelled(path string, ds *dataset.Dataset, labels []segment.Label) error {
	return writeFile(path, func(f *os.File) error {
		return ds.Write(f, []string{constants.SegmentIDColumn, constants.SegmentPointColumn}, func(row int) []string {
			label := labels[row]
			if label.SegmentID == 0 {
				return []string{"", ""}
			}
			return []string{strconv.Itoa(label.SegmentID), strconv.FormatBool(label.SegmentStart)}
		})
	})
}

func (a *App) writeSummary(job *config.JobData, summary *JobSummary) error {
	format := responseformat.FormatForPath(job.Summary)
	if job.SummaryFormat != "" {
		var err error
		if format, err = responseformat.ParseFormat(job.SummaryFormat); err != nil {
			return err
		}
	}

	return writeFile(job.Summary, func(f *os.File) error {
		return a.formatter.Write(f, format, summary)
	})
}

func writeFile(path string, write func(f *os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
