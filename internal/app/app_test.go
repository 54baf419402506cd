package app

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/hsegment/pkg/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

var deflection = []float64{
	179.37, 177.12, 179.06, 212.65, 175.35, 188.66, 188.31, 174.48,
	210.28, 260.05, 228.83, 226.33, 245.53, 315.77, 373.86, 333.56,
}

// writeInput writes H001 with the full deflection series and H002 with the
// first eight readings plus one row missing its reading.
func writeInput(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("road,from_km,to_km,d0\n")
	for i, v := range deflection {
		fmt.Fprintf(&b, "H001,%.2f,%.2f,%.2f\n", float64(i)/100, float64(i+1)/100, v)
	}
	for i, v := range deflection[:8] {
		fmt.Fprintf(&b, "H002,%.2f,%.2f,%.2f\n", float64(i)/100, float64(i+1)/100, v)
	}
	b.WriteString("H002,0.08,0.09,\n")

	path := filepath.Join(dir, "fwd.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

type staticProvider struct {
	cfg *config.ConfigData
}

func (p *staticProvider) LoadConfig() (*config.ConfigData, error) {
	return p.cfg, nil
}

func (p *staticProvider) GetJobs() ([]config.JobData, error) {
	return p.cfg.Jobs, nil
}

func (p *staticProvider) IsReadOnly() bool {
	return true
}

func (p *staticProvider) Close() error {
	return nil
}

func (p *staticProvider) GetJob(name string) (*config.JobData, error) {
	for i := range p.cfg.Jobs {
		if p.cfg.Jobs[i].Name == name {
			return &p.cfg.Jobs[i], nil
		}
	}
	return nil, config.ErrJobNotFound
}

func fwdJob(dir, input, name, objective string) config.JobData {
	return config.JobData{
		Name:        name,
		Input:       input,
		Output:      filepath.Join(dir, "out", name+".csv"),
		Summary:     filepath.Join(dir, "out", name+".json"),
		Measure:     config.MeasureData{Start: "from_km", End: "to_km"},
		Variables:   []string{"d0"},
		Objective:   objective,
		LengthRange: &config.LengthRangeData{Min: 0.03, Max: 0.08},
		GroupBy:     []string{"road"},
		Workers:     2,
	}
}

func readOutput(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRunWritesLabelledOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	job := fwdJob(dir, input, "fwd-shs", "shs")

	a := New(&staticProvider{cfg: &config.ConfigData{Jobs: []config.JobData{job}}}, zap.NewNop().Sugar())
	summaries, err := a.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	records := readOutput(t, job.Output)
	require.Len(t, records, 1+16+9)
	assert.Equal(t, []string{"road", "from_km", "to_km", "d0", "seg.id", "seg.point"}, records[0])

	wantIDs := []string{"1", "1", "1", "1", "2", "2", "2", "2", "2", "3", "3", "3", "3", "3", "3", "3"}
	for i, want := range wantIDs {
		row := records[1+i]
		assert.Equal(t, want, row[4], "H001 row %d", i)
		assert.Equal(t, fmt.Sprint(i == 0 || i == 4 || i == 9), row[5], "H001 row %d", i)
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, []string{"1", fmt.Sprint(i == 0)}, records[17+i][4:], "H002 row %d", i)
	}
	assert.Equal(t, []string{"H002", "0.08", "0.09", "", "", ""}, records[25])

	summary := summaries[0]
	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 25, summary.Rows)
	assert.Equal(t, 4, summary.Segments())
	require.Len(t, summary.Groups, 2)
	assert.Equal(t, "H001", summary.Groups[0].Key)
	assert.Equal(t, 2, summary.Groups[0].Iterations)
	assert.Equal(t, "H002", summary.Groups[1].Key)
	assert.Equal(t, 1, summary.Groups[1].Excluded)

	raw, err := os.ReadFile(job.Summary)
	require.NoError(t, err)
	var decoded JobSummary
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, summary.RunID, decoded.RunID)
	assert.Equal(t, "fwd-shs", decoded.Job)
	require.Len(t, decoded.Groups, 2)
	assert.InDelta(t, 0.07, decoded.Groups[0].Segments[2].Length, 1e-12)
	assert.Equal(t, 0.08, decoded.Groups[0].Range.Max)
}

func TestRunMsgPackSummary(t *testing.T) {
	dir := t.TempDir()
	job := fwdJob(dir, writeInput(t, dir), "fwd-mcv", "mcv")
	job.Summary = filepath.Join(dir, "out", "summary.bin")
	job.SummaryFormat = "msgpack"
	job.Ties = "first"

	a := New(&staticProvider{cfg: &config.ConfigData{Jobs: []config.JobData{job}}}, zap.NewNop().Sugar())
	_, err := a.Run(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(job.Summary)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, msgpack.Unmarshal(raw, &decoded))
	assert.Equal(t, "fwd-mcv", decoded["job"])
	assert.Equal(t, "mcv", decoded["objective"])
}

func TestRunContinuesAfterFailedJob(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)

	infeasible := fwdJob(dir, input, "too-tight", "shs")
	infeasible.LengthRange = &config.LengthRangeData{Min: 0.05, Max: 0.06}
	infeasible.Workers = 1
	cda := fwdJob(dir, input, "cda", "cda")
	missing := fwdJob(dir, filepath.Join(dir, "nope.csv"), "missing-input", "shs")
	good := fwdJob(dir, input, "good", "shs")
	good.Summary = ""

	cfg := &config.ConfigData{Jobs: []config.JobData{infeasible, cda, missing, good}}
	a := New(&staticProvider{cfg: cfg}, zap.NewNop().Sugar())

	summaries, err := a.Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "job too-tight")
	assert.ErrorContains(t, err, `group "H001"`)
	assert.ErrorContains(t, err, "job cda")
	assert.ErrorContains(t, err, "job missing-input")

	require.Len(t, summaries, 1)
	assert.Equal(t, "good", summaries[0].Job)
	assert.FileExists(t, good.Output)
	assert.NoFileExists(t, infeasible.Output)
	assert.NoFileExists(t, filepath.Join(dir, "out", "good.json"))
}

func TestRunSelectedJobs(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	jobs := []config.JobData{
		fwdJob(dir, input, "first", "shs"),
		fwdJob(dir, input, "second", "mcv"),
	}
	a := New(&staticProvider{cfg: &config.ConfigData{Jobs: jobs}}, zap.NewNop().Sugar())

	summaries, err := a.Run(context.Background(), "second")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "second", summaries[0].Job)
	assert.NoFileExists(t, jobs[0].Output)

	_, err = a.Run(context.Background(), "third")
	assert.ErrorIs(t, err, config.ErrJobNotFound)
}

func TestRunInvalidConfig(t *testing.T) {
	a := New(&staticProvider{cfg: &config.ConfigData{}}, zap.NewNop().Sugar())
	_, err := a.Run(context.Background())
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	job := fwdJob(dir, writeInput(t, dir), "fwd", "shs")
	a := New(&staticProvider{cfg: &config.ConfigData{Jobs: []config.JobData{job}}}, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summaries)
}
