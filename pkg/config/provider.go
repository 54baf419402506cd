package config

import (
	"errors"
	"fmt"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetJobs() ([]JobData, error)
	GetJob(name string) (*JobData, error)

	IsReadOnly() bool
	Close() error
}

// ErrJobNotFound is returned when a named job does not exist
var ErrJobNotFound = errors.New("job not found")

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Jobs []JobData `json:"jobs"`
}

// JobData describes one segmentation run: where the measurements come from,
// which columns to use, and where the labelled table goes.
type JobData struct {
	Name          string           `json:"name"`
	Input         string           `json:"input"`
	Output        string           `json:"output"`
	Summary       string           `json:"summary,omitempty"`
	SummaryFormat string           `json:"summary_format,omitempty"`
	Measure       MeasureData      `json:"measure"`
	Variables     []string         `json:"variables"`
	Objective     string           `json:"objective"`
	LengthRange   *LengthRangeData `json:"length_range,omitempty"`
	Ties          string           `json:"ties,omitempty"`
	GroupBy       []string         `json:"group_by,omitempty"`
	Workers       int              `json:"workers,omitempty"`
}

// MeasureData names the interval start and end columns
type MeasureData struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// LengthRangeData bounds the length of a segment, in chainage units
type LengthRangeData struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Validate checks every job and returns all problems found, joined.
func (c *ConfigData) Validate() error {
	var errs []error
	if len(c.Jobs) == 0 {
		errs = append(errs, errors.New("no jobs configured"))
	}

	seen := make(map[string]bool, len(c.Jobs))
	for i := range c.Jobs {
		job := &c.Jobs[i]
		if job.Name != "" && seen[job.Name] {
			errs = append(errs, fmt.Errorf("job %q: duplicate name", job.Name))
		}
		seen[job.Name] = true

		if err := job.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single job definition
func (j *JobData) Validate() error {
	var errs []error
	add := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("job %q: "+format, append([]interface{}{j.Name}, args...)...))
	}

	if j.Name == "" {
		add("name is required")
	}
	if j.Input == "" {
		add("input is required")
	}
	if j.Output == "" {
		add("output is required")
	}
	if j.Measure.Start == "" || j.Measure.End == "" {
		add("measure start and end columns are required")
	}
	if len(j.Variables) == 0 {
		add("at least one variable is required")
	}

	switch j.Objective {
	case "shs", "mcv", "cda":
	default:
		add("unknown objective %q (available: shs, mcv, cda)", j.Objective)
	}

	switch j.Ties {
	case "", "all", "first":
	default:
		add("unknown ties mode %q (available: all, first)", j.Ties)
	}

	switch j.SummaryFormat {
	case "", "json", "msgpack":
	default:
		add("unknown summary format %q (available: json, msgpack)", j.SummaryFormat)
	}

	if r := j.LengthRange; r != nil {
		if r.Min < 0 || r.Max < 0 || r.Min > r.Max {
			add("invalid length range (%g, %g)", r.Min, r.Max)
		}
	}
	if j.Workers < 0 {
		add("workers must not be negative")
	}

	return errors.Join(errs...)
}
