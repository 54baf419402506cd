package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML job files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Jobs []JobYAML `yaml:"jobs"`
	}

	if err := yaml.UnmarshalStrict(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", y.filename, err)
	}

	config := &ConfigData{
		Jobs: make([]JobData, len(yamlConfig.Jobs)),
	}

	for i, job := range yamlConfig.Jobs {
		config.Jobs[i] = JobData{
			Name:          job.Name,
			Input:         job.Input,
			Output:        job.Output,
			Summary:       job.Summary,
			SummaryFormat: job.SummaryFormat,
			Measure: MeasureData{
				Start: job.Measure.Start,
				End:   job.Measure.End,
			},
			Variables: job.Variables,
			Objective: job.Objective,
			Ties:      job.Ties,
			GroupBy:   job.GroupBy,
			Workers:   job.Workers,
		}
		if job.LengthRange != nil {
			config.Jobs[i].LengthRange = &LengthRangeData{
				Min: job.LengthRange.Min,
				Max: job.LengthRange.Max,
			}
		}
	}

	y.config = config
	return config, nil
}

// GetJobs returns job configurations
func (y *YAMLProvider) GetJobs() ([]JobData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Jobs, nil
}

// GetJob returns the job with the given name
func (y *YAMLProvider) GetJob(name string) (*JobData, error) {
	jobs, err := y.GetJobs()
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].Name == name {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with YAML tags for the jobs file format
type JobYAML struct {
	Name          string           `yaml:"name"`
	Input         string           `yaml:"input"`
	Output        string           `yaml:"output"`
	Summary       string           `yaml:"summary,omitempty"`
	SummaryFormat string           `yaml:"summary-format,omitempty"`
	Measure       MeasureYAML      `yaml:"measure"`
	Variables     []string         `yaml:"variables"`
	Objective     string           `yaml:"objective"`
	LengthRange   *LengthRangeYAML `yaml:"length-range,omitempty"`
	Ties          string           `yaml:"ties,omitempty"`
	GroupBy       []string         `yaml:"group-by,omitempty"`
	Workers       int              `yaml:"workers,omitempty"`
}

type MeasureYAML struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type LengthRangeYAML struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}
