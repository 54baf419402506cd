// Package app runs the segmentation jobs described by a configuration
// source.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chrissnell/hsegment/pkg/config"
	"github.com/chrissnell/hsegment/pkg/responseformat"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	formatter      *responseformat.Formatter
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
		formatter:      responseformat.NewFormatter(true),
	}
}

// Run executes the named jobs, or every configured job when names is empty,
// one after another. A failing job does not stop the others; all failures
// are returned together. SIGINT and SIGTERM cancel the run.
func (a *App) Run(ctx context.Context, names ...string) ([]*JobSummary, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs, err := a.selectJobs(names)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := a.logger.With("run_id", runID)
	logger.Infow("starting run", "jobs", len(jobs))

	var (
		summaries []*JobSummary
		errs      []error
	)
	for i := range jobs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		job := &jobs[i]
		jobLogger := logger.With("job", job.Name)
		summary, err := a.runJob(ctx, runID, job, jobLogger)
		if err != nil {
			jobLogger.Errorw("job failed", "error", err)
			errs = append(errs, fmt.Errorf("job %s: %w", job.Name, err))
			continue
		}
		jobLogger.Infow("job finished",
			"groups", len(summary.Groups),
			"segments", summary.Segments(),
			"output", job.Output,
		)
		summaries = append(summaries, summary)
	}

	return summaries, errors.Join(errs...)
}

func (a *App) selectJobs(names []string) ([]config.JobData, error) {
	if len(names) == 0 {
		cfg, err := a.configProvider.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg.Jobs, nil
	}

	jobs := make([]config.JobData, 0, len(names))
	for _, name := range names {
		job, err := a.configProvider.GetJob(name)
		if err != nil {
			return nil, err
		}
		if err := job.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}
