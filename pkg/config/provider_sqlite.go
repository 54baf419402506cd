package config

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const defaultConfigName = "default"

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens the database at dbPath and brings its schema up to
// date.
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := NewMigrator(db).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	jobs, err := s.GetJobs()
	if err != nil {
		return nil, fmt.Errorf("failed to load jobs: %w", err)
	}
	return &ConfigData{Jobs: jobs}, nil
}

const jobColumns = `
	SELECT j.id, j.name, j.input_path, j.output_path, j.summary_path, j.summary_format,
	       j.measure_start, j.measure_end, j.objective,
	       j.length_min, j.length_max, j.ties, j.workers
	FROM jobs j
	JOIN configs c ON j.config_id = c.id
	WHERE c.name = ?`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (int64, JobData, error) {
	var (
		id                     int64
		job                    JobData
		summary, summaryFormat sql.NullString
		ties                   sql.NullString
		lengthMin, lengthMax   sql.NullFloat64
	)

	err := row.Scan(
		&id, &job.Name, &job.Input, &job.Output, &summary, &summaryFormat,
		&job.Measure.Start, &job.Measure.End, &job.Objective,
		&lengthMin, &lengthMax, &ties, &job.Workers,
	)
	if err != nil {
		return 0, job, err
	}

	job.Summary = summary.String
	job.SummaryFormat = summaryFormat.String
	job.Ties = ties.String

	// Both bounds or neither
	if lengthMin.Valid && lengthMax.Valid {
		job.LengthRange = &LengthRangeData{
			Min: lengthMin.Float64,
			Max: lengthMax.Float64,
		}
	}

	return id, job, nil
}

// GetJobs returns job configurations from the database, ordered by name
func (s *SQLiteProvider) GetJobs() ([]JobData, error) {
	rows, err := s.db.Query(jobColumns+` ORDER BY j.name`, defaultConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var (
		ids  []int64
		jobs []JobData
	)
	for rows.Next() {
		id, job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		ids = append(ids, id)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs: %w", err)
	}

	for i := range jobs {
		if err := s.loadJobColumns(ids[i], &jobs[i]); err != nil {
			return nil, err
		}
	}

	return jobs, nil
}

// GetJob returns the named job
func (s *SQLiteProvider) GetJob(name string) (*JobData, error) {
	id, job, err := scanJob(s.db.QueryRow(jobColumns+` AND j.name = ?`, defaultConfigName, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, name)
		}
		return nil, fmt.Errorf("failed to get job %s: %w", name, err)
	}

	if err := s.loadJobColumns(id, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *SQLiteProvider) loadJobColumns(jobID int64, job *JobData) error {
	rows, err := s.db.Query(`
		SELECT role, column_name
		FROM job_columns
		WHERE job_id = ?
		ORDER BY role, position
	`, jobID)
	if err != nil {
		return fmt.Errorf("failed to query columns of job %s: %w", job.Name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var role, column string
		if err := rows.Scan(&role, &column); err != nil {
			return fmt.Errorf("failed to scan column of job %s: %w", job.Name, err)
		}
		switch role {
		case "variable":
			job.Variables = append(job.Variables, column)
		case "group_by":
			job.GroupBy = append(job.GroupBy, column)
		}
	}
	return rows.Err()
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Write methods for configuration management

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	if err := s.clearExistingConfig(tx, configID); err != nil {
		return fmt.Errorf("failed to clear existing config: %w", err)
	}

	for i := range configData.Jobs {
		if err := s.insertJob(tx, configID, &configData.Jobs[i]); err != nil {
			return fmt.Errorf("failed to insert job %s: %w", configData.Jobs[i].Name, err)
		}
	}

	if _, err := tx.Exec(`UPDATE configs SET updated_at = datetime('now') WHERE id = ?`, configID); err != nil {
		return fmt.Errorf("failed to touch config: %w", err)
	}

	return tx.Commit()
}

// AddJob adds a new job to the configuration
func (s *SQLiteProvider) AddJob(job *JobData) error {
	if _, err := s.GetJob(job.Name); err == nil {
		return fmt.Errorf("job %s already exists", job.Name)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getOrCreateConfigID(tx)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	if err := s.insertJob(tx, configID, job); err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return tx.Commit()
}

// UpdateJob replaces the job called name with job, which may rename it
func (s *SQLiteProvider) UpdateJob(name string, job *JobData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getConfigID(tx)
	if err != nil {
		return err
	}

	if err := s.deleteJob(tx, configID, name); err != nil {
		return err
	}
	if err := s.insertJob(tx, configID, job); err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return tx.Commit()
}

// DeleteJob removes a job from the configuration
func (s *SQLiteProvider) DeleteJob(name string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	configID, err := s.getConfigID(tx)
	if err != nil {
		return err
	}

	if err := s.deleteJob(tx, configID, name); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteProvider) deleteJob(tx *sql.Tx, configID int64, name string) error {
	var jobID int64
	err := tx.QueryRow(`SELECT id FROM jobs WHERE config_id = ? AND name = ?`, configID, name).Scan(&jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrJobNotFound, name)
		}
		return fmt.Errorf("failed to look up job %s: %w", name, err)
	}

	if _, err := tx.Exec(`DELETE FROM job_columns WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("failed to delete job columns: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM jobs WHERE id = ?`, jobID); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

func (s *SQLiteProvider) clearExistingConfig(tx *sql.Tx, configID int64) error {
	queries := []string{
		"DELETE FROM job_columns WHERE job_id IN (SELECT id FROM jobs WHERE config_id = ?)",
		"DELETE FROM jobs WHERE config_id = ?",
	}

	for _, query := range queries {
		if _, err := tx.Exec(query, configID); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteProvider) insertJob(tx *sql.Tx, configID int64, job *JobData) error {
	query := `
		INSERT INTO jobs (
			config_id, name, input_path, output_path, summary_path, summary_format,
			measure_start, measure_end, objective, length_min, length_max, ties, workers
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var lengthMin, lengthMax sql.NullFloat64
	if job.LengthRange != nil {
		lengthMin = sql.NullFloat64{Float64: job.LengthRange.Min, Valid: true}
		lengthMax = sql.NullFloat64{Float64: job.LengthRange.Max, Valid: true}
	}

	result, err := tx.Exec(query,
		configID, job.Name, job.Input, job.Output, nullString(job.Summary), nullString(job.SummaryFormat),
		job.Measure.Start, job.Measure.End, job.Objective, lengthMin, lengthMax, nullString(job.Ties), job.Workers,
	)
	if err != nil {
		return err
	}

	jobID, err := result.LastInsertId()
	if err != nil {
		return err
	}

	columns := []struct {
		role  string
		names []string
	}{
		{"variable", job.Variables},
		{"group_by", job.GroupBy},
	}
	for _, c := range columns {
		for position, name := range c.names {
			_, err := tx.Exec(`INSERT INTO job_columns (job_id, role, position, column_name) VALUES (?, ?, ?, ?)`,
				jobID, c.role, position, name)
			if err != nil {
				return fmt.Errorf("failed to insert %s column %s: %w", c.role, name, err)
			}
		}
	}
	return nil
}

// getConfigID gets the existing config ID
func (s *SQLiteProvider) getConfigID(tx *sql.Tx) (int64, error) {
	var configID int64
	err := tx.QueryRow("SELECT id FROM configs WHERE name = ?", defaultConfigName).Scan(&configID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("no configuration found")
		}
		return 0, err
	}
	return configID, nil
}

// getOrCreateConfigID gets existing config ID or creates a new one
func (s *SQLiteProvider) getOrCreateConfigID(tx *sql.Tx) (int64, error) {
	configID, err := s.getConfigID(tx)
	if err == nil {
		return configID, nil
	}

	result, err := tx.Exec(`INSERT INTO configs (name) VALUES (?)`, defaultConfigName)
	if err != nil {
		return 0, fmt.Errorf("failed to create default config: %w", err)
	}
	return result.LastInsertId()
}

// Helper functions for handling nullable fields
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
