// Package repository records spreadsheet import jobs.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job statuses
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// ImportJob is one run of the import pipeline.
type ImportJob struct {
	ID                uuid.UUID  `json:"id"`
	FamilyID          uuid.UUID  `json:"family_id"`
	CreatedBy         uuid.UUID  `json:"created_by"`
	FileName          string     `json:"file_name"`
	Sheet             string     `json:"sheet"`
	Status            string     `json:"status"`
	RowsTotal         int        `json:"rows_total"`
	RowsImported      int        `json:"rows_imported"`
	RowsSkipped       int        `json:"rows_skipped"`
	CategoriesCreated int        `json:"categories_created"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	FinishedAt        *time.Time `json:"finished_at,omitempty"`
}

// JobResult holds the final counts of a job.
type JobResult struct {
	Status            string
	RowsImported      int
	RowsSkipped       int
	CategoriesCreated int
	ErrorMessage      *string
}

// ImportRepository stores import jobs.
type ImportRepository interface {
	// CreateImportJob inserts job and fills its ID and CreatedAt.
	CreateImportJob(ctx context.Context, job *ImportJob) error
	FinishImportJob(ctx context.Context, id uuid.UUID, result JobResult) error
	// ListImportJobs returns the family's latest jobs, newest first.
	ListImportJobs(ctx context.Context, familyID uuid.UUID, limit int) ([]ImportJob, error)
}
