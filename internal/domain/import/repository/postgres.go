package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/pkg/db"
)

// PostgresRepository implements ImportRepository using PostgreSQL
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a new PostgreSQL import job repository
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// CreateImportJob inserts a new job
func (r *PostgresRepository) CreateImportJob(ctx context.Context, job *ImportJob) error {
	query := `
		INSERT INTO import_jobs (family_id, created_by, file_name, sheet, status, rows_total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		job.FamilyID,
		job.CreatedBy,
		job.FileName,
		job.Sheet,
		job.Status,
		job.RowsTotal,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return db.StoreError("import_jobs", err)
	}
	return nil
}

// FinishImportJob stores the final status and counts
func (r *PostgresRepository) FinishImportJob(ctx context.Context, id uuid.UUID, result JobResult) error {
	query := `
		UPDATE import_jobs
		SET status = $2, rows_imported = $3, rows_skipped = $4, categories_created = $5,
		    error_message = $6, finished_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query,
		id,
		result.Status,
		result.RowsImported,
		result.RowsSkipped,
		result.CategoriesCreated,
		result.ErrorMessage,
	)
	if err != nil {
		return db.StoreError("import_jobs", err)
	}
	return nil
}

// ListImportJobs returns the latest jobs of a family
func (r *PostgresRepository) ListImportJobs(ctx context.Context, familyID uuid.UUID, limit int) ([]ImportJob, error) {
	query := `
		SELECT id, family_id, created_by, file_name, sheet, status, rows_total, rows_imported,
		       rows_skipped, categories_created, error_message, created_at, finished_at
		FROM import_jobs
		WHERE family_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, familyID, limit)
	if err != nil {
		return nil, db.StoreError("import_jobs", err)
	}
	defer rows.Close()

	var jobs []ImportJob
	for rows.Next() {
		var j ImportJob
		if err := rows.Scan(
			&j.ID,
			&j.FamilyID,
			&j.CreatedBy,
			&j.FileName,
			&j.Sheet,
			&j.Status,
			&j.RowsTotal,
			&j.RowsImported,
			&j.RowsSkipped,
			&j.CategoriesCreated,
			&j.ErrorMessage,
			&j.CreatedAt,
			&j.FinishedAt,
		); err != nil {
			return nil, db.StoreError("import_jobs", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, db.StoreError("import_jobs", err)
	}
	return jobs, nil
}
