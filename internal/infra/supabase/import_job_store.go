package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FACorreiaa/casa-gastos/internal/domain/import/repository"
)

type newImportJob struct {
	FamilyID  uuid.UUID `json:"family_id"`
	CreatedBy uuid.UUID `json:"created_by"`
	FileName  string    `json:"file_name"`
	Sheet     string    `json:"sheet"`
	Status    string    `json:"status"`
	RowsTotal int       `json:"rows_total"`
}

type finishedImportJob struct {
	Status            string    `json:"status"`
	RowsImported      int       `json:"rows_imported"`
	RowsSkipped       int       `json:"rows_skipped"`
	CategoriesCreated int       `json:"categories_created"`
	ErrorMessage      *string   `json:"error_message"`
	FinishedAt        time.Time `json:"finished_at"`
}

func (c *Client) CreateImportJob(ctx context.Context, job *repository.ImportJob) (err error) {
	ctx, span := startSpan(ctx, "CreateImportJob", attribute.String("family_id", job.FamilyID.String()))
	defer func() { endSpan(span, err) }()

	body := []newImportJob{{
		FamilyID:  job.FamilyID,
		CreatedBy: job.CreatedBy,
		FileName:  job.FileName,
		Sheet:     job.Sheet,
		Status:    job.Status,
		RowsTotal: job.RowsTotal,
	}}
	q := url.Values{}
	q.Set("select", "id,created_at")

	var rows []struct {
		ID        uuid.UUID `json:"id"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err = c.write(ctx, "supabase/import_jobs", http.MethodPost, "import_jobs", q, body, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return c.wrap("supabase/import_jobs", fmt.Errorf("import_jobs insert returned no rows"))
	}
	job.ID = rows[0].ID
	job.CreatedAt = rows[0].CreatedAt
	return nil
}

func (c *Client) FinishImportJob(ctx context.Context, id uuid.UUID, result repository.JobResult) (err error) {
	ctx, span := startSpan(ctx, "FinishImportJob",
		attribute.String("job_id", id.String()),
		attribute.String("status", result.Status),
	)
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("id", eq(id))
	body := finishedImportJob{
		Status:            result.Status,
		RowsImported:      result.RowsImported,
		RowsSkipped:       result.RowsSkipped,
		CategoriesCreated: result.CategoriesCreated,
		ErrorMessage:      result.ErrorMessage,
		FinishedAt:        time.Now().UTC(),
	}
	return c.write(ctx, "supabase/import_jobs", http.MethodPatch, "import_jobs", q, body, nil)
}

func (c *Client) ListImportJobs(ctx context.Context, familyID uuid.UUID, limit int) (jobs []repository.ImportJob, err error) {
	ctx, span := startSpan(ctx, "ListImportJobs", attribute.String("family_id", familyID.String()))
	defer func() { endSpan(span, err) }()

	q := url.Values{}
	q.Set("family_id", eq(familyID))
	q.Set("order", "created_at.desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	if err = c.read(ctx, "supabase/import_jobs", "import_jobs", q, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
