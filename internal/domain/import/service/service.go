// Package service provides the import orchestration logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/casa-gastos/internal/domain"
	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/mapping"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/normalizer"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/parser"
	"github.com/FACorreiaa/casa-gastos/internal/domain/import/repository"
	"github.com/FACorreiaa/casa-gastos/internal/domain/transaction"
	"github.com/FACorreiaa/casa-gastos/pkg/storage"
)

const (
	previewRows = 15
	previewCols = 8
	maxJobs     = 20
)

var tracer = otel.Tracer("import")

// ErrCategoryMissing is returned when the store did not hand back a category
// the import asked for. No transaction is inserted.
var ErrCategoryMissing = errors.New("category missing after reconciliation")

// FileStore keeps uploads between analysis and import.
type FileStore interface {
	Upload(ctx context.Context, owner uuid.UUID, filename, contentType string, r io.Reader) (*storage.FileInfo, error)
	ReadAll(ctx context.Context, owner, fileID uuid.UUID) ([]byte, *storage.FileInfo, error)
	Delete(ctx context.Context, owner, fileID uuid.UUID) error
}

// Inserter stores transactions in batches.
type Inserter interface {
	Insert(ctx context.Context, txs []transaction.NewTransaction) (int, error)
}

// ImportRecorder observes finished imports.
type ImportRecorder interface {
	RecordImport(status string, imported, skipped, categoriesCreated int)
}

// Preview is the top-left corner of a sheet rendered as text.
type Preview struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// CategoryHint pairs a category value of the sheet that the family lacks with
// the closest existing category.
type CategoryHint struct {
	Name       string `json:"name"`
	Suggestion string `json:"suggestion"`
}

// AnalyzeResult describes one sheet of an upload. Nothing is written while
// producing it.
type AnalyzeResult struct {
	FileID        uuid.UUID             `json:"file_id"`
	FileName      string                `json:"file_name"`
	Sheets        []string              `json:"sheets"`
	Sheet         string                `json:"sheet"`
	Headers       []string              `json:"headers"`
	RowCount      int                   `json:"row_count"`
	Suggested     mapping.ColumnMapping `json:"suggested_mapping"`
	Preview       Preview               `json:"preview"`
	CategoryHints []CategoryHint        `json:"category_hints"`
}

// ImportRequest is the mapping the user confirmed for a stored upload.
type ImportRequest struct {
	FileID      uuid.UUID             `json:"file_id"`
	Sheet       string                `json:"sheet"`
	Mapping     mapping.ColumnMapping `json:"mapping"`
	DefaultDate string                `json:"default_date"`
}

// ImportResult contains the result of an import operation
type ImportResult struct {
	JobID             *uuid.UUID `json:"job_id,omitempty"`
	RowsTotal         int        `json:"rows_total"`
	RowsImported      int        `json:"rows_imported"`
	RowsSkipped       int        `json:"rows_skipped"`
	CategoriesCreated int        `json:"categories_created"`
}

// ImportService orchestrates file analysis and import operations
type ImportService struct {
	files      FileStore
	categories category.Store
	reconciler *category.Reconciler
	inserter   Inserter
	jobs       repository.ImportRepository // optional
	metrics    ImportRecorder              // optional
	logger     *slog.Logger
	now        func() time.Time
}

// NewImportService creates a new import service
func NewImportService(files FileStore, categories category.Store, inserter Inserter, logger *slog.Logger) *ImportService {
	return &ImportService{
		files:      files,
		categories: categories,
		reconciler: category.NewReconciler(categories, logger),
		inserter:   inserter,
		logger:     logger,
		now:        time.Now,
	}
}

// WithJobRepository records every import as a job
func (s *ImportService) WithJobRepository(jobs repository.ImportRepository) *ImportService {
	s.jobs = jobs
	return s
}

// WithMetrics reports finished imports to m
func (s *ImportService) WithMetrics(m ImportRecorder) *ImportService {
	s.metrics = m
	return s
}

func invalidFile(err error) error {
	return &domain.ErrValidation{Field: "file", Message: err.Error()}
}

// load reads a stored upload and selects sheet. An empty sheet is the first one.
func (s *ImportService) load(ctx context.Context, scope family.Scope, fileID uuid.UUID, sheet string) (*parser.Workbook, *parser.Sheet, *storage.FileInfo, error) {
	data, info, err := s.files.ReadAll(ctx, scope.FamilyID, fileID)
	if err != nil {
		return nil, nil, nil, err
	}

	wb, err := parser.Open(info.Name, data)
	if err != nil {
		return nil, nil, nil, invalidFile(err)
	}

	sh, err := wb.Sheet(sheet)
	if err != nil {
		return nil, nil, nil, &domain.ErrValidation{Field: "sheet", Message: err.Error()}
	}
	return wb, sh, info, nil
}

// Upload stores a spreadsheet and analyzes its first sheet. Files that cannot
// be read are rejected and not kept.
func (s *ImportService) Upload(ctx context.Context, scope family.Scope, filename, contentType string, r io.Reader) (*AnalyzeResult, error) {
	info, err := s.files.Upload(ctx, scope.FamilyID, filename, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	result, err := s.Analyze(ctx, scope, info.ID, "")
	if err != nil {
		if delErr := s.files.Delete(ctx, scope.FamilyID, info.ID); delErr != nil {
			s.logger.Warn("failed to delete rejected upload",
				slog.String("file_id", info.ID.String()),
				slog.Any("error", delErr),
			)
		}
		return nil, err
	}

	s.logger.Info("spreadsheet uploaded",
		slog.String("family_id", scope.FamilyID.String()),
		slog.String("file_id", info.ID.String()),
		slog.Int64("size", info.Size),
		slog.Int("sheets", len(result.Sheets)),
	)
	return result, nil
}

// Analyze describes a sheet of a stored upload: headers, row count, the
// suggested mapping, a preview and hints for unknown categories.
func (s *ImportService) Analyze(ctx context.Context, scope family.Scope, fileID uuid.UUID, sheet string) (*AnalyzeResult, error) {
	wb, sh, info, err := s.load(ctx, scope, fileID, sheet)
	if err != nil {
		return nil, err
	}

	suggested := mapping.Suggest(sh.Headers)
	headers, rows := sh.Preview(previewRows, previewCols)

	hints, err := s.categoryHints(ctx, scope.FamilyID, sh, suggested.Category)
	if err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		FileID:        info.ID,
		FileName:      info.Name,
		Sheets:        wb.SheetNames(),
		Sheet:         sh.Name,
		Headers:       sh.Headers,
		RowCount:      len(sh.Rows),
		Suggested:     suggested,
		Preview:       Preview{Headers: headers, Rows: rows},
		CategoryHints: hints,
	}, nil
}

// Import runs the pipeline on a stored upload: validate the mapping, normalize
// the rows, reconcile categories and insert the transactions in batches.
// Store errors abort the run; batches stored before the failure stay stored.
func (s *ImportService) Import(ctx context.Context, scope family.Scope, req ImportRequest) (result *ImportResult, err error) {
	ctx, span := tracer.Start(ctx, "ImportService.Import", trace.WithAttributes(
		attribute.String("family_id", scope.FamilyID.String()),
		attribute.String("file_id", req.FileID.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !req.Mapping.Complete() {
		return nil, req.Mapping.Validate(nil)
	}

	fallbackDate, err := s.fallbackDate(req.DefaultDate)
	if err != nil {
		return nil, err
	}

	_, sh, info, err := s.load(ctx, scope, req.FileID, req.Sheet)
	if err != nil {
		return nil, err
	}
	if err := req.Mapping.Validate(sh); err != nil {
		return nil, err
	}

	drafts, err := normalizer.NormalizeRows(sh.Rows, req.Mapping, fallbackDate)
	if err != nil {
		s.record(repository.StatusFailed, 0, len(sh.Rows), 0)
		return nil, err
	}

	result = &ImportResult{
		RowsTotal:   len(sh.Rows),
		RowsSkipped: len(sh.Rows) - len(drafts),
	}
	span.SetAttributes(
		attribute.Int("rows_total", result.RowsTotal),
		attribute.Int("rows_valid", len(drafts)),
	)

	job, err := s.startJob(ctx, scope, info.Name, sh.Name, result.RowsTotal)
	if err != nil {
		return nil, err
	}
	if job != nil {
		result.JobID = &job.ID
	}

	err = s.run(ctx, scope, drafts, result)
	s.finishJob(ctx, job, result, err)
	if err != nil {
		s.record(repository.StatusFailed, 0, result.RowsSkipped, result.CategoriesCreated)
		return nil, err
	}
	s.record(repository.StatusSucceeded, result.RowsImported, result.RowsSkipped, result.CategoriesCreated)

	s.logger.Info("import completed",
		slog.String("family_id", scope.FamilyID.String()),
		slog.Int("rows_total", result.RowsTotal),
		slog.Int("rows_imported", result.RowsImported),
		slog.Int("rows_skipped", result.RowsSkipped),
		slog.Int("categories_created", result.CategoriesCreated),
	)
	return result, nil
}

// run reconciles categories and inserts the drafts, filling result.
func (s *ImportService) run(ctx context.Context, scope family.Scope, drafts []normalizer.Draft, result *ImportResult) error {
	names := categoryNames(drafts)

	rec, err := s.reconciler.Reconcile(ctx, scope.FamilyID, names)
	if err != nil {
		return err
	}
	result.CategoriesCreated = len(rec.Created)

	reconciled := make(map[string]struct{}, len(names))
	for _, n := range names {
		reconciled[strings.ToLower(n)] = struct{}{}
	}

	defaultID, hasDefault := rec.Lookup.ID(normalizer.DefaultCategory)
	txs := make([]transaction.NewTransaction, 0, len(drafts))
	for _, d := range drafts {
		tx := transaction.NewTransaction{
			FamilyID:      scope.FamilyID,
			CreatedBy:     scope.UserID,
			Amount:        d.Amount,
			Date:          d.Date,
			PaymentMethod: d.PaymentMethod,
			Description:   d.Description,
		}
		id, ok := rec.Lookup.ID(d.Category)
		switch {
		case ok:
			tx.CategoryID = &id
		case isReconciled(reconciled, d.Category):
			return fmt.Errorf("%w: %q", ErrCategoryMissing, strings.TrimSpace(d.Category))
		case hasDefault:
			tx.CategoryID = &defaultID
		}
		txs = append(txs, tx)
	}

	imported, err := s.inserter.Insert(ctx, txs)
	if err != nil {
		return err
	}
	result.RowsImported = imported
	return nil
}

func isReconciled(set map[string]struct{}, name string) bool {
	_, ok := set[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// categoryNames returns the distinct category names of drafts, at most
// category.MaxReconciledNames of them. When the cap is hit the default
// category takes the last slot so overflowing rows still get a category.
func categoryNames(drafts []normalizer.Draft) []string {
	all := make([]string, len(drafts))
	for i, d := range drafts {
		all[i] = d.Category
	}

	names := category.DistinctNames(all, 0)
	if len(names) <= category.MaxReconciledNames {
		return names
	}

	kept := names[:category.MaxReconciledNames-1]
	for _, n := range kept {
		if strings.EqualFold(n, normalizer.DefaultCategory) {
			return names[:category.MaxReconciledNames]
		}
	}
	return append(kept[:len(kept):len(kept)], normalizer.DefaultCategory)
}

func (s *ImportService) fallbackDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().Format(normalizer.ISODate), nil
	}
	if _, err := time.Parse(normalizer.ISODate, raw); err != nil {
		return "", &domain.ErrValidation{Field: "default_date", Message: "data padrão inválida, use AAAA-MM-DD"}
	}
	return raw, nil
}

func (s *ImportService) startJob(ctx context.Context, scope family.Scope, fileName, sheet string, rows int) (*repository.ImportJob, error) {
	if s.jobs == nil {
		return nil, nil
	}
	job := &repository.ImportJob{
		FamilyID:  scope.FamilyID,
		CreatedBy: scope.UserID,
		FileName:  fileName,
		Sheet:     sheet,
		Status:    repository.StatusRunning,
		RowsTotal: rows,
	}
	if err := s.jobs.CreateImportJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}
	return job, nil
}

func (s *ImportService) finishJob(ctx context.Context, job *repository.ImportJob, result *ImportResult, runErr error) {
	if job == nil {
		return
	}
	res := repository.JobResult{
		Status:            repository.StatusSucceeded,
		RowsImported:      result.RowsImported,
		RowsSkipped:       result.RowsSkipped,
		CategoriesCreated: result.CategoriesCreated,
	}
	if runErr != nil {
		msg := runErr.Error()
		res.Status = repository.StatusFailed
		res.ErrorMessage = &msg
		var batchErr *transaction.BatchError
		if errors.As(runErr, &batchErr) {
			res.RowsImported = batchErr.Committed
		}
	}
	// The run is over either way; a cancelled request must not leave the job running.
	if err := s.jobs.FinishImportJob(context.WithoutCancel(ctx), job.ID, res); err != nil {
		s.logger.Warn("failed to finish import job",
			slog.String("job_id", job.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *ImportService) record(status string, imported, skipped, created int) {
	if s.metrics != nil {
		s.metrics.RecordImport(status, imported, skipped, created)
	}
}

// ListJobs returns the family's latest import jobs. Without a job repository
// the list is empty.
func (s *ImportService) ListJobs(ctx context.Context, scope family.Scope) ([]repository.ImportJob, error) {
	if s.jobs == nil {
		return []repository.ImportJob{}, nil
	}
	jobs, err := s.jobs.ListImportJobs(ctx, scope.FamilyID, maxJobs)
	if err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	if jobs == nil {
		jobs = []repository.ImportJob{}
	}
	return jobs, nil
}
