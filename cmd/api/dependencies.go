// Package api wires the stores, services and HTTP routes of the server.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/casa-gastos/internal/domain/category"
	categoryhandler "github.com/FACorreiaa/casa-gastos/internal/domain/category/handler"
	"github.com/FACorreiaa/casa-gastos/internal/domain/family"
	familyhandler "github.com/FACorreiaa/casa-gastos/internal/domain/family/handler"
	importhandler "github.com/FACorreiaa/casa-gastos/internal/domain/import/handler"
	importrepo "github.com/FACorreiaa/casa-gastos/internal/domain/import/repository"
	importservice "github.com/FACorreiaa/casa-gastos/internal/domain/import/service"
	"github.com/FACorreiaa/casa-gastos/internal/domain/transaction"
	transactionhandler "github.com/FACorreiaa/casa-gastos/internal/domain/transaction/handler"
	"github.com/FACorreiaa/casa-gastos/internal/infra/memory"
	"github.com/FACorreiaa/casa-gastos/internal/infra/resilience"
	"github.com/FACorreiaa/casa-gastos/internal/infra/supabase"
	"github.com/FACorreiaa/casa-gastos/pkg/config"
	"github.com/FACorreiaa/casa-gastos/pkg/cron"
	"github.com/FACorreiaa/casa-gastos/pkg/db"
	"github.com/FACorreiaa/casa-gastos/pkg/interceptors"
	"github.com/FACorreiaa/casa-gastos/pkg/observability"
	"github.com/FACorreiaa/casa-gastos/pkg/storage"
)

// Pinger reports whether the data store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Ready   Pinger // nil when there is nothing to check

	// Stores
	CategoryStore    category.Store
	TransactionStore transaction.Store
	FamilyStore      family.Store
	ImportRepo       importrepo.ImportRepository
	FileStorage      *storage.LocalStorage

	// Services
	Tokens             *interceptors.TokenValidator
	CategoryService    *category.Service
	FamilyService      *family.Service
	TransactionService *transaction.Service
	ImportService      *importservice.ImportService
	Sweeper            *cron.Scheduler

	// Handlers
	FamilyHandler      *familyhandler.FamilyHandler
	CategoryHandler    *categoryhandler.CategoryHandler
	TransactionHandler *transactionhandler.TransactionHandler
	ImportHandler      *importhandler.ImportHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	}

	if err := deps.initStores(); err != nil {
		return nil, fmt.Errorf("failed to init stores: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully", slog.String("store", cfg.Store.Backend))
	return deps, nil
}

// initStores picks the data store backend
func (d *Dependencies) initStores() error {
	switch d.Config.Store.Backend {
	case config.BackendPostgres:
		database, err := db.New(db.Config{
			DSN:             d.Config.Database.DSN(),
			MaxConns:        int32(d.Config.Database.MaxConns),
			MaxConnLifetime: 5 * time.Minute,
			MaxConnIdleTime: 10 * time.Minute,
		}, d.Logger)
		if err != nil {
			return err
		}
		d.DB = database
		d.Ready = database

		if d.Config.Database.RunMigrations {
			if err := d.DB.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		d.CategoryStore = category.NewPostgresRepository(d.DB.Pool)
		d.TransactionStore = transaction.NewPostgresRepository(d.DB.Pool)
		d.FamilyStore = family.NewPostgresRepository(d.DB.Pool)
		d.ImportRepo = importrepo.NewPostgresRepository(d.DB.Pool)

	case config.BackendSupabase:
		sb := d.Config.Supabase
		client := supabase.NewClient(supabase.Config{
			URL:            sb.URL,
			APIKey:         sb.AnonKey,
			ServiceRoleKey: sb.ServiceRoleKey,
			Timeout:        sb.Timeout,
			Resilience: resilience.Config{
				MaxRetries:     sb.MaxRetries,
				InitialBackoff: sb.InitialBackoff,
			},
		}, d.Logger, supabase.WithErrorRecorder(d.Metrics))
		d.Logger.Info("using Supabase as data backend", slog.String("supabase_url", sb.URL))

		d.CategoryStore = client
		d.TransactionStore = client
		d.FamilyStore = client
		d.ImportRepo = client

	case config.BackendMemory:
		d.Logger.Warn("using the in-memory store, data is lost on restart")
		store := memory.New()
		d.CategoryStore = store
		d.TransactionStore = store
		d.FamilyStore = store
		d.ImportRepo = store

	default:
		return fmt.Errorf("unknown store backend %q", d.Config.Store.Backend)
	}
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	secret := d.Config.Auth.JWTSecret
	if secret == "" {
		// Only the memory backend gets here; tokens die with the process.
		secret = uuid.NewString()
		d.Logger.Warn("JWT_SECRET not set, using a random secret")
	}
	d.Tokens = interceptors.NewTokenValidator([]byte(secret))

	fileStorage, err := storage.New(storage.Config{
		Dir:            d.Config.Storage.Dir,
		MaxUploadBytes: d.Config.Storage.MaxUploadBytes,
		Retention:      d.Config.Storage.Retention,
	})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage

	d.CategoryService = category.NewService(d.CategoryStore, d.Logger)
	d.FamilyService = family.NewService(d.FamilyStore, d.CategoryService, d.Logger)
	d.TransactionService = transaction.NewService(d.TransactionStore, d.CategoryStore, d.Logger)

	inserter := transaction.NewBatchInserter(d.TransactionStore, d.Logger,
		transaction.WithBatchRecorder(d.Metrics),
	)
	d.ImportService = importservice.NewImportService(d.FileStorage, d.CategoryStore, inserter, d.Logger).
		WithJobRepository(d.ImportRepo).
		WithMetrics(d.Metrics)

	d.Sweeper = cron.NewScheduler(d.FileStorage, d.Config.Storage.Retention, d.Config.Storage.SweepSchedule, d.Metrics, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.FamilyHandler = familyhandler.NewFamilyHandler(d.FamilyService, d.Logger)
	d.CategoryHandler = categoryhandler.NewCategoryHandler(d.CategoryService, d.Logger)
	d.TransactionHandler = transactionhandler.NewTransactionHandler(d.TransactionService, d.Logger)
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.Logger)
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
