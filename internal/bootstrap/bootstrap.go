// Package bootstrap wires configuration, infrastructure and application
// services into one Container shared by the API server and the operator CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/agency/backoffice/internal/application/activity"
	crmapp "github.com/agency/backoffice/internal/application/crm"
	identityapp "github.com/agency/backoffice/internal/application/identity"
	ledgerapp "github.com/agency/backoffice/internal/application/ledger"
	"github.com/agency/backoffice/internal/infrastructure/auth"
	"github.com/agency/backoffice/internal/infrastructure/config"
	"github.com/agency/backoffice/internal/infrastructure/event"
	"github.com/agency/backoffice/internal/infrastructure/logger"
	"github.com/agency/backoffice/internal/infrastructure/persistence"
	"github.com/agency/backoffice/internal/infrastructure/storage"
	"github.com/agency/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Container holds the long-lived dependencies of one process
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB        *persistence.Database
	Events    *event.InMemoryEventBus
	JWT       *auth.JWTService
	Blacklist auth.TokenBlacklist
	Tracer    *telemetry.TracerProvider
	Profiler  *telemetry.Profiler

	Transactions *ledgerapp.TransactionService
	Summaries    *ledgerapp.SummaryService
	Attachments  *ledgerapp.AttachmentService
	Contacts     *crmapp.ContactService
	ActivityLogs *activity.Service
	Auth         *identityapp.AuthService
	Users        *identityapp.UserService

	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New connects to every backing service and builds the application layer.
// The event bus is subscribed but not started. On error everything opened
// so far is closed again.
//
// When log export is enabled Container.Logger is log teed into the OTLP
// pipeline and callers should switch to it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *Container, err error) {
	c := &Container{Config: cfg, Logger: log}
	defer func() {
		if err != nil {
			_ = c.Close(context.WithoutCancel(ctx))
		}
	}()

	logs, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("logger provider: %w", err)
	}
	c.onClose("log export", logs.Shutdown)
	if log, err = logs.Bridge(log, logger.ParseLevel(cfg.Log.Level)); err != nil {
		return nil, err
	}
	c.Logger = log

	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		return nil, fmt.Errorf("profiler: %w", err)
	}
	c.Profiler = profiler
	c.onClose("profiler", func(context.Context) error { return profiler.Stop() })

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("tracer provider: %w", err)
	}
	c.Tracer = tracer
	c.onClose("tracer", tracer.Shutdown)
	if profiler.IsEnabled() {
		tracer.LinkProfiles()
	}

	meter, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("meter provider: %w", err)
	}
	c.onClose("meter", meter.Shutdown)

	metrics, err := telemetry.NewLedgerMetrics(meter.Meter("github.com/agency/backoffice/ledger"))
	if err != nil {
		return nil, fmt.Errorf("ledger metrics: %w", err)
	}

	db, err := persistence.NewDatabase(cfg.Database,
		persistence.WithLogger(log, cfg.Log.Level),
		persistence.WithTracing(cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled),
	)
	if err != nil {
		return nil, err
	}
	c.DB = db
	c.onClose("database", func(context.Context) error { return db.Close() })
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName))

	blacklist, closeBlacklist, err := auth.NewTokenBlacklist(ctx, cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	c.Blacklist = blacklist
	c.onClose("redis", func(context.Context) error { return closeBlacklist() })

	objects, err := newObjectStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	txRepo := persistence.NewGormTransactionRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)

	c.Events = event.NewInMemoryEventBus(log)
	c.JWT = auth.NewJWTService(cfg.JWT)

	c.Transactions = ledgerapp.NewTransactionService(txRepo, c.Events, metrics, log)
	c.Summaries = ledgerapp.NewSummaryService(txRepo, contactRepo, metrics, cfg.App.Location(), log)
	c.Attachments = ledgerapp.NewAttachmentService(txRepo, objects, log)
	c.Contacts = crmapp.NewContactService(contactRepo, c.Transactions, c.Events, log)
	c.ActivityLogs = activity.NewService(activityRepo)
	c.Auth = identityapp.NewAuthService(userRepo, c.JWT, blacklist, identityapp.AuthServiceConfigFrom(cfg.Auth), log)
	c.Users = identityapp.NewUserService(userRepo, c.JWT, blacklist, log)

	recorder := activity.NewRecorder(activityRepo, log)
	c.Events.Subscribe(recorder, recorder.EventTypes()...)
	c.Events.Subscribe(c.Attachments, c.Attachments.EventTypes()...)

	return c, nil
}

// Close releases resources in reverse order of acquisition
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		cl := c.closers[i]
		if err := cl.fn(ctx); err != nil {
			c.Logger.Warn("Failed to close resource", zap.String("resource", cl.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", cl.name, err))
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) onClose(name string, fn func(context.Context) error) {
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

// newObjectStorage returns the S3 client when storage is enabled and the
// in-process stub otherwise
func newObjectStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (ledgerapp.ObjectStorage, error) {
	if !cfg.Enabled {
		log.Warn("Object storage disabled, receipts use stub URLs")
		return storage.NewStubObjectStorage(""), nil
	}
	s3, err := storage.NewS3ObjectStorage(ctx, cfg,
		storage.WithLogger(log),
		storage.WithPresignExpiration(cfg.PresignExpiration),
	)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object storage bucket: %w", err)
	}
	log.Info("Object storage ready", zap.String("bucket", s3.Bucket()))
	return s3, nil
}
