package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kbukum/flowcheck/logger"
	"github.com/kbukum/flowcheck/observability"
	"github.com/kbukum/flowcheck/validation"
)

// Filter restricts reads to one project and/or sprint. Empty fields match
// everything.
type Filter struct {
	ProjectID string `json:"project_id,omitempty"`
	SprintID  string `json:"sprint_id,omitempty"`
}

// Validate checks that any set filter values are well-formed UUIDs.
func (f Filter) Validate() error {
	v := validation.New().
		OptionalUUID("project_id", f.ProjectID).
		OptionalUUID("sprint_id", f.SprintID)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.ProjectID == "" && f.SprintID == ""
}

// Reader is the read-only view of the tracker that checks consume.
// Implementations must return rows ordered by id so findings are
// deterministic across runs.
type Reader interface {
	// Projects returns all projects that are not soft-deleted.
	Projects(ctx context.Context) ([]Project, error)
	// Sprints returns sprints matching the filter, excluding soft-deleted rows.
	Sprints(ctx context.Context, f Filter) ([]Sprint, error)
	// Tasks returns tasks matching the filter, excluding soft-deleted rows.
	Tasks(ctx context.Context, f Filter) ([]Task, error)
	// TasksAll returns tasks matching the filter including soft-deleted rows.
	TasksAll(ctx context.Context, f Filter) ([]Task, error)
	// AuditLogs returns every audit entry.
	AuditLogs(ctx context.Context) ([]AuditLog, error)
}

// Store is the GORM-backed Reader over the tracker database.
type Store struct {
	db     *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

var _ Reader = (*Store)(nil)

// Open opens the tracker database at cfg.Path.
func Open(cfg Config, log *logger.Logger) (*Store, error) {
	return OpenWithDialector(cfg, log, sqlite.Open(cfg.Path))
}

// OpenWithDialector opens the tracker database with a caller-supplied GORM
// dialector. Connection pooling is configured from cfg; in-memory SQLite is
// pinned to one connection so every reader sees the same database.
func OpenWithDialector(cfg Config, log *logger.Logger, dialector gorm.Dialector) (*Store, error) {
	cfg.ApplyDefaults()

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening tracker store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	maxIdle := cfg.MaxIdleConns
	if cfg.inMemory() {
		maxOpen = 1
		maxIdle = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	if lifetime, parseErr := time.ParseDuration(cfg.ConnMaxLifetime); parseErr == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	s := &Store{db: db, log: log.WithComponent("store"), cfg: cfg}

	if cfg.AutoMigrate {
		if err := s.AutoMigrate(); err != nil {
			return nil, err
		}
	}

	s.log.Info("tracker store opened", logger.Fields(
		"path", cfg.Path,
		"max_open_conns", maxOpen,
	))
	return s, nil
}

// DB returns the underlying GORM handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying connection pool. Safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.closed = true
	return sqlDB.Close()
}

// PingContext verifies the connection is alive, respecting the context.
func (s *Store) PingContext(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate creates or updates the tracker schema.
func (s *Store) AutoMigrate() error {
	for _, model := range Models() {
		if err := s.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrating %T: %w", model, err)
		}
	}
	return nil
}

// Projects returns all projects that are not soft-deleted, ordered by id.
func (s *Store) Projects(ctx context.Context) ([]Project, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStoreQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "table", "projects")

	var projects []Project
	if err := s.db.WithContext(ctx).Order("id").Find(&projects).Error; err != nil {
		observability.SetSpanError(ctx, err)
		return nil, FromStore(err)
	}
	return projects, nil
}

// Sprints returns sprints matching the filter, ordered by id.
func (s *Store) Sprints(ctx context.Context, f Filter) ([]Sprint, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStoreQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "table", "sprints")

	q := s.db.WithContext(ctx).Order("id")
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.SprintID != "" {
		q = q.Where("id = ?", f.SprintID)
	}

	var sprints []Sprint
	if err := q.Find(&sprints).Error; err != nil {
		observability.SetSpanError(ctx, err)
		return nil, FromStore(err)
	}
	return sprints, nil
}

// Tasks returns tasks matching the filter, excluding soft-deleted rows,
// ordered by id.
func (s *Store) Tasks(ctx context.Context, f Filter) ([]Task, error) {
	return s.tasks(ctx, f, false)
}

// TasksAll returns tasks matching the filter including soft-deleted rows,
// ordered by id.
func (s *Store) TasksAll(ctx context.Context, f Filter) ([]Task, error) {
	return s.tasks(ctx, f, true)
}

func (s *Store) tasks(ctx context.Context, f Filter, includeDeleted bool) ([]Task, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStoreQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "table", "tasks")

	q := s.db.WithContext(ctx)
	if includeDeleted {
		q = q.Unscoped()
	}
	q = q.Order("id")
	if f.ProjectID != "" {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.SprintID != "" {
		q = q.Where("sprint_id = ?", f.SprintID)
	}

	var tasks []Task
	if err := q.Find(&tasks).Error; err != nil {
		observability.SetSpanError(ctx, err)
		return nil, FromStore(err)
	}
	return tasks, nil
}

// AuditLogs returns every audit entry ordered by creation time, then id.
func (s *Store) AuditLogs(ctx context.Context) ([]AuditLog, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanStoreQuery)
	defer span.End()
	observability.SetSpanAttribute(ctx, "table", "audit_logs")

	var logs []AuditLog
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&logs).Error; err != nil {
		observability.SetSpanError(ctx, err)
		return nil, FromStore(err)
	}
	return logs, nil
}
