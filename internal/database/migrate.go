package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-management/backend/internal/logger"
	"github.com/pageza/recipe-management/backend/internal/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// InitialVersion is the goose version of the migration that creates Recipes.
const InitialVersion int64 = 20231216232837

var (
	ErrTableExists           = errors.New("table already exists")
	ErrTableMissing          = errors.New("table does not exist")
	ErrConnectionUnavailable = errors.New("database connection unavailable")
	// ErrHistoryMismatch means the version table disagrees with the live schema.
	ErrHistoryMismatch = errors.New("migration history does not match schema")
)

// SchemaError is returned by Apply and Revert. Err is one of the sentinels
// above when the failure was classified, Cause carries the driver error.
type SchemaError struct {
	Op      string
	Table   string
	Version int64
	Err     error
	Cause   error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema %s %q (version %d)", e.Op, e.Table, e.Version)
	switch {
	case e.Err != nil && e.Cause != nil:
		return fmt.Sprintf("%s: %v: %v", msg, e.Err, e.Cause)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", msg, e.Err)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *SchemaError) Unwrap() []error {
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Migrator applies and reverts the embedded schema migrations.
type Migrator struct {
	db       *gorm.DB
	provider *goose.Provider
	log      *zap.Logger
}

// NewMigrator builds a goose provider over db. The provider does not own the
// connection; closing it remains the caller's job.
func NewMigrator(db *gorm.DB) (*Migrator, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}

	dialect, err := gooseDialect(db.Dialector.Name())
	if err != nil {
		return nil, err
	}

	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	log := logger.WithModule("migrate")
	provider, err := goose.NewProvider(dialect, sqlDB, fsys, goose.WithLogger(gooseLogger{log.Sugar()}))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	return &Migrator{db: db, provider: provider, log: log}, nil
}

func gooseDialect(name string) (goose.Dialect, error) {
	switch name {
	case "postgres":
		return goose.DialectPostgres, nil
	case "sqlite", "sqlite3":
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("no migration dialect for driver %q", name)
	}
}

// Apply creates the Recipes table. It fails if the table already exists.
func (m *Migrator) Apply(ctx context.Context) error {
	const op = "apply"

	if err := m.ping(ctx); err != nil {
		return m.schemaError(op, ErrConnectionUnavailable, err)
	}

	exists, err := m.hasRecipesTable(ctx)
	if err != nil {
		return m.schemaError(op, ErrConnectionUnavailable, err)
	}
	if exists {
		return m.schemaError(op, ErrTableExists, nil)
	}

	if _, err := m.provider.ApplyVersion(ctx, InitialVersion, true); err != nil {
		if errors.Is(err, goose.ErrAlreadyApplied) {
			return m.schemaError(op, ErrHistoryMismatch, err)
		}
		return m.schemaError(op, nil, err)
	}

	m.log.Info("migration applied", zap.Int64("version", InitialVersion), zap.String("table", models.RecipesTable))
	return nil
}

// Revert drops the Recipes table. It fails if the table does not exist.
func (m *Migrator) Revert(ctx context.Context) error {
	const op = "revert"

	if err := m.ping(ctx); err != nil {
		return m.schemaError(op, ErrConnectionUnavailable, err)
	}

	exists, err := m.hasRecipesTable(ctx)
	if err != nil {
		return m.schemaError(op, ErrConnectionUnavailable, err)
	}
	if !exists {
		return m.schemaError(op, ErrTableMissing, nil)
	}

	if _, err := m.provider.ApplyVersion(ctx, InitialVersion, false); err != nil {
		if errors.Is(err, goose.ErrNotApplied) {
			return m.schemaError(op, ErrHistoryMismatch, err)
		}
		return m.schemaError(op, nil, err)
	}

	m.log.Info("migration reverted", zap.Int64("version", InitialVersion), zap.String("table", models.RecipesTable))
	return nil
}

// Up applies every pending migration and is a no-op when the schema is
// current. Service startup uses it instead of Apply.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ping(ctx); err != nil {
		return m.schemaError("up", ErrConnectionUnavailable, err)
	}

	results, err := m.provider.Up(ctx)
	if err != nil {
		return m.schemaError("up", nil, err)
	}
	for _, r := range results {
		m.log.Info("migration applied", zap.Int64("version", r.Source.Version), zap.Duration("duration", r.Duration))
	}
	return nil
}

// Status reports the state of every known migration.
func (m *Migrator) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	return m.provider.Status(ctx)
}

func (m *Migrator) ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *Migrator) hasRecipesTable(ctx context.Context) (bool, error) {
	var exists bool
	err := m.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		exists = tx.Migrator().HasTable(models.RecipesTable)
		return tx.Error
	})
	return exists, err
}

func (m *Migrator) schemaError(op string, kind, cause error) *SchemaError {
	return &SchemaError{
		Op:      op,
		Table:   models.RecipesTable,
		Version: InitialVersion,
		Err:     kind,
		Cause:   cause,
	}
}

type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.s.Infof(format, v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.s.Fatalf(format, v...)
}
