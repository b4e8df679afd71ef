package testhelpers

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/recipe-management/backend/internal/database"
)

// RequireDocker skips the test when no container runtime is reachable.
func RequireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// ProvisionT provisions an Environment for t, exports its settings with
// t.Setenv and tears it down on cleanup.
func ProvisionT(t *testing.T, opts ...Option) *Environment {
	t.Helper()
	RequireDocker(t)

	env, err := Provision(context.Background(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = env.Teardown(context.Background())
	})

	env.ExportTo(t.Setenv)
	return env
}

// OpenSQLite opens a private in-memory SQLite database. Each call gets its
// own database; connections within one call share it.
func OpenSQLite() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// MustOpenTestDB returns an in-memory SQLite database without the schema.
func MustOpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenSQLite()
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// The in-memory database lives only while a connection holds it.
	sqlDB.SetMaxIdleConns(4)
	sqlDB.SetConnMaxLifetime(0)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// MustOpenMigratedTestDB returns an in-memory SQLite database with the schema
// applied.
func MustOpenMigratedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := MustOpenTestDB(t)
	migrator, err := database.NewMigrator(db)
	require.NoError(t, err)
	require.NoError(t, migrator.Apply(context.Background()))
	return db
}
