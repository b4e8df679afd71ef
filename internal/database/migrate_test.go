package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-management/backend/internal/database"
	"github.com/pageza/recipe-management/backend/internal/models"
	"github.com/pageza/recipe-management/backend/internal/testhelpers"
)

func newMigrator(t *testing.T, db *gorm.DB) *database.Migrator {
	t.Helper()
	m, err := database.NewMigrator(db)
	require.NoError(t, err)
	return m
}

func requireSchemaError(t *testing.T, err error, kind error) {
	t.Helper()
	var schemaErr *database.SchemaError
	require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %v", err)
	assert.Equal(t, models.RecipesTable, schemaErr.Table)
	assert.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
}

func TestApplyThenRevertLeavesNoTable(t *testing.T) {
	ctx := context.Background()
	db := testhelpers.MustOpenTestDB(t)
	m := newMigrator(t, db)

	require.NoError(t, m.Apply(ctx))
	assert.True(t, db.Migrator().HasTable(models.RecipesTable))

	require.NoError(t, m.Revert(ctx))
	assert.False(t, db.Migrator().HasTable(models.RecipesTable))

	// The step is repeatable once reverted.
	require.NoError(t, m.Apply(ctx))
	assert.True(t, db.Migrator().HasTable(models.RecipesTable))
}

func TestApplyTwiceFails(t *testing.T) {
	ctx := context.Background()
	m := newMigrator(t, testhelpers.MustOpenTestDB(t))

	require.NoError(t, m.Apply(ctx))
	requireSchemaError(t, m.Apply(ctx), database.ErrTableExists)
}

func TestRevertWithoutApplyFails(t *testing.T) {
	m := newMigrator(t, testhelpers.MustOpenTestDB(t))
	requireSchemaError(t, m.Revert(context.Background()), database.ErrTableMissing)
}

func TestApplyFailsWhenTableCreatedOutsideMigrations(t *testing.T) {
	db := testhelpers.MustOpenTestDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE "Recipes" ("Id" TEXT PRIMARY KEY)`).Error)

	requireSchemaError(t, newMigrator(t, db).Apply(context.Background()), database.ErrTableExists)
}

func TestApplyFailsWhenConnectionUnavailable(t *testing.T) {
	db := testhelpers.MustOpenTestDB(t)
	m := newMigrator(t, db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	requireSchemaError(t, m.Apply(context.Background()), database.ErrConnectionUnavailable)
	requireSchemaError(t, m.Revert(context.Background()), database.ErrConnectionUnavailable)
}

func TestStatusAndUp(t *testing.T) {
	ctx := context.Background()
	m := newMigrator(t, testhelpers.MustOpenTestDB(t))

	status, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 1)
	assert.Equal(t, database.InitialVersion, status[0].Source.Version)
	assert.Equal(t, goose.StatePending, status[0].State)

	require.NoError(t, m.Up(ctx))
	require.NoError(t, m.Up(ctx), "Up is a no-op when current")

	status, err = m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, goose.StateApplied, status[0].State)
}

func TestMigratedSchemaStoresRecipes(t *testing.T) {
	db := testhelpers.MustOpenMigratedTestDB(t)

	id := uuid.New()
	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, db.Create(&models.Recipe{ID: id, CreatedOn: now}).Error)

	var got models.Recipe
	require.NoError(t, db.Scopes(models.ByID(id)).First(&got).Error)
	assert.Equal(t, id, got.ID)
	assert.False(t, got.IsDeleted)
	assert.True(t, now.Equal(got.CreatedOn))
	assert.Nil(t, got.Title)
}

func TestPostgresRevertAndReapply(t *testing.T) {
	env := testhelpers.ProvisionT(t, testhelpers.WithoutBroker())
	ctx := context.Background()
	m := newMigrator(t, env.DB)

	requireSchemaError(t, m.Apply(ctx), database.ErrTableExists)
	require.NoError(t, m.Revert(ctx))
	assert.False(t, env.DB.Migrator().HasTable(models.RecipesTable))
	requireSchemaError(t, m.Revert(ctx), database.ErrTableMissing)
	require.NoError(t, m.Apply(ctx))
}
