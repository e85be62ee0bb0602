package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))

	versions, err := Versions()
	require.NoError(t, err)
	require.Len(t, versions, 4)
	for i := 1; i < len(versions); i++ {
		assert.Less(t, versions[i-1], versions[i])
	}
}

func TestPantryMigrationEnforcesKeyUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_pantry_items_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS pantry_items",
		"CONSTRAINT pantry_items_ingredient_unit_key UNIQUE (ingredient_id, unit)",
		"REFERENCES ingredients(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS pantry_items",
	}
	for _, sub := range checks {
		assert.Contains(t, content, sub)
	}
	assert.NotContains(t, content, "CHECK (quantity >= 0)")
}

func TestRecipeAndMealMigrations(t *testing.T) {
	recipes := readMigration(t, "*_create_recipes_table.sql")
	for _, sub := range []string{
		"CHECK (base_servings >= 1)",
		"CONSTRAINT recipe_lines_recipe_ingredient_unit_key UNIQUE (recipe_id, ingredient_id, unit)",
		"REFERENCES recipes(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
	} {
		assert.Contains(t, recipes, sub)
	}

	meals := readMigration(t, "*_create_meals_table.sql")
	assert.Contains(t, meals, "CONSTRAINT meals_date_recipe_key UNIQUE (date, recipe_id)")
	assert.NotContains(t, meals, "REFERENCES recipes")
}

func TestQuantityColumnsHaveNoFixedScale(t *testing.T) {
	for _, pattern := range []string{"*_create_recipes_table.sql", "*_create_pantry_items_table.sql"} {
		content := readMigration(t, pattern)
		assert.Contains(t, content, "quantity numeric NOT NULL", pattern)
		assert.NotContains(t, content, "numeric(", pattern)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Shopping Notes!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_shopping_notes.sql"), path)
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, ValidateDir(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20240101000000_no_down.sql"), []byte("-- +goose Up\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestCreateSQLMigrationRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	path, err := createSQLMigration(dir, "pantry notes", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20240301120000_pantry_notes.sql"), path)

	_, err = createSQLMigration(dir, "Pantry  Notes", now)
	require.Error(t, err)
}

func TestMigrationSlug(t *testing.T) {
	assert.Equal(t, "add_unit_index", migrationSlug("  Add unit-index "))
	assert.Equal(t, "v2_meals", migrationSlug("v2 · meals"))
	assert.Equal(t, "", migrationSlug("—"))
}
