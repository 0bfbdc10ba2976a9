package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/journeylog/migrations"
	"github.com/pkordes/journeylog/testutil"
)

var schemaTables = []string{"records", "record_sequences", "settings"}

// TestMigrations applies every migration, checks the schema tables exist, then
// rolls everything back and checks they are gone.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)

	provider, err := goose.NewProvider(
		goose.DialectPostgres,
		db,
		migrations.FS,
	)
	require.NoError(t, err, "create goose provider")

	ctx := context.Background()
	// Leave the schema migrated for packages that run after this one.
	t.Cleanup(func() { _, _ = provider.Up(ctx) })

	// Another package's TestMain may already have migrated the shared database.
	if _, err := provider.DownTo(ctx, 0); err != nil {
		t.Fatalf("TestMigrations: initial reset: %v", err)
	}

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.NotEmpty(t, results, "expected at least one migration to be applied")

	for _, table := range schemaTables {
		assertTableExists(t, db, table)
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range schemaTables {
		assertTableNotExists(t, db, table)
	}
}

func assertTableExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()
	assert.True(t, tableExists(t, db, table), "expected table %q to exist", table)
}

func assertTableNotExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()
	assert.False(t, tableExists(t, db, table), "expected table %q to be dropped", table)
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	err := db.QueryRowContext(context.Background(), q, table).Scan(&exists)
	require.NoError(t, err, "check table existence for %q", table)
	return exists
}
