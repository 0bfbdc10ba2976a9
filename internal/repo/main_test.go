package repo_test

import (
	"os"
	"testing"

	"github.com/pkordes/journeylog/testutil"
)

// TestMain brings the integration database schema up to date once for the
// whole package. Without TEST_DATABASE_URL the Postgres cases skip themselves.
func TestMain(m *testing.M) {
	testutil.MigrateFromEnv()
	os.Exit(m.Run())
}
