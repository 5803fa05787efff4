package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/themizzi/shopflow/internal/config"
	"github.com/themizzi/shopflow/internal/database"
)

// localDefaults point at the docker-compose postgres used in development
var localDefaults = map[string]string{
	"POSTGRES_USER":     "postgres",
	"POSTGRES_PASSWORD": "postgres",
	"POSTGRES_DB":       "postgres",
	"POSTGRES_HOSTNAME": "localhost",
}

func getenv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return localDefaults[key]
}

// OpenTestDB connects to a freshly migrated schema of its own. The schema is
// dropped when the test ends.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()

	pgConfig, err := config.LoadPostgresConfig(getenv)
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}

	admin, err := database.Open(pgConfig.ConnectionString())
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}

	schema := "orders_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec("CREATE SCHEMA " + schema); err != nil {
		admin.Close()
		t.Fatalf("Failed to create schema %s: %v", schema, err)
	}

	db, err := database.Open(fmt.Sprintf("%s search_path=%s", pgConfig.ConnectionString(), schema))
	if err == nil {
		err = database.Migrate(db)
	}

	t.Cleanup(func() {
		if db != nil {
			db.Close()
		}
		if _, err := admin.Exec("DROP SCHEMA IF EXISTS " + schema + " CASCADE"); err != nil {
			t.Logf("Failed to drop schema %s: %v", schema, err)
		}
		admin.Close()
	})
	if err != nil {
		t.Fatalf("Failed to prepare schema %s: %v", schema, err)
	}

	db.SetMaxOpenConns(5)
	return db
}
