package testutil

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"
	configlibsql "sejongauth/lib/configutil/libsql"
	"sejongauth/lib/telemetry"
)

type DBParams struct {
	Name string
	// if unspecified, it will skip applying a schema
	Schema string
	// if unspecified, it will use `:memory:`, relative paths may use
	// the <dev_state> prefix
	Path string
}

// OpenDB sets up telemetry for the test and opens a sqlite database
// closed at the end of the test.
func OpenDB(t testing.TB, params DBParams) *sql.DB {
	t.Cleanup(telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name)))

	dbpath := params.Path
	if dbpath == "" {
		dbpath = ":memory:"
	}
	database, err := configlibsql.Struct{File: dbpath}.OpenDB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	if params.Schema != "" {
		_, err = database.Exec(params.Schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			t.Fatal(err)
		}
	}
	return database
}
