package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	devenv "sejongauth/dev/env"
	storedb "sejongauth/lib/sejong/store/db"

	"github.com/mazen160/go-random"
	_ "modernc.org/sqlite"
)

func createDb(filename, schema string) error {
	dbPath, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(dbPath)
	if err == nil {
		fmt.Println("database already created at", dbPath)
		return nil
	}

	fmt.Println("creating database at", dbPath)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(schema)
	return err
}

func CreateEmptyDBs() error {
	return createDb("snapshots.db", storedb.Schema)
}

const sejongConfigTemplate = `// a real student login, used by the live portal tests
{
  student_id: "",
  password: "",
  // set to false if the portal's certificate chain is broken again
  ssl_verification: true,
}
`

// CreateSejongConfig writes an empty dev/.state/sejong_config.json5 for the
// live portal tests to be filled in by hand.
func CreateSejongConfig() error {
	path, err := devenv.GetStateFilePath("sejong_config.json5")
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		slog.Info("sejong credentials have already been provided", "path", path)
		return nil
	}
	return os.WriteFile(path, []byte(sejongConfigTemplate), 0600)
}

const daemonConfigTemplate = `// run with: go run ./cmd/sejongauthd -config dev/.state/sejongauthd.json5
{
  port: 8111,
  access_token: "%s",
  verbose: true,
  snapshots: {
    file: "<dev_state>/snapshots.db",
  },
}
`

// CreateDaemonConfig writes a local sejongauthd config guarded by a freshly
// generated access token.
func CreateDaemonConfig() error {
	path, err := devenv.GetStateFilePath("sejongauthd.json5")
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		slog.Info("daemon config already created", "path", path)
		return nil
	}

	token, err := random.String(32)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(fmt.Sprintf(daemonConfigTemplate, token)), 0600)
}

func PrintConfigLocations() {
	slog.Info("the live portal tests are skipped until dev/.state/sejong_config.json5 holds a student login, run `go test -v ./lib/sejong/engine` to check.")
}
