package commands

import (
	"database/sql"
	"log/slog"
	configlibsql "sejongauth/lib/configutil/libsql"
	"sejongauth/lib/sejong/store"
	"sejongauth/lib/serviceutil"
	"sejongauth/lib/timezone"

	"github.com/spf13/cobra"
)

var scrapeDb string

func init() {
	scrapeCmd.Flags().StringVar(&scrapeDb, "db", "snapshots.db", "The database to write the snapshot to, a libsql:// or http(s):// url selects a libsql server.")
	rootCmd.AddCommand(scrapeCmd)
}

func openStore(cmd *cobra.Command, path string) (store.Store, *sql.DB) {
	config := configlibsql.Struct{File: path}
	if isRemote(path) {
		config = configlibsql.Struct{Url: path, AuthToken: dbToken}
	}
	database, err := config.OpenDB()
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	st := store.NewStore(database)
	err = st.Migrate(cmd.Context())
	if err != nil {
		serviceutil.Fatal("failed to migrate db", err)
	}
	return st, database
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape --id <student id> [--db <path/to/output.db>]",
	Short: "Authenticates and stores a snapshot of the result.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		result, err := createEngine().Authenticate(ctx, credentials())
		if err != nil {
			fail(err)
		}

		st, database := openStore(cmd, scrapeDb)
		defer database.Close()

		err = st.Push(ctx, store.PushRequest{
			Time:    timezone.Now(),
			Variant: "merged",
			Result:  result,
		})
		if err != nil {
			serviceutil.Fatal("failed to store snapshot", err)
		}
		slog.Info("stored snapshot", "student_id", result.StudentInfo.StudentId, "db", scrapeDb)
	},
}
