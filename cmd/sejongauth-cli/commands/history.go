package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	historyDb    string
	historyLimit int
)

func init() {
	historyCmd.Flags().StringVar(&historyDb, "db", "snapshots.db", "The database snapshots were written to.")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 30, "The maximum amount of snapshots to show.")
	rootCmd.AddCommand(historyCmd)
}

func isRemote(path string) bool {
	return strings.HasPrefix(path, "libsql://") ||
		strings.HasPrefix(path, "http://") ||
		strings.HasPrefix(path, "https://")
}

var historyCmd = &cobra.Command{
	Use:   "history [student id] [--db <path/to/output.db>]",
	Short: "Lists the students with snapshots, or the certification progress of one student.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		st, database := openStore(cmd, historyDb)
		defer database.Close()

		if len(args) == 0 {
			students, err := st.Students(ctx)
			if err != nil {
				fail(err)
			}
			t := table.NewWriter()
			t.AppendHeader(table.Row{"Student ID", "Snapshots", "Last taken"})
			for _, s := range students {
				t.AppendRow(table.Row{s.StudentId, s.Snapshots, s.LastTaken.Format(time.DateTime)})
			}
			render(t)
			return
		}

		snapshots, err := st.Pull(ctx, args[0], historyLimit)
		if err != nil {
			fail(err)
		}
		if printJson {
			printJsonValue(snapshots)
			return
		}

		t := table.NewWriter()
		t.SetTitle(args[0])
		t.AppendHeader(table.Row{"Taken", "Variant", "Certified", "Exams", "Contact"})
		for _, s := range snapshots {
			certified := []string{}
			for _, c := range s.Result.ClassicReading.Certifications {
				certified = append(certified, fmt.Sprintf("%s %s/%s", c.Area, c.CertifiedCount, c.RequiredCount))
			}
			t.AppendRow(table.Row{
				s.Time.Format(time.DateTime),
				s.Variant,
				strings.Join(certified, "\n"),
				len(s.Result.ClassicReading.ExamRecords),
				s.Result.ContactInfo != nil,
			})
		}
		render(t)
	},
}
