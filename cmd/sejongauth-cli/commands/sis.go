package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sisCmd)
}

var sisCmd = &cobra.Command{
	Use:   "sis --id <student id>",
	Short: "Authenticates against the academic information system only.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		creds := credentials()

		if serverUrl != "" {
			res, err := createClient().AuthenticateSIS(ctx, creds, includeRaw)
			if err != nil {
				fail(err)
			}
			printRemote(res)
			return
		}

		e := createEngine()
		authenticate := e.AuthenticateSIS
		if includeRaw {
			authenticate = e.AuthenticateSISRaw
		}
		result, err := authenticate(ctx, creds)
		if err != nil {
			fail(err)
		}
		if printJson {
			printJsonValue(result)
			return
		}
		printStudentInfo(result.StudentInfo)
		printContactInfo(&result.ContactInfo)
		if includeRaw {
			fmt.Println(result.RawJson)
		}
	},
}
