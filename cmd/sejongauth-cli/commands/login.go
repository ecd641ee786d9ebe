package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login --id <student id>",
	Short: "Authenticates against both the classic reading portal and the academic system.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		creds := credentials()

		if serverUrl != "" {
			res, err := createClient().Authenticate(ctx, creds, includeRaw)
			if err != nil {
				fail(err)
			}
			printRemote(res)
			return
		}

		e := createEngine()
		authenticate := e.Authenticate
		if includeRaw {
			authenticate = e.AuthenticateRaw
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
		printContactInfo(result.ContactInfo)
		printClassicReading(result.ClassicReading)
		if includeRaw {
			fmt.Println(result.RawHtml)
		}
	},
}
