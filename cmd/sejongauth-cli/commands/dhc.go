package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var basicOnly bool

func init() {
	dhcCmd.Flags().BoolVar(&basicOnly, "basic", false, "Only print the student info.")
	rootCmd.AddCommand(dhcCmd)
}

var dhcCmd = &cobra.Command{
	Use:   "dhc --id <student id> [--basic]",
	Short: "Authenticates against the classic reading portal only.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		creds := credentials()

		if serverUrl != "" {
			res, err := createClient().AuthenticateDHC(ctx, creds, includeRaw)
			if err != nil {
				fail(err)
			}
			printRemote(res)
			return
		}

		e := createEngine()
		if basicOnly {
			info, err := e.AuthenticateBasic(ctx, creds)
			if err != nil {
				fail(err)
			}
			if printJson {
				printJsonValue(info)
				return
			}
			printStudentInfo(info)
			return
		}

		authenticate := e.AuthenticateDHC
		if includeRaw {
			authenticate = e.AuthenticateDHCRaw
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
		printClassicReading(result.ClassicReading)
		if includeRaw {
			fmt.Println(result.RawHtml)
		}
	},
}
