package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sejongauth/lib/configutil"
	"sejongauth/lib/restyutil"
	"sejongauth/lib/sejong"
	"sejongauth/lib/sejong/engine"
	"sejongauth/lib/serviceutil"
	"sejongauth/lib/telemetry"
	"sejongauth/services/sejongauth"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
)

const passwordEnv = "SEJONG_PASSWORD"

var (
	configPath  string
	studentId   string
	password    string
	insecure    bool
	dumpHttp    string
	verbose     bool
	printJson   bool
	includeRaw  bool
	serverUrl   string
	accessToken string
	dbToken     string
)

var rootCmd = &cobra.Command{
	Use:   "sejongauth-cli",
	Short: "sejongauth-cli authenticates against the Sejong University portal and prints what it finds.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "config.json5", "The portal config, missing fields use the defaults.")
	flags.StringVarP(&studentId, "id", "u", "", "The student id to log in with.")
	flags.StringVarP(&password, "password", "p", "", fmt.Sprintf("The password, read from $%s when omitted.", passwordEnv))
	flags.BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification.")
	flags.StringVar(&dumpHttp, "dump-http", "", "A directory to dump every http exchange to.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print debug logs.")
	flags.BoolVar(&printJson, "json", false, "Print the result as json instead of tables.")
	flags.BoolVar(&includeRaw, "raw", false, "Include the raw html / json the portal returned.")
	flags.StringVar(&serverUrl, "server", "", "Call a running sejongauthd at this url instead of the portal.")
	flags.StringVar(&accessToken, "token", "", "The access token of the sejongauthd server.")
	flags.StringVar(&dbToken, "db-token", "", "The auth token of a remote libsql snapshot database.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func credentials() sejong.Credentials {
	pw := password
	if pw == "" {
		pw = os.Getenv(passwordEnv)
	}
	return sejong.Credentials{StudentId: studentId, Password: pw}
}

func readConfig() sejong.Config {
	cfg, err := configutil.ReadConfigWithDefaults(configPath, sejong.DefaultConfig())
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if insecure {
		verify := false
		cfg.SslVerification = &verify
	}
	return cfg
}

func createEngine() *engine.Engine {
	opts := []engine.Option{}
	if dumpHttp != "" {
		out, err := restyutil.NewFilesystemOutput(dumpHttp)
		if err != nil {
			serviceutil.Fatal("failed to create http dump directory", err)
		}
		opts = append(opts, engine.WithOutput(out))
	}
	e, err := engine.New(readConfig(), opts...)
	if err != nil {
		serviceutil.Fatal("failed to create engine", err)
	}
	return e
}

func createClient() sejongauth.Client {
	return sejongauth.NewClient(
		http.DefaultClient,
		serverUrl,
		connect.WithInterceptors(serviceutil.ProvideAccessTokenInterceptor(accessToken)),
	)
}

// fail prints the user facing message of err and exits.
func fail(err error) {
	kind := sejong.KindOf(err)
	if kind == sejong.KindUnknown {
		kind = sejongauth.KindFromError(err)
	}
	if kind != sejong.KindUnknown {
		fmt.Fprintf(os.Stderr, "%s (%s)\n", kind.Message(), kind.Code())
	}
	serviceutil.Fatal("authentication failed", err)
}
