package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sejongauth/lib/configutil"
	"sejongauth/lib/sejong/engine"
	"sejongauth/lib/sejong/store"
	"sejongauth/lib/serviceutil"
	"sejongauth/lib/telemetry"
	"sejongauth/services/sejongauth"
	"time"

	"connectrpc.com/connect"
)

func initTelemetry(ctx context.Context, verbose bool) func() {
	telemetry.InitSlog(verbose)

	t, err := telemetry.SetupFromEnv(ctx, "sejongauthd")
	if os.IsNotExist(err) {
		slog.Info("telemetry.json5 not found, exporting no telemetry")
		return func() {}
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	telemetry.InstrumentPerfStats(ctx, time.Second*15)

	return func() {
		err := t.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	}
}

func main() {
	configPath := flag.String("config", "config.json5", "the daemon config, config.local.json5 overrides it")
	flag.Parse()

	config, err := configutil.ReadConfigWithDefaults(*configPath, defaultConfig())
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}

	ctx := serviceutil.SignalContext()
	shutdown := initTelemetry(ctx, config.Verbose)
	defer shutdown()

	opts := []engine.Option{engine.WithTelemetry(telemetry.SlogAPI{})}
	if config.ConcurrentSecondary {
		opts = append(opts, engine.WithConcurrentSecondary())
	}
	e, err := engine.New(config.Sejong, opts...)
	if err != nil {
		serviceutil.Fatal("failed to create engine", err)
	}
	service := sejongauth.NewService(e)

	if config.Snapshots != nil {
		slog.Info("opening snapshot database...")
		database, err := config.Snapshots.OpenDB()
		if err != nil {
			serviceutil.Fatal("failed to open snapshot database", err)
		}
		defer database.Close()

		st := store.NewStore(database)
		err = st.Migrate(ctx)
		if err != nil {
			serviceutil.Fatal("failed to migrate snapshot database", err)
		}
		service = service.WithStore(st)
	}

	mux := http.NewServeMux()
	mux.Handle(sejongauth.NewHandler(
		service,
		connect.WithInterceptors(
			serviceutil.NewConnectOtelInterceptor(),
			serviceutil.VerifyAccessTokenInterceptor(config.AccessToken),
		),
	))

	err = serviceutil.StartHttpServer(ctx, config.Port, mux, time.Second*30)
	if err != nil {
		serviceutil.Fatal("failed to serve", err)
	}
	slog.Info("shutting down")
}
