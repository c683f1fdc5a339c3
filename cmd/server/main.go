package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/billsplit/internal/api"
	"github.com/mmynk/billsplit/internal/auth"
	"github.com/mmynk/billsplit/internal/billing"
	"github.com/mmynk/billsplit/internal/calendar"
	"github.com/mmynk/billsplit/internal/config"
	"github.com/mmynk/billsplit/internal/health"
	"github.com/mmynk/billsplit/internal/metrics"
	"github.com/mmynk/billsplit/internal/middleware"
	"github.com/mmynk/billsplit/internal/notify"
	"github.com/mmynk/billsplit/internal/service"
	"github.com/mmynk/billsplit/internal/storage/sqlite"
	"github.com/mmynk/billsplit/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := config.EnvFileFromArgs(os.Args[1:], cmp.Or(os.Getenv("ENV_FILE"), config.DefaultEnvFile))
	if err := config.LoadEnvFile(envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg := config.Default()

	app := &cli.App{
		Name:  "billsplit",
		Usage: "split bills between people and track who has paid",
		Flags: cfg.Flags(),
		Before: func(*cli.Context) error {
			logging.SetupWith(os.Stderr, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
			return nil
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the API server",
				Flags: cfg.ServeFlags(),
				Action: func(c *cli.Context) error {
					return serve(c.Context, cfg)
				},
			},
			{
				Name:  "sweep",
				Usage: "spawn the next occurrence of every due monthly bill and exit",
				Flags: cfg.SweepFlags(),
				Action: func(c *cli.Context) error {
					return sweep(c, cfg)
				},
			},
			{
				Name:  "token",
				Usage: "mint a bearer token for local development",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user-id", Required: true},
					&cli.StringFlag{Name: "name"},
				},
				Action: func(c *cli.Context) error {
					if err := cfg.Validate(); err != nil {
						return err
					}
					token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL).Generate(c.String("user-id"), c.String("name"))
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, token)
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("billsplit failed", "error", err)
		os.Exit(1)
	}
}

// openEngine opens the store and builds the billing engine on top of it.
func openEngine(cfg *config.Config, opts ...billing.Option) (*sqlite.SQLiteStore, *billing.Engine, error) {
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	codes, err := billing.NewSnowflakeCodes(cfg.NodeID)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	slog.Info("Storage initialized", "database", cfg.DatabasePath)
	return store, billing.New(store, codes, opts...), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)
	hub := notify.NewHub(cfg.NotifyBuffer)

	store, engine, err := openEngine(cfg, billing.WithSink(hub), billing.WithMetrics(m))
	if err != nil {
		return err
	}
	defer store.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, store),
		middleware.NewLoggingInterceptor(m),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewBillServiceHandler(service.NewBillService(engine), interceptors))
	mux.Handle(api.NewRecurrenceServiceHandler(service.NewRecurrenceService(engine), interceptors))
	mux.Handle(api.NewNotificationServiceHandler(service.NewNotificationService(hub), interceptors))

	// setup the /healthz and /metrics
	if err := health.Register(ctx, mux, health.Checks(store, cfg.HealthInterval)); err != nil {
		return fmt.Errorf("failed to start health monitor: %w", err)
	}
	mux.Handle("/metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins.Value(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms",
			"Grpc-Timeout", "X-Grpc-Web", "X-User-Agent",
		},
		ExposedHeaders: []string{"Grpc-Status", "Grpc-Message", "Grpc-Status-Details-Bin"},
		MaxAge:         7200,
	}).Handler(mux)

	// h2c serves HTTP/2 without TLS, which gRPC clients and server streams need.
	server := &http.Server{
		Addr:              cfg.BindAddress,
		Handler:           h2c.NewHandler(corsHandler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end on shutdown so open notification streams return.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Server shutdown incomplete", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", cfg.BindAddress, "origins", cfg.AllowedOrigins.Value())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

func sweep(c *cli.Context, cfg *config.Config) error {
	if err := cfg.Validate("JWTSecret"); err != nil {
		return err
	}

	asOf := time.Now()
	if cfg.AsOf != "" {
		parsed, err := calendar.Parse(cfg.AsOf)
		if err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
		asOf = parsed
	}

	store, engine, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := engine.SweepDueRecurring(c.Context, asOf)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "processed=%d skipped=%d failed=%d\n", res.Processed, res.Skipped, res.Failed)
	if res.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d recurring bills could not be spawned", res.Failed), 2)
	}
	return nil
}
