package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/outlet-dev/outlet/internal/app"
	"github.com/outlet-dev/outlet/internal/config"
	"github.com/outlet-dev/outlet/internal/errors"
	"github.com/outlet-dev/outlet/pkg/auth"
	"github.com/outlet-dev/outlet/pkg/manifest"
	"github.com/outlet-dev/outlet/pkg/middleware"
	"github.com/outlet-dev/outlet/pkg/router"
	"github.com/outlet-dev/outlet/pkg/server"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var (
		addr    string
		publish bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		Long: `Start the HTTP and WebSocket server.

Pages are rendered on the server; the browser client then navigates over
a WebSocket. SIGINT or SIGTERM shuts the server down gracefully.

Examples:
  outlet serve
  outlet serve --addr=127.0.0.1:3000
  outlet serve --publish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, addr, publish)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from outlet.json)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish the route manifest to S3 on startup")

	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, addr string, publish bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger := cfg.NewLogger(cmd.ErrOrStderr())
	slog.SetDefault(logger)

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(middleware.WithRegistry(promReg))

	provider := auth.NewProvider(
		auth.NewMemoryStore(cfg.Principals()),
		auth.WithCookieName(cfg.Auth.CookieName),
		auth.WithLogger(logger.With("component", "auth")),
	)

	srv := server.New(reg, &server.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout(),
		AllowedOrigins:  cfg.Server.AllowedOrigins,
	},
		server.WithLogger(logger),
		server.WithAuth(provider),
		server.WithMetrics(metrics, promReg),
		server.WithNavigationMiddleware(middleware.OpenTelemetry()),
		server.WithNotFound(app.NotFound),
		server.WithForbidden(app.Forbidden),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(gctx); err != nil {
			if stderrors.Is(err, syscall.EADDRINUSE) {
				return errors.New("E161").Wrap(err).
					WithSuggestion("Pick another address with --addr or stop the other process")
			}
			return errors.New("E160").Wrap(err)
		}
		return nil
	})
	if publish {
		g.Go(func() error {
			return publishOnStart(gctx, cfg, reg, logger)
		})
	}

	info(cmd.OutOrStdout(), "Listening on %s (%d routes)", cfg.Server.Addr, len(reg.Routes()))
	return g.Wait()
}

// publishOnStart uploads the manifest. A failure is logged, not fatal.
func publishOnStart(ctx context.Context, cfg *config.Config, reg *router.Registry, logger *slog.Logger) error {
	if cfg.Publish.Bucket == "" {
		logger.Warn("manifest publish skipped: no bucket configured")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	publisher := manifest.NewS3Publisher(newS3Client(cfg), cfg.Publish.Bucket, cfg.Publish.Prefix)
	if _, err := publisher.Publish(ctx, manifest.FromRegistry(reg)); err != nil {
		logger.Error("manifest publish failed", "error", err)
	}
	return nil
}

func newS3Client(cfg *config.Config) manifest.ObjectPutter {
	return manifest.NewS3Client(manifest.S3Config{
		Region:    cfg.Publish.Region,
		Endpoint:  cfg.Publish.Endpoint,
		PathStyle: cfg.Publish.PathStyle,
	})
}
