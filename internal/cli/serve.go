package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/sloimpact/internal/alert"
	"github.com/roach88/sloimpact/internal/config"
	"github.com/roach88/sloimpact/internal/engine"
	"github.com/roach88/sloimpact/internal/issue"
	"github.com/roach88/sloimpact/internal/server"
	"github.com/roach88/sloimpact/internal/store"
	"github.com/roach88/sloimpact/internal/telemetry"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigFile string
	Port       int // overrides server.port when set
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the alert receiver",
		Long: `Serve the HTTP API: alerts from the SLO manager are calculated, each
reached task gets an issue in the tracker, and models can be imported and
queried.

Settings come from the config file (default sloimpact.yaml, optional) and
SLOIMPACT_* environment variables, e.g. SLOIMPACT_SERVER__PORT=9090.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default sloimpact.yaml)")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "listen port (overrides config)")

	return cmd
}

func runServe(ctx context.Context, opts *ServeOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if opts.Port != 0 {
		cfg.Server.Port = opts.Port
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	logger := newServiceLogger(cfg.Log, f.GetErrWriter())

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(cfg.Telemetry.ServiceName, f.GetErrWriter(), logger)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("init tracing: %v", err), nil)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("flush traces", slog.Any("error", err))
			}
		}()
	}

	var backend store.Backend
	if cfg.Store.Path == "" {
		logger.Warn("no store.path configured, keeping the ledger in memory")
		backend = store.NewMemory(nil)
	} else {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		defer st.Close()
		backend = st
	}

	eng := engine.New(backend, backend,
		engine.WithMaxImpacts(cfg.Engine.MaxImpacts),
		engine.WithLogger(logger))
	alerts := alert.NewService(backend, eng,
		alert.WithProvisioner(issue.NewProvisioner(issue.NewMemoryTracker(nil), logger)),
		alert.WithRecorder(backend),
		alert.WithLogger(logger))

	srv := server.New(cfg.Server.Port, backend, alerts, logger)
	if err := srv.Start(ctx); err != nil {
		return WrapExitError(ExitCommandError, "server failed", err)
	}
	return nil
}

// newServiceLogger builds the long-running logger from the log settings.
func newServiceLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	_ = level.UnmarshalText([]byte(cfg.Level))
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
