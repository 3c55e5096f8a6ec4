package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/llehouerou/wavesearch/internal/app"
	"github.com/llehouerou/wavesearch/internal/config"
	"github.com/llehouerou/wavesearch/internal/errmsg"
	"github.com/llehouerou/wavesearch/internal/render"
	"github.com/llehouerou/wavesearch/internal/state"
)

// env holds what every subcommand needs once the root command has run.
type env struct {
	cfg    *config.Config
	logger *logrus.Logger
	state  *state.Manager
	app    *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, render.T().S().Error.Render(err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var logLevel string

	root := &cobra.Command{
		Use:           "wavesearch",
		Short:         "Search a local music library by metadata and lyrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.open(cmd.Context(), logLevel)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return e.close()
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		newScanCmd(e),
		newSearchCmd(e),
		newSuggestCmd(e),
		newLyricsCmd(e),
		newStatsCmd(e),
		newWatchCmd(e),
	)
	return root
}

func (e *env) open(ctx context.Context, logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpConfigLoad, err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	e.cfg = cfg

	e.logger = newLogger(cfg.GetLogLevel())

	st, err := state.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpStateOpen, err)
	}
	e.state = st

	e.app = app.New(cfg, e.logger, st)
	if err := e.app.Open(ctx); err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpInitialize, err)
	}
	return nil
}

func (e *env) close() error {
	if e.state == nil {
		return nil
	}
	return e.state.Close()
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, using info")
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
