// Command commentwatcher watches a LBRY node for new comments on the
// operator's claims and emails a notification for each one. It runs a
// single mode until terminated: there are no subcommands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nhle/comment-watcher/internal/lbry"
	"github.com/nhle/comment-watcher/internal/model"
	"github.com/nhle/comment-watcher/internal/notify"
	"github.com/nhle/comment-watcher/internal/store"
	"github.com/nhle/comment-watcher/internal/watch"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("configuration loaded",
		zap.String("api_url", cfg.APIURL),
		zap.String("database_path", cfg.DatabasePath),
		zap.Int("page_size", cfg.PageSize),
		zap.String("smtp_from", cfg.SMTPFrom),
		zap.String("smtp_to", cfg.SMTPTo),
		zap.Duration("poll_interval", cfg.PollInterval))

	st, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	notifier, err := notify.NewEmailNotifier(
		cfg.SMTPURL, cfg.SMTPFrom, cfg.SMTPTo, logger,
	)
	if err != nil {
		return fmt.Errorf("configuring notifier: %w", err)
	}

	client := lbry.NewClient(cfg.APIURL, logger)
	engine := watch.NewEngine(client, st, notifier, cfg.PageSize, logger)
	scheduler := watch.NewScheduler(engine, cfg.PollInterval, logger)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	return scheduler.Run(ctx)
}

// newLogger builds the process-wide zap logger from the configured level
// and encoding.
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogConsole {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
