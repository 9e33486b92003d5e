package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/nhle/teamflow/internal/api"
	"github.com/nhle/teamflow/internal/app"
	"github.com/nhle/teamflow/internal/cache"
	"github.com/nhle/teamflow/internal/credential"
	"github.com/nhle/teamflow/internal/keys"
	"github.com/nhle/teamflow/internal/logging"
	"github.com/nhle/teamflow/internal/metrics"
	"github.com/nhle/teamflow/internal/model"
	"github.com/nhle/teamflow/internal/service"
	"github.com/nhle/teamflow/internal/session"
	tfsync "github.com/nhle/teamflow/internal/sync"
	"github.com/nhle/teamflow/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "teamflow:", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("teamflow", pflag.ContinueOnError)
	configPath := flags.String("config", model.DefaultConfigPath(), "path to the YAML config file")
	flags.String("api-url", "", "backend base URL")
	flags.String("log-file", "", "log file path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")
	flags.Int("poll-interval", 0, "task list refresh interval in seconds")
	logout := flags.Bool("logout", false, "forget the stored session and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := model.LoadConfig(*configPath, flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	tokens, err := credential.Open(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	if *logout {
		if err := tokens.Clear(); err != nil {
			return fmt.Errorf("clearing stored session: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		metrics.NewServer(cfg.Metrics.Addr, m, logger).Start(ctx)
	}

	client := api.New(cfg.API.BaseURL, tokens,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout()}),
		api.WithLogger(logger),
		api.WithMetrics(m),
		api.WithLowercaseEnums(cfg.API.EnumCase == "lower"),
	)

	c, err := cache.New(
		cache.WithLogger(logger),
		cache.WithMetrics(m),
		cache.WithFetchTimeout(cfg.RequestTimeout()),
	)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer c.Close()

	sess := session.New(client, tokens, logger)
	svc := service.New(client, c, service.WithLogger(logger), service.WithMetrics(m))

	initCtx, initCancel := context.WithTimeout(ctx, cfg.RequestTimeout())
	if err := sess.Init(initCtx); err != nil {
		// The login form takes over; a stale token is not fatal.
		logger.Info("no usable stored session", zap.Error(err))
	}
	initCancel()

	poller := tfsync.New(c, cfg.PollInterval(),
		tfsync.WithLogger(logger),
		tfsync.WithTimeout(cfg.RequestTimeout()),
	)
	defer poller.Stop()

	env := ui.Env{
		Service:    svc,
		Session:    sess,
		Keys:       keys.DefaultKeyMap(),
		Timeout:    cfg.RequestTimeout(),
		Config:     cfg,
		ConfigPath: *configPath,
	}

	logger.Info("starting",
		zap.String("api", cfg.API.BaseURL),
		zap.Duration("poll_interval", cfg.PollInterval()),
	)

	p := tea.NewProgram(app.New(env, poller, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
