package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"

	"github.com/shravanasati/beacon/handlers"
	"github.com/shravanasati/beacon/internal/logging"
	"github.com/shravanasati/beacon/lifecycle"
	"github.com/shravanasati/beacon/middleware"
	"github.com/shravanasati/beacon/router"
	"github.com/shravanasati/beacon/server"
)

// Set with -ldflags "-X main.appVersion=... -X main.gitCommit=... -X main.buildDate=...".
var (
	appVersion string
	gitCommit  string
	buildDate  string
)

type config struct {
	address string
	logging logging.Config
	color   bool
}

func parseFlags(args []string) (config, error) {
	var cfg config
	var format string

	fs := flag.NewFlagSet("beacon", flag.ContinueOnError)
	fs.StringVar(&cfg.address, "addr", server.DefaultAddress, "address to listen on")
	fs.StringVar(&cfg.logging.Level, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&format, "log-format", string(logging.FormatConsole), "log format (console, json)")
	fs.BoolVar(&cfg.color, "color", true, "colorize request logs")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 0 {
		return config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg.logging.Format = logging.Format(format)
	return cfg, nil
}

// colored reports whether request logs are styled. JSON logs never are.
func (c config) colored() bool {
	return c.color && c.logging.Format != logging.FormatJSON
}

func buildInfo() handlers.BuildInfo {
	return handlers.BuildInfo{AppVersion: appVersion, GitCommit: gitCommit, BuildDate: buildDate}
}

func newHandler(logger *zap.Logger, cfg config, id handlers.Identity) (server.Handler, error) {
	logs := middleware.Logging(logger)
	if cfg.colored() {
		logs = middleware.LoggingColored(logger)
	}

	app, err := router.New(handlers.Routes(id), router.WithMiddleware(logs))
	if err != nil {
		return nil, err
	}
	return app.Handler(), nil
}

// run serves until a shutdown signal arrives or ctx is done. ready, when
// set, is called once the server is listening.
func run(ctx context.Context, cfg config, logger *zap.Logger, ready func(*server.Server)) error {
	id, err := handlers.NewIdentity(buildInfo())
	if err != nil {
		return err
	}
	logger.Info("service configuration",
		zap.String("hostname", id.Hostname),
		zap.String("app_version", id.AppVersion),
		zap.String("go_version", id.Go.Version),
		zap.Int("uid", id.UID),
		zap.Int("gid", id.GID),
		zap.Int("pid", id.PID),
		zap.Any("extra_envs", id.ExtraEnvs),
	)

	handler, err := newHandler(logger, cfg, id)
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv, err := server.Serve(server.Options{
		Address: cfg.address,
		Logger:  logger,
	}, handler)
	if err != nil {
		return err
	}
	logger.Info("http/1 server listening at: " + srv.URL())

	if ready != nil {
		ready(srv)
	}

	return lifecycle.New(srv, logger).Notify(ctx, syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger, nil); err != nil {
		logger.Error("server exited", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
