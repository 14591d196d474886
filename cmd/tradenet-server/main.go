package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-tradenet/pkg/analysis"
	"github.com/dd0wney/cluso-tradenet/pkg/api"
	"github.com/dd0wney/cluso-tradenet/pkg/auth"
	"github.com/dd0wney/cluso-tradenet/pkg/config"
	"github.com/dd0wney/cluso-tradenet/pkg/graphql"
	"github.com/dd0wney/cluso-tradenet/pkg/logging"
	"github.com/dd0wney/cluso-tradenet/pkg/metrics"
	"github.com/dd0wney/cluso-tradenet/pkg/source"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (default: tradenet.yml in the working directory)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "tradenet-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logging.LookupLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)
	logging.SetDefaultLogger(logger)

	logger.Info("tradenet server starting",
		logging.String("version", Version),
		logging.Source(cfg.Source.Kind),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metrics.DefaultRegistry()

	timer := logging.StartTimer(logger, "source opened", logging.Source(cfg.Source.Kind))
	raw, err := source.Open(ctx, cfg.SourceSpec())
	if err != nil {
		timer.EndError(err)
		return fmt.Errorf("failed to open %s source: %w", cfg.Source.Kind, err)
	}
	timer.End()
	defer raw.Close()
	src := source.Instrument(raw, logger, registry)

	engine := analysis.NewEngine(logger, registry)

	schema, err := graphql.NewSchema(&graphql.Resolver{
		Engine:  engine,
		Source:  src,
		Options: cfg.Analysis.Options,
		Timeout: cfg.Analysis.Timeout,
	})
	if err != nil {
		return err
	}

	var tokens auth.TokenValidator
	if cfg.Auth.Enabled {
		manager, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("failed to configure authentication: %w", err)
		}
		tokens = manager
	}

	server, err := api.NewServer(api.Config{
		Engine:      engine,
		Source:      src,
		Metrics:     registry,
		Logger:      logger,
		Tokens:      tokens,
		GraphQL:     graphql.NewGraphQLHandler(schema, logger),
		Options:     cfg.Analysis.Options,
		Timeout:     cfg.Analysis.Timeout,
		CORSOrigins: cfg.Server.CORSOrigins,
		Version:     Version,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Address(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server exited")
	return nil
}
