package main

//	@title			paperstream API
//	@version		0.1.0
//	@description	Research-paper generation relay. The WebSocket endpoint GET /ws streams the same generation fragment by fragment.
//	@BasePath		/

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/HerbHall/paperstream/api/swagger"
	"github.com/HerbHall/paperstream/internal/config"
	"github.com/HerbHall/paperstream/internal/server"
	"github.com/HerbHall/paperstream/internal/version"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(version.Info())
		return
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "paperstream: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// A .env file is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}

	// Load configuration (before logger, so log level/format can be configured).
	v, err := server.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger, err := config.NewLogger(v)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("paperstream starting", zap.String("version", version.Short()))
	if f := v.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Info("no configuration file found, using defaults and environment",
			zap.String("component", "config"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, v, logger)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(app.server.Start)
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		app.hub.CloseAll("server shutting down")
		if err := app.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	logger.Info("paperstream ready",
		zap.String("addr", app.cfg.Server.Addr()),
		zap.String("model", app.cfg.Gemini.Model),
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("paperstream stopped with error", zap.Error(err))
		return err
	}
	logger.Info("paperstream stopped")
	return nil
}
