package main

import (
	"context"
	"fmt"

	"github.com/HerbHall/paperstream/internal/config"
	"github.com/HerbHall/paperstream/internal/llm/gemini"
	"github.com/HerbHall/paperstream/internal/research"
	"github.com/HerbHall/paperstream/internal/server"
	"github.com/HerbHall/paperstream/internal/ws"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// application is the wired composition root.
type application struct {
	cfg      *config.App
	provider *gemini.Provider
	service  *research.Service
	hub      *ws.Hub
	server   *server.Server
}

// newApplication wires every component from v. The Gemini credential is
// resolved here and handed to the adapter explicitly.
func newApplication(ctx context.Context, v *viper.Viper, logger *zap.Logger) (*application, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	provider, err := gemini.New(ctx, cfg.Gemini, config.APIKey(v), logger.Named("gemini"))
	if err != nil {
		return nil, fmt.Errorf("create gemini provider: %w", err)
	}

	svc := research.NewService(provider, cfg.Gemini.Model, logger.Named("research"))

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = server.DefaultCORSOrigins
	}
	hub := ws.NewHub(logger.Named("ws"))

	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		if !cfg.Server.ReadyHeartbeat {
			return nil
		}
		return provider.Heartbeat(ctx)
	})

	srv := server.New(cfg.Server, logger, readyCheck,
		research.NewHandler(svc, logger.Named("process")),
		ws.NewHandler(svc, hub, origins, logger.Named("ws")),
	)

	logger.Info("components wired",
		zap.String("component", "main"),
		zap.String("model", cfg.Gemini.Model),
		zap.Strings("cors_origins", origins),
		zap.Bool("dev_mode", cfg.Server.DevMode),
	)

	return &application{
		cfg:      cfg,
		provider: provider,
		service:  svc,
		hub:      hub,
		server:   srv,
	}, nil
}
