package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	consensusengine "agora/contexts/governance/consensus-engine"
	consensuspostgres "agora/contexts/governance/consensus-engine/adapters/postgres"
	proposalservice "agora/contexts/governance/proposal-service"
	proposalpostgres "agora/contexts/governance/proposal-service/adapters/postgres"
	directoryservice "agora/contexts/identity-access/directory-service"
	directorypostgres "agora/contexts/identity-access/directory-service/adapters/postgres"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	directoryModule := directoryservice.NewModule(directoryservice.Dependencies{
		Users:  directorypostgres.NewRepository(pg.DB, logger),
		Clock:  directorypostgres.SystemClock{},
		Logger: logger,
	})

	proposalModule := proposalservice.NewModule(proposalservice.Dependencies{
		Repo:   proposalpostgres.NewRepository(pg.DB, logger),
		Tx:     pg,
		Clock:  proposalpostgres.SystemClock{},
		IDGen:  proposalpostgres.UUIDGenerator{},
		Logger: logger,
	})

	consensusModule := consensusengine.NewModule(consensusengine.Dependencies{
		Repo:   consensuspostgres.NewRepository(pg.DB, logger),
		Tx:     pg,
		Clock:  consensuspostgres.SystemClock{},
		IDGen:  consensuspostgres.UUIDGenerator{},
		Logger: logger,
	})

	server := httpserver.New(directoryModule, proposalModule, consensusModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
