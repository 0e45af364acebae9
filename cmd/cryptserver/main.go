// Package main provides the cryptdancer game server.
// It wires together configuration, the optional session journal, the TCP
// acceptor, and the simulation loop.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cryptdancer/internal/config"
	"github.com/cory-johannsen/cryptdancer/internal/game/levels"
	"github.com/cory-johannsen/cryptdancer/internal/gameserver"
	"github.com/cory-johannsen/cryptdancer/internal/observability"
	"github.com/cory-johannsen/cryptdancer/internal/server"
	"github.com/cory-johannsen/cryptdancer/internal/storage/postgres"
	"github.com/cory-johannsen/cryptdancer/internal/transport"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (defaults and CRYPT_* environment when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting cryptdancer server",
		zap.String("addr", cfg.Server.Addr()),
		zap.Bool("journal", cfg.Journal.Enabled),
	)

	rotation, err := levels.FromConfig(cfg.Game)
	if err != nil {
		logger.Fatal("loading levels", zap.Error(err))
	}

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	var journal gameserver.Journal = gameserver.NopJournal{}
	if cfg.Journal.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		if err := pool.CheckSchema(ctx); err != nil {
			pool.Close()
			logger.Fatal("checking journal schema, run cmd/migrate first", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		journal = postgres.NewSessionRepository(pool.DB())

		lifecycle.Add("postgres", server.NewLoopService(func(ctx context.Context) error {
			defer pool.Close()
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil && ctx.Err() == nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		}))
	}

	acceptor := transport.NewAcceptor(cfg.Server, logger)
	loop := gameserver.NewServer(cfg, acceptor.Conns(), rotation, journal, logger)

	lifecycle.Add("simulation", server.NewLoopService(loop.Run))
	lifecycle.Add("acceptor", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("server initialized", zap.Duration("startup", time.Since(start)))

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
