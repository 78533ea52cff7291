package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/rosco-backend/internal/catalog"
	"github.com/scythe504/rosco-backend/internal/config"
	"github.com/scythe504/rosco-backend/internal/game"
	"github.com/scythe504/rosco-backend/internal/logger"
	"github.com/scythe504/rosco-backend/internal/server"
	"github.com/scythe504/rosco-backend/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bank, err := loadCatalog(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load question bank")
	}
	log.Info().Int("letters", len(bank.Letters())).Msg("question bank loaded")

	hub := websocket.NewHub(websocket.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.WSRateLimit,
		RateBurst:      cfg.WSRateBurst,
	})
	registry := game.NewRegistry(bank, hub,
		game.WithRules(game.Rules{
			TimePerPlayer: cfg.TimePerPlayer,
			WrongPenalty:  cfg.WrongPenalty,
			RevealDelay:   cfg.RevealDelay,
		}),
		game.WithEviction(cfg.FinishedRoomTTL, cfg.IdleRoomTTL),
	)
	hub.SetGame(registry)

	heartbeat := game.NewHeartbeat(registry, game.NewTickerSource(), cfg.TickInterval, cfg.SweepInterval)
	go heartbeat.Run(ctx)

	srv := server.NewServer(cfg, registry, hub)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// loadCatalog picks the question bank: a CSV file or the embedded default,
// optionally stored in and served from Postgres.
func loadCatalog(ctx context.Context, cfg config.Config) (*catalog.Memory, error) {
	var (
		bank *catalog.Memory
		err  error
	)
	if cfg.QuestionsFile != "" {
		bank, err = catalog.LoadCSVFile(cfg.QuestionsFile)
	} else {
		bank, err = catalog.Default()
	}
	if err != nil {
		return nil, err
	}
	if cfg.PostgresURL == "" {
		return bank, nil
	}

	var seed *catalog.Memory
	if cfg.PostgresSeed {
		seed = bank
	}
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return catalog.LoadPostgres(loadCtx, cfg.PostgresURL, seed)
}
