package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colline-kooza/export-coffee-sub000/internal/config"
	"github.com/colline-kooza/export-coffee-sub000/internal/infra"
	"github.com/colline-kooza/export-coffee-sub000/internal/repository"
	"github.com/colline-kooza/export-coffee-sub000/internal/router"
	"github.com/colline-kooza/export-coffee-sub000/internal/service"
	"github.com/colline-kooza/export-coffee-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Start goroutine worker pool for async tasks (performance rollups, slip
	// rendering). Worker handlers are wired here (composition root) so that
	// the pool has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := worker.NewDispatcher(rdb)
	noteRepo := repository.NewNoteRepository(db)
	perfRepo := repository.NewPerformanceRepository(db)
	perfSvc := service.NewPerformanceService(perfRepo, noteRepo)
	slipGen := infra.NewSlipGenerator(cfg.SlipStoragePath)

	handlers := &worker.Handlers{
		Performance: worker.NewPerformanceWorker(perfSvc),
		Slip:        worker.NewSlipWorker(noteRepo, slipGen),
	}
	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	// Safety net for recompute jobs lost between commit and enqueue
	worker.StartReconcileCron(ctx, perfRepo, dispatcher, 30*time.Second)

	r := router.New(cfg, db, rdb)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("coffee export backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
