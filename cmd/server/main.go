package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "chatrelay/internal/adapters/http"
	"chatrelay/internal/adapters/ws"
	"chatrelay/internal/app"
	"chatrelay/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Wire the session registry, dispatcher and room registry together.
	// Slow-member teardown goes through the session registry, so the
	// kick policy closes the offender's transport instead of blocking.
	sessions := app.NewSessionRegistry()

	var policy app.Policy = app.DropPolicy{}
	if cfg.Backpressure == "kick" {
		policy = app.KickPolicy{}
	}
	dispatcher := app.NewDispatcher(policy, sessions.Cancel)
	rooms := app.NewRoomRegistry(dispatcher, cfg.HistoryLimit)

	ctl := ws.NewController(cfg, rooms, sessions)
	r := router.SetupRouter(ctx, cfg, ctl, rooms, sessions)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("chatrelay server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
