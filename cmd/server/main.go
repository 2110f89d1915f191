package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kurobon/explaingit/internal/config"
	"github.com/kurobon/explaingit/internal/scenario"
	"github.com/kurobon/explaingit/internal/server"
	"github.com/kurobon/explaingit/internal/state"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)

	loaders := []*scenario.Loader{scenario.Builtin()}
	if cfg.ScenarioDir != "" {
		loaders = append(loaders, scenario.NewDirLoader(cfg.ScenarioDir))
	}
	catalog, err := scenario.NewCatalog(loaders...)
	if err != nil {
		log.Fatal().Err(err).Msg("load scenarios")
	}
	log.Info().Int("count", len(catalog.List())).Str("dir", cfg.ScenarioDir).Msg("scenarios loaded")

	if cfg.WatchScenarios {
		w, err := scenario.Watch(cfg.ScenarioDir, catalog, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("watch scenarios")
		}
		defer w.Close()
	}

	sessionManager := state.NewSessionManager()
	sessionManager.Scenarios = catalog
	sessionManager.PullDelay = cfg.PullDelay
	sessionManager.RemoteName = cfg.RemoteName

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewServer(sessionManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.Addr).Dur("pull_delay", cfg.PullDelay).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("listen")
	}
}
