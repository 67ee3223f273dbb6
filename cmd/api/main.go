package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/config"
	httpHandlers "github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/http"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/service"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(config.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := service.LoadCatalog(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("source", config.CatalogSource()).Msg("catalog load failed")
	}

	opts, err := service.TrackerOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("tracker options invalid")
	}
	tracker, err := recommendation.New(catalog, opts)
	if err != nil {
		log.Fatal().Err(err).Msg("tracker init failed")
	}

	notifier, closeNotifier, err := service.BuildNotifier(ctx, "solar-pump-api")
	if err != nil {
		log.Fatal().Err(err).Str("backend", config.EventsBackend()).Msg("notifier init failed")
	}
	defer closeNotifier()

	sessions := session.NewStore(tracker, config.SessionIdleTTL())
	go sessions.RunSweeper(ctx, time.Minute)

	svcs := service.New(tracker, sessions, notifier, service.TelemetryFromConfig())
	app := httpHandlers.NewApp(svcs)

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	addr := config.APIAddr()
	log.Info().
		Str("addr", addr).
		Int("actions", catalog.Len()).
		Str("policy", string(opts.Policy)).
		Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
