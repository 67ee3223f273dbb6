package main

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/api"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/dashboard"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(config.LogLevel())

	s, err := dashboard.New(api.New(config.APIURL()))
	if err != nil {
		log.Fatal().Err(err).Msg("dashboard init failed")
	}

	addr := config.DashboardAddr()
	log.Info().Str("addr", addr).Str("api", config.APIURL()).Msg("dashboard listening")
	log.Fatal().Err(http.ListenAndServe(addr, s)).Msg("server exit")
}
