package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/cloud"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/events"
)

// notifier consumes recommendation events from MQTT, logs them, and forwards
// catalog completions to SNS when cloud services are enabled.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	zerolog.SetGlobalLevel(config.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var forward events.Notifier = events.Nop{}
	if config.UseCloudServices() {
		sns, err := cloud.NewSNSClient(ctx, config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Fatal().Err(err).Msg("sns init failed")
		}
		forward = sns
	}

	client, err := events.ConnectMQTT(config.MQTTBroker(), "solar-pump-notifier", 10*time.Second)
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handle := func(e events.Event) {
		log.Info().
			Str("kind", string(e.Kind)).
			Str("session", e.SessionID).
			Str("action", e.ActionID).
			Int("applied", e.AppliedCount).
			Int("total", e.TotalCount).
			Msg("event")

		fctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := forward.Notify(fctx, e); err != nil {
			log.Error().Err(err).Str("session", e.SessionID).Msg("forward failed")
		}
	}
	onError := func(err error) {
		log.Warn().Err(err).Msg("dropped event")
	}

	if err := events.Subscribe(client, config.MQTTTopic(), handle, onError); err != nil {
		log.Fatal().Err(err).Msg("subscribe failed")
	}

	log.Info().Str("topic", config.MQTTTopic()).Msg("notifier running; Ctrl+C to stop")
	<-ctx.Done()
}
