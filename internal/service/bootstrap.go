package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/cloud"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/config"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/database"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/events"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/repository"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/telemetry"
)

// LoadCatalog resolves CATALOG_SOURCE once at startup.
func LoadCatalog(ctx context.Context) (*recommendation.Catalog, error) {
	switch src := config.CatalogSource(); src {
	case "", "builtin":
		return recommendation.DefaultCatalog(), nil

	case "postgres":
		db, err := database.Connect(config.DBDSN())
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return repository.New(db).LoadCatalog(ctx)

	case "s3":
		if !config.UseCloudServices() {
			return nil, fmt.Errorf("catalog source s3 requires USE_CLOUD_SERVICES=true")
		}
		client, err := cloud.NewS3Client(ctx, config.AWSRegion(), config.S3Bucket())
		if err != nil {
			return nil, err
		}
		return client.LoadCatalog(ctx, config.CatalogS3Key())

	default:
		return nil, fmt.Errorf("unknown catalog source %q", src)
	}
}

func TrackerOptions() (recommendation.Options, error) {
	policy, err := recommendation.ParseSavingsPolicy(config.SavingsPolicy())
	if err != nil {
		return recommendation.Options{}, err
	}
	return recommendation.Options{
		Policy:     policy,
		UnitSaving: config.UnitSaving(),
		UnitROI:    config.UnitROI(),
	}, nil
}

func TelemetryFromConfig() TelemetryOptions {
	return TelemetryOptions{
		Start: config.TelemetryStart(),
		Days:  config.TelemetryDays(),
		Rates: telemetry.Rates{
			EnergyUnitRate: config.EnergyUnitRate(),
			CarbonFactor:   config.CarbonFactor(),
		},
	}
}

// BuildNotifier returns the configured notifier and a close func that is
// always safe to call.
func BuildNotifier(ctx context.Context, clientID string) (events.Notifier, func(), error) {
	switch backend := config.EventsBackend(); backend {
	case "", "none":
		return events.Nop{}, func() {}, nil

	case "mqtt":
		client, err := events.ConnectMQTT(config.MQTTBroker(), clientID, 10*time.Second)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("broker", config.MQTTBroker()).Str("topic", config.MQTTTopic()).Msg("mqtt events enabled")
		return events.NewMQTTPublisher(client, config.MQTTTopic()), func() { client.Disconnect(250) }, nil

	case "sns":
		if !config.UseCloudServices() {
			return nil, nil, fmt.Errorf("events backend sns requires USE_CLOUD_SERVICES=true")
		}
		client, err := cloud.NewSNSClient(ctx, config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("topic", config.SNSTopicArn()).Msg("sns events enabled")
		return client, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown events backend %q", backend)
	}
}
