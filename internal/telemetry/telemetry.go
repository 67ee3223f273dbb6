package telemetry

import (
	"hash/fnv"
	"math/rand/v2"
	"time"

	"github.com/ANIKETSHETTY47/energy-grid-analytics-go/aggregator"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
)

// Daily ranges, half-open.
const (
	minEnergyKWh   = 5
	maxEnergyKWh   = 20
	minWaterLiters = 100
	maxWaterLiters = 300
)

type Rates struct {
	EnergyUnitRate float64 // currency per kWh
	CarbonFactor   float64 // kg CO2 avoided per kWh
}

func DefaultRates() Rates {
	return Rates{EnergyUnitRate: 5, CarbonFactor: 0.8}
}

// SeedFor derives a stable seed from a session id so a session renders the
// same series on every page load.
func SeedFor(sessionID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	return h.Sum64()
}

// Generate builds a synthetic daily series. Equal seeds give equal series.
func Generate(seed uint64, start time.Time, days int) []domain.DailyTelemetry {
	if days <= 0 {
		return nil
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([]domain.DailyTelemetry, days)
	for i := range out {
		out[i] = domain.DailyTelemetry{
			Date:        start.AddDate(0, 0, i),
			EnergyKWh:   minEnergyKWh + r.IntN(maxEnergyKWh-minEnergyKWh),
			WaterLiters: minWaterLiters + r.IntN(maxWaterLiters-minWaterLiters),
		}
	}
	return out
}

func Summarize(series []domain.DailyTelemetry, rates Rates) domain.TelemetrySummary {
	if len(series) == 0 {
		return domain.TelemetrySummary{}
	}

	energy := make([]aggregator.Point, len(series))
	water := make([]aggregator.Point, len(series))
	for i, d := range series {
		energy[i] = aggregator.Point{Value: float64(d.EnergyKWh), Timestamp: d.Date}
		water[i] = aggregator.Point{Value: float64(d.WaterLiters), Timestamp: d.Date}
	}

	s := domain.TelemetrySummary{
		TotalEnergyKWh:       aggregator.Sum(energy),
		TotalWaterLiters:     aggregator.Sum(water),
		AvgEnergyPerDayKWh:   aggregator.Average(energy),
		AvgWaterPerDayLiters: aggregator.Average(water),
	}
	if s.TotalEnergyKWh > 0 {
		s.LitersPerKWh = s.TotalWaterLiters / s.TotalEnergyKWh
	}
	s.EstimatedBill = s.TotalEnergyKWh * rates.EnergyUnitRate
	s.CarbonSavedKg = s.TotalEnergyKWh * rates.CarbonFactor
	return s
}
