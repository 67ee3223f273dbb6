package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

// ParsePriority accepts the display names case-insensitively.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

func (p Priority) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", p)
	}
	return json.Marshal(p.String())
}

func (p *Priority) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type OptimizationAction struct {
	ID                      string   `db:"id" json:"id"`
	Label                   string   `db:"label" json:"label"`
	Priority                Priority `db:"-" json:"priority"`
	ProjectedMonthlySavings float64  `db:"projected_monthly_savings" json:"projected_monthly_savings"`
	Applied                 bool     `db:"-" json:"applied"`
}

type DailyTelemetry struct {
	Date        time.Time `json:"date"`
	EnergyKWh   int       `json:"energy_kwh"`
	WaterLiters int       `json:"water_liters"`
}

type TelemetrySummary struct {
	TotalEnergyKWh       float64 `json:"total_energy_kwh"`
	TotalWaterLiters     float64 `json:"total_water_liters"`
	AvgEnergyPerDayKWh   float64 `json:"avg_energy_per_day_kwh"`
	AvgWaterPerDayLiters float64 `json:"avg_water_per_day_liters"`
	LitersPerKWh         float64 `json:"liters_per_kwh"`
	EstimatedBill        float64 `json:"estimated_bill"`
	CarbonSavedKg        float64 `json:"carbon_saved_kg"`
}
