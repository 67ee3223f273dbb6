package repository

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
)

func TestToActions(t *testing.T) {
	rows := []actionRow{
		{ID: "optimize_pump", Label: "Pump", Priority: "High", ProjectedMonthlySavings: 1200},
		{ID: "carbon_credits", Label: "Credits", Priority: "low", ProjectedMonthlySavings: 600},
	}

	got, err := toActions(rows)
	assert.NilError(t, err)
	assert.DeepEqual(t, []domain.OptimizationAction{
		{ID: "optimize_pump", Label: "Pump", Priority: domain.PriorityHigh, ProjectedMonthlySavings: 1200},
		{ID: "carbon_credits", Label: "Credits", Priority: domain.PriorityLow, ProjectedMonthlySavings: 600},
	}, got)
}

func TestToActionsBadPriority(t *testing.T) {
	_, err := toActions([]actionRow{{ID: "x", Label: "x", Priority: "critical"}})
	assert.ErrorContains(t, err, `action "x"`)
}
