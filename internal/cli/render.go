package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/service"
)

var (
	ColorBorder = lipgloss.Color("#282726")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorMuted  = lipgloss.Color("#6F6E69")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorOrange = lipgloss.Color("#DA702C")
	ColorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	goodStyle   = lipgloss.NewStyle().Foreground(ColorGreen)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

const barWidth = 24

func priorityStyle(p domain.Priority) lipgloss.Style {
	switch p {
	case domain.PriorityHigh:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case domain.PriorityMedium:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	}
	return mutedStyle
}

// ProgressBar renders ratio as a fixed-width bar; ratio is clamped to [0,1].
func ProgressBar(ratio float64) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*barWidth + 0.5)
	return goodStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", barWidth-filled))
}

func RenderCatalog(actions []domain.OptimizationAction) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-18s %-8s %10s  %s", "ID", "PRIORITY", "PROJECTED", "LABEL")))
	b.WriteString("\n")
	for _, a := range actions {
		fmt.Fprintf(&b, "%-18s %s %10.2f  %s\n",
			a.ID,
			priorityStyle(a.Priority).Render(fmt.Sprintf("%-8s", a.Priority)),
			a.ProjectedMonthlySavings,
			a.Label,
		)
	}
	return b.String()
}

func RenderSnapshot(sessionID string, snap recommendation.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Session "+sessionID) + "\n\n")

	for _, a := range snap.Actions {
		mark := mutedStyle.Render("[ ]")
		if a.Applied {
			mark = goodStyle.Render("[x]")
		}
		fmt.Fprintf(&b, "%s %-18s %s\n", mark, a.ID, a.Label)
	}

	p := snap.Progress
	fmt.Fprintf(&b, "\n%s %d/%d (%.0f%%)\n", ProgressBar(p.CompletionRatio), p.AppliedCount, p.TotalCount, p.CompletionRatio*100)
	fmt.Fprintf(&b, "Estimated savings: %s / month (%s policy)\n",
		goodStyle.Render(fmt.Sprintf("%.2f", snap.EstimatedSavings)), snap.SavingsPolicy)
	fmt.Fprintf(&b, "Estimated ROI:     %s\n", goodStyle.Render(fmt.Sprintf("%.1f%%", snap.EstimatedROI)))

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func RenderTelemetry(view service.TelemetryView) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-12s %8s %10s", "DATE", "kWh", "LITERS")))
	b.WriteString("\n")
	for _, d := range view.Days {
		fmt.Fprintf(&b, "%-12s %8d %10d\n", d.Date.Format("2006-01-02"), d.EnergyKWh, d.WaterLiters)
	}

	s := view.Summary
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total energy:     %.0f kWh\n", s.TotalEnergyKWh)
	fmt.Fprintf(&b, "Total water:      %.0f L\n", s.TotalWaterLiters)
	fmt.Fprintf(&b, "Avg energy/day:   %.2f kWh\n", s.AvgEnergyPerDayKWh)
	fmt.Fprintf(&b, "Pump efficiency:  %.1f L/kWh\n", s.LitersPerKWh)
	fmt.Fprintf(&b, "Estimated bill:   %.2f\n", s.EstimatedBill)
	fmt.Fprintf(&b, "Carbon saved:     %.2f kg CO2\n", s.CarbonSavedKg)
	return b.String()
}
