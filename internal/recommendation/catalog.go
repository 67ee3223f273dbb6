package recommendation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
)

// Catalog is the fixed, ordered set of optimization actions. It is built once
// at startup and never changes afterwards.
type Catalog struct {
	actions []domain.OptimizationAction
	index   map[string]int
}

// NewCatalog validates and copies actions. Applied flags are cleared.
func NewCatalog(actions []domain.OptimizationAction) (*Catalog, error) {
	c := &Catalog{
		actions: make([]domain.OptimizationAction, len(actions)),
		index:   make(map[string]int, len(actions)),
	}

	for i, a := range actions {
		a.ID = strings.TrimSpace(a.ID)
		switch {
		case a.ID == "":
			return nil, fmt.Errorf("catalog entry %d: empty id", i)
		case strings.TrimSpace(a.Label) == "":
			return nil, fmt.Errorf("catalog entry %q: empty label", a.ID)
		case !a.Priority.Valid():
			return nil, fmt.Errorf("catalog entry %q: invalid priority %s", a.ID, a.Priority)
		case a.ProjectedMonthlySavings < 0:
			return nil, fmt.Errorf("catalog entry %q: negative projected savings %.2f", a.ID, a.ProjectedMonthlySavings)
		}
		if _, dup := c.index[a.ID]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate id", a.ID)
		}

		a.Applied = false
		c.actions[i] = a
		c.index[a.ID] = i
	}

	return c, nil
}

// DefaultCatalog is the built-in set shown on the solar pump dashboard.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]domain.OptimizationAction{
		{ID: "optimize_pump", Label: "Optimize pump schedule to peak sun hours", Priority: domain.PriorityHigh, ProjectedMonthlySavings: 1200},
		{ID: "panel_angle", Label: "Adjust solar panel tilt angle", Priority: domain.PriorityMedium, ProjectedMonthlySavings: 800},
		{ID: "battery_storage", Label: "Add battery storage for evening pumping", Priority: domain.PriorityMedium, ProjectedMonthlySavings: 1500},
		{ID: "carbon_credits", Label: "Register for carbon credits", Priority: domain.PriorityLow, ProjectedMonthlySavings: 600},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// DecodeCatalog reads a JSON array of actions, e.g.
//
//	[{"id":"optimize_pump","label":"...","priority":"High","projected_monthly_savings":1200}]
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var actions []domain.OptimizationAction
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&actions); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return NewCatalog(actions)
}

func (c *Catalog) Len() int { return len(c.actions) }

// Actions returns a copy in display order.
func (c *Catalog) Actions() []domain.OptimizationAction {
	out := make([]domain.OptimizationAction, len(c.actions))
	copy(out, c.actions)
	return out
}

func (c *Catalog) Lookup(id string) (domain.OptimizationAction, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.OptimizationAction{}, false
	}
	return c.actions[i], true
}
