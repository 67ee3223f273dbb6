package recommendation

import (
	"fmt"
	"strings"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
)

type SavingsPolicy string

const (
	// PolicyFlat credits a fixed unit saving per applied action.
	PolicyFlat SavingsPolicy = "flat"
	// PolicyProjected sums each applied action's projected monthly savings.
	PolicyProjected SavingsPolicy = "projected"
)

func ParseSavingsPolicy(s string) (SavingsPolicy, error) {
	switch p := SavingsPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyFlat, PolicyProjected:
		return p, nil
	case "":
		return PolicyFlat, nil
	}
	return "", fmt.Errorf("unknown savings policy %q", s)
}

type Options struct {
	Policy     SavingsPolicy
	UnitSaving float64 // currency per applied action under PolicyFlat
	UnitROI    float64 // ROI percentage points per applied action
}

func DefaultOptions() Options {
	return Options{Policy: PolicyFlat, UnitSaving: 500, UnitROI: 12.5}
}

// State is one session's application state. It is owned by the caller and
// mutated only through Tracker.Apply; it does no locking of its own.
type State struct {
	catalog *Catalog
	applied []bool
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	applied := make([]bool, len(s.applied))
	copy(applied, s.applied)
	return &State{catalog: s.catalog, applied: applied}
}

// Actions returns the catalog in display order with applied flags filled in.
func (s *State) Actions() []domain.OptimizationAction {
	out := s.catalog.Actions()
	for i := range out {
		out[i].Applied = s.applied[i]
	}
	return out
}

type Progress struct {
	AppliedCount    int     `json:"applied_count"`
	TotalCount      int     `json:"total_count"`
	CompletionRatio float64 `json:"completion_ratio"`
}

type Snapshot struct {
	Actions          []domain.OptimizationAction `json:"actions"`
	Progress         Progress                    `json:"progress"`
	EstimatedSavings float64                     `json:"estimated_savings"`
	EstimatedROI     float64                     `json:"estimated_roi_percent"`
	SavingsPolicy    SavingsPolicy               `json:"savings_policy"`
	Complete         bool                        `json:"complete"`
}

type Tracker struct {
	catalog *Catalog
	opts    Options
}

func New(catalog *Catalog, opts Options) (*Tracker, error) {
	if catalog == nil {
		return nil, fmt.Errorf("tracker requires a catalog")
	}
	if opts.Policy == "" {
		opts.Policy = PolicyFlat
	}
	if _, err := ParseSavingsPolicy(string(opts.Policy)); err != nil {
		return nil, err
	}
	if opts.UnitSaving < 0 || opts.UnitROI < 0 {
		return nil, fmt.Errorf("unit values must be non-negative (saving=%.2f roi=%.2f)", opts.UnitSaving, opts.UnitROI)
	}
	return &Tracker{catalog: catalog, opts: opts}, nil
}

func (t *Tracker) Catalog() *Catalog { return t.catalog }
func (t *Tracker) Options() Options  { return t.opts }

// Initialize returns a fresh state with every action unapplied. Keeping one
// state per session is the caller's job; see session.Store.
func (t *Tracker) Initialize() *State {
	return &State{catalog: t.catalog, applied: make([]bool, t.catalog.Len())}
}

// Apply marks actionID applied. It reports whether the state changed; applying
// an already applied action is a no-op. Unknown ids leave s untouched.
func (t *Tracker) Apply(s *State, actionID string) (bool, error) {
	i, err := t.indexOf(actionID)
	if err != nil {
		return false, err
	}
	if s.applied[i] {
		return false, nil
	}
	s.applied[i] = true
	return true, nil
}

func (t *Tracker) IsApplied(s *State, actionID string) (bool, error) {
	i, err := t.indexOf(actionID)
	if err != nil {
		return false, err
	}
	return s.applied[i], nil
}

func (t *Tracker) Progress(s *State) Progress {
	p := Progress{AppliedCount: appliedCount(s), TotalCount: len(s.applied)}
	if p.TotalCount > 0 {
		p.CompletionRatio = float64(p.AppliedCount) / float64(p.TotalCount)
	}
	return p
}

func (t *Tracker) EstimatedSavings(s *State) float64 {
	if t.opts.Policy == PolicyProjected {
		var total float64
		for i, applied := range s.applied {
			if applied {
				total += t.catalog.actions[i].ProjectedMonthlySavings
			}
		}
		return total
	}
	return float64(appliedCount(s)) * t.opts.UnitSaving
}

func (t *Tracker) EstimatedROI(s *State) float64 {
	return float64(appliedCount(s)) * t.opts.UnitROI
}

func (t *Tracker) Snapshot(s *State) Snapshot {
	p := t.Progress(s)
	return Snapshot{
		Actions:          s.Actions(),
		Progress:         p,
		EstimatedSavings: t.EstimatedSavings(s),
		EstimatedROI:     t.EstimatedROI(s),
		SavingsPolicy:    t.opts.Policy,
		Complete:         p.TotalCount > 0 && p.AppliedCount == p.TotalCount,
	}
}

func (t *Tracker) indexOf(actionID string) (int, error) {
	i, ok := t.catalog.index[actionID]
	if !ok {
		return 0, &InvalidActionError{ActionID: actionID}
	}
	return i, nil
}

func appliedCount(s *State) int {
	n := 0
	for _, applied := range s.applied {
		if applied {
			n++
		}
	}
	return n
}
