package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/domain"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
)

// selectActions reads the catalog table:
//
//	optimization_actions(id TEXT PRIMARY KEY, label TEXT, priority TEXT,
//	                     projected_monthly_savings NUMERIC, display_order INT)
const selectActions = `SELECT id, label, priority, projected_monthly_savings
FROM optimization_actions ORDER BY display_order, id`

type actionRow struct {
	ID                      string  `db:"id"`
	Label                   string  `db:"label"`
	Priority                string  `db:"priority"`
	ProjectedMonthlySavings float64 `db:"projected_monthly_savings"`
}

type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }

// LoadCatalog reads the catalog once; callers keep the result for the
// process lifetime.
func (r *Repos) LoadCatalog(ctx context.Context) (*recommendation.Catalog, error) {
	var rows []actionRow
	if err := r.db.SelectContext(ctx, &rows, selectActions); err != nil {
		return nil, fmt.Errorf("failed to select optimization actions: %w", err)
	}
	actions, err := toActions(rows)
	if err != nil {
		return nil, err
	}
	return recommendation.NewCatalog(actions)
}

func toActions(rows []actionRow) ([]domain.OptimizationAction, error) {
	out := make([]domain.OptimizationAction, len(rows))
	for i, row := range rows {
		p, err := domain.ParsePriority(row.Priority)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", row.ID, err)
		}
		out[i] = domain.OptimizationAction{
			ID:                      row.ID,
			Label:                   row.Label,
			Priority:                p,
			ProjectedMonthlySavings: row.ProjectedMonthlySavings,
		}
	}
	return out, nil
}
