package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/fleet-atlas/pkg/adapters"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/models/store"
	"github.com/de-tools/fleet-atlas/pkg/store/duckdb"
	historystore "github.com/de-tools/fleet-atlas/pkg/store/duckdb/history"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Recorder persists cycle summaries to the embedded database.
type Recorder struct {
	db    *sql.DB
	store historystore.Store
}

func NewRecorder(db *sql.DB, historyStore historystore.Store) *Recorder {
	return &Recorder{
		db:    db,
		store: historyStore,
	}
}

func (r *Recorder) Persist(ctx context.Context, summary domain.Summary) error {
	record := adapters.MapDomainSummaryToStore(summary)

	err := duckdb.InTransaction(ctx, r.db, func(ctx context.Context) error {
		return r.store.Add(ctx, []store.InventoryHistory{record})
	})
	if err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("cycle_id", summary.CycleID).Msg("summary persisted")
	return nil
}

func (r *Recorder) History(ctx context.Context) ([]domain.Summary, error) {
	records, err := r.store.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return lo.Map(records, func(h store.InventoryHistory, _ int) domain.Summary {
		return adapters.MapStoreHistoryToDomain(h)
	}), nil
}

// Discard drops summaries; used when no history database is configured.
type Discard struct{}

func (Discard) Persist(context.Context, domain.Summary) error {
	return nil
}

func (Discard) History(context.Context) ([]domain.Summary, error) {
	return []domain.Summary{}, nil
}
