package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/fleet-atlas/pkg/models/store"
	"github.com/de-tools/fleet-atlas/pkg/store/duckdb"
	"github.com/shopspring/decimal"
)

// Store keeps one row per successful refresh cycle.
type Store interface {
	Add(ctx context.Context, records []store.InventoryHistory) error
	List(ctx context.Context, since *time.Time) ([]store.InventoryHistory, error)
}

type historyStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &historyStore{
		db: db,
	}, nil
}

func (s *historyStore) Add(ctx context.Context, records []store.InventoryHistory) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	query := `
		INSERT INTO inventory_history (
			cycle_id, update_time, load_balancer_count, reserved_units, reserved_used_units,
			instance_count, running_count, vpc_count, database_count, domain_record_count,
			volume_count, total_cost
		) VALUES (
			?, ?, ?, CAST(? AS DECIMAL(12,2)), CAST(? AS DECIMAL(12,2)),
			?, ?, ?, ?, ?, ?, CAST(? AS DECIMAL(12,4))
		)`

	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = s.db.PrepareContext(ctx, query)
	} else {
		stmt, err = tx.PrepareContext(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		_, err = stmt.ExecContext(ctx,
			record.CycleID,
			record.UpdateTime,
			record.LoadBalancerCount,
			record.ReservedUnits.String(),
			record.ReservedUsedUnits.String(),
			record.InstanceCount,
			record.RunningCount,
			record.VPCCount,
			record.DatabaseCount,
			record.DomainRecordCount,
			record.VolumeCount,
			record.TotalCost.String(),
		)
		if err != nil {
			return fmt.Errorf("insert history record: %w", err)
		}
	}

	return nil
}

func (s *historyStore) List(ctx context.Context, since *time.Time) ([]store.InventoryHistory, error) {
	query := `
		SELECT cycle_id, update_time, load_balancer_count,
			CAST(reserved_units AS VARCHAR), CAST(reserved_used_units AS VARCHAR),
			instance_count, running_count, vpc_count, database_count, domain_record_count,
			volume_count, CAST(total_cost AS VARCHAR)
		FROM inventory_history`
	var args []interface{}
	if since != nil {
		query += " WHERE update_time >= ?"
		args = append(args, *since)
	}
	query += " ORDER BY update_time ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	return scanHistoryRows(rows)
}

func scanHistoryRows(rows *sql.Rows) ([]store.InventoryHistory, error) {
	records := make([]store.InventoryHistory, 0)
	for rows.Next() {
		var (
			record                       store.InventoryHistory
			reserved, reservedUsed, cost string
		)
		if err := rows.Scan(
			&record.CycleID,
			&record.UpdateTime,
			&record.LoadBalancerCount,
			&reserved,
			&reservedUsed,
			&record.InstanceCount,
			&record.RunningCount,
			&record.VPCCount,
			&record.DatabaseCount,
			&record.DomainRecordCount,
			&record.VolumeCount,
			&cost,
		); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}

		var err error
		if record.ReservedUnits, err = decimal.NewFromString(reserved); err != nil {
			return nil, fmt.Errorf("parse reserved units: %w", err)
		}
		if record.ReservedUsedUnits, err = decimal.NewFromString(reservedUsed); err != nil {
			return nil, fmt.Errorf("parse reserved used units: %w", err)
		}
		if record.TotalCost, err = decimal.NewFromString(cost); err != nil {
			return nil, fmt.Errorf("parse total cost: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return records, nil
}
