package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const InventoryHistorySchema = `
	CREATE TABLE IF NOT EXISTS inventory_history (
		cycle_id VARCHAR NOT NULL,
		update_time TIMESTAMP NOT NULL,
		load_balancer_count INTEGER NOT NULL,
		reserved_units DECIMAL(12,2) NOT NULL,
		reserved_used_units DECIMAL(12,2) NOT NULL,
		instance_count INTEGER NOT NULL,
		running_count INTEGER NOT NULL,
		vpc_count INTEGER NOT NULL,
		database_count INTEGER NOT NULL,
		domain_record_count INTEGER NOT NULL,
		volume_count INTEGER NOT NULL,
		total_cost DECIMAL(12,4) NOT NULL,
		PRIMARY KEY (cycle_id)
	);
`

const InventoryHistoryTimeIndex = `
	CREATE INDEX IF NOT EXISTS inventory_history_update_time ON inventory_history (update_time);
`

var bootQueries = []string{
	InventoryHistorySchema,
	InventoryHistoryTimeIndex,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			if _, err := exec.ExecContext(context.Background(), query, nil); err != nil {
				return fmt.Errorf("boot query: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sql.OpenDB(c), nil
}
