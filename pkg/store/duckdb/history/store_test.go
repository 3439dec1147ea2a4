package history

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/fleet-atlas/pkg/models/store"
	"github.com/de-tools/fleet-atlas/pkg/store/duckdb"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupTestDB(t *testing.T) *sql.DB {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	return db
}

func setupFixture(t *testing.T) *fixture {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return &fixture{
		db:    db,
		store: store,
	}
}

func historyRecord(id string, at time.Time, cost string) store.InventoryHistory {
	return store.InventoryHistory{
		CycleID:           id,
		UpdateTime:        at,
		LoadBalancerCount: 2,
		ReservedUnits:     decimal.RequireFromString("16"),
		ReservedUsedUnits: decimal.RequireFromString("12.5"),
		InstanceCount:     10,
		RunningCount:      8,
		VPCCount:          6,
		DatabaseCount:     3,
		DomainRecordCount: 40,
		VolumeCount:       12,
		TotalCost:         decimal.RequireFromString(cost),
	}
}

func TestNewStore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := setupFixture(t)
		assert.NotNil(t, f.store)
	})

	t.Run("nil db", func(t *testing.T) {
		store, err := NewStore(nil)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestHistoryStore_AddAndList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	// inserted out of order
	err := f.store.Add(ctx, []store.InventoryHistory{
		historyRecord("cycle-2", second, "1.2345"),
		historyRecord("cycle-1", first, "0.9876"),
	})
	require.NoError(t, err)

	t.Run("list all in time order", func(t *testing.T) {
		records, err := f.store.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "cycle-1", records[0].CycleID)
		assert.Equal(t, first.Unix(), records[0].UpdateTime.Unix())
		assert.Equal(t, "0.9876", records[0].TotalCost.StringFixed(4))
		assert.Equal(t, "12.50", records[0].ReservedUsedUnits.StringFixed(2))
		assert.Equal(t, 8, records[0].RunningCount)
		assert.Equal(t, 40, records[0].DomainRecordCount)

		assert.Equal(t, "cycle-2", records[1].CycleID)
	})

	t.Run("list since", func(t *testing.T) {
		records, err := f.store.List(ctx, &second)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "cycle-2", records[0].CycleID)
	})
}

func TestHistoryStore_AddInTransaction(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	tx, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	err = f.store.Add(duckdb.WithTransaction(ctx, tx), []store.InventoryHistory{
		historyRecord("cycle-1", time.Now().UTC(), "0.1"),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	records, err := f.store.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryStore_AddEmpty(t *testing.T) {
	f := setupFixture(t)

	require.NoError(t, f.store.Add(context.Background(), nil))
}

func TestHistoryStore_DuplicateCycle(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	record := historyRecord("cycle-1", time.Now().UTC(), "0.1")

	require.NoError(t, f.store.Add(ctx, []store.InventoryHistory{record}))
	assert.Error(t, f.store.Add(ctx, []store.InventoryHistory{record}))
}

func TestHistoryStore_Errors(t *testing.T) {
	t.Run("prepare fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectPrepare("INSERT INTO inventory_history").WillReturnError(errors.New("database is locked"))

		s, err := NewStore(db)
		require.NoError(t, err)

		err = s.Add(context.Background(), []store.InventoryHistory{historyRecord("c", time.Now(), "1")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prepare statement")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query fails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT cycle_id").WillReturnError(errors.New("connection reset"))

		s, err := NewStore(db)
		require.NoError(t, err)

		_, err = s.List(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query history")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unparseable decimal", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{
			"cycle_id", "update_time", "load_balancer_count", "reserved_units", "reserved_used_units",
			"instance_count", "running_count", "vpc_count", "database_count", "domain_record_count",
			"volume_count", "total_cost",
		}).AddRow("c", time.Now(), 1, "abc", "1", 1, 1, 1, 1, 1, 1, "1")
		mock.ExpectQuery("SELECT cycle_id").WillReturnRows(rows)

		s, err := NewStore(db)
		require.NoError(t, err)

		_, err = s.List(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse reserved units")
	})
}
