package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/fleet-atlas/pkg/config"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/services/accounts"
	"github.com/de-tools/fleet-atlas/pkg/services/fetcher"
	"github.com/de-tools/fleet-atlas/pkg/services/history"
	"github.com/de-tools/fleet-atlas/pkg/services/inventory"
	"github.com/de-tools/fleet-atlas/pkg/services/pricing"
	"github.com/de-tools/fleet-atlas/pkg/store/duckdb"
	historystore "github.com/de-tools/fleet-atlas/pkg/store/duckdb/history"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// App holds the wired components shared by the web server and the CLI.
type App struct {
	Config   *config.Config
	Registry accounts.Registry
	Service  *inventory.Service

	db *sql.DB
}

// New wires the inventory service from cfg. reg may be nil, in which case no
// metrics are exported.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	logger := zerolog.Ctx(ctx)

	registry, err := accounts.NewRegistry(cfg.AWS.CredentialsFile, cfg.AWS.Regions)
	if err != nil {
		return nil, fmt.Errorf("failed to create account registry: %w", err)
	}

	logger.Info().
		Str("credentials", cfg.AWS.CredentialsFile).
		Strs("accounts", registry.Accounts(ctx)).
		Int("locations", len(registry.Locations(ctx))).
		Msg("accounts loaded")

	prices, err := loadPricing(ctx, cfg.Pricing.Source, registry)
	if err != nil {
		return nil, err
	}

	db, recorder, err := openHistory(ctx, cfg.History.DbPath)
	if err != nil {
		return nil, err
	}

	var metrics *inventory.Metrics
	if reg != nil {
		metrics = inventory.NewMetrics(reg)
	}

	service := inventory.NewService(
		fetcher.NewAWSFetcher(registry, fetcher.NewClientFactory(registry)),
		prices,
		recorder,
		inventory.Options{
			PoolSize:   cfg.Refresh.PoolSize,
			Advisories: cfg.Advisor.Enabled,
			Spend:      cfg.Spend.Enabled,
			Metrics:    metrics,
		},
	)

	return &App{
		Config:   cfg,
		Registry: registry,
		Service:  service,
		db:       db,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// loadPricing downloads s3:// sources with the credentials of the first
// configured account.
func loadPricing(ctx context.Context, source string, registry accounts.Registry) (pricing.Resolver, error) {
	var getter pricing.ObjectGetter
	if strings.HasPrefix(source, "s3://") {
		account := registry.Accounts(ctx)[0]
		awsCfg, err := registry.Config(ctx, domain.Location{Account: account, Region: accounts.GlobalRegion})
		if err != nil {
			return nil, fmt.Errorf("failed to configure pricing download: %w", err)
		}
		getter = s3.NewFromConfig(awsCfg)
	}

	prices, err := pricing.Load(ctx, source, getter)
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing: %w", err)
	}
	return prices, nil
}

func openHistory(ctx context.Context, dbPath string) (*sql.DB, inventory.HistoryStore, error) {
	if dbPath == "" {
		zerolog.Ctx(ctx).Warn().Msg("no history database configured, summaries will not be kept")
		return nil, history.Discard{}, nil
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	store, err := historystore.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create history store: %w", err)
	}

	return db, history.NewRecorder(db, store), nil
}
