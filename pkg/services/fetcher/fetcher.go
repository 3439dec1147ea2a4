package fetcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Locator lists what the fetcher walks over.
type Locator interface {
	Accounts(ctx context.Context) []string
	Locations(ctx context.Context) []domain.Location
}

// AWSFetcher queries every location serially for each resource kind. Callers
// run kinds concurrently.
type AWSFetcher struct {
	locator Locator
	clients ClientFactory

	checksMu sync.Mutex
	checks   map[string][]advisorCheck
}

func NewAWSFetcher(locator Locator, clients ClientFactory) *AWSFetcher {
	return &AWSFetcher{
		locator: locator,
		clients: clients,
		checks:  make(map[string][]advisorCheck),
	}
}

func eachLocation[T any](
	ctx context.Context,
	locations []domain.Location,
	fn func(ctx context.Context, location domain.Location) ([]T, error),
) ([]T, error) {
	var all []T
	for _, location := range locations {
		zerolog.Ctx(ctx).Debug().
			Str("account", location.Account).
			Str("region", location.Region).
			Msg("fetching")

		items, err := fn(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", location, err)
		}
		all = append(all, items...)
	}
	return all, nil
}

func eachAccount[T any](
	ctx context.Context,
	accounts []string,
	fn func(ctx context.Context, account string) ([]T, error),
) ([]T, error) {
	var all []T
	for _, account := range accounts {
		items, err := fn(ctx, account)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", account, err)
		}
		all = append(all, items...)
	}
	return all, nil
}

// eachAccountOptional never fails: an account that errors is reported as skipped.
func eachAccountOptional[T any](
	ctx context.Context,
	accounts []string,
	fn func(ctx context.Context, account string) ([]T, error),
) []domain.AccountOutcome[T] {
	outcomes := make([]domain.AccountOutcome[T], 0, len(accounts))
	for _, account := range accounts {
		items, err := fn(ctx, account)
		if err != nil {
			outcomes = append(outcomes, domain.AccountOutcome[T]{Account: account, Skipped: err.Error()})
			continue
		}
		outcomes = append(outcomes, domain.AccountOutcome[T]{Account: account, Items: items})
	}
	return outcomes
}
