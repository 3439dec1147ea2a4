package inventory

import (
	"context"
	"fmt"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// collect runs one task per resource kind on a bounded pool and waits for all
// of them, even after a failure, before reporting the first error.
func (s *Service) collect(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{}

	var g errgroup.Group
	g.SetLimit(s.opts.PoolSize)

	fetchInto(ctx, &g, "reservations", &snapshot.Reservations, s.fetcher.Reservations)
	fetchInto(ctx, &g, "instances", &snapshot.Units, s.fetcher.RunningUnits)
	fetchInto(ctx, &g, "load balancers", &snapshot.LoadBalancers, s.fetcher.LoadBalancers)
	fetchInto(ctx, &g, "databases", &snapshot.Databases, s.fetcher.Databases)
	fetchInto(ctx, &g, "volumes", &snapshot.Volumes, s.fetcher.Volumes)
	fetchInto(ctx, &g, "caches", &snapshot.Caches, s.fetcher.Caches)
	fetchInto(ctx, &g, "subnets", &snapshot.Subnets, s.fetcher.Subnets)
	fetchInto(ctx, &g, "domain records", &snapshot.DomainRecords, s.fetcher.DomainRecords)
	fetchInto(ctx, &g, "spot requests", &snapshot.SpotRequests, s.fetcher.SpotRequests)
	fetchInto(ctx, &g, "stacks", &snapshot.Stacks, s.fetcher.Stacks)

	if s.opts.Advisories {
		fetchOptional(ctx, &g, "advisories", &snapshot.Advisories, s.fetcher.Advisories)
	}
	if s.opts.Spend {
		fetchOptional(ctx, &g, "spend", &snapshot.Spend, s.fetcher.Spend)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot.Index = buildIndex(ctx, snapshot)
	return snapshot, nil
}

func fetchInto[T any](
	ctx context.Context,
	g *errgroup.Group,
	kind string,
	dst *[]T,
	fetch func(context.Context) ([]T, error),
) {
	g.Go(func() (err error) {
		defer recoverTask(kind, &err)

		items, err := fetch(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", kind, err)
		}
		*dst = items

		zerolog.Ctx(ctx).Debug().Str("kind", kind).Int("count", len(items)).Msg("fetched")
		return nil
	})
}

// fetchOptional never fails the cycle: skipped accounts and failures are logged
// and contribute nothing.
func fetchOptional[T any](
	ctx context.Context,
	g *errgroup.Group,
	kind string,
	dst *[]T,
	fetch func(context.Context) ([]domain.AccountOutcome[T], error),
) {
	g.Go(func() (err error) {
		logger := zerolog.Ctx(ctx)
		defer func() {
			if r := recover(); r != nil {
				logger.Warn().Str("kind", kind).Interface("panic", r).Msg("optional fetch panicked")
			}
			err = nil
		}()

		outcomes, err := fetch(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("kind", kind).Msg("optional fetch failed")
			return nil
		}

		for _, o := range outcomes {
			if o.IsSkipped() {
				logger.Warn().
					Str("kind", kind).
					Str("account", o.Account).
					Str("reason", o.Skipped).
					Msg("skipping account")
			}
		}
		*dst = domain.Flatten(outcomes)
		return nil
	})
}

func recoverTask(kind string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("fetching %s panicked: %v", kind, r)
	}
}

func buildIndex(ctx context.Context, snapshot *domain.Snapshot) domain.Index {
	logger := zerolog.Ctx(ctx)
	index := make(domain.Index)
	for _, r := range snapshot.Resources() {
		if prev := index.Put(r); prev != nil {
			logger.Debug().
				Str("id", r.Base().ID).
				Str("replaced", fmt.Sprintf("%T", prev)).
				Str("by", fmt.Sprintf("%T", r)).
				Msg("duplicate resource id")
		}
	}
	return index
}
