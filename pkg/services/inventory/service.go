package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/services/reservation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultPoolSize = 10

var ErrCycleInProgress = errors.New("refresh cycle already in progress")

// Fetcher retrieves one resource kind across every location per call.
type Fetcher interface {
	Reservations(ctx context.Context) ([]*domain.ReservedCapacity, error)
	RunningUnits(ctx context.Context) ([]*domain.RunningUnit, error)
	LoadBalancers(ctx context.Context) ([]*domain.LoadBalancer, error)
	Databases(ctx context.Context) ([]*domain.Database, error)
	Volumes(ctx context.Context) ([]*domain.Volume, error)
	Caches(ctx context.Context) ([]*domain.Cache, error)
	Subnets(ctx context.Context) ([]*domain.Subnet, error)
	DomainRecords(ctx context.Context) ([]*domain.DomainRecord, error)
	SpotRequests(ctx context.Context) ([]*domain.SpotRequest, error)
	Stacks(ctx context.Context) ([]*domain.InfrastructureStack, error)
	Advisories(ctx context.Context) ([]domain.AccountOutcome[domain.AdvisorResult], error)
	Spend(ctx context.Context) ([]domain.AccountOutcome[domain.AccountSpend], error)
}

type PriceResolver interface {
	PriceFor(unit *domain.RunningUnit) float64
}

type HistoryStore interface {
	Persist(ctx context.Context, summary domain.Summary) error
	History(ctx context.Context) ([]domain.Summary, error)
}

type Status int

const (
	StatusIdle Status = iota
	StatusUpdating
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusUpdating:
		return "updating"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// CycleState describes the most recent refresh cycle. Failed and Error are
// kept until a later cycle succeeds; Error holds the message of the root cause.
type CycleState struct {
	Status      Status
	Failed      bool
	Error       string
	CycleID     string
	LastAttempt time.Time
}

type Options struct {
	PoolSize   int
	Advisories bool
	Spend      bool
	Metrics    *Metrics
	Clock      func() time.Time
}

// Service runs refresh cycles and publishes their snapshots. At most one cycle
// runs at a time.
type Service struct {
	fetcher Fetcher
	pricing PriceResolver
	history HistoryStore
	opts    Options

	running  atomic.Bool
	snapshot atomic.Pointer[domain.Snapshot]
	wg       sync.WaitGroup

	mu    sync.RWMutex
	state CycleState
}

func NewService(fetcher Fetcher, pricing PriceResolver, history HistoryStore, opts Options) *Service {
	if opts.PoolSize <= 0 {
		opts.PoolSize = DefaultPoolSize
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Service{
		fetcher: fetcher,
		pricing: pricing,
		history: history,
		opts:    opts,
	}
	s.snapshot.Store(&domain.Snapshot{Index: domain.Index{}})
	return s
}

// RunCycle runs a refresh synchronously. It returns ErrCycleInProgress without
// doing anything when another cycle is running.
func (s *Service) RunCycle(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrCycleInProgress
	}
	defer s.running.Store(false)

	cycleID, started := s.begin()
	return s.cycle(ctx, cycleID, started)
}

// Refresh starts a cycle in the background and reports whether it did. A
// request made while a cycle is running is dropped. The state is Updating
// before Refresh returns.
func (s *Service) Refresh(ctx context.Context) bool {
	if !s.running.CompareAndSwap(false, true) {
		zerolog.Ctx(ctx).Info().Msg("refresh already in progress, request dropped")
		return false
	}

	cycleID, started := s.begin()
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		_ = s.cycle(ctx, cycleID, started)
	}()
	return true
}

// Wait blocks until background cycles started by Refresh have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Snapshot() *domain.Snapshot {
	return s.snapshot.Load()
}

func (s *Service) State() CycleState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// View captures the published snapshot together with the cycle state.
func (s *Service) View() View {
	state := s.State()
	return View{snapshot: s.Snapshot(), state: state}
}

func (s *Service) History(ctx context.Context) ([]domain.Summary, error) {
	return s.history.History(ctx)
}

func (s *Service) cycle(ctx context.Context, cycleID string, started time.Time) (err error) {
	logger := zerolog.Ctx(ctx).With().Str("cycle_id", cycleID).Logger()
	ctx = logger.WithContext(ctx)

	logger.Info().Msg("refresh cycle started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh cycle panicked: %v", r)
		}
		s.finish(ctx, err, started)
	}()

	snapshot, err := s.collect(ctx)
	if err != nil {
		return err
	}

	snapshot.CycleID = cycleID
	s.reconcile(snapshot)
	snapshot.UpdatedAt = s.opts.Clock()
	s.snapshot.Store(snapshot)
	s.opts.Metrics.observeSnapshot(snapshot)

	if err := s.history.Persist(ctx, Summarize(snapshot)); err != nil {
		return fmt.Errorf("failed to persist summary: %w", err)
	}
	return nil
}

// reconcile links, matches and prices the freshly collected resources.
func (s *Service) reconcile(snapshot *domain.Snapshot) {
	Resolve(snapshot)
	reservation.Match(snapshot.Reservations, snapshot.Units)

	for _, unit := range snapshot.Units {
		if unit.Spot != nil {
			unit.Price = unit.Spot.Price
			continue
		}
		unit.Price = s.pricing.PriceFor(unit)
	}
}

// begin moves the state to Updating. Callers must hold the running flag.
func (s *Service) begin() (string, time.Time) {
	cycleID := uuid.NewString()
	started := s.opts.Clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Status = StatusUpdating
	s.state.CycleID = cycleID
	s.state.LastAttempt = started
	return cycleID, started
}

func (s *Service) finish(ctx context.Context, err error, started time.Time) {
	logger := zerolog.Ctx(ctx)
	elapsed := s.opts.Clock().Sub(started)

	s.mu.Lock()
	if err != nil {
		s.state.Status = StatusError
		s.state.Failed = true
		s.state.Error = rootCause(err).Error()
	} else {
		s.state.Status = StatusIdle
		s.state.Failed = false
		s.state.Error = ""
	}
	s.mu.Unlock()

	s.opts.Metrics.observeCycle(err, elapsed)

	if err != nil {
		logger.Error().Err(err).Dur("elapsed", elapsed).Msg("refresh cycle failed")
		return
	}
	logger.Info().Dur("elapsed", elapsed).Msg("refresh cycle completed")
}

// rootCause strips the context added while the failure travelled up the cycle.
func rootCause(err error) error {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
}
