package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLocation = domain.Location{Account: "prod", Region: "eu-west-1"}

type stubFetcher struct {
	reservations []*domain.ReservedCapacity
	units        []*domain.RunningUnit
	lbs          []*domain.LoadBalancer
	spots        []*domain.SpotRequest
	subnets      []*domain.Subnet
	advisories   []domain.AccountOutcome[domain.AdvisorResult]
	spend        []domain.AccountOutcome[domain.AccountSpend]

	unitsErr   error
	panicOn    string
	advisorErr error

	// gate, when set, blocks RunningUnits until closed.
	gate    chan struct{}
	entered chan struct{}
}

func (f *stubFetcher) Reservations(context.Context) ([]*domain.ReservedCapacity, error) {
	return f.reservations, nil
}

func (f *stubFetcher) RunningUnits(context.Context) ([]*domain.RunningUnit, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.panicOn == "instances" {
		panic("boom")
	}
	return f.units, f.unitsErr
}

func (f *stubFetcher) LoadBalancers(context.Context) ([]*domain.LoadBalancer, error) {
	return f.lbs, nil
}

func (f *stubFetcher) Databases(context.Context) ([]*domain.Database, error) {
	return nil, nil
}

func (f *stubFetcher) Volumes(context.Context) ([]*domain.Volume, error) {
	return nil, nil
}

func (f *stubFetcher) Caches(context.Context) ([]*domain.Cache, error) {
	return nil, nil
}

func (f *stubFetcher) Subnets(context.Context) ([]*domain.Subnet, error) {
	return f.subnets, nil
}

func (f *stubFetcher) DomainRecords(context.Context) ([]*domain.DomainRecord, error) {
	return nil, nil
}

func (f *stubFetcher) SpotRequests(context.Context) ([]*domain.SpotRequest, error) {
	return f.spots, nil
}

func (f *stubFetcher) Stacks(context.Context) ([]*domain.InfrastructureStack, error) {
	return nil, nil
}

func (f *stubFetcher) Advisories(context.Context) ([]domain.AccountOutcome[domain.AdvisorResult], error) {
	if f.panicOn == "advisories" {
		panic("advisor exploded")
	}
	return f.advisories, f.advisorErr
}

func (f *stubFetcher) Spend(context.Context) ([]domain.AccountOutcome[domain.AccountSpend], error) {
	return f.spend, nil
}

type stubPricing struct {
	onDemand float64
	reserved float64
}

func (p stubPricing) PriceFor(unit *domain.RunningUnit) float64 {
	if unit.Matched {
		return p.reserved
	}
	return p.onDemand
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Persist(ctx context.Context, summary domain.Summary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockHistoryStore) History(ctx context.Context) ([]domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Summary), args.Error(1)
}

func runningUnit(id, itype, az string) *domain.RunningUnit {
	u := domain.NewRunningUnit(id, testLocation, itype)
	u.State = domain.StateRunning
	u.AvailabilityZone = az
	return u
}

func reservedCapacity(id, itype, az string, count int) *domain.ReservedCapacity {
	r := domain.NewReservedCapacity(id, testLocation, itype, count)
	r.AvailabilityZone = az
	r.ProductDescription = domain.PlatformLinux
	return r
}

func newHistory() *MockHistoryStore {
	h := new(MockHistoryStore)
	h.On("Persist", mock.Anything, mock.Anything).Return(nil)
	return h
}

func TestService_RunCycle_PublishesMatchedAndPricedSnapshot(t *testing.T) {
	// Given
	fetcher := &stubFetcher{
		reservations: []*domain.ReservedCapacity{reservedCapacity("ri-1", "m5.large", "eu-west-1a", 1)},
		units: []*domain.RunningUnit{
			runningUnit("i-1", "m5.large", "eu-west-1a"),
			runningUnit("i-2", "m5.large", "eu-west-1a"),
		},
	}
	history := newHistory()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(fetcher, stubPricing{onDemand: 0.1, reserved: 0.06}, history, Options{
		Clock: func() time.Time { return now },
	})

	// When
	err := svc.RunCycle(context.Background())

	// Then
	require.NoError(t, err)
	snapshot := svc.Snapshot()
	require.Len(t, snapshot.Units, 2)
	assert.True(t, snapshot.Units[0].Matched)
	assert.Equal(t, 0.06, snapshot.Units[0].Price)
	assert.False(t, snapshot.Units[1].Matched)
	assert.Equal(t, 0.1, snapshot.Units[1].Price)
	assert.Equal(t, now, snapshot.UpdatedAt)
	assert.NotEmpty(t, snapshot.CycleID)

	state := svc.State()
	assert.Equal(t, StatusIdle, state.Status)
	assert.Empty(t, state.Error)
	assert.Equal(t, snapshot.CycleID, state.CycleID)

	history.AssertCalled(t, "Persist", mock.Anything, mock.MatchedBy(func(s domain.Summary) bool {
		return s.InstanceCount == 2 && s.RunningCount == 2 && s.Timestamp.Equal(now)
	}))
}

func TestService_RunCycle_FailureKeepsPreviousSnapshot(t *testing.T) {
	fetcher := &stubFetcher{units: []*domain.RunningUnit{runningUnit("i-1", "t2.small", "eu-west-1a")}}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	require.NoError(t, svc.RunCycle(context.Background()))
	previous := svc.Snapshot()

	fetcher.unitsErr = errors.New("throttled by ec2")
	err := svc.RunCycle(context.Background())

	require.Error(t, err)
	assert.Same(t, previous, svc.Snapshot())

	view := svc.View()
	assert.True(t, view.InError())
	assert.Equal(t, "throttled by ec2", view.ErrorMessage())
	assert.Equal(t, StatusError, view.State().Status)
	assert.ErrorContains(t, err, "failed to fetch instances: throttled by ec2")

	fetcher.unitsErr = nil
	require.NoError(t, svc.RunCycle(context.Background()))
	assert.False(t, svc.View().InError())
	assert.Empty(t, svc.View().ErrorMessage())
	assert.Equal(t, StatusIdle, svc.State().Status)
}

func TestService_RunCycle_RecoversPanics(t *testing.T) {
	fetcher := &stubFetcher{panicOn: "instances"}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	err := svc.RunCycle(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, StatusError, svc.State().Status)
	assert.Empty(t, svc.Snapshot().Units)
}

func TestService_RunCycle_OptionalFetchesNeverFailTheCycle(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *stubFetcher
		want    int
	}{
		{
			name: "skipped account contributes nothing",
			fetcher: &stubFetcher{advisories: []domain.AccountOutcome[domain.AdvisorResult]{
				{Account: "prod", Items: []domain.AdvisorResult{{Account: "prod", CheckName: "Idle Load Balancers"}}},
				{Account: "dev", Skipped: "no premium support subscription"},
			}},
			want: 1,
		},
		{
			name:    "fetch error",
			fetcher: &stubFetcher{advisorErr: errors.New("support api unavailable")},
			want:    0,
		},
		{
			name:    "panic",
			fetcher: &stubFetcher{panicOn: "advisories"},
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.fetcher, stubPricing{}, newHistory(), Options{Advisories: true})

			err := svc.RunCycle(context.Background())

			require.NoError(t, err)
			assert.Len(t, svc.Snapshot().Advisories, tt.want)
			assert.Equal(t, StatusIdle, svc.State().Status)
		})
	}
}

func TestService_RunCycle_OptionalFetchesDisabled(t *testing.T) {
	fetcher := &stubFetcher{
		advisories: []domain.AccountOutcome[domain.AdvisorResult]{{Account: "prod", Items: []domain.AdvisorResult{{}}}},
		spend:      []domain.AccountOutcome[domain.AccountSpend]{{Account: "prod", Items: []domain.AccountSpend{{}}}},
	}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	require.NoError(t, svc.RunCycle(context.Background()))
	assert.Empty(t, svc.Snapshot().Advisories)
	assert.Empty(t, svc.Snapshot().Spend)
}

func TestService_RunCycle_SpotPriceTakesPrecedence(t *testing.T) {
	spotUnit := runningUnit("i-spot", "c5.xlarge", "eu-west-1a")
	spotUnit.SpotRequestID = "sir-1"
	spot := &domain.SpotRequest{ResourceBase: domain.ResourceBase{ID: "sir-1", Location: testLocation, Price: 0.031}}

	linked := runningUnit("i-linked", "c5.xlarge", "eu-west-1b")
	byInstance := &domain.SpotRequest{ResourceBase: domain.ResourceBase{ID: "sir-2", Location: testLocation, Price: 0.029}, InstanceID: "i-linked"}

	fetcher := &stubFetcher{
		units: []*domain.RunningUnit{spotUnit, linked, runningUnit("i-od", "c5.xlarge", "eu-west-1a")},
		spots: []*domain.SpotRequest{spot, byInstance},
	}
	svc := NewService(fetcher, stubPricing{onDemand: 0.17}, newHistory(), Options{})

	require.NoError(t, svc.RunCycle(context.Background()))

	units := svc.Snapshot().Units
	assert.Equal(t, 0.031, units[0].Price)
	assert.Same(t, spot, units[0].Spot)
	assert.Equal(t, 0.029, units[1].Price)
	assert.Equal(t, 0.17, units[2].Price)
	assert.Nil(t, units[2].Spot)
}

func TestService_RunCycle_PersistFailureKeepsNewSnapshot(t *testing.T) {
	fetcher := &stubFetcher{units: []*domain.RunningUnit{runningUnit("i-1", "t3.micro", "eu-west-1a")}}
	history := new(MockHistoryStore)
	history.On("Persist", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	svc := NewService(fetcher, stubPricing{}, history, Options{})

	err := svc.RunCycle(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, svc.Snapshot().Units, 1)
	assert.Equal(t, StatusError, svc.State().Status)
	assert.Equal(t, "disk full", svc.View().ErrorMessage())
}

func TestService_RunCycle_EmptyFailureMessageIsStillAnError(t *testing.T) {
	fetcher := &stubFetcher{unitsErr: errors.New("")}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	require.Error(t, svc.RunCycle(context.Background()))

	view := svc.View()
	assert.True(t, view.InError())
	assert.Empty(t, view.ErrorMessage())
	assert.Equal(t, StatusError, view.State().Status)
}

func TestService_Refresh_IsUpdatingOnReturn(t *testing.T) {
	// Given a cycle that cannot get past its fetches
	fetcher := &stubFetcher{gate: make(chan struct{})}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	// When
	started := svc.Refresh(context.Background())
	view := svc.View()
	second := svc.Refresh(context.Background())

	// Then
	assert.True(t, started)
	assert.False(t, second)
	assert.Equal(t, StatusUpdating, view.State().Status)
	assert.False(t, view.RefreshAvailable())
	assert.Equal(t, refreshingNow, view.LastRefresh())

	close(fetcher.gate)
	svc.Wait()
	assert.True(t, svc.View().RefreshAvailable())
}

func TestService_Refresh_DropsConcurrentRequests(t *testing.T) {
	// Given a cycle blocked inside a fetch
	fetcher := &stubFetcher{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	require.True(t, svc.Refresh(context.Background()))
	<-fetcher.entered

	// When
	assert.Equal(t, StatusUpdating, svc.State().Status)
	assert.Equal(t, refreshingNow, svc.View().LastRefresh())
	assert.False(t, svc.View().RefreshAvailable())
	assert.False(t, svc.Refresh(context.Background()))
	assert.ErrorIs(t, svc.RunCycle(context.Background()), ErrCycleInProgress)

	// Then
	close(fetcher.gate)
	svc.Wait()
	assert.Equal(t, StatusIdle, svc.State().Status)
	assert.True(t, svc.View().RefreshAvailable())
}

func TestService_Refresh_IgnoresCallerCancellation(t *testing.T) {
	fetcher := &stubFetcher{units: []*domain.RunningUnit{runningUnit("i-1", "t2.small", "eu-west-1a")}}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, svc.Refresh(ctx))
	cancel()
	svc.Wait()

	assert.Len(t, svc.Snapshot().Units, 1)
	assert.Equal(t, StatusIdle, svc.State().Status)
}

func TestService_SnapshotIsPublishedAtomically(t *testing.T) {
	fetcher := &stubFetcher{
		reservations: []*domain.ReservedCapacity{reservedCapacity("ri-1", "m5.large", "eu-west-1a", 1)},
		units:        []*domain.RunningUnit{runningUnit("i-1", "m5.large", "eu-west-1a")},
	}
	svc := NewService(fetcher, stubPricing{}, newHistory(), Options{})

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			s := svc.Snapshot()
			// Either the empty initial snapshot or a complete one.
			if len(s.Units) > 0 {
				assert.Len(t, s.Reservations, 1)
				assert.NotNil(t, s.Index)
				assert.False(t, s.UpdatedAt.IsZero())
			}
		}
	}()

	for i := 0; i < 5; i++ {
		// fresh resources per cycle
		fetcher.reservations = []*domain.ReservedCapacity{reservedCapacity("ri-1", "m5.large", "eu-west-1a", 1)}
		fetcher.units = []*domain.RunningUnit{runningUnit("i-1", "m5.large", "eu-west-1a")}
		require.NoError(t, svc.RunCycle(context.Background()))
	}
	close(stop)
	wg.Wait()
}

func TestService_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	fetcher := &stubFetcher{units: []*domain.RunningUnit{runningUnit("i-1", "t2.small", "eu-west-1a")}}
	svc := NewService(fetcher, stubPricing{onDemand: 0.25}, newHistory(), Options{Metrics: metrics})

	require.NoError(t, svc.RunCycle(context.Background()))
	fetcher.unitsErr = errors.New("nope")
	require.Error(t, svc.RunCycle(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cycles.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cycles.WithLabelValues("failure")))
	assert.Equal(t, 0.25, testutil.ToFloat64(metrics.hourlyCost))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.resources.WithLabelValues("running")))
}

func TestService_History(t *testing.T) {
	history := new(MockHistoryStore)
	rows := []domain.Summary{{InstanceCount: 3}}
	history.On("History", mock.Anything).Return(rows, nil)
	svc := NewService(&stubFetcher{}, stubPricing{}, history, Options{})

	got, err := svc.History(context.Background())

	require.NoError(t, err)
	assert.Equal(t, rows, got)
	history.AssertExpectations(t)
}
