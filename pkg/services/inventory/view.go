package inventory

import (
	"fmt"
	"time"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/samber/lo"
)

const refreshingNow = "(Refreshing now)"

// View is a consistent read of one published snapshot and the cycle state at
// the moment it was taken.
type View struct {
	snapshot *domain.Snapshot
	state    CycleState
}

func NewView(snapshot *domain.Snapshot, state CycleState) View {
	if snapshot == nil {
		snapshot = &domain.Snapshot{Index: domain.Index{}}
	}
	return View{snapshot: snapshot, state: state}
}

func (v View) Snapshot() *domain.Snapshot {
	return v.snapshot
}

func (v View) State() CycleState {
	return v.state
}

func (v View) Refreshing() bool {
	return v.state.Status == StatusUpdating
}

func (v View) RefreshAvailable() bool {
	return !v.Refreshing()
}

func (v View) LastRefresh() string {
	if v.Refreshing() {
		return refreshingNow
	}
	if v.snapshot.UpdatedAt.IsZero() {
		return "never"
	}
	return v.snapshot.UpdatedAt.Format(time.RFC3339)
}

func (v View) InError() bool {
	return v.state.Failed
}

func (v View) ErrorMessage() string {
	return v.state.Error
}

func (v View) Units() []*domain.RunningUnit {
	return v.snapshot.Units
}

func (v View) Reservations() []*domain.ReservedCapacity {
	return v.snapshot.Reservations
}

func (v View) MatchedReservations() []*domain.ReservedCapacity {
	return lo.Filter(v.snapshot.Reservations, func(r *domain.ReservedCapacity, _ int) bool {
		return r.RemainingUnits == 0
	})
}

func (v View) UnmatchedReservations() []*domain.ReservedCapacity {
	return lo.Filter(v.snapshot.Reservations, func(r *domain.ReservedCapacity, _ int) bool {
		return r.RemainingUnits > 0
	})
}

func (v View) InstanceCount() int {
	return len(v.snapshot.Units)
}

func (v View) RunningCount() int {
	return lo.CountBy(v.snapshot.Units, func(u *domain.RunningUnit) bool { return u.IsRunning() })
}

func (v View) InVPCCount() int {
	return lo.CountBy(v.snapshot.Units, func(u *domain.RunningUnit) bool { return u.InVPC() })
}

// ReservedCount is the number of reserved instances covering running units,
// in whole-instance equivalents of each reservation's size.
func (v View) ReservedCount() float64 {
	return lo.SumBy(v.snapshot.Reservations, func(r *domain.ReservedCapacity) float64 {
		return r.MatchedCount()
	})
}

func (v View) UnmatchedCount() float64 {
	return lo.SumBy(v.UnmatchedReservations(), func(r *domain.ReservedCapacity) float64 {
		return r.UnmatchedCount()
	})
}

// percentage is relative to every instance plus every unused reservation;
// an empty inventory yields zero.
func (v View) percentage(n float64) int {
	denominator := float64(v.InstanceCount()) + v.UnmatchedCount()
	if denominator == 0 {
		return 0
	}
	return int(n * 100 / denominator)
}

func (v View) InstancePct() int  { return v.percentage(float64(v.InstanceCount())) }
func (v View) RunningPct() int   { return v.percentage(float64(v.RunningCount())) }
func (v View) InVPCPct() int     { return v.percentage(float64(v.InVPCCount())) }
func (v View) ReservedPct() int  { return v.percentage(v.ReservedCount()) }
func (v View) UnmatchedPct() int { return v.percentage(v.UnmatchedCount()) }

// TotalCostPerHour sums the prices of running units only.
func (v View) TotalCostPerHour() float64 {
	return lo.SumBy(v.snapshot.Units, func(u *domain.RunningUnit) float64 {
		if !u.IsRunning() {
			return 0
		}
		return u.Price
	})
}

func (v View) FormattedCost() string {
	return fmt.Sprintf("%.2f", v.TotalCostPerHour())
}

func (v View) LoadBalancer(name string) (*domain.LoadBalancer, bool) {
	return lo.Find(v.snapshot.LoadBalancers, func(lb *domain.LoadBalancer) bool {
		return lb.Name == name
	})
}

// InstancesForLoadBalancer lists "host:port" targets of a load balancer.
func (v View) InstancesForLoadBalancer(name string) ([]string, bool) {
	lb, ok := v.LoadBalancer(name)
	if !ok {
		return nil, false
	}
	port := lb.InstancePort()
	return lo.Map(lb.Instances, func(u *domain.RunningUnit, _ int) string {
		return fmt.Sprintf("%s:%d", u.PublicDNS, port)
	}), true
}
