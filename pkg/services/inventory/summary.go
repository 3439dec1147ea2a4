package inventory

import (
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Summarize builds the history row of a snapshot.
func Summarize(snapshot *domain.Snapshot) domain.Summary {
	view := NewView(snapshot, CycleState{})

	active := lo.Filter(snapshot.Reservations, func(r *domain.ReservedCapacity, _ int) bool {
		return r.Active()
	})
	total := lo.SumBy(active, func(r *domain.ReservedCapacity) float64 { return r.TotalUnits })
	used := lo.SumBy(active, func(r *domain.ReservedCapacity) float64 { return r.UsedUnits() })

	return domain.Summary{
		CycleID:           snapshot.CycleID,
		Timestamp:         snapshot.UpdatedAt,
		LoadBalancerCount: len(snapshot.LoadBalancers),
		ReservedUnits:     decimal.NewFromFloat(total),
		ReservedUsedUnits: decimal.NewFromFloat(used),
		InstanceCount:     view.InstanceCount(),
		RunningCount:      view.RunningCount(),
		InVPCCount:        view.InVPCCount(),
		DatabaseCount:     len(snapshot.Databases),
		DomainRecordCount: len(snapshot.DomainRecords),
		VolumeCount:       len(snapshot.Volumes),
		TotalCostPerHour:  decimal.NewFromFloat(view.TotalCostPerHour()).Round(4),
	}
}
