package adapters

import (
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/models/store"
)

func MapDomainSummaryToStore(s domain.Summary) store.InventoryHistory {
	return store.InventoryHistory{
		CycleID:           s.CycleID,
		UpdateTime:        s.Timestamp,
		LoadBalancerCount: s.LoadBalancerCount,
		ReservedUnits:     s.ReservedUnits,
		ReservedUsedUnits: s.ReservedUsedUnits,
		InstanceCount:     s.InstanceCount,
		RunningCount:      s.RunningCount,
		VPCCount:          s.InVPCCount,
		DatabaseCount:     s.DatabaseCount,
		DomainRecordCount: s.DomainRecordCount,
		VolumeCount:       s.VolumeCount,
		TotalCost:         s.TotalCostPerHour,
	}
}

func MapStoreHistoryToDomain(h store.InventoryHistory) domain.Summary {
	return domain.Summary{
		CycleID:           h.CycleID,
		Timestamp:         h.UpdateTime,
		LoadBalancerCount: h.LoadBalancerCount,
		ReservedUnits:     h.ReservedUnits,
		ReservedUsedUnits: h.ReservedUsedUnits,
		InstanceCount:     h.InstanceCount,
		RunningCount:      h.RunningCount,
		InVPCCount:        h.VPCCount,
		DatabaseCount:     h.DatabaseCount,
		DomainRecordCount: h.DomainRecordCount,
		VolumeCount:       h.VolumeCount,
		TotalCostPerHour:  h.TotalCost,
	}
}
