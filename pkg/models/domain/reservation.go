package domain

import "time"

const (
	ScopeAvailabilityZone = "Availability Zone"
	ScopeRegion           = "Region"

	ReservationActive = "active"
)

// ReservedCapacity is a pre-purchased capacity commitment. RemainingUnits is
// consumed by matching and never drops below zero.
type ReservedCapacity struct {
	ResourceBase

	Scope              string
	AvailabilityZone   string
	InstanceType       string
	Family             string
	Size               string
	ProductDescription string
	State              string
	Count              int
	UnitWeight         float64
	TotalUnits         float64
	RemainingUnits     float64
	End                time.Time
}

func NewReservedCapacity(id string, location Location, instanceType string, count int) *ReservedCapacity {
	family, size := SplitInstanceType(instanceType)
	weight := ComputeUnits(size)
	total := float64(count) * weight
	return &ReservedCapacity{
		ResourceBase:   ResourceBase{ID: id, Location: location},
		Scope:          ScopeAvailabilityZone,
		InstanceType:   instanceType,
		Family:         family,
		Size:           size,
		State:          ReservationActive,
		Count:          count,
		UnitWeight:     weight,
		TotalUnits:     total,
		RemainingUnits: total,
	}
}

func (r *ReservedCapacity) Active() bool {
	return r.State == ReservationActive
}

func (r *ReservedCapacity) RegionScoped() bool {
	return r.Scope == ScopeRegion
}

func (r *ReservedCapacity) UsedUnits() float64 {
	return r.TotalUnits - r.RemainingUnits
}

// UnmatchedCount expresses the remaining units as whole-instance equivalents of
// the reserved size.
func (r *ReservedCapacity) UnmatchedCount() float64 {
	if r.UnitWeight == 0 {
		return 0
	}
	return r.RemainingUnits / r.UnitWeight
}

func (r *ReservedCapacity) MatchedCount() float64 {
	if r.UnitWeight == 0 {
		return 0
	}
	return r.UsedUnits() / r.UnitWeight
}

// Reset restores the remaining units so matching can be replayed.
func (r *ReservedCapacity) Reset() {
	r.RemainingUnits = r.TotalUnits
}
