package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the immutable result of one successful refresh cycle.
type Snapshot struct {
	CycleID   string
	UpdatedAt time.Time

	Reservations  []*ReservedCapacity
	Units         []*RunningUnit
	LoadBalancers []*LoadBalancer
	Databases     []*Database
	Volumes       []*Volume
	Caches        []*Cache
	Subnets       []*Subnet
	DomainRecords []*DomainRecord
	SpotRequests  []*SpotRequest
	Stacks        []*InfrastructureStack
	Advisories    []AdvisorResult
	Spend         []AccountSpend

	Index Index
}

// Resources lists every indexed kind in a fixed order; on id collisions
// later kinds win.
func (s *Snapshot) Resources() []Resource {
	var all []Resource
	for _, r := range s.Reservations {
		all = append(all, r)
	}
	for _, u := range s.Units {
		all = append(all, u)
	}
	for _, lb := range s.LoadBalancers {
		all = append(all, lb)
	}
	for _, db := range s.Databases {
		all = append(all, db)
	}
	for _, v := range s.Volumes {
		all = append(all, v)
	}
	for _, c := range s.Caches {
		all = append(all, c)
	}
	for _, sn := range s.Subnets {
		all = append(all, sn)
	}
	for _, d := range s.DomainRecords {
		all = append(all, d)
	}
	for _, sr := range s.SpotRequests {
		all = append(all, sr)
	}
	for _, st := range s.Stacks {
		all = append(all, st)
	}
	return all
}

// Summary is the per-cycle history row.
type Summary struct {
	CycleID           string
	Timestamp         time.Time
	LoadBalancerCount int
	ReservedUnits     decimal.Decimal
	ReservedUsedUnits decimal.Decimal
	InstanceCount     int
	RunningCount      int
	InVPCCount        int
	DatabaseCount     int
	DomainRecordCount int
	VolumeCount       int
	TotalCostPerHour  decimal.Decimal
}
