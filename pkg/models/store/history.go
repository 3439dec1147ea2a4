package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryHistory is one row of inventory_history.
type InventoryHistory struct {
	CycleID           string
	UpdateTime        time.Time
	LoadBalancerCount int
	ReservedUnits     decimal.Decimal
	ReservedUsedUnits decimal.Decimal
	InstanceCount     int
	RunningCount      int
	VPCCount          int
	DatabaseCount     int
	DomainRecordCount int
	VolumeCount       int
	TotalCost         decimal.Decimal
}
