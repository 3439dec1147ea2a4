package reservation

import (
	"strings"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
)

// Match assigns running units to reservations greedily. Units are visited in
// input order and each takes the first compatible reservation that still has
// enough remaining units for its weight. The outcome therefore depends on the
// order of both slices.
func Match(reservations []*domain.ReservedCapacity, units []*domain.RunningUnit) []*domain.RunningUnit {
	for _, unit := range units {
		if !unit.IsRunning() {
			continue
		}
		matchUnit(unit, reservations)
	}
	return units
}

func matchUnit(unit *domain.RunningUnit, reservations []*domain.ReservedCapacity) {
	for _, r := range reservations {
		if !r.Active() || r.RemainingUnits <= 0 {
			continue
		}
		if !Compatible(unit, r) || r.RemainingUnits < unit.Weight {
			continue
		}

		r.RemainingUnits -= unit.Weight
		unit.Matched = true
		unit.Reservation = r
		return
	}
}

// Compatible reports whether the reservation could cover the unit, ignoring
// remaining capacity.
func Compatible(unit *domain.RunningUnit, r *domain.ReservedCapacity) bool {
	return zoneMatches(unit, r) && typeMatches(unit, r) &&
		strings.EqualFold(unit.Platform, r.ProductDescription)
}

func zoneMatches(unit *domain.RunningUnit, r *domain.ReservedCapacity) bool {
	if r.AvailabilityZone != "" && unit.AvailabilityZone == r.AvailabilityZone {
		return true
	}
	return r.RegionScoped() && r.Location.Region != "" &&
		strings.HasPrefix(unit.AvailabilityZone, r.Location.Region)
}

func typeMatches(unit *domain.RunningUnit, r *domain.ReservedCapacity) bool {
	if unit.InstanceType == r.InstanceType {
		return true
	}
	return r.RegionScoped() && unit.Family == r.Family
}
