package reservation

import (
	"fmt"
	"testing"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reservationSpec struct {
	count       int
	az          string
	region      string
	itype       string
	product     string
	state       string
	regionScope bool
}

type unitSpec struct {
	count    int
	id       string
	az       string
	itype    string
	state    string
	platform string
}

func reservations(specs ...reservationSpec) []*domain.ReservedCapacity {
	var out []*domain.ReservedCapacity
	for i, s := range specs {
		if s.count == 0 {
			s.count = 1
		}
		region := s.region
		if region == "" {
			region = domain.RegionOf(s.az)
		}
		r := domain.NewReservedCapacity(fmt.Sprintf("ri-%d", i), domain.Location{Account: "acc", Region: region}, s.itype, s.count)
		r.AvailabilityZone = s.az
		r.ProductDescription = lo.Ternary(s.product == "", domain.PlatformLinux, s.product)
		if s.state != "" {
			r.State = s.state
		}
		if s.regionScope {
			r.Scope = domain.ScopeRegion
		}
		out = append(out, r)
	}
	return out
}

func units(specs ...unitSpec) []*domain.RunningUnit {
	var out []*domain.RunningUnit
	for _, s := range specs {
		if s.count == 0 {
			s.count = 1
		}
		for i := 0; i < s.count; i++ {
			id := s.id
			if id == "" {
				id = fmt.Sprintf("i-%s-%d-%d", s.az, len(out), i)
			}
			u := domain.NewRunningUnit(id, domain.Location{Account: "acc", Region: domain.RegionOf(s.az)}, s.itype)
			u.AvailabilityZone = s.az
			u.State = lo.Ternary(s.state == "", domain.StateRunning, s.state)
			if s.platform == "windows" {
				u.Platform = domain.PlatformWindows
			}
			out = append(out, u)
		}
	}
	return out
}

func matched(us []*domain.RunningUnit) []*domain.RunningUnit {
	return lo.Filter(us, func(u *domain.RunningUnit, _ int) bool { return u.Matched })
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name         string
		reservations []*domain.ReservedCapacity
		units        []*domain.RunningUnit
		expected     int
	}{
		{
			name:         "same type and zone",
			reservations: reservations(reservationSpec{count: 3, az: "us-west-1a", itype: "m3.large"}),
			units:        units(unitSpec{count: 3, az: "us-west-1a", itype: "m3.large"}),
			expected:     3,
		},
		{
			name:         "different zone",
			reservations: reservations(reservationSpec{az: "us-west-1a", itype: "m3.large"}),
			units:        units(unitSpec{az: "us-east-1a", itype: "m3.large"}),
			expected:     0,
		},
		{
			name: "region scope matches any zone of the region",
			reservations: reservations(reservationSpec{
				count: 3, region: "us-west-1", itype: "m3.large", regionScope: true,
			}),
			units: units(
				unitSpec{az: "us-west-1a", itype: "m3.large"},
				unitSpec{az: "us-west-1b", itype: "m3.large"},
				unitSpec{az: "us-east-1b", itype: "m3.large"},
			),
			expected: 2,
		},
		{
			name:         "zone reservation covers its zone only",
			reservations: reservations(reservationSpec{count: 2, az: "us-west-1a", itype: "m3.large"}),
			units: units(
				unitSpec{id: "A", az: "us-west-1a", itype: "m3.large"},
				unitSpec{id: "B", az: "us-west-1a", itype: "m3.large"},
				unitSpec{id: "C", az: "us-west-1b", itype: "m3.large"},
			),
			expected: 2,
		},
		{
			name:         "different type",
			reservations: reservations(reservationSpec{az: "us-west-1a", itype: "m3.small"}),
			units:        units(unitSpec{az: "us-west-1a", itype: "m3.large"}),
			expected:     0,
		},
		{
			name:         "no more than reserved",
			reservations: reservations(reservationSpec{count: 2, az: "us-west-1a", itype: "m3.large"}),
			units:        units(unitSpec{count: 10, az: "us-west-1a", itype: "m3.large"}),
			expected:     2,
		},
		{
			name: "only active reservations",
			reservations: reservations(
				reservationSpec{count: 2, az: "us-west-1a", itype: "m3.large", state: "retired"},
				reservationSpec{count: 1, az: "us-west-1a", itype: "m3.large"},
			),
			units:    units(unitSpec{count: 2, az: "us-west-1a", itype: "m3.large"}),
			expected: 1,
		},
		{
			name:         "only running units",
			reservations: reservations(reservationSpec{count: 2, az: "us-west-1a", itype: "m3.large"}),
			units: units(
				unitSpec{count: 2, az: "us-west-1a", itype: "m3.large", state: "stopped"},
				unitSpec{count: 1, az: "us-west-1a", itype: "m3.large"},
			),
			expected: 1,
		},
		{
			name: "one reservation per unit",
			reservations: reservations(
				reservationSpec{count: 1, az: "us-west-1a", itype: "m3.large"},
				reservationSpec{count: 1, az: "us-west-1a", itype: "m3.large"},
			),
			units:    units(unitSpec{count: 2, az: "us-west-1a", itype: "m3.large"}),
			expected: 2,
		},
		{
			name: "region scope consumes compute units across the family",
			reservations: reservations(reservationSpec{
				count: 2, az: "us-west-1a", itype: "t2.medium", regionScope: true,
			}),
			units:    units(unitSpec{count: 5, az: "us-west-1a", itype: "t2.small"}),
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Match(tt.reservations, tt.units)
			assert.Len(t, matched(result), tt.expected)
		})
	}
}

func TestMatch_PlatformMustMatch(t *testing.T) {
	rs := reservations(reservationSpec{count: 2, az: "us-west-1a", itype: "m3.large", product: "linux/unix"})
	us := units(
		unitSpec{id: "theLinuxInstance", az: "us-west-1a", itype: "m3.large"},
		unitSpec{id: "theWindowsInstance", az: "us-west-1a", itype: "m3.large", platform: "windows"},
	)

	result := matched(Match(rs, us))

	require.Len(t, result, 1)
	assert.Equal(t, "theLinuxInstance", result[0].ID)
}

func TestMatch_RegionScopeDrainsRemainingUnits(t *testing.T) {
	// Given
	rs := reservations(reservationSpec{
		count: 2, region: "us-west-1", itype: "t2.medium", regionScope: true,
	})
	us := units(unitSpec{count: 5, az: "us-west-1a", itype: "t2.small"})

	// When
	result := Match(rs, us)

	// Then
	assert.Len(t, matched(result), 4)
	assert.False(t, result[4].Matched)
	assert.Equal(t, 0.0, rs[0].RemainingUnits)
}

func TestMatch_ZoneReservationLeavesOtherZoneUnmatched(t *testing.T) {
	// Given
	rs := reservations(reservationSpec{count: 2, az: "us-west-1a", itype: "m3.large"})
	us := units(
		unitSpec{id: "A", az: "us-west-1a", itype: "m3.large"},
		unitSpec{id: "B", az: "us-west-1a", itype: "m3.large"},
		unitSpec{id: "C", az: "us-west-1b", itype: "m3.large"},
	)

	// When
	Match(rs, us)

	// Then
	assert.Equal(t, []string{"A", "B"}, lo.Map(matched(us), func(u *domain.RunningUnit, _ int) string { return u.ID }))
	assert.False(t, us[2].Matched)
	assert.Nil(t, us[2].Reservation)
	assert.Equal(t, 0.0, rs[0].RemainingUnits)
}

func TestMatch_FirstFitIsOrderSensitive(t *testing.T) {
	build := func() ([]*domain.ReservedCapacity, []*domain.RunningUnit) {
		rs := reservations(reservationSpec{
			count: 1, region: "us-west-1", itype: "m5.large", regionScope: true,
		})
		us := units(
			unitSpec{id: "small", az: "us-west-1a", itype: "m5.medium"},
			unitSpec{id: "large", az: "us-west-1a", itype: "m5.large"},
		)
		return rs, us
	}

	rs, us := build()
	Match(rs, us)
	assert.True(t, us[0].Matched)
	assert.False(t, us[1].Matched)
	assert.Equal(t, 2.0, rs[0].RemainingUnits)

	rs, us = build()
	Match(rs, []*domain.RunningUnit{us[1], us[0]})
	assert.True(t, us[1].Matched)
	assert.False(t, us[0].Matched)
	assert.Equal(t, 0.0, rs[0].RemainingUnits)
}

func TestMatch_ConservesUnits(t *testing.T) {
	rs := reservations(
		reservationSpec{count: 3, region: "eu-west-1", itype: "m5.xlarge", regionScope: true},
		reservationSpec{count: 2, az: "eu-west-1a", itype: "m5.large"},
		reservationSpec{count: 4, region: "eu-west-1", itype: "t3.small", regionScope: true},
	)
	us := units(
		unitSpec{count: 3, az: "eu-west-1a", itype: "m5.large"},
		unitSpec{count: 2, az: "eu-west-1b", itype: "m5.2xlarge"},
		unitSpec{count: 6, az: "eu-west-1c", itype: "t3.micro"},
		unitSpec{count: 2, az: "eu-west-1c", itype: "t3.medium", state: "stopped"},
	)

	Match(rs, us)

	for _, r := range rs {
		var consumed float64
		for _, u := range us {
			if u.Reservation == r {
				consumed += u.Weight
			}
		}
		assert.Equal(t, r.TotalUnits-r.RemainingUnits, consumed, r.ID)
		assert.GreaterOrEqual(t, r.RemainingUnits, 0.0)
		assert.LessOrEqual(t, r.RemainingUnits, r.TotalUnits)
	}

	for _, u := range us {
		if u.Matched {
			require.NotNil(t, u.Reservation)
			assert.True(t, Compatible(u, u.Reservation))
			assert.True(t, u.IsRunning())
		} else {
			assert.Nil(t, u.Reservation)
		}
	}
}

func TestMatch_EmptyInputs(t *testing.T) {
	assert.Empty(t, Match(nil, nil))

	us := units(unitSpec{count: 2, az: "us-east-1a", itype: "c5.large"})
	assert.Empty(t, matched(Match(nil, us)))
}
