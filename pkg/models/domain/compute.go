package domain

import "strings"

var computeUnits = map[string]float64{
	"micro":   0.5,
	"small":   1,
	"medium":  2,
	"large":   4,
	"xlarge":  8,
	"2xlarge": 16,
}

// ComputeUnits returns the normalized capacity weight of an instance size.
// Unknown sizes weigh nothing.
func ComputeUnits(size string) float64 {
	return computeUnits[size]
}

// SplitInstanceType splits "m5.large" into its family and size.
func SplitInstanceType(instanceType string) (family, size string) {
	family, size, found := strings.Cut(instanceType, ".")
	if !found {
		return instanceType, ""
	}
	return family, size
}

// RegionOf derives a region from an availability zone by dropping the zone letter.
func RegionOf(availabilityZone string) string {
	if len(availabilityZone) < 2 {
		return availabilityZone
	}
	return availabilityZone[:len(availabilityZone)-1]
}
