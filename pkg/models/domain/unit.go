package domain

import (
	"strings"
	"time"
)

const (
	PlatformWindows = "Windows"
	PlatformLinux   = "Linux/UNIX"

	StateRunning = "running"

	// StackNameTag marks instances launched by CloudFormation.
	StackNameTag = "aws:cloudformation:stack-name"
)

// RunningUnit is a compute instance. The name is kept from the instance
// lifecycle vocabulary; stopped instances are inventoried too.
type RunningUnit struct {
	ResourceBase

	Name             string
	State            string
	InstanceType     string
	Family           string
	Size             string
	Weight           float64
	Platform         string
	AvailabilityZone string
	VpcID            string
	SubnetID         string
	SpotRequestID    string
	PublicDNS        string
	PublicIP         string
	PrivateIP        string
	KeyName          string
	LaunchTime       time.Time
	Tags             map[string]string

	Matched     bool
	Reservation *ReservedCapacity
	Subnet      *Subnet
	Spot        *SpotRequest
}

// NewRunningUnit fills the fields derived from the instance type.
func NewRunningUnit(id string, location Location, instanceType string) *RunningUnit {
	family, size := SplitInstanceType(instanceType)
	return &RunningUnit{
		ResourceBase: ResourceBase{ID: id, Location: location},
		InstanceType: instanceType,
		Family:       family,
		Size:         size,
		Weight:       ComputeUnits(size),
		Platform:     PlatformLinux,
		Tags:         map[string]string{},
	}
}

func (u *RunningUnit) IsRunning() bool {
	return u.State == StateRunning
}

func (u *RunningUnit) InVPC() bool {
	return u.VpcID != ""
}

func (u *RunningUnit) IsWindows() bool {
	return strings.EqualFold(u.Platform, PlatformWindows)
}

// Region is derived from the availability zone, falling back to the fetch location.
func (u *RunningUnit) Region() string {
	if u.AvailabilityZone == "" {
		return u.Location.Region
	}
	return RegionOf(u.AvailabilityZone)
}
