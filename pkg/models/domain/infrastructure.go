package domain

import "time"

type LoadBalancer struct {
	ResourceBase

	Name        string
	DNSName     string
	HTTPPort    int
	HTTPSPort   int
	InstanceIDs []string
	Instances   []*RunningUnit
}

// InstancePort is the HTTP instance port, or the HTTPS one when no HTTP listener exists.
func (lb *LoadBalancer) InstancePort() int {
	if lb.HTTPPort != 0 {
		return lb.HTTPPort
	}
	return lb.HTTPSPort
}

type Database struct {
	ResourceBase

	Class         string
	Engine        string
	EngineVersion string
	MultiAZ       bool
	StorageGB     int
	Endpoint      string
	Status        string
}

type Volume struct {
	ResourceBase

	Name                string
	SizeGB              int
	IOPS                int
	Encrypted           bool
	State               string
	VolumeType          string
	AvailabilityZone    string
	AttachedInstanceIDs []string
	AttachedInstances   []*RunningUnit
}

type Cache struct {
	ResourceBase

	Endpoint      string
	NodeType      string
	Engine        string
	EngineVersion string
	Status        string
	NodeCount     int
}

type Subnet struct {
	ResourceBase

	Name             string
	VpcID            string
	CIDR             string
	AvailabilityZone string
	DefaultForAZ     bool
}

type DomainRecord struct {
	ResourceBase

	Zone   string
	Type   string
	TTL    int64
	Target string
}

type SpotRequest struct {
	ResourceBase

	InstanceID   string
	InstanceType string
	State        string
}

type InfrastructureStack struct {
	ResourceBase

	Name        string
	Status      string
	CreatedAt   time.Time
	ResourceIDs []string
}
