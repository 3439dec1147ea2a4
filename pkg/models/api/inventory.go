package api

import "time"

type Status struct {
	Status           string     `json:"status"`
	CycleID          string     `json:"cycle_id,omitempty"`
	LastRefresh      string     `json:"last_refresh"`
	LastAttempt      *time.Time `json:"last_attempt,omitempty"`
	RefreshAvailable bool       `json:"refresh_available"`
	InError          bool       `json:"in_error"`
	Error            string     `json:"error,omitempty"`
}

type RefreshResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

type Summary struct {
	LastRefresh       string  `json:"last_refresh"`
	InstanceCount     int     `json:"instance_count"`
	RunningCount      int     `json:"running_count"`
	InVPCCount        int     `json:"vpc_count"`
	ReservedCount     float64 `json:"reserved_count"`
	UnmatchedCount    float64 `json:"unmatched_count"`
	InstancePct       int     `json:"instance_pct"`
	RunningPct        int     `json:"running_pct"`
	InVPCPct          int     `json:"vpc_pct"`
	ReservedPct       int     `json:"reserved_pct"`
	UnmatchedPct      int     `json:"unmatched_pct"`
	LoadBalancerCount int     `json:"load_balancer_count"`
	DatabaseCount     int     `json:"database_count"`
	VolumeCount       int     `json:"volume_count"`
	CacheCount        int     `json:"cache_count"`
	DomainRecordCount int     `json:"domain_record_count"`
	TotalCostPerHour  string  `json:"total_cost_per_hour"`
}

type Instance struct {
	ID            string     `json:"id"`
	Account       string     `json:"account"`
	Region        string     `json:"region"`
	Name          string     `json:"name"`
	State         string     `json:"state"`
	InstanceType  string     `json:"instance_type"`
	Platform      string     `json:"platform"`
	Zone          string     `json:"availability_zone"`
	VpcID         string     `json:"vpc_id,omitempty"`
	SubnetID      string     `json:"subnet_id,omitempty"`
	SubnetName    string     `json:"subnet_name,omitempty"`
	PublicDNS     string     `json:"public_dns,omitempty"`
	PublicIP      string     `json:"public_ip,omitempty"`
	PrivateIP     string     `json:"private_ip,omitempty"`
	KeyName       string     `json:"key_name,omitempty"`
	LaunchTime    *time.Time `json:"launch_time,omitempty"`
	Matched       bool       `json:"matched"`
	ReservationID string     `json:"reservation_id,omitempty"`
	SpotRequestID string     `json:"spot_request_id,omitempty"`
	Price         float64    `json:"price"`
	Stack         string     `json:"stack,omitempty"`
}

type Reservation struct {
	ID             string     `json:"id"`
	Account        string     `json:"account"`
	Region         string     `json:"region"`
	Scope          string     `json:"scope"`
	Zone           string     `json:"availability_zone,omitempty"`
	InstanceType   string     `json:"instance_type"`
	Product        string     `json:"product"`
	State          string     `json:"state"`
	Count          int        `json:"count"`
	TotalUnits     float64    `json:"total_units"`
	RemainingUnits float64    `json:"remaining_units"`
	MatchedCount   float64    `json:"matched_count"`
	UnmatchedCount float64    `json:"unmatched_count"`
	End            *time.Time `json:"end,omitempty"`
}

type LoadBalancer struct {
	Name      string   `json:"name"`
	Account   string   `json:"account"`
	Region    string   `json:"region"`
	DNSName   string   `json:"dns_name"`
	HTTPPort  int      `json:"http_port,omitempty"`
	HTTPSPort int      `json:"https_port,omitempty"`
	Instances []string `json:"instances"`
	Stack     string   `json:"stack,omitempty"`
}

type Database struct {
	ID            string `json:"id"`
	Account       string `json:"account"`
	Region        string `json:"region"`
	Class         string `json:"class"`
	Engine        string `json:"engine"`
	EngineVersion string `json:"engine_version"`
	MultiAZ       bool   `json:"multi_az"`
	StorageGB     int    `json:"storage_gb"`
	Endpoint      string `json:"endpoint,omitempty"`
	Status        string `json:"status"`
	Stack         string `json:"stack,omitempty"`
}

type Volume struct {
	ID        string   `json:"id"`
	Account   string   `json:"account"`
	Region    string   `json:"region"`
	Name      string   `json:"name,omitempty"`
	SizeGB    int      `json:"size_gb"`
	IOPS      int      `json:"iops,omitempty"`
	Encrypted bool     `json:"encrypted"`
	State     string   `json:"state"`
	Type      string   `json:"type"`
	Zone      string   `json:"availability_zone"`
	Attached  []string `json:"attached_instances"`
	Stack     string   `json:"stack,omitempty"`
}

type Cache struct {
	ID            string `json:"id"`
	Account       string `json:"account"`
	Region        string `json:"region"`
	Endpoint      string `json:"endpoint,omitempty"`
	NodeType      string `json:"node_type"`
	Engine        string `json:"engine"`
	EngineVersion string `json:"engine_version"`
	Status        string `json:"status"`
	NodeCount     int    `json:"node_count"`
	Stack         string `json:"stack,omitempty"`
}

type Subnet struct {
	ID           string `json:"id"`
	Account      string `json:"account"`
	Region       string `json:"region"`
	Name         string `json:"name,omitempty"`
	VpcID        string `json:"vpc_id"`
	CIDR         string `json:"cidr"`
	Zone         string `json:"availability_zone"`
	DefaultForAZ bool   `json:"default_for_az"`
}

type DomainRecord struct {
	Name    string `json:"name"`
	Account string `json:"account"`
	Zone    string `json:"zone"`
	Type    string `json:"type"`
	TTL     int64  `json:"ttl"`
	Target  string `json:"target"`
}

type SpotRequest struct {
	ID           string  `json:"id"`
	Account      string  `json:"account"`
	Region       string  `json:"region"`
	InstanceID   string  `json:"instance_id,omitempty"`
	InstanceType string  `json:"instance_type"`
	State        string  `json:"state"`
	Price        float64 `json:"price"`
}

type Stack struct {
	Name      string    `json:"name"`
	Account   string    `json:"account"`
	Region    string    `json:"region"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	Resources int       `json:"resources"`
}

type Advisory struct {
	Account      string `json:"account"`
	CheckName    string `json:"check_name"`
	Category     string `json:"category"`
	Region       string `json:"region"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Description  string `json:"description"`
	Saving       string `json:"saving"`
	Status       string `json:"status"`
}

type Spend struct {
	Account  string    `json:"account"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Amount   string    `json:"amount"`
	Currency string    `json:"currency"`
}
