package adapters

import (
	"time"

	"github.com/de-tools/fleet-atlas/pkg/models/api"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/samber/lo"
)

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func unitIDs(units []*domain.RunningUnit) []string {
	return lo.Map(units, func(u *domain.RunningUnit, _ int) string { return u.ID })
}

func MapRunningUnitDomainToApi(u *domain.RunningUnit) api.Instance {
	res := api.Instance{
		ID:            u.ID,
		Account:       u.Location.Account,
		Region:        u.Region(),
		Name:          u.Name,
		State:         u.State,
		InstanceType:  u.InstanceType,
		Platform:      u.Platform,
		Zone:          u.AvailabilityZone,
		VpcID:         u.VpcID,
		SubnetID:      u.SubnetID,
		PublicDNS:     u.PublicDNS,
		PublicIP:      u.PublicIP,
		PrivateIP:     u.PrivateIP,
		KeyName:       u.KeyName,
		LaunchTime:    optionalTime(u.LaunchTime),
		Matched:       u.Matched,
		SpotRequestID: u.SpotRequestID,
		Price:         u.Price,
		Stack:         u.Stack,
	}
	if u.Subnet != nil {
		res.SubnetName = u.Subnet.Name
	}
	if u.Reservation != nil {
		res.ReservationID = u.Reservation.ID
	}
	if u.Spot != nil {
		res.SpotRequestID = u.Spot.ID
	}
	return res
}

func MapReservationDomainToApi(r *domain.ReservedCapacity) api.Reservation {
	return api.Reservation{
		ID:             r.ID,
		Account:        r.Location.Account,
		Region:         r.Location.Region,
		Scope:          r.Scope,
		Zone:           r.AvailabilityZone,
		InstanceType:   r.InstanceType,
		Product:        r.ProductDescription,
		State:          r.State,
		Count:          r.Count,
		TotalUnits:     r.TotalUnits,
		RemainingUnits: r.RemainingUnits,
		MatchedCount:   r.MatchedCount(),
		UnmatchedCount: r.UnmatchedCount(),
		End:            optionalTime(r.End),
	}
}

func MapLoadBalancerDomainToApi(lb *domain.LoadBalancer) api.LoadBalancer {
	return api.LoadBalancer{
		Name:      lb.Name,
		Account:   lb.Location.Account,
		Region:    lb.Location.Region,
		DNSName:   lb.DNSName,
		HTTPPort:  lb.HTTPPort,
		HTTPSPort: lb.HTTPSPort,
		Instances: unitIDs(lb.Instances),
		Stack:     lb.Stack,
	}
}

func MapDatabaseDomainToApi(db *domain.Database) api.Database {
	return api.Database{
		ID:            db.ID,
		Account:       db.Location.Account,
		Region:        db.Location.Region,
		Class:         db.Class,
		Engine:        db.Engine,
		EngineVersion: db.EngineVersion,
		MultiAZ:       db.MultiAZ,
		StorageGB:     db.StorageGB,
		Endpoint:      db.Endpoint,
		Status:        db.Status,
		Stack:         db.Stack,
	}
}

func MapVolumeDomainToApi(v *domain.Volume) api.Volume {
	return api.Volume{
		ID:        v.ID,
		Account:   v.Location.Account,
		Region:    v.Location.Region,
		Name:      v.Name,
		SizeGB:    v.SizeGB,
		IOPS:      v.IOPS,
		Encrypted: v.Encrypted,
		State:     v.State,
		Type:      v.VolumeType,
		Zone:      v.AvailabilityZone,
		Attached:  unitIDs(v.AttachedInstances),
		Stack:     v.Stack,
	}
}

func MapCacheDomainToApi(c *domain.Cache) api.Cache {
	return api.Cache{
		ID:            c.ID,
		Account:       c.Location.Account,
		Region:        c.Location.Region,
		Endpoint:      c.Endpoint,
		NodeType:      c.NodeType,
		Engine:        c.Engine,
		EngineVersion: c.EngineVersion,
		Status:        c.Status,
		NodeCount:     c.NodeCount,
		Stack:         c.Stack,
	}
}

func MapSubnetDomainToApi(s *domain.Subnet) api.Subnet {
	return api.Subnet{
		ID:           s.ID,
		Account:      s.Location.Account,
		Region:       s.Location.Region,
		Name:         s.Name,
		VpcID:        s.VpcID,
		CIDR:         s.CIDR,
		Zone:         s.AvailabilityZone,
		DefaultForAZ: s.DefaultForAZ,
	}
}

func MapDomainRecordDomainToApi(d *domain.DomainRecord) api.DomainRecord {
	return api.DomainRecord{
		Name:    d.ID,
		Account: d.Location.Account,
		Zone:    d.Zone,
		Type:    d.Type,
		TTL:     d.TTL,
		Target:  d.Target,
	}
}

func MapSpotRequestDomainToApi(s *domain.SpotRequest) api.SpotRequest {
	return api.SpotRequest{
		ID:           s.ID,
		Account:      s.Location.Account,
		Region:       s.Location.Region,
		InstanceID:   s.InstanceID,
		InstanceType: s.InstanceType,
		State:        s.State,
		Price:        s.Price,
	}
}

func MapStackDomainToApi(s *domain.InfrastructureStack) api.Stack {
	return api.Stack{
		Name:      s.Name,
		Account:   s.Location.Account,
		Region:    s.Location.Region,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		Resources: len(s.ResourceIDs),
	}
}

func MapAdvisorResultDomainToApi(a domain.AdvisorResult) api.Advisory {
	return api.Advisory{
		Account:      a.Account,
		CheckName:    a.CheckName,
		Category:     a.Category,
		Region:       a.Region,
		ResourceType: a.ResourceType,
		ResourceID:   a.ResourceID,
		Description:  a.Description,
		Saving:       a.Saving,
		Status:       a.Status,
	}
}

func MapAccountSpendDomainToApi(s domain.AccountSpend) api.Spend {
	return api.Spend{
		Account:  s.Account,
		Start:    s.Start,
		End:      s.End,
		Amount:   s.Amount.StringFixed(2),
		Currency: s.Currency,
	}
}

// MapSlice converts every element with fn, yielding an empty, never nil, slice.
func MapSlice[T any, R any](items []T, fn func(T) R) []R {
	res := make([]R, 0, len(items))
	for _, item := range items {
		res = append(res, fn(item))
	}
	return res
}
