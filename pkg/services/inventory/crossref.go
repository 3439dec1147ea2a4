package inventory

import "github.com/de-tools/fleet-atlas/pkg/models/domain"

// Resolve links the snapshot's resources through its index. Unknown ids are
// dropped. Every link is recomputed, so calling Resolve twice gives the same
// result as calling it once.
func Resolve(snapshot *domain.Snapshot) {
	index := snapshot.Index

	for _, lb := range snapshot.LoadBalancers {
		lb.Instances = resolveUnits(index, lb.InstanceIDs)
	}
	for _, v := range snapshot.Volumes {
		v.AttachedInstances = resolveUnits(index, v.AttachedInstanceIDs)
	}

	for _, unit := range snapshot.Units {
		unit.Subnet = nil
		if subnet, ok := index.Subnet(unit.SubnetID); ok {
			unit.Subnet = subnet
		}
		unit.Spot = nil
		if req, ok := index.SpotRequest(unit.SpotRequestID); ok {
			unit.Spot = req
		}
	}
	for _, req := range snapshot.SpotRequests {
		if unit, ok := index.RunningUnit(req.InstanceID); ok && unit.Spot == nil {
			unit.Spot = req
		}
	}

	for _, stack := range snapshot.Stacks {
		for _, id := range stack.ResourceIDs {
			if r, ok := index[id]; ok {
				r.Base().Stack = stack.Name
			}
		}
	}
}

func resolveUnits(index domain.Index, ids []string) []*domain.RunningUnit {
	units := make([]*domain.RunningUnit, 0, len(ids))
	for _, id := range ids {
		if unit, ok := index.RunningUnit(id); ok {
			units = append(units, unit)
		}
	}
	return units
}
