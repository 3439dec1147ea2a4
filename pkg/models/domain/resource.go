package domain

import "fmt"

// Location identifies where a resource lives: a credentials profile and a region.
type Location struct {
	Account string
	Region  string
}

func (l Location) String() string {
	return fmt.Sprintf("%s/%s", l.Account, l.Region)
}

// ResourceBase holds the fields shared by every inventoried resource kind.
type ResourceBase struct {
	ID       string
	Location Location
	// Price is an hourly rate; only running units are priced.
	Price float64
	// Stack is the name of the owning infrastructure stack, if any.
	Stack string
}

func (b *ResourceBase) Base() *ResourceBase {
	return b
}

type Resource interface {
	Base() *ResourceBase
}

// Index maps resource ids to resources for a single cycle.
type Index map[string]Resource

// Put stores the resource under its id and returns the resource it replaced, if any.
func (idx Index) Put(r Resource) Resource {
	id := r.Base().ID
	prev := idx[id]
	idx[id] = r
	return prev
}

func (idx Index) RunningUnit(id string) (*RunningUnit, bool) {
	unit, ok := idx[id].(*RunningUnit)
	return unit, ok
}

func (idx Index) Subnet(id string) (*Subnet, bool) {
	subnet, ok := idx[id].(*Subnet)
	return subnet, ok
}

func (idx Index) SpotRequest(id string) (*SpotRequest, bool) {
	req, ok := idx[id].(*SpotRequest)
	return req, ok
}
