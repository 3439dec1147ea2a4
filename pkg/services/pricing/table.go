package pricing

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	osLinux   = "linux"
	osWindows = "mswin"

	// ReservedTerm is the reserved rate applied to matched units.
	ReservedTerm = "yrTerm1Standard.noUpfront"
)

// Resolver prices running units. Missing data yields a price of zero.
type Resolver interface {
	PriceFor(unit *domain.RunningUnit) float64
}

// rate accepts both quoted and bare numbers; ec2instances.info has shipped both.
type rate float64

func (r *rate) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" || string(data) == "N/A" {
		*r = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		// Unparseable rates are treated as missing.
		*r = 0
		return nil
	}
	*r = rate(v)
	return nil
}

type osPricing struct {
	OnDemand rate            `json:"ondemand"`
	Reserved map[string]rate `json:"reserved"`
}

type instanceEntry struct {
	InstanceType string                          `json:"instance_type"`
	Pricing      map[string]map[string]osPricing `json:"pricing"`
}

type priceKey struct {
	instanceType string
	region       string
	os           string
}

// Table is an in-memory index over the ec2instances.info instances.json document.
type Table struct {
	logger zerolog.Logger
	prices map[priceKey]osPricing
}

func NewTable(logger zerolog.Logger, r io.Reader) (*Table, error) {
	var entries []instanceEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode pricing data: %w", err)
	}

	t := &Table{
		logger: logger,
		prices: make(map[priceKey]osPricing),
	}
	for _, e := range entries {
		for region, byOS := range e.Pricing {
			for os, p := range byOS {
				t.prices[priceKey{instanceType: e.InstanceType, region: region, os: os}] = p
			}
		}
	}
	return t, nil
}

func (t *Table) Len() int {
	return len(t.prices)
}

// Lookup returns the hourly rate and whether it was found.
func (t *Table) Lookup(instanceType, region, os string, reserved bool) (float64, bool) {
	p, ok := t.prices[priceKey{instanceType: instanceType, region: region, os: os}]
	if !ok {
		return 0, false
	}
	if !reserved {
		return float64(p.OnDemand), p.OnDemand != 0
	}
	r, ok := p.Reserved[ReservedTerm]
	return float64(r), ok && r != 0
}

func (t *Table) PriceFor(unit *domain.RunningUnit) float64 {
	os := osLinux
	if unit.IsWindows() {
		os = osWindows
	}

	price, ok := t.Lookup(unit.InstanceType, unit.Region(), os, unit.Matched)
	if !ok {
		t.logger.Debug().
			Str("instance_type", unit.InstanceType).
			Str("region", unit.Region()).
			Str("os", os).
			Bool("reserved", unit.Matched).
			Msg("no price found")
	}
	return price
}

// Flat prices every unit the same; used when no pricing source is configured.
type Flat float64

func (f Flat) PriceFor(*domain.RunningUnit) float64 {
	return float64(f)
}
