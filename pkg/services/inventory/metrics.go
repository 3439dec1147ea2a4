package inventory

import (
	"time"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports cycle outcomes and the shape of the latest snapshot. A nil
// *Metrics records nothing.
type Metrics struct {
	cycles         *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	resources      *prometheus.GaugeVec
	hourlyCost     prometheus.Gauge
	remainingUnits prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fleet_atlas",
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fleet_atlas",
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Duration of refresh cycles.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		resources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fleet_atlas",
			Name:      "resources",
			Help:      "Resources in the latest snapshot by kind.",
		}, []string{"kind"}),
		hourlyCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleet_atlas",
			Name:      "hourly_cost",
			Help:      "Hourly cost of running instances.",
		}),
		remainingUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fleet_atlas",
			Name:      "reserved_units_remaining",
			Help:      "Reserved compute units not covering any running instance.",
		}),
	}

	reg.MustRegister(m.cycles, m.cycleDuration, m.resources, m.hourlyCost, m.remainingUnits)
	return m
}

func (m *Metrics) observeCycle(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) observeSnapshot(snapshot *domain.Snapshot) {
	if m == nil {
		return
	}
	view := NewView(snapshot, CycleState{})

	m.resources.WithLabelValues("instances").Set(float64(view.InstanceCount()))
	m.resources.WithLabelValues("running").Set(float64(view.RunningCount()))
	m.resources.WithLabelValues("reservations").Set(float64(len(snapshot.Reservations)))
	m.resources.WithLabelValues("load_balancers").Set(float64(len(snapshot.LoadBalancers)))
	m.resources.WithLabelValues("databases").Set(float64(len(snapshot.Databases)))
	m.resources.WithLabelValues("volumes").Set(float64(len(snapshot.Volumes)))
	m.resources.WithLabelValues("caches").Set(float64(len(snapshot.Caches)))
	m.resources.WithLabelValues("domain_records").Set(float64(len(snapshot.DomainRecords)))
	m.hourlyCost.Set(view.TotalCostPerHour())

	var remaining float64
	for _, r := range snapshot.Reservations {
		remaining += r.RemainingUnits
	}
	m.remainingUnits.Set(remaining)
}
