package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "admissions"

// Lead groups the collectors of the lead engine. A nil *Lead is valid and records nothing.
type Lead struct {
	bulkItems *prometheus.CounterVec
	reads     *prometheus.CounterVec
}

// NewLead creates the lead collectors and registers them on reg.
func NewLead(reg prometheus.Registerer) *Lead {
	m := &Lead{
		bulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lead",
			Name:      "bulk_items_total",
			Help:      "Bulk operation items processed, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lead",
			Name:      "reads_total",
			Help:      "Lead read calls, by operation and data source (store or demo).",
		}, []string{"operation", "source"}),
	}
	reg.MustRegister(m.bulkItems, m.reads)
	return m
}

// BulkItem counts one processed bulk item.
func (m *Lead) BulkItem(operation string, ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failed"
	}
	m.bulkItems.WithLabelValues(operation, outcome).Inc()
}

// Read counts one read call served from source.
func (m *Lead) Read(operation string, demo bool) {
	if m == nil {
		return
	}
	source := "store"
	if demo {
		source = "demo"
	}
	m.reads.WithLabelValues(operation, source).Inc()
}
