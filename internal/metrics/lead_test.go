package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLead_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLead(reg)

	m.BulkItem("assign", true)
	m.BulkItem("assign", true)
	m.BulkItem("assign", false)
	m.Read("list", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bulkItems.WithLabelValues("assign", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bulkItems.WithLabelValues("assign", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reads.WithLabelValues("list", "demo")))
}

func TestLead_NilIsNoop(t *testing.T) {
	var m *Lead
	assert.NotPanics(t, func() {
		m.BulkItem("delete", false)
		m.Read("export", false)
	})
}
