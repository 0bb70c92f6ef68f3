package metrics

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPricing(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("trading", "lattice")
	require.NoError(t, m.Register(reg))

	rec := NewDefaultRecorder(m)
	rec.RecordPricing("PUT", "EUROPEAN", ResultSuccess, 0.002, 6)
	rec.RecordPricing("PUT", "EUROPEAN", ResultSuccess, 0.004, 6)
	rec.RecordPricing("CALL", "BERMUDAN", ResultFailure, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PricingRunsTotal.WithLabelValues("PUT", "EUROPEAN", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PricingRunsTotal.WithLabelValues("CALL", "BERMUDAN", ResultFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PricingDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LatticeNodes))
}

func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, New("trading", "lattice").Register(reg))
	assert.Error(t, New("trading", "lattice").Register(reg))
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("trading", "lattice")
	require.NoError(t, m.Register(reg))
	NewDefaultRecorder(m).RecordPricing("CALL", "AMERICAN", ResultSuccess, 0.01, 10)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, reg))
	assert.Contains(t, buf.String(), `trading_lattice_pricing_runs_total{kind="CALL",result="success",style="AMERICAN"} 1`)
	assert.Contains(t, buf.String(), "trading_lattice_lattice_nodes_count 1")
}
