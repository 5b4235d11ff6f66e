package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/IBMOLS/internal/optimization/ibmols"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.ObserveStep(ibmols.OutcomeRejected)
	c.ObserveStep(ibmols.OutcomeRejected)
	c.ObserveStep(ibmols.OutcomeReplacedAfter)
	c.ObserveSweep(4)
	c.ObserveSweep(7)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.steps.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.steps.WithLabelValues("replaced_after")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.steps.WithLabelValues("exhausted")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.sweeps))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.archiveSize))

	expected := `
# HELP ibmols_sweeps_total Completed passes over a population.
# TYPE ibmols_sweeps_total counter
ibmols_sweeps_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ibmols_sweeps_total"))
}

func TestCollectorSearches(t *testing.T) {
	c, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	c.SearchStarted()
	c.SearchStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.running))

	c.SearchFinished("completed")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.running))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches.WithLabelValues("completed")))
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
