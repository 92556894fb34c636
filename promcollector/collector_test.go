package promcollector_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/geocell"
	"github.com/hupe1980/geocell/cellid"
	"github.com/hupe1980/geocell/promcollector"
	"github.com/hupe1980/geocell/region"
)

var _ geocell.MetricsCollector = (*promcollector.Collector)(nil)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func counterByStatus(mf *dto.MetricFamily, status string) float64 {
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "status" && lp.GetValue() == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCollector(t *testing.T) {
	c := promcollector.New("test")
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	c.RecordCovering(4, 20, time.Millisecond)
	c.RecordBuild(10, 7, time.Second, nil)
	c.RecordBuild(0, 0, time.Second, errors.New("boom"))
	c.RecordQuery(3, time.Microsecond, nil)
	c.RecordQuery(0, time.Microsecond, errors.New("boom"))

	families := gather(t, reg)
	assert.Equal(t, uint64(1), families["test_covering_cells"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 20, families["test_covering_candidates"].GetMetric()[0].GetHistogram().GetSampleSum(), 0)
	assert.InDelta(t, 10, families["test_indexed_cells"].GetMetric()[0].GetGauge().GetValue(), 0)
	assert.InDelta(t, 7, families["test_indexed_ranges"].GetMetric()[0].GetGauge().GetValue(), 0)
	assert.InDelta(t, 1, counterByStatus(families["test_builds_total"], "ok"), 0)
	assert.InDelta(t, 1, counterByStatus(families["test_builds_total"], "error"), 0)
	assert.InDelta(t, 1, counterByStatus(families["test_queries_total"], "error"), 0)
	assert.Equal(t, uint64(2), families["test_query_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, uint64(1), families["test_query_labels"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestCollectorWithRegionIndex(t *testing.T) {
	c := promcollector.New("geocell")
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	idx, err := geocell.New(geocell.WithMetricsCollector(c))
	require.NoError(t, err)
	for face := range cellid.NumFaces {
		require.NoError(t, idx.Add(geocell.Label(face), region.CellFromCellID(cellid.FromFace(face))))
	}
	require.NoError(t, idx.Build(context.Background()))
	_, err = idx.Query(context.Background(), region.FullCap())
	require.NoError(t, err)

	families := gather(t, reg)
	assert.Equal(t, uint64(7), families["geocell_covering_cells"].GetMetric()[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 6, families["geocell_indexed_cells"].GetMetric()[0].GetGauge().GetValue(), 0)
	assert.InDelta(t, 1, counterByStatus(families["geocell_queries_total"], "ok"), 0)
	assert.InDelta(t, 6, families["geocell_query_labels"].GetMetric()[0].GetHistogram().GetSampleSum(), 0)
}
