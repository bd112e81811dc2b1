package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
	"github.com/psantana5/elapsed/pkg/elapsed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorFamilies(t *testing.T) {
	c := NewCollector("test")

	// resolution is only emitted once something was probed
	assert.Equal(t, 3, testutil.CollectAndCount(c))

	c.SetResolution(elapsed.Monotonic, 1e-9)
	c.SetResolution(elapsed.CPUTime, 1e-3)
	assert.Equal(t, 5, testutil.CollectAndCount(c))
	assert.Equal(t, 2, testutil.CollectAndCount(c, "test_clock_resolution_seconds"))
}

func TestCollectorLint(t *testing.T) {
	problems, err := testutil.CollectAndLint(NewCollector("test"))
	require.NoError(t, err)
	assert.Empty(t, problems)
}

func TestCollectorSourceInfo(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector("test")))

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() != "test_clock_source_info" {
			continue
		}
		found = true
		require.Len(t, mf.GetMetric(), 1)
		label := mf.GetMetric()[0].GetLabel()[0]
		assert.Equal(t, "source", label.GetName())
		assert.Equal(t, elapsed.Active().String(), label.GetValue())
	}
	assert.True(t, found)
}

func TestElapsedGaugeGrows(t *testing.T) {
	c := NewCollector("test")
	elapsed.Seconds()

	reg := prometheus.NewRegistry()
	reg.MustRegister(c)

	a := gaugeValue(t, reg, "test_elapsed_seconds")
	b := gaugeValue(t, reg, "test_elapsed_seconds")
	assert.GreaterOrEqual(t, a, 0.0)
	assert.GreaterOrEqual(t, b, a)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector("test"))
	srv := httptest.NewServer(NewRouter(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	want := map[string]dto.MetricType{
		"test_elapsed_seconds":           dto.MetricType_GAUGE,
		"test_clock_source_info":         dto.MetricType_GAUGE,
		"test_clock_read_failures_total": dto.MetricType_COUNTER,
	}
	for name, typ := range want {
		mf, ok := families[name]
		require.True(t, ok, "missing family %s", name)
		assert.Equal(t, typ, mf.GetType(), name)
		require.Len(t, mf.GetMetric(), 1, name)
	}
	assert.GreaterOrEqual(t, families["test_elapsed_seconds"].GetMetric()[0].GetGauge().GetValue(), 0.0)
	assert.Equal(t, float64(elapsed.Failures()),
		families["test_clock_read_failures_total"].GetMetric()[0].GetCounter().GetValue())

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/metrics", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
