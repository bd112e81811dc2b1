package metrics

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/psantana5/elapsed/pkg/elapsed"
)

// Collector exports the process elapsed clock to Prometheus
type Collector struct {
	elapsedSeconds *prometheus.Desc
	sourceInfo     *prometheus.Desc
	readFailures   *prometheus.Desc
	resolution     *prometheus.Desc

	mu          sync.RWMutex
	resolutions map[elapsed.Source]float64
}

// NewCollector creates a collector whose metric names start with namespace
func NewCollector(namespace string) *Collector {
	return &Collector{
		elapsedSeconds: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "elapsed_seconds"),
			"Seconds elapsed since the process reference instant",
			nil, nil,
		),
		sourceInfo: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "clock", "source_info"),
			"Clock source backing the elapsed clock (always 1)",
			[]string{"source"}, nil,
		),
		readFailures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "clock", "read_failures_total"),
			"Total failed clock reads",
			nil, nil,
		),
		resolution: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "clock", "resolution_seconds"),
			"Smallest observed tick of each probed clock source",
			[]string{"source"}, nil,
		),
		resolutions: make(map[elapsed.Source]float64),
	}
}

// SetResolution records the measured resolution of a source
func (c *Collector) SetResolution(src elapsed.Source, seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolutions[src] = seconds
}

// Describe implements prometheus.Collector
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.elapsedSeconds
	ch <- c.sourceInfo
	ch <- c.readFailures
	ch <- c.resolution
}

// Collect implements prometheus.Collector
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.elapsedSeconds, prometheus.GaugeValue, elapsed.Seconds())
	ch <- prometheus.MustNewConstMetric(c.sourceInfo, prometheus.GaugeValue, 1, elapsed.Active().String())
	ch <- prometheus.MustNewConstMetric(c.readFailures, prometheus.CounterValue, float64(elapsed.Failures()))

	c.mu.RLock()
	defer c.mu.RUnlock()
	for src, res := range c.resolutions {
		ch <- prometheus.MustNewConstMetric(c.resolution, prometheus.GaugeValue, res, src.String())
	}
}

// NewRouter serves /metrics from reg and a /healthz probe
func NewRouter(reg *prometheus.Registry) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return r
}
