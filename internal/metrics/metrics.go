// Package metrics provides Prometheus metrics for cf-wagdns.
//
// A run is a short-lived process, so nothing is served over HTTP. The
// registry is written to a node_exporter textfile at the end of each run.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names use the wagdns_ prefix.
const (
	Namespace = "wagdns"
)

// Registry holds every metric of this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// BuildInfo is always 1, labelled with the build's version.
	BuildInfo = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information for cf-wagdns.",
	}, []string{"version", "go_version"})

	// RunsTotal counts runs by outcome (unchanged, updated, error).
	RunsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "runs_total",
		Help:      "Total number of sync runs by outcome.",
	}, []string{"outcome"})

	// RunDuration observes the wall time of each run.
	RunDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of sync runs in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// APIRequestsTotal counts outbound HTTP requests by method and status
	// code ("error" when no response arrived).
	APIRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of outbound API requests by method and status code.",
	}, []string{"method", "code"})

	// UpdatesTotal counts successful writes by target (dns_record,
	// access_group).
	UpdatesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "updates_total",
		Help:      "Total number of records written by target.",
	}, []string{"target"})

	// IPChangedTimestamp is the time the observed address last differed from
	// the cached one.
	IPChangedTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "ip_changed_timestamp_seconds",
		Help:      "Unix time the public address was last seen to change.",
	})

	// LastRunTimestamp is the time the last run finished.
	LastRunTimestamp = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last sync run finished.",
	})
)

// SetBuildInfo sets the build info metric.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// ObserveAPIRequest counts one outbound request. Its signature matches
// httputil.ResponseObserver.
func ObserveAPIRequest(req *http.Request, resp *http.Response, err error) {
	code := "error"
	if err == nil && resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	APIRequestsTotal.WithLabelValues(req.Method, code).Inc()
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// The file is replaced atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
