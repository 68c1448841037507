package main

import (
	"net/http"

	"github.com/9seconds/peergeo/geolib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "peergeo"

// metricsCollector exposes resolver usage statistics. Values are taken
// from a snapshot on each scrape so counters are always consistent
// with /stats.
type metricsCollector struct {
	resolver *geolib.Resolver

	lookups  *prometheus.Desc
	dropped  *prometheus.Desc
	pending  *prometheus.Desc
	lastUsed *prometheus.Desc
}

func (m *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.lookups
	ch <- m.dropped
	ch <- m.pending
	ch <- m.lastUsed
}

func (m *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	snapshot := m.resolver.UsageStats().Snapshot()
	lastUsed := float64(0)

	if !snapshot.LastUsed.IsZero() {
		lastUsed = float64(snapshot.LastUsed.Unix())
	}

	ch <- prometheus.MustNewConstMetric(m.lookups, prometheus.CounterValue,
		float64(snapshot.SuccessCount), geolib.StatusSuccess.String())
	ch <- prometheus.MustNewConstMetric(m.lookups, prometheus.CounterValue,
		float64(snapshot.FailureCount), geolib.StatusFail.String())
	ch <- prometheus.MustNewConstMetric(m.lookups, prometheus.CounterValue,
		float64(snapshot.TimeoutCount), geolib.StatusTimeout.String())
	ch <- prometheus.MustNewConstMetric(m.dropped, prometheus.CounterValue,
		float64(snapshot.DroppedCount))
	ch <- prometheus.MustNewConstMetric(m.pending, prometheus.GaugeValue,
		float64(m.resolver.Pending()))
	ch <- prometheus.MustNewConstMetric(m.lastUsed, prometheus.GaugeValue, lastUsed)
}

func newMetricsCollector(resolver *geolib.Resolver) *metricsCollector {
	constLabels := prometheus.Labels{"endpoint": resolver.UsageStats().Name}

	return &metricsCollector{
		resolver: resolver,
		lookups: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "lookups_total"),
			"A number of finished lookups by status.",
			[]string{"status"}, constLabels),
		dropped: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "dropped_responses_total"),
			"A number of responses which came after their lookups were finished.",
			nil, constLabels),
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "pending_lookups"),
			"A number of keys which wait for a response.",
			nil, constLabels),
		lastUsed: prometheus.NewDesc(
			prometheus.BuildFQName(metricsNamespace, "", "last_used_timestamp_seconds"),
			"When the last lookup was finished.",
			nil, constLabels),
	}
}

func makeMetricsHandler(resolver *geolib.Resolver) (http.Handler, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(newMetricsCollector(resolver)); err != nil {
		return nil, err
	}

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
