// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakeward"

// InitializePrometheusMetrics switches the package to the prometheus
// implementation. The switch is one-way.
func InitializePrometheusMetrics() {
	if _, ok := service.(*prometheusMetrics); !ok {
		service = newPrometheusMetrics()
		registerIOCollector()
	}
}

type prometheusMetrics struct {
	counters      sync.Map
	counterVecs   sync.Map
	histograms    sync.Map
	histogramVecs sync.Map
	gauges        sync.Map
	gaugeVecs     sync.Map
}

func newPrometheusMetrics() Metrics {
	return &prometheusMetrics{}
}

// getOrCreate returns the named meter, creating and caching it on first use.
// A racing creation registers twice; the loser is discarded and the duplicate
// registration shows up as a warning.
func getOrCreate[T any](m *sync.Map, name string, create func() T) T {
	if v, ok := m.Load(name); ok {
		return v.(T)
	}
	v, _ := m.LoadOrStore(name, create())
	return v.(T)
}

// mustRegister registers the collector, downgrading failures to a warning so
// a name collision cannot take the process down.
func mustRegister(name string, c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		logger.Warn("unable to register metric", "name", name, "err", err)
	}
}

func toFloats(buckets []int64) []float64 {
	var floats []float64
	for _, b := range buckets {
		floats = append(floats, float64(b))
	}
	return floats
}

func (p *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	return getOrCreate(&p.counters, name, func() CountMeter {
		meter := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		})
		mustRegister(name, meter)
		return &promCountMeter{meter}
	})
}

func (p *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	return getOrCreate(&p.counterVecs, name, func() CountVecMeter {
		meter := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		}, labels)
		mustRegister(name, meter)
		return &promCountVecMeter{meter}
	})
}

func (p *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	return getOrCreate(&p.gauges, name, func() GaugeMeter {
		meter := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		})
		mustRegister(name, meter)
		return &promGaugeMeter{meter}
	})
}

func (p *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return getOrCreate(&p.gaugeVecs, name, func() GaugeVecMeter {
		meter := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		}, labels)
		mustRegister(name, meter)
		return &promGaugeVecMeter{meter}
	})
}

func (p *prometheusMetrics) GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter {
	return getOrCreate(&p.histograms, name, func() HistogramMeter {
		meter := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   toFloats(buckets),
		})
		mustRegister(name, meter)
		return &promHistogramMeter{meter}
	})
}

func (p *prometheusMetrics) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return getOrCreate(&p.histogramVecs, name, func() HistogramVecMeter {
		meter := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   toFloats(buckets),
		}, labels)
		mustRegister(name, meter)
		return &promHistogramVecMeter{meter}
	})
}

func (p *prometheusMetrics) GetOrCreateHandler() http.Handler {
	return promhttp.Handler()
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (g *promGaugeMeter) Add(i int64) {
	g.gauge.Add(float64(i))
}

func (g *promGaugeMeter) Set(i int64) {
	g.gauge.Set(float64(i))
}

type promGaugeVecMeter struct {
	gauge *prometheus.GaugeVec
}

func (g *promGaugeVecMeter) AddWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Add(float64(i))
}

func (g *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	g.gauge.With(labels).Set(float64(i))
}

type promHistogramMeter struct {
	histogram prometheus.Histogram
}

func (h *promHistogramMeter) Observe(i int64) {
	h.histogram.Observe(float64(i))
}

type promHistogramVecMeter struct {
	histogram *prometheus.HistogramVec
}

func (h *promHistogramVecMeter) ObserveWithLabels(i int64, labels map[string]string) {
	h.histogram.With(labels).Observe(float64(i))
}
