// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics provides global access to a set of meters. It wraps two
// implementations behind one interface and defaults to a no-op one; the
// daemon switches to prometheus with InitializePrometheusMetrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/stakeward/stakeward/log"
)

var logger = log.WithContext("pkg", "metrics")

// the active implementation; a no-op until the daemon opts in
var service Metrics = noopMetrics{}

// Metrics is the interface metrics service implementations provide.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler returns the handler serving the gathered metrics.
func HTTPHandler() http.Handler {
	return service.GetOrCreateHandler()
}

// standard buckets, in milliseconds
var (
	// BucketOpMillis spans a single ledger operation.
	BucketOpMillis = []int64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	// BucketHTTPReqs spans an API request.
	BucketHTTPReqs = []int64{
		0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
		150, 200, 300, 400, 500, 750, 1000,
		1500, 2000, 3000, 4000, 5000, 10000,
	}
)

// HistogramMeter aggregates reported measurements into buckets.
type HistogramMeter interface {
	Observe(int64)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return service.GetOrCreateHistogramMeter(name, buckets)
}

// HistogramVecMeter is a HistogramMeter partitioned by labels.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return service.GetOrCreateHistogramVecMeter(name, labels, buckets)
}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

func Counter(name string) CountMeter { return service.GetOrCreateCountMeter(name) }

// CountVecMeter is a CountMeter partitioned by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

func CounterVec(name string, labels []string) CountVecMeter {
	return service.GetOrCreateCountVecMeter(name, labels)
}

// GaugeMeter holds a single value that can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

func Gauge(name string) GaugeMeter {
	return service.GetOrCreateGaugeMeter(name)
}

// GaugeVecMeter is a GaugeMeter partitioned by labels.
type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return service.GetOrCreateGaugeVecMeter(name, labels)
}

// LazyLoad defers the instantiation of a meter defined at package scope, so
// its definition does not pin the implementation chosen later at startup.
func LazyLoad[T any](f func() T) func() T {
	var result T
	var once sync.Once
	return func() T {
		once.Do(func() {
			result = f()
		})
		return result
	}
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter {
		return Histogram(name, buckets)
	})
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter {
		return HistogramVec(name, labels, buckets)
	})
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter {
		return Counter(name)
	})
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter {
		return CounterVec(name, labels)
	})
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter {
		return Gauge(name)
	})
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter {
		return GaugeVec(name, labels)
	})
}
