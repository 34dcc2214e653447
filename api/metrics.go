// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bufio"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/metrics"
)

var (
	metricHTTPReqCounter  = metrics.LazyLoadCounterVec("api_request_count", []string{"path", "code", "method"})
	metricHTTPReqDuration = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"path", "code", "method"}, metrics.BucketHTTPReqs)
)

// metricsResponseWriter is a wrapper around http.ResponseWriter that captures the status code.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{w, http.StatusOK}
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades reach the wrapped writer.
func (m *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := m.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, errors.New("underlying writer does not support hijacking")
}

// metricsMiddleware records a counter and a duration histogram for each request.
func metricsMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		mrw := newMetricsResponseWriter(w)
		h.ServeHTTP(mrw, r)

		url := strings.ReplaceAll(strings.TrimLeft(r.URL.Path, "/"), "/", "_") // ensure no unexpected slashes
		labels := map[string]string{"path": url, "code": strconv.Itoa(mrw.statusCode), "method": r.Method}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		metricHTTPReqDuration().ObserveWithLabels(time.Since(now).Milliseconds(), labels)
	})
}
