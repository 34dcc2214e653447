// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/log"
)

// statusResponseWriter is a wrapper around http.ResponseWriter that captures the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{w, http.StatusOK}
}

func (s *statusResponseWriter) WriteHeader(code int) {
	s.statusCode = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades reach the wrapped writer.
func (s *statusResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := s.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, errors.New("underlying writer does not support hijacking")
}

// RequestLoggerMiddleware returns a middleware to ensure requests are syphoned into the writer
func RequestLoggerMiddleware(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration, log5xxErrors bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// If api logging is not enabled and no trigger condition is set, api logs won't be recorded
			if !enabled.Load() && slowQueriesThreshold == time.Duration(0) && !log5xxErrors {
				next.ServeHTTP(w, r)
				return
			}
			// Read and log the body (note: this can only be done once)
			// Ensure you don't disrupt the request body for handlers that need to read it
			var bodyBytes []byte
			var err error
			if r.Body != nil {
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "err", err)
					return // don't pass bad request to the next handler
				}
				r.Body = io.NopCloser(io.Reader(bytes.NewReader(bodyBytes)))
			}

			rw := newStatusResponseWriter(w)
			start := time.Now()
			// call the original http.Handler we're wrapping
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			is5xx := rw.statusCode >= http.StatusInternalServerError
			shouldLog := enabled.Load() ||
				(slowQueriesThreshold > 0 && duration > slowQueriesThreshold) ||
				(log5xxErrors && is5xx)
			if shouldLog {
				write := logger.Info
				if is5xx {
					write = logger.Warn
				}
				write("API Request",
					"DurationMs", duration.Milliseconds(),
					"StatusCode", rw.statusCode,
					"Timestamp", time.Now().Unix(),
					"URI", r.URL.String(),
					"Method", r.Method,
					"Body", string(bodyBytes),
				)
			}
		})
	}
}
