// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the public REST and websocket surface of the daemon.
package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakeward/stakeward/api/accounts"
	"github.com/stakeward/stakeward/api/doc"
	"github.com/stakeward/stakeward/api/events"
	"github.com/stakeward/stakeward/api/middleware"
	"github.com/stakeward/stakeward/api/operator"
	"github.com/stakeward/stakeward/api/participants"
	"github.com/stakeward/stakeward/api/pool"
	"github.com/stakeward/stakeward/api/subscriptions"
	"github.com/stakeward/stakeward/log"
	"github.com/stakeward/stakeward/node"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins     string
	PprofOn            bool
	EnableMetrics      bool
	LogsLimit          uint64
	APILogs            *atomic.Bool
	SlowQueryThreshold time.Duration
	Log5xxErrors       bool
}

// New returns the api handler and a closer that breaks the open
// subscriptions.
func New(nd *node.Node, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	// to serve the api docs
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)

	participants.New(nd, opts.LogsLimit).
		Mount(router, "/participants")
	accounts.New(nd).
		Mount(router, "/accounts")
	pool.New(nd).
		Mount(router, "/pool")
	operator.New(nd).
		Mount(router, "/operator")
	events.New(nd, opts.LogsLimit).
		Mount(router, "/events")
	subs := subscriptions.New(nd, origins, opts.LogsLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id", "x-stakeward-ver"}),
	)(handler)

	if opts.APILogs != nil {
		handler = middleware.RequestLoggerMiddleware(logger, opts.APILogs, opts.SlowQueryThreshold, opts.Log5xxErrors)(handler)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
