// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin assembles the operator-facing service: log level control,
// api request log toggling and the health probe. It is meant to listen on a
// loopback port, away from the public api.
package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakeward/stakeward/api/admin/apilogs"
	healthAPI "github.com/stakeward/stakeward/api/admin/health"
	"github.com/stakeward/stakeward/api/admin/loglevel"
	"github.com/stakeward/stakeward/health"
)

func New(logLevel *slog.LevelVar, health *health.Health, apiLogs *atomic.Bool) http.HandlerFunc {
	router := mux.NewRouter()

	loglevel.New(logLevel).Mount(router, "/loglevel")
	healthAPI.New(health).Mount(router, "/health")
	apilogs.New(apiLogs).Mount(router, "/apilogs")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
