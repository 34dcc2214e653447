// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks the daemon's readiness: whether the backing store
// answers probes and whether bootstrap (genesis build plus schema migration)
// has completed.
package health

import (
	"sync"
	"time"
)

// DefaultProbeWindow is how long the last successful store probe stays valid.
const DefaultProbeWindow = 30 * time.Second

// StoreStatus reports the outcome of the most recent store probe.
type StoreStatus struct {
	Alive    bool       `json:"alive"`
	ProbedAt *time.Time `json:"probedAt"`
}

// Status is the JSON shape served by the admin health endpoint.
type Status struct {
	Healthy      bool         `json:"healthy"`
	Store        *StoreStatus `json:"store"`
	Bootstrapped bool         `json:"bootstrapped"`
}

// Health aggregates the daemon's liveness inputs. Safe for concurrent use.
type Health struct {
	lock         sync.RWMutex
	probedAt     time.Time
	storeAlive   bool
	bootstrapped bool
	window       time.Duration
}

// New creates a Health whose store probes expire after the given window.
// A non-positive window selects DefaultProbeWindow.
func New(window time.Duration) *Health {
	if window <= 0 {
		window = DefaultProbeWindow
	}
	return &Health{window: window}
}

// StoreProbe records the outcome of a store liveness probe.
func (h *Health) StoreProbe(alive bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.probedAt = time.Now()
	h.storeAlive = alive
}

// BootstrapStatus marks whether genesis build and schema migration are done.
func (h *Health) BootstrapStatus(done bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.bootstrapped = done
}

// Status reports the aggregate health. The daemon is healthy once bootstrap
// completed and the store answered a probe within the window.
func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	probedAt := h.probedAt

	healthy := h.bootstrapped &&
		h.storeAlive &&
		time.Since(h.probedAt) <= h.window

	return &Status{
		Healthy:      healthy,
		Store:        &StoreStatus{Alive: h.storeAlive, ProbedAt: &probedAt},
		Bootstrapped: h.bootstrapped,
	}, nil
}
