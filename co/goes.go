// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co provides the small concurrency helpers shared by the daemon:
// Goes to track goroutine life-cycles and Signal to announce events to
// channel-based waiters.
package co

import (
	"sync"
)

// Goes tracks the life-cycle of goroutines it starts.
type Goes struct {
	wg sync.WaitGroup
}

// Go runs f in a goroutine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait blocks until all goroutines started by Go have returned.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel that is closed once all goroutines started by Go
// have returned. Handy for select-based shutdown paths.
func (g *Goes) Done() chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
