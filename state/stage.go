// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakeward/stakeward/kv"
)

// Stage abstracts the journaled changes ready to be committed.
type Stage struct {
	state   *State
	batch   kv.Batch
	touched map[storageKey]rlp.RawValue
}

// Stage collects all journaled changes into a write batch.
// The state keeps journaling; changes become durable only on Commit.
func (s *State) Stage() *Stage {
	touched := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(k storageKey, v rlp.RawValue) bool {
		touched[k] = v
		return true
	})

	batch := s.store.NewBatch()
	for k, v := range touched {
		if len(v) == 0 {
			_ = batch.Delete(k.bytes())
		} else {
			_ = batch.Put(k.bytes(), v)
		}
	}
	return &Stage{
		state:   s,
		batch:   batch,
		touched: touched,
	}
}

// Commit writes all staged changes into the backing store.
// On success the journal is reset and the read cache updated, so the state
// keeps serving without reload.
func (s *Stage) Commit() error {
	if err := s.batch.Write(); err != nil {
		return &Error{err}
	}
	for k, v := range s.touched {
		s.state.cache.Add(k, v)
	}
	s.state.sm.PopTo(0)
	return nil
}
