// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/stakeward/stakeward/kv"
	"github.com/stakeward/stakeward/stackedmap"
	"github.com/stakeward/stakeward/ward"
)

// number of decoded slot values kept in memory.
const slotCacheSize = 8192

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// storageKey locates one slot value.
// The backing store key is the plain concatenation addr ++ slot.
type storageKey struct {
	addr ward.Address
	slot ward.Bytes32
}

func (k *storageKey) bytes() []byte {
	b := make([]byte, 0, ward.AddressLength+32)
	return append(append(b, k.addr[:]...), k.slot[:]...)
}

// State manages the persisted ledger state.
//
// Slot values are raw RLP; an empty raw value means absence. Mutations are
// journaled and become durable only via Stage().Commit(). State is not safe
// for concurrent use; callers serialize access.
type State struct {
	store kv.GetPutter
	cache *lru.Cache // storageKey -> rlp.RawValue, committed values only
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
}

// New create a state object backed by the given store.
func New(store kv.GetPutter) (*State, error) {
	cache, err := lru.New(slotCacheSize)
	if err != nil {
		return nil, &Error{err}
	}

	state := &State{
		store: store,
		cache: cache,
	}
	state.sm = stackedmap.New(func(key storageKey) (rlp.RawValue, bool, error) {
		return state.cacheGetter(key)
	})
	return state, nil
}

// cacheGetter implements stackedmap.MapGetter, reading through the lru cache
// into the backing store.
func (s *State) cacheGetter(key storageKey) (rlp.RawValue, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.(rlp.RawValue), true, nil
	}

	data, err := s.store.Get(key.bytes())
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		data = nil
	}
	raw := rlp.RawValue(data)
	s.cache.Add(key, raw)
	return raw, true, nil
}

// GetStorage returns storage value for the given address and slot.
func (s *State) GetStorage(addr ward.Address, slot ward.Bytes32) (ward.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, slot)
	if err != nil {
		return ward.Bytes32{}, err
	}
	if len(raw) == 0 {
		return ward.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return ward.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return ward.Blake2b(raw), nil
	}
	return ward.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and slot.
// A zero value deletes the slot.
func (s *State) SetStorage(addr ward.Address, slot, value ward.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, slot, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, slot, v)
}

// GetRawStorage returns storage value in rlp raw for given address and slot.
func (s *State) GetRawStorage(addr ward.Address, slot ward.Bytes32) (rlp.RawValue, error) {
	metricStorageCounter().AddWithLabel(1, map[string]string{"type": "get"})
	data, _, err := s.sm.Get(storageKey{addr, slot})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
// An empty raw deletes the slot.
func (s *State) SetRawStorage(addr ward.Address, slot ward.Bytes32, raw rlp.RawValue) {
	metricStorageCounter().AddWithLabel(1, map[string]string{"type": "set"})
	s.sm.Put(storageKey{addr, slot}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr ward.Address, slot ward.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, slot, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr ward.Address, slot ward.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, slot)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}
