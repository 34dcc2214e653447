// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakeward/stakeward/ward"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction, similar to the mapping in Solidity.
// Entries live at blake2b(key ++ basePos) under the context account.
type Mapping[K Key, V any] struct {
	context *Context
	basePos ward.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos ward.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

// Get loads the value stored for key. A missing entry yields the zero value.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	position := ward.Blake2b(key.Bytes(), m.basePos.Bytes())
	err = m.context.state.DecodeStorage(m.context.address, position, func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Has tells whether an entry is stored for key.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	position := ward.Blake2b(key.Bytes(), m.basePos.Bytes())
	raw, err := m.context.state.GetRawStorage(m.context.address, position)
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Set stores the value for key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	position := ward.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// Delete removes the entry for key, so Get yields the zero value again.
func (m *Mapping[K, V]) Delete(key K) error {
	position := ward.Blake2b(key.Bytes(), m.basePos.Bytes())
	return m.context.state.EncodeStorage(m.context.address, position, func() ([]byte, error) {
		return nil, nil
	})
}
