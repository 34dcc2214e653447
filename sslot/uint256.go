// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package sslot

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/stakeward/stakeward/ward"
)

// Uint256 is a wrapper for storage and retrieval of a 256-bit unsigned
// integer, similar to storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     ward.Bytes32
}

func NewUint256(context *Context, pos ward.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *uint256.Int) {
	storage := ward.BytesToBytes32(value.Bytes())
	u.context.state.SetStorage(u.context.address, u.pos, storage)
}

// Add accumulates value into the slot.
// Overflow of the 256-bit range is a broken invariant and panics.
func (u *Uint256) Add(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(storage, value)
	if overflow {
		panic(fmt.Sprintf("uint256 slot %v overflow", u.pos.AbbrevString()))
	}
	u.Set(sum)
	return nil
}

// Sub deducts value from the slot.
// Underflow is a broken invariant and panics; callers check sufficiency first.
func (u *Uint256) Sub(value *uint256.Int) error {
	storage, err := u.Get()
	if err != nil {
		return err
	}
	diff, underflow := new(uint256.Int).SubOverflow(storage, value)
	if underflow {
		panic(fmt.Sprintf("uint256 slot %v underflow", u.pos.AbbrevString()))
	}
	u.Set(diff)
	return nil
}
