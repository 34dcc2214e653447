// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority maintains the set of identities holding the admin
// capability, persisted as a doubly linked list so holders can be listed in
// grant order. The set is pure mechanism: callers gate who may grant or
// revoke.
package authority

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/ward"
)

var (
	headKey = ward.Blake2b([]byte("head"))
	tailKey = ward.Blake2b([]byte("tail"))
)

// Authority answers and mutates admin capability membership.
type Authority struct {
	addr  ward.Address
	state *state.State
}

// New creates the set bound to the given storage account.
func New(addr ward.Address, state *state.State) *Authority {
	return &Authority{addr, state}
}

func (a *Authority) getEntry(addr ward.Address) (*entry, error) {
	var entry entry
	if err := a.state.DecodeStorage(a.addr, ward.BytesToBytes32(addr[:]), func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &entry)
	}); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (a *Authority) setEntry(addr ward.Address, entry *entry) error {
	return a.state.EncodeStorage(a.addr, ward.BytesToBytes32(addr[:]), func() ([]byte, error) {
		if entry.IsEmpty() {
			return nil, nil
		}
		return rlp.EncodeToBytes(entry)
	})
}

func (a *Authority) getAddressPtr(key ward.Bytes32) (addr *ward.Address, err error) {
	err = a.state.DecodeStorage(a.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (a *Authority) setAddressPtr(key ward.Bytes32, addr *ward.Address) error {
	return a.state.EncodeStorage(a.addr, key, func() ([]byte, error) {
		if addr == nil {
			return nil, nil
		}
		return rlp.EncodeToBytes(addr)
	})
}

// Has reports whether addr currently holds the admin capability.
func (a *Authority) Has(addr ward.Address) (bool, error) {
	entry, err := a.getEntry(addr)
	if err != nil {
		return false, err
	}
	return !entry.IsEmpty(), nil
}

// Add grants the capability to addr, reporting false when it is already
// held. The grant joins the list at the tail.
func (a *Authority) Add(addr ward.Address, grantedAt uint64) (bool, error) {
	entry, err := a.getEntry(addr)
	if err != nil {
		return false, err
	}
	if !entry.IsEmpty() {
		return false, nil
	}

	entry.GrantedAt = grantedAt

	tailPtr, err := a.getAddressPtr(tailKey)
	if err != nil {
		return false, err
	}
	entry.Prev = tailPtr

	if err := a.setAddressPtr(tailKey, &addr); err != nil {
		return false, err
	}
	if tailPtr == nil {
		if err := a.setAddressPtr(headKey, &addr); err != nil {
			return false, err
		}
	} else {
		tailEntry, err := a.getEntry(*tailPtr)
		if err != nil {
			return false, err
		}
		tailEntry.Next = &addr
		if err := a.setEntry(*tailPtr, tailEntry); err != nil {
			return false, err
		}
	}

	return true, a.setEntry(addr, entry)
}

// Revoke removes the capability from addr, reporting false when it is not
// held. The entry is unlinked and its slot cleared, so a later grant starts
// fresh at the tail.
func (a *Authority) Revoke(addr ward.Address) (bool, error) {
	entry, err := a.getEntry(addr)
	if err != nil {
		return false, err
	}
	if entry.IsEmpty() {
		return false, nil
	}

	if entry.Prev == nil {
		if err := a.setAddressPtr(headKey, entry.Next); err != nil {
			return false, err
		}
	} else {
		prevEntry, err := a.getEntry(*entry.Prev)
		if err != nil {
			return false, err
		}
		prevEntry.Next = entry.Next
		if err := a.setEntry(*entry.Prev, prevEntry); err != nil {
			return false, err
		}
	}

	if entry.Next == nil {
		if err := a.setAddressPtr(tailKey, entry.Prev); err != nil {
			return false, err
		}
	} else {
		nextEntry, err := a.getEntry(*entry.Next)
		if err != nil {
			return false, err
		}
		nextEntry.Prev = entry.Prev
		if err := a.setEntry(*entry.Next, nextEntry); err != nil {
			return false, err
		}
	}

	entry.GrantedAt = 0
	entry.Next = nil
	entry.Prev = nil
	return true, a.setEntry(addr, entry)
}

// All lists every capability holder in grant order.
func (a *Authority) All() ([]*Admin, error) {
	ptr, err := a.getAddressPtr(headKey)
	if err != nil {
		return nil, err
	}
	var admins []*Admin
	for ptr != nil {
		entry, err := a.getEntry(*ptr)
		if err != nil {
			return nil, err
		}
		admins = append(admins, &Admin{
			Address:   *ptr,
			GrantedAt: entry.GrantedAt,
		})
		ptr = entry.Next
	}
	return admins, nil
}
