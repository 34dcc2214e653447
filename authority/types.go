// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"github.com/stakeward/stakeward/ward"
)

// entry is the stored membership record of one capability holder.
type entry struct {
	GrantedAt uint64        // unix seconds of the grant; zero when not held
	Prev      *ward.Address `rlp:"nil"`
	Next      *ward.Address `rlp:"nil"`
}

// IsEmpty returns whether the entry can be treated as empty.
func (e *entry) IsEmpty() bool {
	return e.GrantedAt == 0 &&
		e.Prev == nil &&
		e.Next == nil
}

// Admin describes one holder of the admin capability.
type Admin struct {
	Address   ward.Address
	GrantedAt uint64
}
