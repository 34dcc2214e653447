// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/stakeward/stakeward/ward"
)

// Participant is the accounting record of one registered identity.
type Participant struct {
	RegisteredAt uint64       // unix seconds of registration; zero means no record
	Staked       *uint256.Int // collateral currently held for the identity

	Next *ward.Address `rlp:"nil"` // doubly linked registry
	Prev *ward.Address `rlp:"nil"` // doubly linked registry
}

// IsEmpty returns whether the record can be treated as absent.
func (p *Participant) IsEmpty() bool {
	return p.RegisteredAt == 0
}

// CooldownOver reports whether the mandatory waiting period has passed at now.
// The boundary is inclusive: the first eligible moment is registeredAt plus the
// cooldown period.
func (p *Participant) CooldownOver(cooldown, now uint64) bool {
	return now >= p.RegisteredAt && now-p.RegisteredAt >= cooldown
}

// PoolStatus summarizes the ledger-wide configuration and totals.
type PoolStatus struct {
	DepositFloor     *uint256.Int
	CooldownPeriod   uint64
	TotalStaked      *uint256.Int
	ConfiscatedTotal *uint256.Int
	Participants     uint64
	SchemaVersion    uint64
}
