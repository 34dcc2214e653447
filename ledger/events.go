// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/stakeward/stakeward/ward"
)

// Event names, one per mutating operation.
const (
	EventConfigurationUpdated = "ConfigurationUpdated"
	EventRegistered           = "Registered"
	EventUnregistered         = "Unregistered"
	EventStaked               = "Staked"
	EventUnstaked             = "Unstaked"
	EventSlashed              = "Slashed"
	EventWithdrawn            = "Withdrawn"
)

// Event is the notification produced by a successful operation, exactly once.
// Failed operations produce nothing.
type Event struct {
	Name     string
	Identity ward.Address // the affected identity: the caller, or the slash target
	Amount   *uint256.Int // the moved amount; the new deposit floor on configuration updates
	Cooldown uint64       // the new cooldown period, set on configuration updates only
}
