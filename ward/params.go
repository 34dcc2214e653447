// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ward

// Well-known system account addresses. Each subsystem keeps its slots under
// its own account, so the address doubles as a storage namespace.
var (
	LedgerAddress    = BytesToAddress(Blake2b([]byte("stakeward.ledger")).Bytes()[12:])
	AuthorityAddress = BytesToAddress(Blake2b([]byte("stakeward.authority")).Bytes()[12:])
	VaultAddress     = BytesToAddress(Blake2b([]byte("stakeward.vault")).Bytes()[12:])
)

// Defaults applied when a genesis profile leaves configuration unset.
const (
	InitialCooldownPeriod uint64 = 86400 // one day, in seconds
)
