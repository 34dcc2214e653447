// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"fmt"
	"math/big"
	"sync/atomic"

	"github.com/stakeward/stakeward/ward"
)

var devAccounts atomic.Value

// DevAccounts returns the fixed identity set for dev mode. The addresses
// are derived, not random, so clients can hardcode them.
func DevAccounts() []ward.Address {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]ward.Address)
	}

	var accs []ward.Address
	for i := range 10 {
		seed := fmt.Sprintf("stakeward.devnet.account%d", i)
		accs = append(accs, ward.BytesToAddress(ward.Blake2b([]byte(seed)).Bytes()[12:]))
	}
	devAccounts.Store(accs)
	return accs
}

// NewDevnet creates the genesis for dev mode: every dev account funded,
// the first one holding the admin capability.
func NewDevnet() *Genesis {
	launchTime := uint64(1735689600) // 'Wed Jan 01 2025 00:00:00 GMT+0000'
	cooldown := uint64(120)          // short enough to exercise unstake in a dev session
	floor := Amount(*big.NewInt(1000))
	balance := Amount(*big.NewInt(1_000_000_000))

	accounts := make([]Account, 0, len(DevAccounts()))
	for _, addr := range DevAccounts() {
		accounts = append(accounts, Account{Address: addr, Balance: &balance})
	}

	gene, err := New(&Profile{
		Name:           "devnet",
		LaunchTime:     launchTime,
		DepositFloor:   &floor,
		CooldownPeriod: &cooldown,
		Admins:         []ward.Address{DevAccounts()[0]},
		Accounts:       accounts,
	})
	if err != nil {
		panic(err)
	}
	return gene
}
