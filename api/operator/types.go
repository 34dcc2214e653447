// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package operator

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/stakeward/stakeward/ward"
)

// ConfigRequest is the body of POST /operator/config.
type ConfigRequest struct {
	Caller         ward.Address          `json:"caller"`
	DepositFloor   *math.HexOrDecimal256 `json:"depositFloor"`
	CooldownPeriod uint64                `json:"cooldownPeriod"`
}

// SlashRequest is the body of POST /operator/slash.
type SlashRequest struct {
	Caller ward.Address          `json:"caller"`
	Target ward.Address          `json:"target"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// SweepRequest is the body of POST /operator/sweep.
type SweepRequest struct {
	Caller ward.Address          `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Admin is an entry of the authority set.
type Admin struct {
	Address   ward.Address `json:"address"`
	GrantedAt uint64       `json:"grantedAt"`
}
