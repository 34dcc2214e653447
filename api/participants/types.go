// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participants

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/ward"
)

// Record is the wire form of one participant entry. Unregistered identities
// read as the zero record.
type Record struct {
	Address      ward.Address          `json:"address"`
	Registered   bool                  `json:"registered"`
	RegisteredAt uint64                `json:"registeredAt"`
	Staked       *math.HexOrDecimal256 `json:"staked"`
}

func convertRecord(addr ward.Address, p *ledger.Participant) *Record {
	return &Record{
		Address:      addr,
		Registered:   !p.IsEmpty(),
		RegisteredAt: p.RegisteredAt,
		Staked:       utils.Amount(p.Staked),
	}
}

// RegisterRequest is the body of POST /participants.
type RegisterRequest struct {
	Caller ward.Address          `json:"caller"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// StakeRequest is the body of the stake and unstake operations.
type StakeRequest struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}
