// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/ward"
)

// EventMessage is pushed to subscribers, one message per committed event.
type EventMessage struct {
	Sequence uint64                `json:"sequence"`
	Time     uint64                `json:"time"`
	Name     string                `json:"name"`
	Identity ward.Address          `json:"identity"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Cooldown uint64                `json:"cooldown"`
}

func convertEvent(ev *eventdb.Event) *EventMessage {
	return &EventMessage{
		Sequence: ev.Sequence,
		Time:     ev.Time,
		Name:     ev.Name,
		Identity: ev.Identity,
		Amount:   utils.Amount(ev.Amount),
		Cooldown: ev.Cooldown,
	}
}
