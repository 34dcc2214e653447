// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/holiman/uint256"

	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/ward"
)

// Event is one committed ledger notification.
type Event struct {
	Sequence uint64       `json:"sequence"`
	Time     uint64       `json:"time"`
	Name     string       `json:"name"`
	Identity ward.Address `json:"identity"`
	Amount   *uint256.Int `json:"amount"`
	Cooldown uint64       `json:"cooldown"`
}

// NewEvent captures a ledger notification at its commit time. The sequence
// is assigned on append.
func NewEvent(ts uint64, ev *ledger.Event) *Event {
	return &Event{
		Time:     ts,
		Name:     ev.Name,
		Identity: ev.Identity,
		Amount:   ev.Amount.Clone(),
		Cooldown: ev.Cooldown,
	}
}

type RangeType string

const (
	Sequence RangeType = "seq"
	Time     RangeType = "time"
)

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

// Range bounds a query by sequence or by commit time, inclusive on both
// ends. A To below From leaves the range open-ended.
type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

// Options pages a query.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Zero fields do not constrain; identities and names
// are each OR'd.
type Filter struct {
	Identities []ward.Address `json:"identities"`
	Names      []string       `json:"names"`
	Range      *Range         `json:"range"`
	Options    *Options       `json:"options"`
	Order      OrderType      `json:"order"` // default asc
}

func amountValue(a *uint256.Int) []byte {
	if a == nil {
		return []byte{}
	}
	return a.Bytes()
}
