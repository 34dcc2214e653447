// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/sslot"
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/ward"
)

var (
	slotParticipants = nameToSlot("participants")
	// participant registry linked list
	slotRegistryHead  = nameToSlot("registry-head")
	slotRegistryTail  = nameToSlot("registry-tail")
	slotRegistryCount = nameToSlot("registry-count")
	// admin-settable configuration
	slotDepositFloor   = nameToSlot("deposit-floor")
	slotCooldownPeriod = nameToSlot("cooldown-period")
	// pool totals
	slotConfiscatedTotal = nameToSlot("confiscated-total")
	slotTotalStaked      = nameToSlot("total-staked")
	// storage layout version
	slotSchemaVersion = nameToSlot("schema-version")
)

func nameToSlot(name string) ward.Bytes32 {
	return ward.BytesToBytes32([]byte(name))
}

// storage is the root storage of the ledger account.
type storage struct {
	context      *sslot.Context
	participants *sslot.Mapping[ward.Address, *Participant]

	depositFloor     *sslot.Uint256
	cooldownPeriod   *sslot.Uint64
	confiscatedTotal *sslot.Uint256
	totalStaked      *sslot.Uint256
	schemaVersion    *sslot.Uint64
}

func newStorage(addr ward.Address, state *state.State) *storage {
	context := sslot.NewContext(addr, state)
	return &storage{
		context:      context,
		participants: sslot.NewMapping[ward.Address, *Participant](context, slotParticipants),

		depositFloor:     sslot.NewUint256(context, slotDepositFloor),
		cooldownPeriod:   sslot.NewUint64(context, slotCooldownPeriod),
		confiscatedTotal: sslot.NewUint256(context, slotConfiscatedTotal),
		totalStaked:      sslot.NewUint256(context, slotTotalStaked),
		schemaVersion:    sslot.NewUint64(context, slotSchemaVersion),
	}
}

// GetParticipant loads the record of addr, returning an empty record when
// none is stored. The stake of a loaded record is never nil.
func (s *storage) GetParticipant(addr ward.Address) (*Participant, error) {
	p, err := s.participants.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get participant")
	}
	if p.Staked == nil {
		p.Staked = new(uint256.Int)
	}
	return p, nil
}

// SetParticipant stores the record of addr, clearing the backing slot
// entirely when the record is empty.
func (s *storage) SetParticipant(addr ward.Address, entry *Participant) error {
	if entry.IsEmpty() {
		if err := s.participants.Delete(addr); err != nil {
			return errors.Wrap(err, "failed to delete participant")
		}
		return nil
	}
	if err := s.participants.Set(addr, entry); err != nil {
		return errors.Wrap(err, "failed to set participant")
	}
	return nil
}
