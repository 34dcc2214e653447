// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/ward"
)

// currentSchema is the storage layout version written by this release.
// v2 added the incremental staked total; v1 layouts predate the version slot
// and read back as version zero.
const currentSchema = 2

// SchemaVersion returns the stored layout version, zero for layouts that
// predate the version slot.
func (l *Ledger) SchemaVersion() (uint64, error) {
	return l.storage.schemaVersion.Get()
}

// Seed writes the initial configuration and stamps the current schema
// version. It bypasses authorization and is meant for building a fresh
// genesis state only.
func (l *Ledger) Seed(depositFloor *uint256.Int, cooldownPeriod uint64) {
	l.storage.depositFloor.Set(depositFloor)
	l.storage.cooldownPeriod.Set(cooldownPeriod)
	l.storage.schemaVersion.Set(currentSchema)
}

// Upgrade migrates the persisted layout to the current schema version,
// reporting the versions it moved between. The migration is all-or-nothing;
// a failure leaves the layout at its stored version.
func (l *Ledger) Upgrade() (from, to uint64, err error) {
	stored, err := l.storage.schemaVersion.Get()
	if err != nil {
		return 0, 0, err
	}
	from = stored
	if from == 0 {
		from = 1
	}
	if from > currentSchema {
		return from, from, errors.Errorf("unsupported schema version %d", from)
	}
	if from == currentSchema {
		return from, from, nil
	}

	logger.Info("upgrading storage layout", "from", from, "to", uint64(currentSchema))

	st := l.storage.context.State()
	rev := st.NewCheckpoint()
	if err := l.migrate(from); err != nil {
		st.RevertTo(rev)
		return from, from, err
	}
	l.storage.schemaVersion.Set(currentSchema)
	return from, currentSchema, nil
}

// migrate applies every layout migration from the given version up to the
// current one, in order.
func (l *Ledger) migrate(from uint64) error {
	for v := from; v < currentSchema; v++ {
		switch v {
		case 1:
			if err := l.backfillTotalStaked(); err != nil {
				return errors.Wrap(err, "backfill staked total")
			}
		}
	}
	return nil
}

// backfillTotalStaked sums all stakes in the registry into the incremental
// total introduced with schema v2.
func (l *Ledger) backfillTotalStaked() error {
	total := new(uint256.Int)
	err := l.registry.Iter(func(_ ward.Address, entry *Participant) error {
		sum, overflow := new(uint256.Int).AddOverflow(total, entry.Staked)
		if overflow {
			return errors.New("staked total overflow")
		}
		total = sum
		return nil
	})
	if err != nil {
		return err
	}
	l.storage.totalStaked.Set(total)
	return nil
}
