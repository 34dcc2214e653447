// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis bootstraps an empty store from a network profile and
// brings stores from earlier layouts up to date.
package genesis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/authority"
	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/vault"
	"github.com/stakeward/stakeward/ward"
)

// the slot holding the genesis ID, stamped when the store is first built
var slotID = ward.BytesToBytes32([]byte("genesis-id"))

// Genesis binds a validated profile to its computed ID.
type Genesis struct {
	profile *Profile
	id      ward.Bytes32
	name    string
}

// New validates the profile and computes its ID.
func New(p *Profile) (*Genesis, error) {
	if p.LaunchTime == 0 {
		return nil, errors.New("launchTime must not be 0")
	}
	if len(p.Admins) == 0 {
		return nil, errors.New("at least one admin address")
	}
	if p.DepositFloor != nil && p.DepositFloor.sign() < 0 {
		return nil, errors.New("depositFloor must be a non-negative integer")
	}
	for _, acc := range p.Accounts {
		if acc.Balance == nil {
			return nil, fmt.Errorf("%s: balance must be set", acc.Address)
		}
		if acc.Balance.sign() < 1 {
			return nil, fmt.Errorf("%s: balance must be a non-zero integer", acc.Address)
		}
	}
	for _, reg := range p.Participants {
		if reg.Stake == nil {
			return nil, fmt.Errorf("%s: stake must be set", reg.Address)
		}
		if reg.Stake.sign() < 0 {
			return nil, fmt.Errorf("%s: stake must be a non-negative integer", reg.Address)
		}
	}

	id, err := p.digest()
	if err != nil {
		return nil, errors.Wrap(err, "compute genesis ID")
	}
	name := p.Name
	if name == "" {
		name = "custom"
	}
	return &Genesis{p, id, name}, nil
}

// ID returns the genesis ID.
func (g *Genesis) ID() ward.Bytes32 { return g.id }

// Name returns the display name of the network.
func (g *Genesis) Name() string { return g.name }

// Build seeds an empty state with the profile content and stamps the
// genesis ID. The caller commits the staged writes.
func (g *Genesis) Build(st *state.State) error {
	auth := authority.New(ward.AuthorityAddress, st)
	vlt := vault.New(ward.VaultAddress, st, ward.LedgerAddress)
	led := ledger.New(ward.LedgerAddress, st, auth, vlt)

	led.Seed(g.profile.floor(), g.profile.cooldown())

	for _, admin := range g.profile.Admins {
		added, err := auth.Add(admin, g.profile.LaunchTime)
		if err != nil {
			return errors.Wrap(err, "grant admin")
		}
		if !added {
			return fmt.Errorf("%s: admin listed twice", admin)
		}
	}
	for _, acc := range g.profile.Accounts {
		if err := vlt.Mint(acc.Address, acc.Balance.Int()); err != nil {
			return errors.Wrapf(err, "mint balance of %s", acc.Address)
		}
	}
	for _, reg := range g.profile.Participants {
		stake := reg.Stake.Int()
		if err := vlt.Mint(reg.Address, stake); err != nil {
			return errors.Wrapf(err, "mint stake of %s", reg.Address)
		}
		if _, err := led.Register(reg.Address, stake, g.profile.LaunchTime); err != nil {
			return errors.Wrapf(err, "register %s", reg.Address)
		}
	}

	st.SetStorage(ward.LedgerAddress, slotID, g.id)
	return nil
}

// StoredID reads the genesis ID stamped into the store, zero when the
// store was never built.
func StoredID(st *state.State) (ward.Bytes32, error) {
	return st.GetStorage(ward.LedgerAddress, slotID)
}

// Ensure brings the store in line with the genesis: an empty store is
// built from scratch, a store from an earlier layout is migrated, and a
// store built from a different genesis is refused. It reports whether
// the store was freshly built. The caller commits the staged writes.
func Ensure(g *Genesis, st *state.State) (first bool, err error) {
	stored, err := StoredID(st)
	if err != nil {
		return false, errors.Wrap(err, "read genesis ID")
	}
	if !stored.IsZero() {
		if stored != g.id {
			return false, errors.Errorf("store was built from genesis %v, not %v", stored, g.id)
		}
		return false, upgrade(st)
	}

	empty, err := storeEmpty(st)
	if err != nil {
		return false, err
	}
	if empty {
		if err := g.Build(st); err != nil {
			return false, errors.Wrap(err, "build genesis")
		}
		return true, nil
	}

	// A populated store without an ID predates the genesis marker. Migrate
	// it and stamp the configured ID, trusting the operator to have kept
	// the founding profile.
	if err := upgrade(st); err != nil {
		return false, err
	}
	st.SetStorage(ward.LedgerAddress, slotID, g.id)
	return false, nil
}

func upgrade(st *state.State) error {
	led := ledger.New(ward.LedgerAddress, st, nil, nil)
	_, _, err := led.Upgrade()
	return err
}

// storeEmpty probes the slots every populated store has at least one of.
func storeEmpty(st *state.State) (bool, error) {
	led := ledger.New(ward.LedgerAddress, st, nil, nil)
	ver, err := led.SchemaVersion()
	if err != nil {
		return false, err
	}
	count, err := led.ParticipantCount()
	if err != nil {
		return false, err
	}
	cooldown, err := led.CooldownPeriod()
	if err != nil {
		return false, err
	}
	floor, err := led.DepositFloor()
	if err != nil {
		return false, err
	}
	return ver == 0 && count == 0 && cooldown == 0 && floor.IsZero(), nil
}
