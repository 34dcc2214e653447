// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/stakeward/stakeward/authority"
	"github.com/stakeward/stakeward/genesis"
	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/vault"
	"github.com/stakeward/stakeward/ward"
)

func amount(v int64) *genesis.Amount {
	a := genesis.Amount(*big.NewInt(v))
	return &a
}

func newTestState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func testProfile() *genesis.Profile {
	cooldown := uint64(3600)
	return &genesis.Profile{
		Name:           "testnet",
		LaunchTime:     1700000000,
		DepositFloor:   amount(100),
		CooldownPeriod: &cooldown,
		Admins:         []ward.Address{genesis.DevAccounts()[0]},
		Accounts: []genesis.Account{
			{Address: genesis.DevAccounts()[1], Balance: amount(5000)},
		},
		Participants: []genesis.Participant{
			{Address: genesis.DevAccounts()[2], Stake: amount(250)},
		},
	}
}

func TestNew(t *testing.T) {
	gene, err := genesis.New(testProfile())
	assert.NoError(t, err)
	assert.Equal(t, "testnet", gene.Name())
	assert.False(t, gene.ID().IsZero())

	unnamed := testProfile()
	unnamed.Name = ""
	gene, err = genesis.New(unnamed)
	assert.NoError(t, err)
	assert.Equal(t, "custom", gene.Name())
}

func TestNewInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *genesis.Profile)
		want   string
	}{
		{"zero launch time", func(p *genesis.Profile) { p.LaunchTime = 0 }, "launchTime"},
		{"no admins", func(p *genesis.Profile) { p.Admins = nil }, "at least one admin"},
		{"negative floor", func(p *genesis.Profile) { p.DepositFloor = amount(-1) }, "depositFloor"},
		{"nil balance", func(p *genesis.Profile) { p.Accounts[0].Balance = nil }, "balance must be set"},
		{"zero balance", func(p *genesis.Profile) { p.Accounts[0].Balance = amount(0) }, "non-zero"},
		{"negative balance", func(p *genesis.Profile) { p.Accounts[0].Balance = amount(-100) }, "non-zero"},
		{"nil stake", func(p *genesis.Profile) { p.Participants[0].Stake = nil }, "stake must be set"},
		{"negative stake", func(p *genesis.Profile) { p.Participants[0].Stake = amount(-1) }, "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testProfile()
			tt.mutate(p)
			_, err := genesis.New(p)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestID(t *testing.T) {
	a, err := genesis.New(testProfile())
	assert.NoError(t, err)

	renamed := testProfile()
	renamed.Name = "other"
	b, err := genesis.New(renamed)
	assert.NoError(t, err)
	assert.Equal(t, a.ID(), b.ID(), "the display name is not part of the ID")

	raised := testProfile()
	raised.DepositFloor = amount(200)
	c, err := genesis.New(raised)
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestBuild(t *testing.T) {
	st := newTestState(t)
	gene, err := genesis.New(testProfile())
	assert.NoError(t, err)
	assert.NoError(t, gene.Build(st))

	auth := authority.New(ward.AuthorityAddress, st)
	vlt := vault.New(ward.VaultAddress, st, ward.LedgerAddress)
	led := ledger.New(ward.LedgerAddress, st, auth, vlt)

	status, err := led.Status()
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), status.DepositFloor)
	assert.Equal(t, uint64(3600), status.CooldownPeriod)
	assert.Equal(t, uint64(1), status.Participants)
	assert.Equal(t, uint256.NewInt(250), status.TotalStaked)
	assert.Equal(t, uint64(2), status.SchemaVersion)

	has, err := auth.Has(genesis.DevAccounts()[0])
	assert.NoError(t, err)
	assert.True(t, has)

	bal, err := vlt.Balance(genesis.DevAccounts()[1])
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(5000), bal)

	entry, err := led.Get(genesis.DevAccounts()[2])
	assert.NoError(t, err)
	assert.Equal(t, uint64(1700000000), entry.RegisteredAt)
	assert.Equal(t, uint256.NewInt(250), entry.Staked)

	// the stake was minted and collected right away
	bal, err = vlt.Balance(genesis.DevAccounts()[2])
	assert.NoError(t, err)
	assert.True(t, bal.IsZero())

	custody, err := vlt.CustodyBalance()
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(250), custody)

	id, err := genesis.StoredID(st)
	assert.NoError(t, err)
	assert.Equal(t, gene.ID(), id)
}

func TestBuildRejects(t *testing.T) {
	p := testProfile()
	p.Admins = append(p.Admins, p.Admins[0])
	gene, err := genesis.New(p)
	assert.NoError(t, err)
	assert.ErrorContains(t, gene.Build(newTestState(t)), "admin listed twice")

	p = testProfile()
	p.Participants[0].Stake = amount(50)
	gene, err = genesis.New(p)
	assert.NoError(t, err)
	assert.ErrorContains(t, gene.Build(newTestState(t)), "below floor")
}

func TestEnsure(t *testing.T) {
	st := newTestState(t)
	gene, err := genesis.New(testProfile())
	assert.NoError(t, err)

	first, err := genesis.Ensure(gene, st)
	assert.NoError(t, err)
	assert.True(t, first)

	// a second pass verifies the ID and leaves the store alone
	first, err = genesis.Ensure(gene, st)
	assert.NoError(t, err)
	assert.False(t, first)

	// a store built from a different genesis is refused
	p := testProfile()
	p.DepositFloor = amount(999)
	other, err := genesis.New(p)
	assert.NoError(t, err)
	_, err = genesis.Ensure(other, st)
	assert.ErrorContains(t, err, "was built from genesis")
}

func TestEnsureLegacyStore(t *testing.T) {
	st := newTestState(t)
	gene, err := genesis.New(testProfile())
	assert.NoError(t, err)
	first, err := genesis.Ensure(gene, st)
	assert.NoError(t, err)
	assert.True(t, first)

	// devolve to the layout that predates the ID marker and the staked total
	st.SetRawStorage(ward.LedgerAddress, ward.BytesToBytes32([]byte("genesis-id")), nil)
	st.SetRawStorage(ward.LedgerAddress, ward.BytesToBytes32([]byte("schema-version")), nil)
	st.SetRawStorage(ward.LedgerAddress, ward.BytesToBytes32([]byte("total-staked")), nil)

	first, err = genesis.Ensure(gene, st)
	assert.NoError(t, err)
	assert.False(t, first)

	led := ledger.New(ward.LedgerAddress, st, nil, nil)
	ver, err := led.SchemaVersion()
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), ver)

	total, err := led.TotalStaked()
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(250), total, "the staked total is rebuilt from the registry")

	id, err := genesis.StoredID(st)
	assert.NoError(t, err)
	assert.Equal(t, gene.ID(), id)
}

func TestDevnet(t *testing.T) {
	gene := genesis.NewDevnet()
	assert.Equal(t, "devnet", gene.Name())
	assert.False(t, gene.ID().IsZero())
	assert.Len(t, genesis.DevAccounts(), 10)

	st := newTestState(t)
	assert.NoError(t, gene.Build(st))

	auth := authority.New(ward.AuthorityAddress, st)
	has, err := auth.Has(genesis.DevAccounts()[0])
	assert.NoError(t, err)
	assert.True(t, has)

	vlt := vault.New(ward.VaultAddress, st, ward.LedgerAddress)
	bal, err := vlt.Balance(genesis.DevAccounts()[9])
	assert.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1_000_000_000), bal)
}

func TestAmountJSON(t *testing.T) {
	var a genesis.Amount
	assert.NoError(t, a.UnmarshalJSON([]byte(`"0x64"`)))
	assert.Equal(t, uint256.NewInt(100), a.Int())

	assert.NoError(t, a.UnmarshalJSON([]byte(`250`)))
	assert.Equal(t, uint256.NewInt(250), a.Int())

	out, err := genesis.Amount(*big.NewInt(100)).MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"0x64"`, string(out))

	assert.Error(t, a.UnmarshalJSON([]byte(`"bogus"`)))
}
