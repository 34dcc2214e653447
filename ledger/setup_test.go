// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/ward"
)

func M(a ...any) []any {
	return a
}

// t0 is the base clock for tests, far enough from zero to exercise the
// cooldown arithmetic.
const t0 = uint64(1700000000)

var testAdmin = ward.BytesToAddress([]byte("admin"))

type testAuthority struct {
	admins map[ward.Address]bool
}

func (a *testAuthority) Has(addr ward.Address) (bool, error) {
	return a.admins[addr], nil
}

// testVault is a map-backed Transfer with a switchable send failure and a
// hook for driving reentrant calls out of the transfer window.
type testVault struct {
	balances map[ward.Address]*uint256.Int
	custody  *uint256.Int
	denySend bool
	onSend   func(to ward.Address, amount *uint256.Int)
}

func newTestVault() *testVault {
	return &testVault{
		balances: make(map[ward.Address]*uint256.Int),
		custody:  new(uint256.Int),
	}
}

func (v *testVault) fund(addr ward.Address, amount uint64) {
	v.balances[addr] = uint256.NewInt(amount)
}

func (v *testVault) balance(addr ward.Address) *uint256.Int {
	b, ok := v.balances[addr]
	if !ok {
		b = new(uint256.Int)
		v.balances[addr] = b
	}
	return b
}

func (v *testVault) Collect(from ward.Address, amount *uint256.Int) (bool, error) {
	bal := v.balance(from)
	if bal.Lt(amount) {
		return false, nil
	}
	bal.Sub(bal, amount)
	v.custody.Add(v.custody, amount)
	return true, nil
}

func (v *testVault) Send(to ward.Address, amount *uint256.Int) (bool, error) {
	if v.onSend != nil {
		v.onSend(to, amount)
	}
	if v.denySend {
		return false, nil
	}
	if v.custody.Lt(amount) {
		return false, nil
	}
	v.custody.Sub(v.custody, amount)
	v.balance(to).Add(v.balance(to), amount)
	return true, nil
}

type testLedger struct {
	*Ledger
	db    *lvldb.LevelDB
	state *state.State
	vault *testVault
	auth  *testAuthority
}

func newTestLedger(t *testing.T, floor uint64, cooldown uint64) *testLedger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db)
	require.NoError(t, err)

	auth := &testAuthority{admins: map[ward.Address]bool{testAdmin: true}}
	vault := newTestVault()

	l := New(ward.BytesToAddress([]byte("ledger")), st, auth, vault)
	l.Seed(uint256.NewInt(floor), cooldown)

	return &testLedger{Ledger: l, db: db, state: st, vault: vault, auth: auth}
}

// register funds the address and registers it, failing the test on any
// rejection.
func (env *testLedger) register(t *testing.T, addr ward.Address, amount uint64, now uint64) {
	env.vault.fund(addr, amount)
	_, err := env.Register(addr, uint256.NewInt(amount), now)
	require.NoError(t, err)
}

// checkConservation asserts that the custody balance covers exactly the
// tracked staked and confiscated totals.
func (env *testLedger) checkConservation(t *testing.T) {
	staked, err := env.TotalStaked()
	require.NoError(t, err)
	confiscated, err := env.ConfiscatedTotal()
	require.NoError(t, err)

	owed := new(uint256.Int).Add(staked, confiscated)
	assert.Equal(t, owed, env.vault.custody)
}

// addresses collects the registry content in iteration order.
func (env *testLedger) addresses(t *testing.T) []ward.Address {
	var out []ward.Address
	err := env.Participants(func(addr ward.Address, _ *Participant) error {
		out = append(out, addr)
		return nil
	})
	require.NoError(t, err)
	return out
}
