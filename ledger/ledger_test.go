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

	"github.com/stakeward/stakeward/ledger/reject"
	"github.com/stakeward/stakeward/test/datagen"
)

func TestLedger_Getters(t *testing.T) {
	env := newTestLedger(t, 100, 86400)

	tests := []struct {
		ret      any
		expected any
	}{
		{M(env.DepositFloor()), M(uint256.NewInt(100), nil)},
		{M(env.CooldownPeriod()), M(uint64(86400), nil)},
		{M(env.TotalStaked()), M(uint256.NewInt(0), nil)},
		{M(env.ConfiscatedTotal()), M(uint256.NewInt(0), nil)},
		{M(env.ParticipantCount()), M(uint64(0), nil)},
		{M(env.SchemaVersion()), M(uint64(2), nil)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.ret)
	}
}

func TestLedger_Register(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.vault.fund(addr, 500)

	ev, err := env.Register(addr, uint256.NewInt(150), t0)
	require.NoError(t, err)
	assert.Equal(t, EventRegistered, ev.Name)
	assert.Equal(t, addr, ev.Identity)
	assert.Equal(t, uint256.NewInt(150), ev.Amount)

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, t0, rec.RegisteredAt)
	assert.Equal(t, uint256.NewInt(150), rec.Staked)

	count, err := env.ParticipantCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	total, err := env.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(150), total)

	assert.Equal(t, uint256.NewInt(350), env.vault.balance(addr))
	assert.Equal(t, uint256.NewInt(150), env.vault.custody)
	env.checkConservation(t)
}

func TestLedger_Register_Duplicate(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	env.vault.fund(addr, 500)
	_, err := env.Register(addr, uint256.NewInt(100), t0+10)
	assert.Equal(t, reject.AlreadyRegistered, reject.KindOf(err))
	assert.ErrorContains(t, err, "already registered")

	// the duplicate attempt must not touch the first registration
	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, t0, rec.RegisteredAt)
}

func TestLedger_Register_BelowFloor(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.vault.fund(addr, 500)

	_, err := env.Register(addr, uint256.NewInt(99), t0)
	assert.Equal(t, reject.InsufficientDeposit, reject.KindOf(err))

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())
	assert.True(t, env.vault.custody.IsZero())
}

func TestLedger_Register_DepositCollectFails(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.vault.fund(addr, 50)

	_, err := env.Register(addr, uint256.NewInt(100), t0)
	assert.Equal(t, reject.TransferFailed, reject.KindOf(err))

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())

	count, err := env.ParticipantCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	assert.Equal(t, uint256.NewInt(50), env.vault.balance(addr))
}

func TestLedger_Register_ZeroTime(t *testing.T) {
	env := newTestLedger(t, 0, 0)
	addr := datagen.RandAddress()

	_, err := env.Register(addr, uint256.NewInt(0), 0)
	require.Error(t, err)
	assert.False(t, reject.IsRejection(err))
}

func TestLedger_SetConfiguration(t *testing.T) {
	env := newTestLedger(t, 100, 86400)

	ev, err := env.SetConfiguration(testAdmin, uint256.NewInt(250), 3600)
	require.NoError(t, err)
	assert.Equal(t, EventConfigurationUpdated, ev.Name)
	assert.Equal(t, testAdmin, ev.Identity)
	assert.Equal(t, uint256.NewInt(250), ev.Amount)
	assert.Equal(t, uint64(3600), ev.Cooldown)

	floor, err := env.DepositFloor()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(250), floor)

	cooldown, err := env.CooldownPeriod()
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), cooldown)
}

func TestLedger_SetConfiguration_NotAuthorized(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	outsider := datagen.RandAddress()

	_, err := env.SetConfiguration(outsider, uint256.NewInt(1), 1)
	assert.Equal(t, reject.NotAuthorized, reject.KindOf(err))

	// the old values stay in place
	floor, err := env.DepositFloor()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), floor)
}

func TestLedger_Stake(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)
	env.vault.fund(addr, 1000)

	ev, err := env.Stake(addr, uint256.NewInt(40))
	require.NoError(t, err)
	assert.Equal(t, EventStaked, ev.Name)
	assert.Equal(t, addr, ev.Identity)
	assert.Equal(t, uint256.NewInt(40), ev.Amount)

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(140), rec.Staked)
	// staking does not reset the registration time
	assert.Equal(t, t0, rec.RegisteredAt)

	total, err := env.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(140), total)
	env.checkConservation(t)
}

func TestLedger_Stake_ZeroAmount(t *testing.T) {
	env := newTestLedger(t, 0, 0)

	// the zero-amount check precedes the registration check
	_, err := env.Stake(datagen.RandAddress(), uint256.NewInt(0))
	assert.Equal(t, reject.ZeroAmount, reject.KindOf(err))
}

func TestLedger_Stake_NotRegistered(t *testing.T) {
	env := newTestLedger(t, 0, 0)

	_, err := env.Stake(datagen.RandAddress(), uint256.NewInt(5))
	assert.Equal(t, reject.NotRegistered, reject.KindOf(err))
}

func TestLedger_Stake_CollectFails(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	_, err := env.Stake(addr, uint256.NewInt(40))
	assert.Equal(t, reject.TransferFailed, reject.KindOf(err))

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), rec.Staked)
	env.checkConservation(t)
}

func TestLedger_Unstake(t *testing.T) {
	env := newTestLedger(t, 100, 0)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	ev, err := env.Unstake(addr, uint256.NewInt(30), t0)
	require.NoError(t, err)
	assert.Equal(t, EventUnstaked, ev.Name)
	assert.Equal(t, uint256.NewInt(30), ev.Amount)

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(70), rec.Staked)
	assert.Equal(t, uint256.NewInt(30), env.vault.balance(addr))

	// draining the stake entirely keeps the registration in place
	_, err = env.Unstake(addr, uint256.NewInt(70), t0)
	require.NoError(t, err)
	rec, err = env.Get(addr)
	require.NoError(t, err)
	assert.False(t, rec.IsEmpty())
	assert.True(t, rec.Staked.IsZero())
	env.checkConservation(t)
}

func TestLedger_Unstake_NotRegistered(t *testing.T) {
	env := newTestLedger(t, 0, 0)

	_, err := env.Unstake(datagen.RandAddress(), uint256.NewInt(1), t0)
	assert.Equal(t, reject.NotRegistered, reject.KindOf(err))
}

func TestLedger_Unstake_InsufficientStake(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	// the stake check precedes the cooldown check
	_, err := env.Unstake(addr, uint256.NewInt(101), t0)
	assert.Equal(t, reject.InsufficientStake, reject.KindOf(err))
}

func TestLedger_Unstake_TransferFailed(t *testing.T) {
	env := newTestLedger(t, 100, 0)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	env.vault.denySend = true
	_, err := env.Unstake(addr, uint256.NewInt(30), t0)
	assert.Equal(t, reject.TransferFailed, reject.KindOf(err))

	// the decrement must be rolled back
	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), rec.Staked)

	total, err := env.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), total)
	env.checkConservation(t)
}

func TestLedger_Unstake_ZeroAmount(t *testing.T) {
	env := newTestLedger(t, 100, 0)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	// unstaking has no zero-amount precondition; a zero withdrawal succeeds
	// and moves nothing
	ev, err := env.Unstake(addr, uint256.NewInt(0), t0)
	require.NoError(t, err)
	assert.True(t, ev.Amount.IsZero())

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(100), rec.Staked)
}

func TestLedger_Unregister(t *testing.T) {
	env := newTestLedger(t, 100, 0)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	ev, err := env.Unregister(addr, t0)
	require.NoError(t, err)
	assert.Equal(t, EventUnregistered, ev.Name)
	assert.Equal(t, uint256.NewInt(100), ev.Amount)

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())
	assert.True(t, rec.Staked.IsZero())

	count, err := env.ParticipantCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	assert.Equal(t, uint256.NewInt(100), env.vault.balance(addr))
	assert.True(t, env.vault.custody.IsZero())
	env.checkConservation(t)
}

func TestLedger_Unregister_Twice(t *testing.T) {
	env := newTestLedger(t, 100, 0)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	_, err := env.Unregister(addr, t0)
	require.NoError(t, err)

	_, err = env.Unregister(addr, t0)
	assert.Equal(t, reject.NotRegistered, reject.KindOf(err))
}

func TestLedger_Unregister_TransferFailed(t *testing.T) {
	env := newTestLedger(t, 100, 0)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	env.vault.denySend = true
	_, err := env.Unregister(addr, t0)
	assert.Equal(t, reject.TransferFailed, reject.KindOf(err))

	// the deletion must be rolled back; registration and custody stay intact
	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, t0, rec.RegisteredAt)
	assert.Equal(t, uint256.NewInt(100), rec.Staked)

	count, err := env.ParticipantCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
	env.checkConservation(t)
}

func TestLedger_Unregister_ZeroStake(t *testing.T) {
	env := newTestLedger(t, 0, 0)
	addr := datagen.RandAddress()
	env.register(t, addr, 0, t0)

	// with nothing staked no transfer happens, so a broken transfer path
	// cannot block the exit
	env.vault.denySend = true
	ev, err := env.Unregister(addr, t0)
	require.NoError(t, err)
	assert.True(t, ev.Amount.IsZero())

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())
}

func TestLedger_Slash(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	ev, err := env.Slash(testAdmin, addr, uint256.NewInt(40))
	require.NoError(t, err)
	assert.Equal(t, EventSlashed, ev.Name)
	assert.Equal(t, addr, ev.Identity)
	assert.Equal(t, uint256.NewInt(40), ev.Amount)

	rec, err := env.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(60), rec.Staked)

	confiscated, err := env.ConfiscatedTotal()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(40), confiscated)

	total, err := env.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(60), total)

	// no value left the ledger
	assert.Equal(t, uint256.NewInt(100), env.vault.custody)
	env.checkConservation(t)
}

func TestLedger_Slash_NotAuthorized(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	_, err := env.Slash(datagen.RandAddress(), addr, uint256.NewInt(1))
	assert.Equal(t, reject.NotAuthorized, reject.KindOf(err))
}

func TestLedger_Slash_AbsentTarget(t *testing.T) {
	env := newTestLedger(t, 0, 0)
	target := datagen.RandAddress()

	// absent records hold zero stake
	_, err := env.Slash(testAdmin, target, uint256.NewInt(1))
	assert.Equal(t, reject.InsufficientStake, reject.KindOf(err))

	// a zero-amount slash of an absent target passes the stake check and
	// must not materialize a record
	ev, err := env.Slash(testAdmin, target, uint256.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, EventSlashed, ev.Name)

	rec, err := env.Get(target)
	require.NoError(t, err)
	assert.True(t, rec.IsEmpty())
}

func TestLedger_Sweep(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)

	_, err := env.Slash(testAdmin, addr, uint256.NewInt(40))
	require.NoError(t, err)

	ev, err := env.Sweep(testAdmin, uint256.NewInt(25))
	require.NoError(t, err)
	assert.Equal(t, EventWithdrawn, ev.Name)
	assert.Equal(t, testAdmin, ev.Identity)
	assert.Equal(t, uint256.NewInt(25), ev.Amount)

	confiscated, err := env.ConfiscatedTotal()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(15), confiscated)
	assert.Equal(t, uint256.NewInt(25), env.vault.balance(testAdmin))
	env.checkConservation(t)
}

func TestLedger_Sweep_InsufficientFunds(t *testing.T) {
	env := newTestLedger(t, 0, 0)

	_, err := env.Sweep(testAdmin, uint256.NewInt(1))
	assert.Equal(t, reject.InsufficientFunds, reject.KindOf(err))
}

func TestLedger_Sweep_NotAuthorized(t *testing.T) {
	env := newTestLedger(t, 0, 0)

	_, err := env.Sweep(datagen.RandAddress(), uint256.NewInt(0))
	assert.Equal(t, reject.NotAuthorized, reject.KindOf(err))
}

func TestLedger_Sweep_TransferFailed(t *testing.T) {
	env := newTestLedger(t, 100, 86400)
	addr := datagen.RandAddress()
	env.register(t, addr, 100, t0)
	_, err := env.Slash(testAdmin, addr, uint256.NewInt(40))
	require.NoError(t, err)

	env.vault.denySend = true
	_, err = env.Sweep(testAdmin, uint256.NewInt(40))
	assert.Equal(t, reject.TransferFailed, reject.KindOf(err))

	// the decrement must be rolled back
	confiscated, err := env.ConfiscatedTotal()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(40), confiscated)
	env.checkConservation(t)
}
