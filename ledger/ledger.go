// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the staking ledger. Participants deposit
// collateral to register, may add stake freely and withdraw it only after a
// cooldown, and an identity holding the admin capability may confiscate
// ("slash") stake into a separate pool and later sweep that pool out.
//
// Every operation is all-or-nothing: it runs against a state checkpoint and
// any rejection or internal error rolls the state back to the point before
// the call. The ledger never commits; the owner stages and commits the state
// after a successful operation.
package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/ledger/reject"
	"github.com/stakeward/stakeward/log"
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/ward"
)

var logger = log.WithContext("pkg", "ledger")

// Authority answers whether an identity holds the admin capability.
type Authority interface {
	Has(addr ward.Address) (bool, error)
}

// Transfer moves collateral between identity accounts and the ledger's
// custody. Collect pulls funds from an identity into custody; Send releases
// custody funds to an identity. Both report false when the funds cannot be
// moved.
type Transfer interface {
	Collect(from ward.Address, amount *uint256.Int) (bool, error)
	Send(to ward.Address, amount *uint256.Int) (bool, error)
}

// Ledger owns every participant record and the confiscated pool.
//
// Ledger is not safe for concurrent use; callers serialize access.
type Ledger struct {
	storage  *storage
	registry *linkedList
	auth     Authority
	transfer Transfer

	// releasing is the reentrancy guard: it is held while a fund-releasing
	// operation is in flight, and every mutating operation entered while it
	// is held gets rejected.
	releasing bool
}

// New creates the ledger bound to the given storage account.
func New(addr ward.Address, st *state.State, auth Authority, transfer Transfer) *Ledger {
	storage := newStorage(addr, st)
	return &Ledger{
		storage:  storage,
		registry: newLinkedList(storage, slotRegistryHead, slotRegistryTail, slotRegistryCount),
		auth:     auth,
		transfer: transfer,
	}
}

// Address returns the storage account the ledger is bound to.
func (l *Ledger) Address() ward.Address {
	return l.storage.context.Address()
}

// DepositFloor returns the minimum deposit required to register.
func (l *Ledger) DepositFloor() (*uint256.Int, error) {
	return l.storage.depositFloor.Get()
}

// CooldownPeriod returns the waiting period, in seconds, between registering
// and the first permitted withdrawal.
func (l *Ledger) CooldownPeriod() (uint64, error) {
	return l.storage.cooldownPeriod.Get()
}

// ConfiscatedTotal returns the slashed value not yet swept out.
func (l *Ledger) ConfiscatedTotal() (*uint256.Int, error) {
	return l.storage.confiscatedTotal.Get()
}

// TotalStaked returns the sum of all participants' staked amounts.
func (l *Ledger) TotalStaked() (*uint256.Int, error) {
	return l.storage.totalStaked.Get()
}

// ParticipantCount returns the number of registered participants.
func (l *Ledger) ParticipantCount() (uint64, error) {
	return l.registry.Len()
}

// Get returns the record of addr. Absent records read as empty: a zero
// registration time and a zero stake.
func (l *Ledger) Get(addr ward.Address) (*Participant, error) {
	return l.storage.GetParticipant(addr)
}

// Participants walks all registered participants in registration order.
func (l *Ledger) Participants(callback func(ward.Address, *Participant) error) error {
	return l.registry.Iter(callback)
}

// Status assembles the ledger-wide configuration and totals.
func (l *Ledger) Status() (*PoolStatus, error) {
	floor, err := l.storage.depositFloor.Get()
	if err != nil {
		return nil, err
	}
	cooldown, err := l.storage.cooldownPeriod.Get()
	if err != nil {
		return nil, err
	}
	staked, err := l.storage.totalStaked.Get()
	if err != nil {
		return nil, err
	}
	confiscated, err := l.storage.confiscatedTotal.Get()
	if err != nil {
		return nil, err
	}
	count, err := l.registry.Len()
	if err != nil {
		return nil, err
	}
	version, err := l.SchemaVersion()
	if err != nil {
		return nil, err
	}
	return &PoolStatus{
		DepositFloor:     floor,
		CooldownPeriod:   cooldown,
		TotalStaked:      staked,
		ConfiscatedTotal: confiscated,
		Participants:     count,
		SchemaVersion:    version,
	}, nil
}

// SetConfiguration replaces the deposit floor and the cooldown period
// unconditionally. Existing participants are not revalidated; the new values
// apply to future actions only.
func (l *Ledger) SetConfiguration(caller ward.Address, depositFloor *uint256.Int, cooldownPeriod uint64) (*Event, error) {
	logger.Debug("updating configuration", "caller", caller, "depositFloor", depositFloor, "cooldownPeriod", cooldownPeriod)

	ev, err := l.run(func() (*Event, error) {
		return l.setConfiguration(caller, depositFloor, cooldownPeriod)
	})
	if err != nil {
		logger.Info("configuration update failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("updated configuration", "depositFloor", depositFloor, "cooldownPeriod", cooldownPeriod)
	return ev, nil
}

// Register creates the caller's record with the deposit as its initial stake,
// collecting the deposit into custody. The registration time is now, in unix
// seconds.
func (l *Ledger) Register(caller ward.Address, amount *uint256.Int, now uint64) (*Event, error) {
	logger.Debug("registering participant", "caller", caller, "amount", amount)

	ev, err := l.run(func() (*Event, error) {
		return l.register(caller, amount, now)
	})
	if err != nil {
		logger.Info("register failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("registered participant", "caller", caller, "amount", amount)
	return ev, nil
}

// Unregister deletes the caller's record and refunds its whole stake. The
// cooldown gate applies even when the stake is already zero.
func (l *Ledger) Unregister(caller ward.Address, now uint64) (*Event, error) {
	logger.Debug("unregistering participant", "caller", caller)

	ev, err := l.runReleasing(func() (*Event, error) {
		return l.unregister(caller, now)
	})
	if err != nil {
		logger.Info("unregister failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("unregistered participant", "caller", caller, "refund", ev.Amount)
	return ev, nil
}

// Stake collects amount from the caller into custody and adds it to the
// caller's stake. Staking is not gated by the cooldown.
func (l *Ledger) Stake(caller ward.Address, amount *uint256.Int) (*Event, error) {
	logger.Debug("adding stake", "caller", caller, "amount", amount)

	ev, err := l.run(func() (*Event, error) {
		return l.stake(caller, amount)
	})
	if err != nil {
		logger.Info("stake failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("added stake", "caller", caller, "amount", amount)
	return ev, nil
}

// Unstake removes amount from the caller's stake and releases it back to the
// caller. The registration itself stays in place even when the stake drops
// to zero.
func (l *Ledger) Unstake(caller ward.Address, amount *uint256.Int, now uint64) (*Event, error) {
	logger.Debug("removing stake", "caller", caller, "amount", amount)

	ev, err := l.runReleasing(func() (*Event, error) {
		return l.unstake(caller, amount, now)
	})
	if err != nil {
		logger.Info("unstake failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("removed stake", "caller", caller, "amount", amount)
	return ev, nil
}

// Slash confiscates amount from the target's stake into the confiscated
// pool. The target's cooldown and registration state are irrelevant beyond
// having enough stake; no value leaves the ledger.
func (l *Ledger) Slash(caller, target ward.Address, amount *uint256.Int) (*Event, error) {
	logger.Debug("slashing participant", "caller", caller, "target", target, "amount", amount)

	ev, err := l.run(func() (*Event, error) {
		return l.slash(caller, target, amount)
	})
	if err != nil {
		logger.Info("slash failed", "target", target, "error", err)
		return nil, err
	}

	logger.Info("slashed participant", "target", target, "amount", amount)
	return ev, nil
}

// Sweep releases amount of the confiscated pool to the caller.
func (l *Ledger) Sweep(caller ward.Address, amount *uint256.Int) (*Event, error) {
	logger.Debug("sweeping confiscated funds", "caller", caller, "amount", amount)

	ev, err := l.runReleasing(func() (*Event, error) {
		return l.sweep(caller, amount)
	})
	if err != nil {
		logger.Info("sweep failed", "caller", caller, "error", err)
		return nil, err
	}

	logger.Info("swept confiscated funds", "caller", caller, "amount", amount)
	return ev, nil
}

// run executes a mutating operation against a state checkpoint, rolling the
// state back when the operation fails.
func (l *Ledger) run(op func() (*Event, error)) (*Event, error) {
	if l.releasing {
		return nil, reject.New(reject.Reentrancy, "reentrant call")
	}

	st := l.storage.context.State()
	rev := st.NewCheckpoint()
	ev, err := op()
	if err != nil {
		st.RevertTo(rev)
		return nil, err
	}
	return ev, nil
}

// runReleasing executes a fund-releasing operation, holding the reentrancy
// guard for its whole duration so that a transfer cannot reenter the ledger.
func (l *Ledger) runReleasing(op func() (*Event, error)) (*Event, error) {
	return l.run(func() (*Event, error) {
		l.releasing = true
		defer func() { l.releasing = false }()
		return op()
	})
}

func (l *Ledger) setConfiguration(caller ward.Address, depositFloor *uint256.Int, cooldownPeriod uint64) (*Event, error) {
	if err := l.checkAuthorized(caller); err != nil {
		return nil, err
	}

	l.storage.depositFloor.Set(depositFloor)
	l.storage.cooldownPeriod.Set(cooldownPeriod)

	return &Event{
		Name:     EventConfigurationUpdated,
		Identity: caller,
		Amount:   depositFloor.Clone(),
		Cooldown: cooldownPeriod,
	}, nil
}

func (l *Ledger) register(caller ward.Address, amount *uint256.Int, now uint64) (*Event, error) {
	if now == 0 {
		// a zero time would read back as an absent record
		return nil, errors.New("zero registration time")
	}

	entry, err := l.storage.GetParticipant(caller)
	if err != nil {
		return nil, err
	}
	if !entry.IsEmpty() {
		return nil, reject.New(reject.AlreadyRegistered, "already registered")
	}

	floor, err := l.storage.depositFloor.Get()
	if err != nil {
		return nil, err
	}
	if amount.Lt(floor) {
		return nil, reject.Errorf(reject.InsufficientDeposit, "deposit %v below floor %v", amount, floor)
	}

	ok, err := l.transfer.Collect(caller, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reject.New(reject.TransferFailed, "deposit transfer failed")
	}

	entry = &Participant{RegisteredAt: now, Staked: amount.Clone()}
	added, err := l.registry.Add(caller, entry)
	if err != nil {
		return nil, err
	}
	if !added {
		return nil, errors.New("failed to add participant to registry")
	}
	if err := l.storage.totalStaked.Add(amount); err != nil {
		return nil, err
	}

	return &Event{Name: EventRegistered, Identity: caller, Amount: amount.Clone()}, nil
}

func (l *Ledger) unregister(caller ward.Address, now uint64) (*Event, error) {
	entry, err := l.storage.GetParticipant(caller)
	if err != nil {
		return nil, err
	}
	if entry.IsEmpty() {
		return nil, reject.New(reject.NotRegistered, "not registered")
	}

	cooldown, err := l.storage.cooldownPeriod.Get()
	if err != nil {
		return nil, err
	}
	if !entry.CooldownOver(cooldown, now) {
		return nil, reject.Errorf(reject.CooldownNotElapsed, "cooldown ends at %d", entry.RegisteredAt+cooldown)
	}

	refund := entry.Staked.Clone()

	// the record is deleted before any funds move
	removed, err := l.registry.Remove(caller, entry)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, errors.New("failed to remove participant from registry")
	}
	entry.RegisteredAt = 0
	entry.Staked = new(uint256.Int)
	if err := l.storage.SetParticipant(caller, entry); err != nil {
		return nil, err
	}
	if err := l.storage.totalStaked.Sub(refund); err != nil {
		return nil, err
	}

	if !refund.IsZero() {
		ok, err := l.transfer.Send(caller, refund)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, reject.New(reject.TransferFailed, "refund transfer failed")
		}
	}

	return &Event{Name: EventUnregistered, Identity: caller, Amount: refund}, nil
}

func (l *Ledger) stake(caller ward.Address, amount *uint256.Int) (*Event, error) {
	if amount.IsZero() {
		return nil, reject.New(reject.ZeroAmount, "zero amount")
	}

	entry, err := l.storage.GetParticipant(caller)
	if err != nil {
		return nil, err
	}
	if entry.IsEmpty() {
		return nil, reject.New(reject.NotRegistered, "not registered")
	}

	ok, err := l.transfer.Collect(caller, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reject.New(reject.TransferFailed, "stake transfer failed")
	}

	sum, overflow := new(uint256.Int).AddOverflow(entry.Staked, amount)
	if overflow {
		panic("ledger: participant stake overflow")
	}
	entry.Staked = sum
	if err := l.storage.SetParticipant(caller, entry); err != nil {
		return nil, err
	}
	if err := l.storage.totalStaked.Add(amount); err != nil {
		return nil, err
	}

	return &Event{Name: EventStaked, Identity: caller, Amount: amount.Clone()}, nil
}

func (l *Ledger) unstake(caller ward.Address, amount *uint256.Int, now uint64) (*Event, error) {
	entry, err := l.storage.GetParticipant(caller)
	if err != nil {
		return nil, err
	}
	if entry.IsEmpty() {
		return nil, reject.New(reject.NotRegistered, "not registered")
	}
	if amount.Gt(entry.Staked) {
		return nil, reject.Errorf(reject.InsufficientStake, "stake %v below requested %v", entry.Staked, amount)
	}

	cooldown, err := l.storage.cooldownPeriod.Get()
	if err != nil {
		return nil, err
	}
	if !entry.CooldownOver(cooldown, now) {
		return nil, reject.Errorf(reject.CooldownNotElapsed, "cooldown ends at %d", entry.RegisteredAt+cooldown)
	}

	// the stake is decremented before any funds move
	entry.Staked = new(uint256.Int).Sub(entry.Staked, amount)
	if err := l.storage.SetParticipant(caller, entry); err != nil {
		return nil, err
	}
	if err := l.storage.totalStaked.Sub(amount); err != nil {
		return nil, err
	}

	ok, err := l.transfer.Send(caller, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reject.New(reject.TransferFailed, "release transfer failed")
	}

	return &Event{Name: EventUnstaked, Identity: caller, Amount: amount.Clone()}, nil
}

func (l *Ledger) slash(caller, target ward.Address, amount *uint256.Int) (*Event, error) {
	if err := l.checkAuthorized(caller); err != nil {
		return nil, err
	}

	entry, err := l.storage.GetParticipant(target)
	if err != nil {
		return nil, err
	}
	// absent records hold zero stake, so they fail this check for any
	// non-zero amount
	if amount.Gt(entry.Staked) {
		return nil, reject.Errorf(reject.InsufficientStake, "stake %v below requested %v", entry.Staked, amount)
	}

	entry.Staked = new(uint256.Int).Sub(entry.Staked, amount)
	if err := l.storage.SetParticipant(target, entry); err != nil {
		return nil, err
	}
	if err := l.storage.totalStaked.Sub(amount); err != nil {
		return nil, err
	}
	if err := l.storage.confiscatedTotal.Add(amount); err != nil {
		return nil, err
	}

	return &Event{Name: EventSlashed, Identity: target, Amount: amount.Clone()}, nil
}

func (l *Ledger) sweep(caller ward.Address, amount *uint256.Int) (*Event, error) {
	if err := l.checkAuthorized(caller); err != nil {
		return nil, err
	}

	confiscated, err := l.storage.confiscatedTotal.Get()
	if err != nil {
		return nil, err
	}
	if amount.Gt(confiscated) {
		return nil, reject.Errorf(reject.InsufficientFunds, "confiscated pool %v below requested %v", confiscated, amount)
	}

	// the pool is decremented before any funds move
	if err := l.storage.confiscatedTotal.Sub(amount); err != nil {
		return nil, err
	}

	ok, err := l.transfer.Send(caller, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reject.New(reject.TransferFailed, "release transfer failed")
	}

	return &Event{Name: EventWithdrawn, Identity: caller, Amount: amount.Clone()}, nil
}

func (l *Ledger) checkAuthorized(caller ward.Address) error {
	authorized, err := l.auth.Has(caller)
	if err != nil {
		return err
	}
	if !authorized {
		return reject.New(reject.NotAuthorized, "admin capability required")
	}
	return nil
}
