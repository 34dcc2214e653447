// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node hosts the ledger aggregate inside the daemon. It serializes
// mutating operations, commits the staged state after each success, appends
// the committed event to the history store and wakes subscribers.
package node

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/authority"
	"github.com/stakeward/stakeward/co"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/genesis"
	"github.com/stakeward/stakeward/health"
	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/log"
	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/vault"
	"github.com/stakeward/stakeward/ward"
)

var logger = log.WithContext("pkg", "node")

// storeProbeInterval paces the background store liveness probe.
const storeProbeInterval = 10 * time.Second

// clockTolerance bounds acceptable local clock drift. Cooldown windows are
// enforced with wall-clock seconds, so a drifting clock shortens or
// stretches them for everyone.
const clockTolerance = 10 * time.Second

// probeKey is read by the store probe. The key never exists; a not-found
// answer still proves the store responds.
var probeKey = []byte("stakeward-store-probe")

// Node wires the ledger to its stores. All exported methods are safe for
// concurrent use; mutating operations run one at a time.
type Node struct {
	goes co.Goes

	mu    sync.RWMutex
	store *lvldb.LevelDB
	state *state.State
	led   *ledger.Ledger
	auth  *authority.Authority
	vlt   *vault.Vault

	events *eventdb.EventDB
	health *health.Health

	tick co.Signal // broadcast on every committed operation

	genesisID ward.Bytes32
	now       func() uint64
}

// New opens the ledger aggregate over the given stores, building genesis or
// migrating the schema as needed. The bootstrap writes are committed before
// New returns.
func New(gene *genesis.Genesis, store *lvldb.LevelDB, events *eventdb.EventDB, health *health.Health) (*Node, error) {
	st, err := state.New(store)
	if err != nil {
		return nil, errors.Wrap(err, "open state")
	}

	first, err := genesis.Ensure(gene, st)
	if err != nil {
		return nil, err
	}
	if err := st.Stage().Commit(); err != nil {
		return nil, errors.Wrap(err, "commit bootstrap")
	}
	if first {
		logger.Info("genesis built", "id", gene.ID(), "name", gene.Name())
	} else {
		logger.Info("store loaded", "genesis", gene.ID().AbbrevString())
	}

	auth := authority.New(ward.AuthorityAddress, st)
	vlt := vault.New(ward.VaultAddress, st, ward.LedgerAddress)

	n := &Node{
		store:     store,
		state:     st,
		led:       ledger.New(ward.LedgerAddress, st, auth, vlt),
		auth:      auth,
		vlt:       vlt,
		events:    events,
		health:    health,
		genesisID: gene.ID(),
		now:       func() uint64 { return uint64(time.Now().Unix()) },
	}

	health.BootstrapStatus(true)
	health.StoreProbe(true)
	n.refreshGauges()

	return n, nil
}

// Run starts the housekeeping loop and blocks until ctx is canceled and all
// background work has wound down.
func (n *Node) Run(ctx context.Context) error {
	n.goes.Go(func() { n.houseKeeping(ctx) })
	n.goes.Wait()
	return nil
}

// GenesisID returns the ID derived from the founding profile.
func (n *Node) GenesisID() ward.Bytes32 {
	return n.genesisID
}

// NewTicker creates a waiter that is woken each time an operation commits.
func (n *Node) NewTicker() co.Waiter {
	return n.tick.NewWaiter()
}

// SetConfiguration updates the deposit floor and cooldown period.
func (n *Node) SetConfiguration(caller ward.Address, depositFloor *uint256.Int, cooldownPeriod uint64) (*eventdb.Event, error) {
	now := n.now()
	return n.apply("set_configuration", now, func() (*ledger.Event, error) {
		return n.led.SetConfiguration(caller, depositFloor, cooldownPeriod)
	})
}

// Register collects the caller's initial deposit and adds them to the
// registry.
func (n *Node) Register(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	now := n.now()
	return n.apply("register", now, func() (*ledger.Event, error) {
		return n.led.Register(caller, amount, now)
	})
}

// Unregister removes the caller from the registry and releases their whole
// stake, cooldown permitting.
func (n *Node) Unregister(caller ward.Address) (*eventdb.Event, error) {
	now := n.now()
	return n.apply("unregister", now, func() (*ledger.Event, error) {
		return n.led.Unregister(caller, now)
	})
}

// Stake collects additional collateral for a registered caller.
func (n *Node) Stake(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	now := n.now()
	return n.apply("stake", now, func() (*ledger.Event, error) {
		return n.led.Stake(caller, amount)
	})
}

// Unstake releases part of the caller's stake, cooldown permitting. The
// remainder must stay at or above the deposit floor.
func (n *Node) Unstake(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	now := n.now()
	return n.apply("unstake", now, func() (*ledger.Event, error) {
		return n.led.Unstake(caller, amount, now)
	})
}

// Slash confiscates part of the target's stake into the confiscated pool.
// Admin only.
func (n *Node) Slash(caller, target ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	now := n.now()
	return n.apply("slash", now, func() (*ledger.Event, error) {
		return n.led.Slash(caller, target, amount)
	})
}

// Sweep pays out part of the confiscated pool to the caller. Admin only.
func (n *Node) Sweep(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	now := n.now()
	return n.apply("sweep", now, func() (*ledger.Event, error) {
		return n.led.Sweep(caller, amount)
	})
}

// apply runs op under the write lock and, on success, commits the staged
// state, appends the event to the history and wakes subscribers. A failed
// op leaves nothing behind; the ledger rolls its state back before
// returning.
func (n *Node) apply(name string, now uint64, op func() (*ledger.Event, error)) (*eventdb.Event, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	startTime := time.Now()

	ev, err := op()
	if err != nil {
		evalOpMetrics(name, outcomeOf(err), startTime)
		return nil, err
	}

	if err := n.state.Stage().Commit(); err != nil {
		n.reopenState()
		n.health.StoreProbe(false)
		evalOpMetrics(name, "failed", startTime)
		return nil, errors.Wrap(err, "commit state")
	}
	n.health.StoreProbe(true)

	entry := eventdb.NewEvent(now, ev)
	if err := n.events.Append([]*eventdb.Event{entry}); err != nil {
		// The state is committed; a gap in the history beats replaying the
		// operation.
		logger.Error("failed to append event history", "err", err)
		metricEventGapCount().Add(1)
	}

	n.tick.Broadcast()
	evalOpMetrics(name, "committed", startTime)
	return entry, nil
}

// reopenState discards the in-memory state after a failed commit, so that
// half-staged values cannot leak into the next operation.
func (n *Node) reopenState() {
	st, err := state.New(n.store)
	if err != nil {
		logger.Error("failed to reopen state", "err", err)
		return
	}
	n.state = st
	n.auth = authority.New(ward.AuthorityAddress, st)
	n.vlt = vault.New(ward.VaultAddress, st, ward.LedgerAddress)
	n.led = ledger.New(ward.LedgerAddress, st, n.auth, n.vlt)
}

// PoolStatus reports the ledger-wide configuration and totals.
func (n *Node) PoolStatus() (*ledger.PoolStatus, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.led.Status()
}

// Participant returns the record of the given identity. Unregistered
// identities yield an empty record.
func (n *Node) Participant(addr ward.Address) (*ledger.Participant, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.led.Get(addr)
}

// Participants walks the registry in registration order until the callback
// returns an error.
func (n *Node) Participants(cb func(ward.Address, *ledger.Participant) error) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.led.Participants(cb)
}

// AccountBalance returns the identity's free balance in the vault.
func (n *Node) AccountBalance(addr ward.Address) (*uint256.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.vlt.Balance(addr)
}

// CustodyBalance returns the collateral the vault holds for the ledger.
func (n *Node) CustodyBalance() (*uint256.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.vlt.CustodyBalance()
}

// Admins lists the identities holding the admin capability.
func (n *Node) Admins() ([]*authority.Admin, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.auth.All()
}

// FilterEvents queries the committed event history.
func (n *Node) FilterEvents(ctx context.Context, filter *eventdb.Filter) ([]*eventdb.Event, error) {
	return n.events.Filter(ctx, filter)
}

// MaxSequence returns the highest sequence number in the event history.
func (n *Node) MaxSequence() (uint64, error) {
	return n.events.MaxSequence()
}

func (n *Node) houseKeeping(ctx context.Context) {
	logger.Debug("enter house keeping")
	defer logger.Debug("leave house keeping")

	probeTicker := time.NewTicker(storeProbeInterval)
	defer probeTicker.Stop()

	clockSyncTicker := time.NewTicker(10 * time.Minute)
	defer clockSyncTicker.Stop()

	committed := n.tick.NewWaiter()

	for {
		select {
		case <-ctx.Done():
			return
		case <-probeTicker.C:
			n.probeStore()
		case <-clockSyncTicker.C:
			go checkClockOffset()
		case <-committed.C():
			n.refreshGauges()
		}
	}
}

// checkClockOffset queries an NTP pool and warns when the local clock has
// drifted beyond clockTolerance.
func checkClockOffset() {
	resp, err := ntp.Query("pool.ntp.org")
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > clockTolerance {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}

// probeStore checks that the backing store still answers reads. The probe
// key never exists, so not-found is the healthy answer.
func (n *Node) probeStore() {
	_, err := n.store.Get(probeKey)
	alive := err == nil || n.store.IsNotFound(err)
	if !alive {
		logger.Warn("store probe failed", "err", err)
		metricStoreProbeFailed().Add(1)
	}
	n.health.StoreProbe(alive)
}

// refreshGauges publishes the pool aggregates. Values beyond the int64 range
// are clamped; dashboards get the ballpark, the API serves exact numbers.
func (n *Node) refreshGauges() {
	status, err := n.PoolStatus()
	if err != nil {
		logger.Warn("failed to read pool status", "err", err)
		return
	}
	metricParticipantCount().Set(clampUint64(status.Participants))
	metricTotalStaked().Set(clampGauge(status.TotalStaked))
	metricConfiscatedTotal().Set(clampGauge(status.ConfiscatedTotal))
}

func clampUint64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

func clampGauge(v *uint256.Int) int64 {
	if !v.IsUint64() {
		return math.MaxInt64
	}
	return clampUint64(v.Uint64())
}
