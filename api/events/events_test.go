// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeward/stakeward/api/events"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/genesis"
	"github.com/stakeward/stakeward/health"
	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/node"
	"github.com/stakeward/stakeward/ward"
)

const filterLimit = 3

// seeds four events: Registered(alice), Staked(alice), Registered(bob),
// Slashed(bob).
func initEventServer(t *testing.T) (*httptest.Server, ward.Address, ward.Address) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	evdb, err := eventdb.NewMem()
	require.NoError(t, err)

	n, err := node.New(genesis.NewDevnet(), store, evdb, health.New(0))
	require.NoError(t, err)

	admin := genesis.DevAccounts()[0]
	alice := genesis.DevAccounts()[1]
	bob := genesis.DevAccounts()[2]

	_, err = n.Register(alice, uint256.NewInt(2000))
	require.NoError(t, err)
	_, err = n.Stake(alice, uint256.NewInt(300))
	require.NoError(t, err)
	_, err = n.Register(bob, uint256.NewInt(5000))
	require.NoError(t, err)
	_, err = n.Slash(admin, bob, uint256.NewInt(100))
	require.NoError(t, err)

	router := mux.NewRouter()
	events.New(n, filterLimit).Mount(router, "/events")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		evdb.Close()
		store.Close()
	})
	return ts, alice, bob
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)

	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func filterEvents(t *testing.T, ts *httptest.Server, filter *eventdb.Filter) []*eventdb.Event {
	body, status := httpPost(t, ts.URL+"/events", filter)
	require.Equal(t, http.StatusOK, status, string(body))

	var fes []*eventdb.Event
	require.NoError(t, json.Unmarshal(body, &fes))
	return fes
}

func TestFilterAll(t *testing.T) {
	ts, _, _ := initEventServer(t)

	fes := filterEvents(t, ts, &eventdb.Filter{
		Options: &eventdb.Options{Limit: filterLimit},
	})
	require.Len(t, fes, filterLimit)
	assert.Equal(t, uint64(1), fes[0].Sequence)
	assert.Equal(t, ledger.EventRegistered, fes[0].Name)
	assert.Equal(t, uint64(2), fes[1].Sequence)
	assert.Equal(t, ledger.EventStaked, fes[1].Name)

	// second page
	fes = filterEvents(t, ts, &eventdb.Filter{
		Options: &eventdb.Options{Offset: filterLimit, Limit: filterLimit},
	})
	require.Len(t, fes, 1)
	assert.Equal(t, uint64(4), fes[0].Sequence)
	assert.Equal(t, ledger.EventSlashed, fes[0].Name)
}

func TestFilterDescending(t *testing.T) {
	ts, _, bob := initEventServer(t)

	fes := filterEvents(t, ts, &eventdb.Filter{
		Options: &eventdb.Options{Limit: 2},
		Order:   eventdb.DESC,
	})
	require.Len(t, fes, 2)
	assert.Equal(t, uint64(4), fes[0].Sequence)
	assert.Equal(t, bob, fes[0].Identity)
	assert.Equal(t, uint64(3), fes[1].Sequence)
}

func TestFilterByIdentityAndName(t *testing.T) {
	ts, alice, bob := initEventServer(t)

	fes := filterEvents(t, ts, &eventdb.Filter{
		Identities: []ward.Address{alice},
		Options:    &eventdb.Options{Limit: filterLimit},
	})
	require.Len(t, fes, 2)
	assert.Equal(t, ledger.EventRegistered, fes[0].Name)
	assert.Equal(t, ledger.EventStaked, fes[1].Name)

	fes = filterEvents(t, ts, &eventdb.Filter{
		Names:   []string{ledger.EventRegistered},
		Options: &eventdb.Options{Limit: filterLimit},
	})
	require.Len(t, fes, 2)
	assert.Equal(t, alice, fes[0].Identity)
	assert.Equal(t, bob, fes[1].Identity)

	fes = filterEvents(t, ts, &eventdb.Filter{
		Identities: []ward.Address{bob},
		Names:      []string{ledger.EventSlashed},
		Options:    &eventdb.Options{Limit: filterLimit},
	})
	require.Len(t, fes, 1)
	assert.Equal(t, uint256.NewInt(100), fes[0].Amount)
}

func TestFilterByRange(t *testing.T) {
	ts, _, _ := initEventServer(t)

	fes := filterEvents(t, ts, &eventdb.Filter{
		Range:   &eventdb.Range{Unit: eventdb.Sequence, From: 2, To: 3},
		Options: &eventdb.Options{Limit: filterLimit},
	})
	require.Len(t, fes, 2)
	assert.Equal(t, uint64(2), fes[0].Sequence)
	assert.Equal(t, uint64(3), fes[1].Sequence)

	// a time window covering the whole run
	fes = filterEvents(t, ts, &eventdb.Filter{
		Range:   &eventdb.Range{Unit: eventdb.Time, From: 1, To: uint64(time.Now().Unix()) + 60},
		Options: &eventdb.Options{Offset: 1, Limit: filterLimit},
	})
	require.Len(t, fes, filterLimit)
	assert.Equal(t, uint64(2), fes[0].Sequence)
}

func TestFilterNoMatch(t *testing.T) {
	ts, _, _ := initEventServer(t)

	body, status := httpPost(t, ts.URL+"/events", &eventdb.Filter{
		Names:   []string{ledger.EventWithdrawn},
		Options: &eventdb.Options{Limit: filterLimit},
	})
	require.Equal(t, http.StatusOK, status)
	// an empty match serializes as an empty array, not null
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestFilterGuards(t *testing.T) {
	ts, _, _ := initEventServer(t)

	// four seeded events exceed the page limit when no options are given
	body, status := httpPost(t, ts.URL+"/events", &eventdb.Filter{})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(body), "please use pagination")

	body, status = httpPost(t, ts.URL+"/events", &eventdb.Filter{
		Options: &eventdb.Options{Limit: filterLimit + 1},
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(body), "options.limit exceeds the maximum allowed value")

	body, status = httpPost(t, ts.URL+"/events", &eventdb.Filter{
		Range:   &eventdb.Range{Unit: eventdb.Sequence, From: 3, To: 1},
		Options: &eventdb.Options{Limit: filterLimit},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "range.to must be greater than or equal to range.from")

	body, status = httpPost(t, ts.URL+"/events", &eventdb.Filter{
		Options: &eventdb.Options{Offset: 1 << 63, Limit: filterLimit},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "options.offset exceeds the maximum allowed value")

	_, status = httpPost(t, ts.URL+"/events", "not a filter")
	assert.Equal(t, http.StatusBadRequest, status)
}
