// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package operator_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeward/stakeward/api/operator"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/genesis"
	"github.com/stakeward/stakeward/health"
	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/node"
)

func initOperatorServer(t *testing.T) (*httptest.Server, *node.Node) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	events, err := eventdb.NewMem()
	require.NoError(t, err)

	n, err := node.New(genesis.NewDevnet(), store, events, health.New(0))
	require.NoError(t, err)

	router := mux.NewRouter()
	operator.New(n).Mount(router, "/operator")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		events.Close()
		store.Close()
	})
	return ts, n
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
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

func TestSetConfig(t *testing.T) {
	ts, n := initOperatorServer(t)
	admin := genesis.DevAccounts()[0]

	body, status := httpPost(t, ts.URL+"/operator/config", &operator.ConfigRequest{
		Caller:         admin,
		DepositFloor:   math.NewHexOrDecimal256(500),
		CooldownPeriod: 60,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var ev eventdb.Event
	require.NoError(t, json.Unmarshal(body, &ev))
	assert.Equal(t, ledger.EventConfigurationUpdated, ev.Name)
	assert.Equal(t, admin, ev.Identity)
	assert.Equal(t, uint256.NewInt(500), ev.Amount)
	assert.Equal(t, uint64(60), ev.Cooldown)

	ps, err := n.PoolStatus()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), ps.DepositFloor)
	assert.Equal(t, uint64(60), ps.CooldownPeriod)

	// a deposit below the old floor clears the new one
	_, err = n.Register(genesis.DevAccounts()[1], uint256.NewInt(600))
	require.NoError(t, err)
}

func TestSetConfigRejections(t *testing.T) {
	ts, _ := initOperatorServer(t)
	outsider := genesis.DevAccounts()[1]

	body, status := httpPost(t, ts.URL+"/operator/config", &operator.ConfigRequest{
		Caller:         outsider,
		DepositFloor:   math.NewHexOrDecimal256(500),
		CooldownPeriod: 60,
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.True(t, strings.HasPrefix(string(body), "NotAuthorized:"), string(body))

	// depositFloor is mandatory
	body, status = httpPost(t, ts.URL+"/operator/config", &operator.ConfigRequest{
		Caller:         genesis.DevAccounts()[0],
		CooldownPeriod: 60,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "depositFloor")

	_, status = httpPost(t, ts.URL+"/operator/config", map[string]any{"bogus": true})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSlashAndSweep(t *testing.T) {
	ts, n := initOperatorServer(t)
	admin := genesis.DevAccounts()[0]
	bob := genesis.DevAccounts()[2]

	_, err := n.Register(bob, uint256.NewInt(2000))
	require.NoError(t, err)

	body, status := httpPost(t, ts.URL+"/operator/slash", &operator.SlashRequest{
		Caller: admin,
		Target: bob,
		Amount: math.NewHexOrDecimal256(700),
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var ev eventdb.Event
	require.NoError(t, json.Unmarshal(body, &ev))
	assert.Equal(t, ledger.EventSlashed, ev.Name)
	assert.Equal(t, bob, ev.Identity)
	assert.Equal(t, uint256.NewInt(700), ev.Amount)

	st, err := n.PoolStatus()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(700), st.ConfiscatedTotal)
	assert.Equal(t, uint256.NewInt(1300), st.TotalStaked)

	// more than the remaining stake
	body, status = httpPost(t, ts.URL+"/operator/slash", &operator.SlashRequest{
		Caller: admin,
		Target: bob,
		Amount: math.NewHexOrDecimal256(1500),
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.True(t, strings.HasPrefix(string(body), "InsufficientStake:"), string(body))

	// only admins slash
	body, status = httpPost(t, ts.URL+"/operator/slash", &operator.SlashRequest{
		Caller: bob,
		Target: bob,
		Amount: math.NewHexOrDecimal256(1),
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.True(t, strings.HasPrefix(string(body), "NotAuthorized:"), string(body))

	// drain the confiscated pool
	body, status = httpPost(t, ts.URL+"/operator/sweep", &operator.SweepRequest{
		Caller: admin,
		Amount: math.NewHexOrDecimal256(700),
	})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &ev))
	assert.Equal(t, ledger.EventWithdrawn, ev.Name)
	assert.Equal(t, admin, ev.Identity)

	body, status = httpPost(t, ts.URL+"/operator/sweep", &operator.SweepRequest{
		Caller: admin,
		Amount: math.NewHexOrDecimal256(1),
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.True(t, strings.HasPrefix(string(body), "InsufficientFunds:"), string(body))
}

func TestGetAdmins(t *testing.T) {
	ts, _ := initOperatorServer(t)

	body, status := httpGet(t, ts.URL+"/operator/admins")
	require.Equal(t, http.StatusOK, status)

	var admins []*operator.Admin
	require.NoError(t, json.Unmarshal(body, &admins))
	require.Len(t, admins, 1)
	assert.Equal(t, genesis.DevAccounts()[0], admins[0].Address)
	assert.Equal(t, uint64(1735689600), admins[0].GrantedAt)
}
