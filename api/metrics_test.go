// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/common/expfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeward/stakeward/api/accounts"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/genesis"
	"github.com/stakeward/stakeward/health"
	"github.com/stakeward/stakeward/lvldb"
	"github.com/stakeward/stakeward/metrics"
	"github.com/stakeward/stakeward/node"
)

func init() {
	metrics.InitializePrometheusMetrics()
}

func TestMetricsMiddleware(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	events, err := eventdb.NewMem()
	require.NoError(t, err)
	n, err := node.New(genesis.NewDevnet(), store, events, health.New(0))
	require.NoError(t, err)

	router := mux.NewRouter()
	accounts.New(n).Mount(router, "/accounts")
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	router.Use(metricsMiddleware)
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		events.Close()
		store.Close()
	})

	alice := genesis.DevAccounts()[1]
	_, code := httpGet(t, ts.URL+"/accounts/"+alice.String())
	assert.Equal(t, 200, code)
	_, code = httpGet(t, ts.URL+"/accounts/"+alice.String())
	assert.Equal(t, 200, code)
	_, code = httpGet(t, ts.URL+"/accounts/0xzz")
	assert.Equal(t, 400, code)

	body, _ := httpGet(t, ts.URL+"/metrics")
	parser := expfmt.TextParser{}
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	assert.Nil(t, err)

	m := families["stakeward_api_request_count"].GetMetric()
	require.Equal(t, 2, len(m), "should be 2 metric entries")
	assert.Equal(t, float64(2), m[0].GetCounter().GetValue())
	assert.Equal(t, float64(1), m[1].GetCounter().GetValue())

	labels := m[0].GetLabel()
	require.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "200", labels[0].GetValue())
	assert.Equal(t, "method", labels[1].GetName())
	assert.Equal(t, "GET", labels[1].GetValue())
	assert.Equal(t, "path", labels[2].GetName())
	assert.Equal(t, "accounts_"+alice.String(), labels[2].GetValue())

	labels = m[1].GetLabel()
	require.Equal(t, 3, len(labels))
	assert.Equal(t, "code", labels[0].GetName())
	assert.Equal(t, "400", labels[0].GetValue())
	assert.Equal(t, "path", labels[2].GetName())
	assert.Equal(t, "accounts_0xzz", labels[2].GetValue())

	durations := families["stakeward_api_duration_ms"].GetMetric()
	require.Equal(t, 2, len(durations))
	assert.Equal(t, uint64(2), durations[0].GetHistogram().GetSampleCount())
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	r, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
