// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"time"

	"github.com/stakeward/stakeward/ledger/reject"
	"github.com/stakeward/stakeward/metrics"
)

var (
	metricOpCount    = metrics.LazyLoadCounterVec("ledger_op_count", []string{"op", "outcome"})
	metricOpDuration = metrics.LazyLoadHistogramVec(
		"ledger_op_duration_ms", []string{"op", "outcome"}, metrics.BucketOpMillis,
	)

	metricParticipantCount = metrics.LazyLoadGauge("ledger_participant_count")
	metricTotalStaked      = metrics.LazyLoadGauge("ledger_total_staked")
	metricConfiscatedTotal = metrics.LazyLoadGauge("ledger_confiscated_total")

	metricEventGapCount    = metrics.LazyLoadCounter("eventdb_append_failed_count")
	metricStoreProbeFailed = metrics.LazyLoadCounter("store_probe_failed_count")
)

func evalOpMetrics(op, outcome string, startTime time.Time) {
	labels := map[string]string{"op": op, "outcome": outcome}
	metricOpCount().AddWithLabel(1, labels)
	metricOpDuration().ObserveWithLabels(time.Since(startTime).Milliseconds(), labels)
}

func outcomeOf(err error) string {
	if reject.IsRejection(err) {
		return "rejected"
	}
	return "failed"
}
