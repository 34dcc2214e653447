// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/stakeward/stakeward/metrics"

var metricStorageCounter = metrics.LazyLoadCounterVec("storage_slot_count", []string{"type"})
