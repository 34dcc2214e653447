// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand/v2"

	"github.com/holiman/uint256"
)

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandAmount yields a non-zero amount that fits comfortably below overflow.
func RandAmount() *uint256.Int {
	return uint256.NewInt(uint64(mathrand.N(1_000_000) + 1)) //#nosec G404
}
