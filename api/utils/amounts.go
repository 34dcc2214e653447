// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ParseAmount converts a request amount to the custody width. Both 0x-hex
// and decimal encodings are accepted on the wire.
func ParseAmount(a *math.HexOrDecimal256) (*uint256.Int, error) {
	if a == nil {
		return nil, errors.New("must be set")
	}
	b := (*big.Int)(a)
	// negative big values wrap when converted, test the sign first
	if b.Sign() < 0 {
		return nil, errors.New("must not be negative")
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, errors.New("out of range")
	}
	return v, nil
}

// Amount presents a custody amount on the wire.
func Amount(v *uint256.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(v.ToBig())
}
