// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/stakeward/stakeward/ward"
)

// Profile is a user supplied network definition.
type Profile struct {
	Name           string         `json:"name"`
	LaunchTime     uint64         `json:"launchTime"`
	DepositFloor   *Amount        `json:"depositFloor"`
	CooldownPeriod *uint64        `json:"cooldownPeriod"`
	Admins         []ward.Address `json:"admins"`
	Accounts       []Account      `json:"accounts"`
	Participants   []Participant  `json:"participants"`
}

// Account is a vault balance minted at launch.
type Account struct {
	Address ward.Address `json:"address"`
	Balance *Amount      `json:"balance"`
}

// Participant is an identity registered at launch, its stake collected
// from a balance minted on the fly.
type Participant struct {
	Address ward.Address `json:"address"`
	Stake   *Amount      `json:"stake"`
}

func (p *Profile) floor() *uint256.Int {
	if p.DepositFloor == nil {
		return new(uint256.Int)
	}
	return p.DepositFloor.Int()
}

func (p *Profile) cooldown() uint64 {
	if p.CooldownPeriod == nil {
		return ward.InitialCooldownPeriod
	}
	return *p.CooldownPeriod
}

// the canonical form hashed into the genesis ID. Derived from profile
// content only, so the ID is independent of the JSON formatting and of
// the display name.
type profileDigest struct {
	LaunchTime     uint64
	DepositFloor   *uint256.Int
	CooldownPeriod uint64
	Admins         []ward.Address
	Accounts       []balanceDigest
	Participants   []balanceDigest
}

type balanceDigest struct {
	Address ward.Address
	Amount  *uint256.Int
}

func (p *Profile) digest() (ward.Bytes32, error) {
	d := profileDigest{
		LaunchTime:     p.LaunchTime,
		DepositFloor:   p.floor(),
		CooldownPeriod: p.cooldown(),
		Admins:         p.Admins,
	}
	for _, acc := range p.Accounts {
		d.Accounts = append(d.Accounts, balanceDigest{acc.Address, acc.Balance.Int()})
	}
	for _, reg := range p.Participants {
		d.Participants = append(d.Participants, balanceDigest{reg.Address, reg.Stake.Int()})
	}
	data, err := rlp.EncodeToBytes(&d)
	if err != nil {
		return ward.Bytes32{}, err
	}
	return ward.Keccak256(data), nil
}

// Amount marshals a 256-bit unsigned integer as hex or decimal.
// Adapted from go-ethereum/common/math with a json.Marshaler implementation.
type Amount math.HexOrDecimal256

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Amount) UnmarshalJSON(input []byte) error {
	var hex string
	if err := json.Unmarshal(input, &hex); err != nil {
		if err = (*big.Int)(a).UnmarshalJSON(input); err != nil {
			return err
		}
		return nil
	}
	bigint, ok := math.ParseBig256(hex)
	if !ok {
		return fmt.Errorf("invalid hex or decimal integer %q", input)
	}
	*a = Amount(*bigint)
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (a Amount) MarshalJSON() ([]byte, error) {
	decimal256 := math.HexOrDecimal256(a)
	text, err := decimal256.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// Int converts the amount to a uint256. Callers validate the sign first;
// negative values wrap.
func (a *Amount) Int() *uint256.Int {
	v, _ := uint256.FromBig((*big.Int)(a))
	return v
}

func (a *Amount) sign() int {
	return (*big.Int)(a).Sign()
}
