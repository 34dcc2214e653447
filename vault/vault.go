// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package vault implements the value-transfer primitive. It tracks one
// balance per identity, including the ledger's custody account, and moves
// collateral between them. A transfer that would overdraw reports false
// instead of failing.
package vault

import (
	"github.com/holiman/uint256"

	"github.com/stakeward/stakeward/sslot"
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/ward"
)

var supplyKey = ward.Keccak256([]byte("token-supply"))

func accountKey(addr ward.Address) ward.Bytes32 {
	return ward.BytesToBytes32(append([]byte("a"), addr.Bytes()...))
}

// Vault moves collateral between identity accounts.
type Vault struct {
	context *sslot.Context
	custody ward.Address
	supply  *sslot.Uint256
}

// New creates the vault bound to the given storage account. Funds pulled
// into the ledger are booked on the custody account.
func New(addr ward.Address, st *state.State, custody ward.Address) *Vault {
	context := sslot.NewContext(addr, st)
	return &Vault{
		context: context,
		custody: custody,
		supply:  sslot.NewUint256(context, supplyKey),
	}
}

func (v *Vault) balanceSlot(addr ward.Address) *sslot.Uint256 {
	return sslot.NewUint256(v.context, accountKey(addr))
}

// Balance returns the spendable balance of addr.
func (v *Vault) Balance(addr ward.Address) (*uint256.Int, error) {
	return v.balanceSlot(addr).Get()
}

// CustodyBalance returns the balance held in the ledger's custody.
func (v *Vault) CustodyBalance() (*uint256.Int, error) {
	return v.balanceSlot(v.custody).Get()
}

// TotalSupply returns the total value ever minted.
func (v *Vault) TotalSupply() (*uint256.Int, error) {
	return v.supply.Get()
}

// Mint credits addr with new value. It is meant for genesis construction
// and development networks.
func (v *Vault) Mint(addr ward.Address, amount *uint256.Int) error {
	if err := v.balanceSlot(addr).Add(amount); err != nil {
		return err
	}
	return v.supply.Add(amount)
}

// Collect pulls amount from an identity into custody, reporting false when
// the identity's balance cannot cover it.
func (v *Vault) Collect(from ward.Address, amount *uint256.Int) (bool, error) {
	return v.move(from, v.custody, amount)
}

// Send releases amount from custody to an identity, reporting false when
// the custody balance cannot cover it.
func (v *Vault) Send(to ward.Address, amount *uint256.Int) (bool, error) {
	return v.move(v.custody, to, amount)
}

func (v *Vault) move(from, to ward.Address, amount *uint256.Int) (bool, error) {
	fromSlot := v.balanceSlot(from)
	bal, err := fromSlot.Get()
	if err != nil {
		return false, err
	}
	if bal.Lt(amount) {
		return false, nil
	}
	if err := fromSlot.Sub(amount); err != nil {
		return false, err
	}
	if err := v.balanceSlot(to).Add(amount); err != nil {
		return false, err
	}
	return true, nil
}
