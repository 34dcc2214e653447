// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sslot provides structured storage slots, binding typed values to
// named positions under a system account, similar to variables in a contract.
package sslot

import (
	"github.com/stakeward/stakeward/state"
	"github.com/stakeward/stakeward/ward"
)

// Context binds slot accessors to one system account over a state.
type Context struct {
	address ward.Address
	state   *state.State
}

func NewContext(address ward.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() ward.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
