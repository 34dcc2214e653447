// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client is the Go interface to a stakeward node. It wraps the REST
// endpoints and the event stream behind typed methods; the raw transports
// stay reachable for anything the wrappers do not cover.
package client

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/stakeward/stakeward/api/accounts"
	"github.com/stakeward/stakeward/api/operator"
	"github.com/stakeward/stakeward/api/participants"
	"github.com/stakeward/stakeward/api/pool"
	"github.com/stakeward/stakeward/api/subscriptions"
	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/client/httpclient"
	"github.com/stakeward/stakeward/client/wsclient"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/ward"
)

type Client struct {
	httpConn *httpclient.Client
	wsConn   *wsclient.Client
}

// New creates a client for the REST endpoints only.
func New(url string) *Client {
	return &Client{
		httpConn: httpclient.New(url),
	}
}

// NewWithWS creates a client that can also open event subscriptions.
func NewWithWS(url string) (*Client, error) {
	wsClient, err := wsclient.NewClient(url)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpConn: httpclient.New(url),
		wsConn:   wsClient,
	}, nil
}

type Option func(*reqOptions)

type reqOptions struct {
	offset     *uint64
	limit      *uint64
	position   *uint64
	identities []ward.Address
	names      []string
}

func applyOptions(opts []Option) *reqOptions {
	options := &reqOptions{}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Offset skips the first n entries of a listing.
func Offset(n uint64) Option {
	return func(o *reqOptions) {
		o.offset = &n
	}
}

// Limit caps the number of entries of a listing.
func Limit(n uint64) Option {
	return func(o *reqOptions) {
		o.limit = &n
	}
}

// Position resumes an event subscription after the given sequence.
func Position(pos uint64) Option {
	return func(o *reqOptions) {
		o.position = &pos
	}
}

// Identity restricts an event subscription to the given identity. Repeats OR.
func Identity(addr ward.Address) Option {
	return func(o *reqOptions) {
		o.identities = append(o.identities, addr)
	}
}

// EventName restricts an event subscription to the given name. Repeats OR.
func EventName(name string) Option {
	return func(o *reqOptions) {
		o.names = append(o.names, name)
	}
}

func (c *Client) RawHTTPClient() *httpclient.Client {
	return c.httpConn
}

func (c *Client) RawWSClient() *wsclient.Client {
	return c.wsConn
}

// Account returns the vault balance of addr.
func (c *Client) Account(addr ward.Address) (*accounts.Account, error) {
	return c.httpConn.GetAccount(addr)
}

// Pool returns the pool-wide configuration and totals.
func (c *Client) Pool() (*pool.Status, error) {
	return c.httpConn.GetPool()
}

// Participant returns the record of addr; unregistered addresses read as a
// zero record.
func (c *Client) Participant(addr ward.Address) (*participants.Record, error) {
	return c.httpConn.GetParticipant(addr)
}

// Participants lists registered participants in registration order,
// paged with Offset and Limit.
func (c *Client) Participants(opts ...Option) ([]*participants.Record, error) {
	options := applyOptions(opts)

	query := url.Values{}
	if options.offset != nil {
		query.Set("offset", strconv.FormatUint(*options.offset, 10))
	}
	if options.limit != nil {
		query.Set("limit", strconv.FormatUint(*options.limit, 10))
	}
	return c.httpConn.GetParticipants(query.Encode())
}

// Register submits a registration for caller with amount as its deposit.
func (c *Client) Register(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	return c.httpConn.Register(&participants.RegisterRequest{
		Caller: caller,
		Amount: utils.Amount(amount),
	})
}

// Unregister removes the record of caller, refunding its whole stake.
func (c *Client) Unregister(caller ward.Address) (*eventdb.Event, error) {
	return c.httpConn.Unregister(caller)
}

// Stake adds amount to the stake of caller.
func (c *Client) Stake(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	return c.httpConn.Stake(caller, &participants.StakeRequest{Amount: utils.Amount(amount)})
}

// Unstake withdraws amount from the stake of caller.
func (c *Client) Unstake(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	return c.httpConn.Unstake(caller, &participants.StakeRequest{Amount: utils.Amount(amount)})
}

// SetConfiguration replaces the deposit floor and the cooldown period.
// The caller must hold the admin capability.
func (c *Client) SetConfiguration(caller ward.Address, depositFloor *uint256.Int, cooldownPeriod uint64) (*eventdb.Event, error) {
	return c.httpConn.SetConfig(&operator.ConfigRequest{
		Caller:         caller,
		DepositFloor:   utils.Amount(depositFloor),
		CooldownPeriod: cooldownPeriod,
	})
}

// Slash confiscates amount from the stake of target. The caller must hold
// the admin capability.
func (c *Client) Slash(caller, target ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	return c.httpConn.Slash(&operator.SlashRequest{
		Caller: caller,
		Target: target,
		Amount: utils.Amount(amount),
	})
}

// Sweep withdraws amount of the confiscated pool to caller. The caller must
// hold the admin capability.
func (c *Client) Sweep(caller ward.Address, amount *uint256.Int) (*eventdb.Event, error) {
	return c.httpConn.Sweep(&operator.SweepRequest{
		Caller: caller,
		Amount: utils.Amount(amount),
	})
}

// Admins returns the admin set.
func (c *Client) Admins() ([]*operator.Admin, error) {
	return c.httpConn.GetAdmins()
}

// FilterEvents queries committed events.
func (c *Client) FilterEvents(filter *eventdb.Filter) ([]*eventdb.Event, error) {
	return c.httpConn.FilterEvents(filter)
}

// SubscribeEvents streams committed events, starting after the Position
// sequence (the newest when not given), restricted by Identity and EventName.
func (c *Client) SubscribeEvents(opts ...Option) (*wsclient.Subscription[*subscriptions.EventMessage], error) {
	if c.wsConn == nil {
		return nil, fmt.Errorf("not a websocket typed client")
	}
	options := applyOptions(opts)

	query := url.Values{}
	if options.position != nil {
		query.Set("pos", strconv.FormatUint(*options.position, 10))
	}
	for _, addr := range options.identities {
		query.Add("identity", addr.String())
	}
	for _, name := range options.names {
		query.Add("name", name)
	}
	return c.wsConn.SubscribeEvents(query.Encode())
}
