// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpclient provides an HTTP client to interact with a stakeward
// node. It offers typed methods for the participant, pool, operator and
// event endpoints.
package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stakeward/stakeward/api/accounts"
	"github.com/stakeward/stakeward/api/operator"
	"github.com/stakeward/stakeward/api/participants"
	"github.com/stakeward/stakeward/api/pool"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/ward"
)

var ErrNot200Status = errors.New("not 200 status code")

// Client represents the HTTP client for interacting with a stakeward node.
// It manages communication via HTTP requests.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

// GetAccount retrieves the vault balance of the given address.
func (c *Client) GetAccount(addr ward.Address) (*accounts.Account, error) {
	body, err := c.httpGET(c.url + "/accounts/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve account - %w", err)
	}

	var account accounts.Account
	if err = json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("unable to unmarshal account - %w", err)
	}

	return &account, nil
}

// GetPool retrieves the pool-wide configuration and totals.
func (c *Client) GetPool() (*pool.Status, error) {
	body, err := c.httpGET(c.url + "/pool")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve pool status - %w", err)
	}

	var status pool.Status
	if err = json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("unable to unmarshal pool status - %w", err)
	}

	return &status, nil
}

// GetParticipant retrieves the record of the given address. Unregistered
// addresses read as a zero record.
func (c *Client) GetParticipant(addr ward.Address) (*participants.Record, error) {
	body, err := c.httpGET(c.url + "/participants/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve participant - %w", err)
	}

	var record participants.Record
	if err = json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("unable to unmarshal participant - %w", err)
	}

	return &record, nil
}

// GetParticipants retrieves the participant list. The query carries the
// paging parameters and may be empty.
func (c *Client) GetParticipants(query string) ([]*participants.Record, error) {
	url := c.url + "/participants"
	if query != "" {
		url += "?" + query
	}

	body, err := c.httpGET(url)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve participants - %w", err)
	}

	var records []*participants.Record
	if err = json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unable to unmarshal participants - %w", err)
	}

	return records, nil
}

// Register submits a registration with its deposit.
func (c *Client) Register(req *participants.RegisterRequest) (*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/participants", req)
	if err != nil {
		return nil, fmt.Errorf("unable to register - %w", err)
	}
	return unmarshalEvent(body)
}

// Unregister removes the record of the given address, refunding its stake.
func (c *Client) Unregister(addr ward.Address) (*eventdb.Event, error) {
	body, err := c.httpDELETE(c.url + "/participants/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to unregister - %w", err)
	}
	return unmarshalEvent(body)
}

// Stake adds to the stake of the given address.
func (c *Client) Stake(addr ward.Address, req *participants.StakeRequest) (*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/participants/"+addr.String()+"/stake", req)
	if err != nil {
		return nil, fmt.Errorf("unable to stake - %w", err)
	}
	return unmarshalEvent(body)
}

// Unstake withdraws from the stake of the given address.
func (c *Client) Unstake(addr ward.Address, req *participants.StakeRequest) (*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/participants/"+addr.String()+"/unstake", req)
	if err != nil {
		return nil, fmt.Errorf("unable to unstake - %w", err)
	}
	return unmarshalEvent(body)
}

// SetConfig replaces the deposit floor and the cooldown period.
func (c *Client) SetConfig(req *operator.ConfigRequest) (*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/operator/config", req)
	if err != nil {
		return nil, fmt.Errorf("unable to set configuration - %w", err)
	}
	return unmarshalEvent(body)
}

// Slash confiscates stake from the target of the request.
func (c *Client) Slash(req *operator.SlashRequest) (*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/operator/slash", req)
	if err != nil {
		return nil, fmt.Errorf("unable to slash - %w", err)
	}
	return unmarshalEvent(body)
}

// Sweep withdraws confiscated funds to the caller of the request.
func (c *Client) Sweep(req *operator.SweepRequest) (*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/operator/sweep", req)
	if err != nil {
		return nil, fmt.Errorf("unable to sweep - %w", err)
	}
	return unmarshalEvent(body)
}

// GetAdmins retrieves the admin set.
func (c *Client) GetAdmins() ([]*operator.Admin, error) {
	body, err := c.httpGET(c.url + "/operator/admins")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve admins - %w", err)
	}

	var admins []*operator.Admin
	if err = json.Unmarshal(body, &admins); err != nil {
		return nil, fmt.Errorf("unable to unmarshal admins - %w", err)
	}

	return admins, nil
}

// FilterEvents filters committed events based on the provided filter.
func (c *Client) FilterEvents(filter *eventdb.Filter) ([]*eventdb.Event, error) {
	body, err := c.httpPOST(c.url+"/events", filter)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}

	var events []*eventdb.Event
	if err = json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("unable to unmarshal events - %w", err)
	}

	return events, nil
}

func unmarshalEvent(body []byte) (*eventdb.Event, error) {
	var ev eventdb.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("unable to unmarshal event - %w", err)
	}
	return &ev, nil
}
