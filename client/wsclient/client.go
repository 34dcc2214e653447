// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package wsclient streams committed ledger events from a stakeward node
// over a websocket connection.
package wsclient

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/stakeward/stakeward/api/subscriptions"
)

var ErrUnexpectedMsg = errors.New("unexpected message format")

type Client struct {
	host   string
	scheme string
}

// NewClient parses the node URL into a websocket dial target. Both http(s)
// and ws(s) URLs are accepted.
func NewClient(url string) (*Client, error) {
	var host string
	var scheme string

	if strings.Contains(url, "https://") || strings.Contains(url, "wss://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "wss://")
		scheme = "wss"
	} else if strings.Contains(url, "http://") || strings.Contains(url, "ws://") {
		host = strings.TrimPrefix(strings.TrimPrefix(url, "http://"), "ws://")
		scheme = "ws"
	} else {
		return nil, fmt.Errorf("invalid url")
	}

	return &Client{
		host:   strings.TrimSuffix(host, "/"),
		scheme: scheme,
	}, nil
}

// SubscribeEvents opens the event stream. The query carries the position and
// filter parameters and may be empty.
func (c *Client) SubscribeEvents(query string) (*Subscription[*subscriptions.EventMessage], error) {
	conn, err := c.connect("/subscriptions/event", query)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}

	return subscribe[subscriptions.EventMessage](conn), nil
}

// subscribe pumps messages of type T from conn into a channel. The pump
// stops on the first read error; Unsubscribe closes the connection, which
// also unblocks a pending read.
func subscribe[T any](conn *websocket.Conn) *Subscription[*T] {
	eventChan := make(chan EventWrapper[*T])

	go func() {
		defer close(eventChan)

		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				eventChan <- EventWrapper[*T]{Error: fmt.Errorf("%w: %w", ErrUnexpectedMsg, err)}
				return
			}

			eventChan <- EventWrapper[*T]{Data: &data}
		}
	}()

	return &Subscription[*T]{
		EventChan:   eventChan,
		Unsubscribe: conn.Close,
	}
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	u := url.URL{
		Scheme:   c.scheme,
		Host:     c.host,
		Path:     endpoint,
		RawQuery: rawQuery,
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
