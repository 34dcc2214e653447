// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed ledger events over websocket.
// A subscriber names a position and optional filters; the stream backfills
// everything committed past the position, then follows new commits.
package subscriptions

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/log"
	"github.com/stakeward/stakeward/node"
	"github.com/stakeward/stakeward/ward"
)

const (
	pingPeriod = 10 * time.Second
	pongWait   = 2 * pingPeriod
	writeWait  = 5 * time.Second
)

var logger = log.WithContext("pkg", "subscriptions")

type msgReader interface {
	Read() (msgs []any, hasMore bool, err error)
}

type Subscriptions struct {
	node     *node.Node
	limit    uint64
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(node *node.Node, allowedOrigins []string, limit uint64) *Subscriptions {
	return &Subscriptions{
		node:  node,
		limit: limit,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(req *http.Request) bool {
				origin := req.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	reader, err := s.newEventReader(req)
	if err != nil {
		return err
	}

	conn, closed, err := s.setupConn(w, req)
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return err
	}
	// the connection is hijacked, errors from here on go out as close messages
	err = s.pipe(conn, reader, closed)
	if err != nil {
		logger.Debug("subscription broken", "err", err)
	}
	s.closeConn(conn, err)
	return nil
}

// newEventReader validates the request before the protocol upgrade, so a bad
// position or filter still comes back as a plain http error.
func (s *Subscriptions) newEventReader(req *http.Request) (*eventReader, error) {
	max, err := s.node.MaxSequence()
	if err != nil {
		return nil, err
	}
	position := max
	if val := req.URL.Query().Get("pos"); val != "" {
		position, err = strconv.ParseUint(val, 10, 64)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "pos"))
		}
		if position > max {
			return nil, utils.BadRequest(errors.New("pos: beyond the newest sequence"))
		}
	}
	var identities []ward.Address
	for _, val := range req.URL.Query()["identity"] {
		identity, err := ward.ParseAddress(val)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "identity"))
		}
		identities = append(identities, identity)
	}
	names := req.URL.Query()["name"]
	return newEventReader(s.node, position, identities, names, s.limit), nil
}

func (s *Subscriptions) setupConn(w http.ResponseWriter, req *http.Request) (*websocket.Conn, chan struct{}, error) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, nil, err
	}
	closed := make(chan struct{})

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	s.wg.Add(2)
	go func() {
		// drains incoming frames and flags the peer going away
		defer s.wg.Done()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				close(closed)
				return
			}
		}
	}()
	go func() {
		defer s.wg.Done()
		s.pingLoop(conn, closed)
	}()
	return conn, closed, nil
}

func (s *Subscriptions) pingLoop(conn *websocket.Conn, closed chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-s.done:
			return
		}
	}
}

func (s *Subscriptions) closeConn(conn *websocket.Conn, err error) {
	var msg []byte
	if err != nil {
		msg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
	} else {
		msg = websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	}
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		logger.Debug("write close message", "err", err)
	}
	if err := conn.Close(); err != nil {
		logger.Debug("close websocket", "err", err)
	}
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader, closed chan struct{}) error {
	ticker := s.node.NewTicker()
	for {
		msgs, hasMore, err := reader.Read()
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			select {
			case <-s.done:
				return nil
			case <-closed:
				return nil
			default:
			}
		} else {
			select {
			case <-s.done:
				return nil
			case <-closed:
				return nil
			case <-ticker.C():
			}
		}
	}
}

// Close breaks all open subscriptions and waits for their loops to stop.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("GET /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
