// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participants

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/ledger"
	"github.com/stakeward/stakeward/node"
	"github.com/stakeward/stakeward/ward"
)

// errPageFull aborts the registry walk once the requested page is filled.
var errPageFull = errors.New("page full")

type Participants struct {
	node  *node.Node
	limit uint64
}

func New(node *node.Node, listLimit uint64) *Participants {
	return &Participants{
		node,
		listLimit,
	}
}

func (p *Participants) handleGetList(w http.ResponseWriter, req *http.Request) error {
	offset, err := parseCount(req.URL.Query().Get("offset"), 0)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	limit, err := parseCount(req.URL.Query().Get("limit"), p.limit)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "limit"))
	}
	if limit > p.limit {
		return utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", p.limit))
	}

	records := make([]*Record, 0, limit)
	var walked uint64
	err = p.node.Participants(func(addr ward.Address, rec *ledger.Participant) error {
		if walked < offset {
			walked++
			return nil
		}
		if uint64(len(records)) >= limit {
			return errPageFull
		}
		records = append(records, convertRecord(addr, rec))
		return nil
	})
	if err != nil && err != errPageFull {
		return err
	}
	return utils.WriteJSON(w, records)
}

func (p *Participants) handleGetRecord(w http.ResponseWriter, req *http.Request) error {
	addr, err := ward.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	rec, err := p.node.Participant(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertRecord(addr, rec))
}

func (p *Participants) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body RegisterRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "amount"))
	}
	ev, err := p.node.Register(body.Caller, amount)
	if err != nil {
		return utils.LedgerError(err)
	}
	return utils.WriteJSON(w, ev)
}

func (p *Participants) handleUnregister(w http.ResponseWriter, req *http.Request) error {
	addr, err := ward.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	ev, err := p.node.Unregister(addr)
	if err != nil {
		return utils.LedgerError(err)
	}
	return utils.WriteJSON(w, ev)
}

func (p *Participants) handleStake(w http.ResponseWriter, req *http.Request) error {
	addr, amount, err := p.parseStake(req)
	if err != nil {
		return err
	}
	ev, err := p.node.Stake(addr, amount)
	if err != nil {
		return utils.LedgerError(err)
	}
	return utils.WriteJSON(w, ev)
}

func (p *Participants) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, amount, err := p.parseStake(req)
	if err != nil {
		return err
	}
	ev, err := p.node.Unstake(addr, amount)
	if err != nil {
		return utils.LedgerError(err)
	}
	return utils.WriteJSON(w, ev)
}

func (p *Participants) parseStake(req *http.Request) (ward.Address, *uint256.Int, error) {
	addr, err := ward.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return ward.Address{}, nil, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return ward.Address{}, nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(body.Amount)
	if err != nil {
		return ward.Address{}, nil, utils.BadRequest(errors.WithMessage(err, "amount"))
	}
	return addr, amount, nil
}

func parseCount(val string, def uint64) (uint64, error) {
	if val == "" {
		return def, nil
	}
	return strconv.ParseUint(val, 10, 64)
}

func (p *Participants) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /participants").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetList))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /participants").
		HandlerFunc(utils.WrapHandlerFunc(p.handleRegister))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /participants/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetRecord))
	sub.Path("/{address}").
		Methods(http.MethodDelete).
		Name("DELETE /participants/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnregister))
	sub.Path("/{address}/stake").
		Methods(http.MethodPost).
		Name("POST /participants/{address}/stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleStake))
	sub.Path("/{address}/unstake").
		Methods(http.MethodPost).
		Name("POST /participants/{address}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnstake))
}
