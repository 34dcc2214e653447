// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package operator

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/node"
)

type Operator struct {
	node *node.Node
}

func New(node *node.Node) *Operator {
	return &Operator{
		node,
	}
}

func (o *Operator) handleSetConfig(w http.ResponseWriter, req *http.Request) error {
	var body ConfigRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	floor, err := utils.ParseAmount(body.DepositFloor)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "depositFloor"))
	}
	ev, err := o.node.SetConfiguration(body.Caller, floor, body.CooldownPeriod)
	if err != nil {
		return utils.LedgerError(err)
	}
	return utils.WriteJSON(w, ev)
}

func (o *Operator) handleSlash(w http.ResponseWriter, req *http.Request) error {
	var body SlashRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "amount"))
	}
	ev, err := o.node.Slash(body.Caller, body.Target, amount)
	if err != nil {
		return utils.LedgerError(err)
	}
	return utils.WriteJSON(w, ev)
}

func (o *Operator) handleSweep(w http.ResponseWriter, req *http.Request) error {
	var body SweepRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := utils.ParseAmount(body.Amount)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "amount"))
	}
	ev, err := o.node.Sweep(body.Caller, amount)
	if err != nil {
		return utils.LedgerError(err)
	}
	return utils.WriteJSON(w, ev)
}

func (o *Operator) handleGetAdmins(w http.ResponseWriter, _ *http.Request) error {
	admins, err := o.node.Admins()
	if err != nil {
		return err
	}
	out := make([]*Admin, len(admins))
	for i, admin := range admins {
		out[i] = &Admin{
			Address:   admin.Address,
			GrantedAt: admin.GrantedAt,
		}
	}
	return utils.WriteJSON(w, out)
}

func (o *Operator) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/config").
		Methods(http.MethodPost).
		Name("POST /operator/config").
		HandlerFunc(utils.WrapHandlerFunc(o.handleSetConfig))
	sub.Path("/slash").
		Methods(http.MethodPost).
		Name("POST /operator/slash").
		HandlerFunc(utils.WrapHandlerFunc(o.handleSlash))
	sub.Path("/sweep").
		Methods(http.MethodPost).
		Name("POST /operator/sweep").
		HandlerFunc(utils.WrapHandlerFunc(o.handleSweep))
	sub.Path("/admins").
		Methods(http.MethodGet).
		Name("GET /operator/admins").
		HandlerFunc(utils.WrapHandlerFunc(o.handleGetAdmins))
}
