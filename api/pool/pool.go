// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/node"
)

// Status is the wire form of the pool-wide configuration and totals.
type Status struct {
	DepositFloor     *math.HexOrDecimal256 `json:"depositFloor"`
	CooldownPeriod   uint64                `json:"cooldownPeriod"`
	TotalStaked      *math.HexOrDecimal256 `json:"totalStaked"`
	ConfiscatedTotal *math.HexOrDecimal256 `json:"confiscatedTotal"`
	Participants     uint64                `json:"participants"`
	CustodyBalance   *math.HexOrDecimal256 `json:"custodyBalance"`
	SchemaVersion    uint64                `json:"schemaVersion"`
}

type Pool struct {
	node *node.Node
}

func New(node *node.Node) *Pool {
	return &Pool{
		node,
	}
}

func (p *Pool) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	status, err := p.node.PoolStatus()
	if err != nil {
		return err
	}
	custody, err := p.node.CustodyBalance()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Status{
		DepositFloor:     utils.Amount(status.DepositFloor),
		CooldownPeriod:   status.CooldownPeriod,
		TotalStaked:      utils.Amount(status.TotalStaked),
		ConfiscatedTotal: utils.Amount(status.ConfiscatedTotal),
		Participants:     status.Participants,
		CustodyBalance:   utils.Amount(custody),
		SchemaVersion:    status.SchemaVersion,
	})
}

func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStatus))
}
