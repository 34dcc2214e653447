// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/node"
	"github.com/stakeward/stakeward/ward"
)

// Account is the wire form of a vault account.
type Account struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Accounts struct {
	node *node.Node
}

func New(node *node.Node) *Accounts {
	return &Accounts{
		node,
	}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := ward.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	balance, err := a.node.AccountBalance(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{Balance: utils.Amount(balance)})
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
