// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/api/utils"
	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/node"
)

type Events struct {
	node  *node.Node
	limit uint64
}

func New(node *node.Node, limit uint64) *Events {
	return &Events{
		node,
		limit,
	}
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", math.MaxInt64))
	}
	if filter.Range != nil && filter.Range.To != 0 && filter.Range.From > filter.Range.To {
		return utils.BadRequest(fmt.Errorf("range.to must be greater than or equal to range.from"))
	}
	if filter.Options == nil {
		// if filter.Options is nil, set to the default limit +1
		// to detect whether there are more events than the default limit
		filter.Options = &eventdb.Options{
			Offset: 0,
			Limit:  e.limit + 1,
		}
	}

	fes, err := e.node.FilterEvents(req.Context(), &filter)
	if err != nil {
		return err
	}

	// ensure the result size is less than the configured limit
	if len(fes) > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	if fes == nil {
		fes = []*eventdb.Event{}
	}

	return utils.WriteJSON(w, fes)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
