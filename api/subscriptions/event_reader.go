// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/stakeward/stakeward/eventdb"
	"github.com/stakeward/stakeward/node"
	"github.com/stakeward/stakeward/ward"
)

type eventReader struct {
	node       *node.Node
	position   uint64
	identities []ward.Address
	names      []string
	limit      uint64
}

func newEventReader(node *node.Node, position uint64, identities []ward.Address, names []string, limit uint64) *eventReader {
	return &eventReader{
		node:       node,
		position:   position,
		identities: identities,
		names:      names,
		limit:      limit,
	}
}

// Read returns one page of events committed past the reader position and
// advances the position to the last returned sequence. hasMore flags a full
// page, so the next read should happen right away.
func (er *eventReader) Read() ([]any, bool, error) {
	events, err := er.node.FilterEvents(context.Background(), &eventdb.Filter{
		Identities: er.identities,
		Names:      er.names,
		Range: &eventdb.Range{
			Unit: eventdb.Sequence,
			From: er.position + 1,
		},
		Options: &eventdb.Options{Limit: er.limit},
	})
	if err != nil {
		return nil, false, err
	}
	var msgs []any
	for _, ev := range events {
		msgs = append(msgs, convertEvent(ev))
		er.position = ev.Sequence
	}
	hasMore := len(events) > 0 && uint64(len(events)) >= er.limit
	return msgs, hasMore, nil
}
