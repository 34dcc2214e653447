// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists committed ledger notifications and serves
// filtered queries over them.
package eventdb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/holiman/uint256"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/stakeward/stakeward/ward"
)

// EventDB is the sqlite backed notification log.
type EventDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the event db at the given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem creates an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close closes the event db.
func (db *EventDB) Close() {
	db.db.Close()
}

// Path returns the db file path.
func (db *EventDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the sqlite driver.
func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Append stores the events in order, assigning each its sequence number.
func (db *EventDB) Append(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, ev := range events {
		res, err := tx.Exec("INSERT INTO event(ts, name, identity, amount, cooldown) VALUES(?, ?, ?, ?, ?);",
			ev.Time,
			ev.Name,
			ev.Identity.Bytes(),
			amountValue(ev.Amount),
			ev.Cooldown)
		if err != nil {
			tx.Rollback()
			return err
		}
		seq, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return err
		}
		ev.Sequence = uint64(seq)
	}
	return tx.Commit()
}

// MaxSequence returns the sequence of the newest stored event, zero when
// the log is empty.
func (db *EventDB) MaxSequence() (uint64, error) {
	var seq uint64
	if err := db.db.QueryRow("SELECT ifnull(max(seq), 0) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

// Filter returns the events selected by the filter, a nil filter selects
// everything.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		col := "seq"
		if filter.Range.Unit == Time {
			col = "ts"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + col + " >= ?"
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + col + " <= ?"
		}
	}
	if len(filter.Identities) > 0 {
		stmt += " AND identity IN (?" + strings.Repeat(", ?", len(filter.Identities)-1) + ")"
		for _, identity := range filter.Identities {
			args = append(args, identity.Bytes())
		}
	}
	if len(filter.Names) > 0 {
		stmt += " AND name IN (?" + strings.Repeat(", ?", len(filter.Names)-1) + ")"
		for _, name := range filter.Names {
			args = append(args, name)
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			seq      uint64
			ts       uint64
			name     string
			identity []byte
			amount   []byte
			cooldown uint64
		)
		if err := rows.Scan(
			&seq,
			&ts,
			&name,
			&identity,
			&amount,
			&cooldown,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Sequence: seq,
			Time:     ts,
			Name:     name,
			Identity: ward.BytesToAddress(identity),
			Amount:   new(uint256.Int).SetBytes(amount),
			Cooldown: cooldown,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
