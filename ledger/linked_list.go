// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/sslot"
	"github.com/stakeward/stakeward/ward"
)

// linkedList is a doubly linked list over participant records, keeping the
// registry iterable in registration order. The links live inside the records
// themselves; only head, tail and count occupy slots of their own.
type linkedList struct {
	head    *sslot.Address
	tail    *sslot.Address
	count   *sslot.Uint64
	storage *storage
}

func newLinkedList(
	storage *storage,
	headPos ward.Bytes32,
	tailPos ward.Bytes32,
	countPos ward.Bytes32,
) *linkedList {
	return &linkedList{
		head:    sslot.NewAddress(storage.context, headPos),
		tail:    sslot.NewAddress(storage.context, tailPos),
		count:   sslot.NewUint64(storage.context, countPos),
		storage: storage,
	}
}

// Add appends the entry at the tail of the list and persists it.
func (l *linkedList) Add(addr ward.Address, entry *Participant) (added bool, err error) {
	defer func() {
		if err == nil && added {
			err = l.bump(1)
		}
	}()

	// clear any previous references in the new entry
	entry.Next = nil
	entry.Prev = nil

	oldTail, err := l.tail.Get()
	if err != nil {
		return false, err
	}
	if oldTail.IsZero() {
		// list is currently empty, set this entry to head & tail
		l.head.Set(&addr)
		l.tail.Set(&addr)
		return true, l.storage.SetParticipant(addr, entry)
	}

	oldTailEntry, err := l.storage.GetParticipant(oldTail)
	if err != nil {
		return false, err
	}
	if oldTailEntry.IsEmpty() {
		return false, errors.New("list tail entry missing")
	}
	oldTailEntry.Next = &addr
	entry.Prev = &oldTail

	if err := l.storage.SetParticipant(oldTail, oldTailEntry); err != nil {
		return false, err
	}
	if err := l.storage.SetParticipant(addr, entry); err != nil {
		return false, err
	}

	l.tail.Set(&addr)

	return true, nil
}

// Remove unlinks the entry from the list, clearing its references and
// persisting it. It reports false when addr is not stored.
func (l *linkedList) Remove(addr ward.Address, entry *Participant) (removed bool, err error) {
	defer func() {
		if err == nil && removed {
			err = l.bump(-1)
		}
	}()

	stored, err := l.storage.GetParticipant(addr)
	if err != nil {
		return false, err
	}
	if stored.IsEmpty() {
		return false, nil
	}

	prev := entry.Prev
	next := entry.Next

	if prev == nil || prev.IsZero() {
		l.head.Set(next)
	} else {
		prevEntry, err := l.storage.GetParticipant(*prev)
		if err != nil {
			return false, err
		}
		prevEntry.Next = next
		if err := l.storage.SetParticipant(*prev, prevEntry); err != nil {
			return false, err
		}
	}

	if next == nil || next.IsZero() {
		l.tail.Set(prev)
	} else {
		nextEntry, err := l.storage.GetParticipant(*next)
		if err != nil {
			return false, err
		}
		nextEntry.Prev = prev
		if err := l.storage.SetParticipant(*next, nextEntry); err != nil {
			return false, err
		}
	}

	entry.Next = nil
	entry.Prev = nil

	return true, l.storage.SetParticipant(addr, entry)
}

// Head returns the address of the first entry, zero when the list is empty.
func (l *linkedList) Head() (ward.Address, error) {
	return l.head.Get()
}

// Len returns the number of entries in the list.
func (l *linkedList) Len() (uint64, error) {
	return l.count.Get()
}

// Iter walks the list from head to tail and calls the callback for each
// entry. Returning an error from the callback aborts the walk.
func (l *linkedList) Iter(callback func(ward.Address, *Participant) error) error {
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}
	for !ptr.IsZero() {
		entry, err := l.storage.GetParticipant(ptr)
		if err != nil {
			return err
		}
		if entry.IsEmpty() {
			break
		}

		if err := callback(ptr, entry); err != nil {
			return err
		}

		if entry.Next == nil || entry.Next.IsZero() {
			break
		}
		ptr = *entry.Next
	}
	return nil
}

func (l *linkedList) bump(delta int64) error {
	n, err := l.count.Get()
	if err != nil {
		return err
	}
	l.count.Set(uint64(int64(n) + delta))
	return nil
}
