// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reject defines the typed errors a ledger operation returns when a
// precondition fails. A rejection is a normal outcome reported back to the
// caller; it is distinct from an internal error, which signals a storage or
// encoding fault and carries no kind.
package reject

import (
	"errors"
	"fmt"
)

// Kind classifies a rejection so that callers can tell a retryable condition
// (cooldown still running) from a permanently invalid request (not authorized)
// from a mis-sized amount.
type Kind uint8

const (
	Unknown Kind = iota
	NotAuthorized
	AlreadyRegistered
	NotRegistered
	InsufficientDeposit
	InsufficientStake
	InsufficientFunds
	ZeroAmount
	CooldownNotElapsed
	TransferFailed
	Reentrancy
)

func (k Kind) String() string {
	switch k {
	case NotAuthorized:
		return "NotAuthorized"
	case AlreadyRegistered:
		return "AlreadyRegistered"
	case NotRegistered:
		return "NotRegistered"
	case InsufficientDeposit:
		return "InsufficientDeposit"
	case InsufficientStake:
		return "InsufficientStake"
	case InsufficientFunds:
		return "InsufficientFunds"
	case ZeroAmount:
		return "ZeroAmount"
	case CooldownNotElapsed:
		return "CooldownNotElapsed"
	case TransferFailed:
		return "TransferFailed"
	case Reentrancy:
		return "Reentrancy"
	default:
		return "Unknown"
	}
}

// Error is a classified operation rejection.
type Error struct {
	kind Kind
	msg  string
}

// New creates a rejection of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Errorf creates a rejection with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns the rejection's classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// IsRejection reports whether err is, or wraps, an operation rejection.
func IsRejection(err error) bool {
	var r *Error
	return errors.As(err, &r)
}

// KindOf returns the rejection kind carried by err, or Unknown when err is
// not a rejection.
func KindOf(err error) Kind {
	var r *Error
	if errors.As(err, &r) {
		return r.kind
	}
	return Unknown
}
