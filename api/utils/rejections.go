// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/stakeward/stakeward/ledger/reject"
)

// LedgerError converts a failed ledger operation into the HTTP error served
// to the caller. Rejections become client errors with the kind as a
// greppable message prefix; anything else stays an internal error.
func LedgerError(err error) error {
	kind := reject.KindOf(err)
	if kind == reject.Unknown {
		return err
	}
	return HTTPError(errors.WithMessage(err, kind.String()), rejectionStatus(kind))
}

func rejectionStatus(kind reject.Kind) int {
	switch kind {
	case reject.NotAuthorized:
		return http.StatusForbidden
	case reject.ZeroAmount, reject.InsufficientDeposit:
		return http.StatusBadRequest
	default:
		// state preconditions: registration, cooldown, balances, failed
		// transfers, reentrancy
		return http.StatusConflict
	}
}
