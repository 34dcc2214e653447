// Copyright (c) 2025 The Stakeward developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the persisted ledger state.
// It follows the flow as below:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ stage ] -> [ updated store ]
//	          |
//	     [ lru cache ]
//	          |
//	  [ read-only store ]
package state
