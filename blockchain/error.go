// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of consensus rejection produced by the PoS
// kernel.
type ErrorCode int

const (
	// ErrNonCoinstake indicates CheckProofOfStake was handed a block whose
	// second transaction is not a coinstake.
	ErrNonCoinstake ErrorCode = iota

	// ErrStakeTimeViolation indicates the coinstake's timestamp is earlier
	// than the previous output's timestamp.
	ErrStakeTimeViolation

	// ErrStakeMinAge indicates the staked coin has not yet reached
	// STAKE_MIN_AGE at the coinstake's timestamp.
	ErrStakeMinAge

	// ErrKernelHashTooHigh indicates the kernel hash exceeds the coin-day
	// weighted target.
	ErrKernelHashTooHigh

	// ErrPrevoutNotFound indicates the coinstake's staked output does not
	// exist in the UTXO view.
	ErrPrevoutNotFound

	// ErrPrevoutImmature indicates the staked output has not reached
	// CoinbaseMaturity confirmations.
	ErrPrevoutImmature

	// ErrReadTxPrev indicates the previous transaction could not be read
	// back from the block file reader.
	ErrReadTxPrev

	// ErrBlockFromMismatch indicates the block resolved via the tx index
	// disagrees with the block resolved via ancestor-at-height.
	ErrBlockFromMismatch

	// ErrReachedBestBlock indicates GetKernelStakeModifier walked off the
	// tip of the active chain before the required time budget elapsed, and
	// there is no prospect of the coin maturing later either.
	ErrReachedBestBlock
)

var errorCodeStrings = map[ErrorCode]string{
	ErrNonCoinstake:       "ErrNonCoinstake",
	ErrStakeTimeViolation: "ErrStakeTimeViolation",
	ErrStakeMinAge:        "ErrStakeMinAge",
	ErrKernelHashTooHigh:  "ErrKernelHashTooHigh",
	ErrPrevoutNotFound:    "ErrPrevoutNotFound",
	ErrPrevoutImmature:    "ErrPrevoutImmature",
	ErrReadTxPrev:         "ErrReadTxPrev",
	ErrBlockFromMismatch:  "ErrBlockFromMismatch",
	ErrReachedBestBlock:   "ErrReachedBestBlock",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a consensus rule violation produced while validating
// a coinstake. Every RuleError carries a DoS score: the caller is expected
// to penalize whatever peer relayed the offending block by that amount,
// mirroring the CValidationState::DoS(100, ...) calls in the reference
// implementation. This field is this port's one addition to the teacher's
// RuleError/ErrorCode shape — see DESIGN.md.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
	DoSScore    int
}

// Error satisfies the error interface and prints a human-readable message.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError with the consensus-standard DoS weight of
// 100 called for by every fatal precondition in spec section 4.C.3/4.C.4.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc, DoSScore: 100}
}

// ruleErrorDoS creates a RuleError carrying an explicit DoS weight, for the
// one case in this package that isn't a consensus violation at all: a
// non-coinstake transaction handed to CheckProofOfStake. The reference
// implementation's own check (`if (!tx.IsCoinStake()) return error(...)`)
// assigns no DoS score there either — it is a caller-wiring mistake, not
// something a remote peer can trigger.
func ruleErrorDoS(c ErrorCode, desc string, dosScore int) RuleError {
	return RuleError{ErrorCode: c, Description: desc, DoSScore: dosScore}
}

// Internal invariant errors. These indicate a caller wired the block-index
// graph incorrectly (e.g. genesis missing its generated modifier, or a
// round index outside [0,64)) and must be unreachable given a correctly
// constructed BlockIndex. They are not RuleErrors: there is no remote peer
// to penalize, the local graph is simply inconsistent.
var (
	errMissingAncestorModifier = errors.New("blockchain: no ancestor with a generated stake modifier was found before genesis")
	errNoCandidates            = errors.New("blockchain: no candidate blocks available for stake modifier selection round")
	errSectionOutOfRange       = errors.New("blockchain: selection-interval section index out of range [0,64)")

	// errKernelModifierNotYetAvailable is returned by getKernelStakeModifier
	// when the chain has not yet grown far enough past blockFrom for the
	// modifier selection window to close, but there is no indication that
	// it never will (the local node may simply be behind on sync). Callers
	// should treat this as "try again once more blocks arrive", not as a
	// rule violation.
	errKernelModifierNotYetAvailable = errors.New("blockchain: stake modifier selection window has not yet closed past block_from")
)
