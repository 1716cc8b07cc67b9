// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math/big"
	"sort"

	"github.com/Dracarys07/deeponion/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// hashToBig interprets a chainhash.Hash as an unsigned 256-bit integer. The
// hash's internal byte layout is little-endian (the chain's canonical
// double-SHA256 output, unreversed), so the bytes are reversed before
// handing them to math/big, which wants big-endian input. This mirrors the
// teacher's own blockchain.HashToBig and every arith_uint256 comparison in
// the reference implementation.
func hashToBig(h chainhash.Hash) *big.Int {
	buf := h
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// stakeModifierSelectionIntervalSection returns S(section), the length in
// seconds of the section-th of the 64 selection rounds.
//
// S(i) = ModifierInterval * 63 / (63 + (63-i)*(ModifierIntervalRatio-1))
//
// The formula is deliberately non-uniform: early rounds get short windows
// and late rounds get long ones, which makes it expensive for an attacker
// to grind a favorable selection across the entire interval.
func stakeModifierSelectionIntervalSection(params *chaincfg.Params, section int) int64 {
	if section < 0 || section >= 64 {
		panic(errSectionOutOfRange)
	}
	return params.ModifierInterval * 63 /
		(63 + (63-int64(section))*(params.ModifierIntervalRatio-1))
}

// stakeModifierSelectionInterval returns T, the sum of all 64 section
// lengths — the total time window from which stake-modifier contributors
// are drawn.
func stakeModifierSelectionInterval(params *chaincfg.Params) int64 {
	var total int64
	for i := 0; i < 64; i++ {
		total += stakeModifierSelectionIntervalSection(params, i)
	}
	return total
}

// getLastStakeModifier walks parent pointers from node back to the most
// recent ancestor (inclusive) whose GeneratedStakeModifier flag is set, and
// returns that ancestor's modifier and block time. It fails if genesis is
// reached without ever finding one, which should be unreachable given a
// correctly constructed BlockIndex (genesis always has
// GeneratedStakeModifier = true per spec section 3's invariant).
func getLastStakeModifier(node *BlockNode) (modifier uint64, modTime int64, err error) {
	if node == nil {
		return 0, 0, errMissingAncestorModifier
	}
	for node.parent != nil && !node.GeneratedStakeModifier {
		node = node.parent
	}
	if !node.GeneratedStakeModifier {
		return 0, 0, errMissingAncestorModifier
	}
	return node.StakeModifier, int64(node.Timestamp), nil
}

// modifierCandidate is one entry of the timestamp-sorted vector the
// reference implementation builds as vSortedByTimestamp.
type modifierCandidate struct {
	time int64
	node *BlockNode
}

// sortModifierCandidates orders candidates by ascending block time, and —
// since the reference implementation's reverse-then-stable-sort only
// matters when two blocks share a timestamp — breaks ties by ascending
// unsigned big-endian comparison of the block hash. See SPEC_FULL.md
// section 9 for why this tie-break was chosen: it is a total order, so it
// is reproducible byte-for-byte by any conforming implementation, which a
// "whatever order they were chain-walked in" tie-break is not.
func sortModifierCandidates(candidates []modifierCandidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].time != candidates[j].time {
			return candidates[i].time < candidates[j].time
		}
		return hashToBig(candidates[i].node.Hash).Cmp(hashToBig(candidates[j].node.Hash)) < 0
	})
}

// selectBlockFromCandidates picks exactly one block for the current
// selection round from candidates, skipping any hash already present in
// selected. It scans candidates in (already sorted) order, stopping early
// once a selection has been made for this round and a later candidate's
// time exceeds selectionIntervalStop — exactly as the reference
// implementation's SelectBlockFromCandidates does.
func selectBlockFromCandidates(candidates []modifierCandidate, selected map[chainhash.Hash]struct{}, selectionIntervalStop int64, prevModifier uint64) (*BlockNode, error) {
	var (
		chosen    *BlockNode
		bestHash  *big.Int
		haveBest  bool
	)

	for _, c := range candidates {
		if haveBest && c.time > selectionIntervalStop {
			break
		}
		if _, skip := selected[c.node.Hash]; skip {
			continue
		}

		proof := c.node.Hash
		if c.node.IsProofOfStake {
			proof = c.node.HashProofOfStake
		}

		selectionHash, err := hashElements(proof, prevModifier)
		if err != nil {
			return nil, err
		}
		selectionInt := hashToBig(selectionHash)

		// Proof-of-stake candidates are favored over proof-of-work ones by
		// dividing their selection hash by 2**32: a PoS candidate's hash is
		// then almost always smaller, so it nearly always wins a tie in
		// timing against a PoW candidate. This preserves the energy
		// efficiency property the kernel protocol is built around.
		if c.node.IsProofOfStake {
			selectionInt.Rsh(selectionInt, 32)
		}

		if !haveBest || selectionInt.Cmp(bestHash) < 0 {
			haveBest = true
			bestHash = selectionInt
			chosen = c.node
		}
	}

	if !haveBest {
		return nil, errNoCandidates
	}
	return chosen, nil
}

// ComputeNextStakeModifier computes the stake modifier that takes effect at
// the block being built on top of prevIndex. prevIndex is nil exactly when
// the block under construction is the genesis block, in which case the
// modifier is 0 by definition and is always reported as freshly generated.
//
// Otherwise: if no MODIFIER_INTERVAL boundary has been crossed since the
// modifier was last generated, the previous modifier is returned unchanged
// with generated=false — modifiers are recomputed on a fixed real-time
// cadence, not every block, specifically so that an attacker cannot
// influence more than one round's worth of bits no matter how many blocks
// of a sidechain they generate. Otherwise a fresh 64-bit modifier is
// selected one bit per round across 64 rounds, each round drawing from a
// progressively wider time window (stakeModifierSelectionIntervalSection),
// folding in the chosen block's entropy bit.
func ComputeNextStakeModifier(params *chaincfg.Params, prevIndex *BlockNode) (modifier uint64, generated bool, err error) {
	if prevIndex == nil {
		return 0, true, nil
	}

	prevModifier, modTime, err := getLastStakeModifier(prevIndex)
	if err != nil {
		return 0, false, err
	}

	log.Debugf("ComputeNextStakeModifier: prev modifier=0x%016x time=%d", prevModifier, modTime)

	if modTime/params.ModifierInterval >= int64(prevIndex.Timestamp)/params.ModifierInterval {
		log.Debugf("ComputeNextStakeModifier: no new interval, keeping modifier (height=%d time=%d)",
			prevIndex.Height, prevIndex.Timestamp)
		return prevModifier, false, nil
	}

	selectionInterval := stakeModifierSelectionInterval(params)
	selectionIntervalStart := (int64(prevIndex.Timestamp)/params.ModifierInterval)*params.ModifierInterval - selectionInterval

	candidates := make([]modifierCandidate, 0, 64*params.ModifierInterval/params.PosTargetSpacing)
	for node := prevIndex; node != nil && int64(node.Timestamp) >= selectionIntervalStart; node = node.parent {
		candidates = append(candidates, modifierCandidate{time: int64(node.Timestamp), node: node})
	}
	sortModifierCandidates(candidates)

	rounds := 64
	if len(candidates) < rounds {
		rounds = len(candidates)
	}

	var newModifier uint64
	selectionIntervalStop := selectionIntervalStart
	selected := make(map[chainhash.Hash]struct{}, rounds)
	for round := 0; round < rounds; round++ {
		selectionIntervalStop += stakeModifierSelectionIntervalSection(params, round)

		winner, err := selectBlockFromCandidates(candidates, selected, selectionIntervalStop, prevModifier)
		if err != nil {
			return 0, false, err
		}

		newModifier |= uint64(winner.StakeEntropyBit) << uint(round)
		selected[winner.Hash] = struct{}{}

		log.Debugf("ComputeNextStakeModifier: round=%d stop=%d height=%d bit=%d",
			round, selectionIntervalStop, winner.Height, winner.StakeEntropyBit)
	}

	log.Debugf("ComputeNextStakeModifier: new modifier=0x%016x height=%d", newModifier, prevIndex.Height)

	return newModifier, true, nil
}
