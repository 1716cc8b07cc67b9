// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/Dracarys07/deeponion/chaincfg"
)

// StakeModifierChecksum computes the 32-bit checksum chained across the
// stake-modifier history: the hash of the previous block's own checksum
// (absent at genesis), this block's flags, its kernel hash, and its stake
// modifier, truncated to its most significant 32 bits. The chaining makes
// the checksum a compact commitment to the entire modifier history up to
// this block, which is what lets CheckStakeModifierCheckpoints pin that
// history down at a handful of heights instead of replaying it.
func StakeModifierChecksum(node *BlockNode) (uint32, error) {
	elements := make([]interface{}, 0, 4)
	if node.parent != nil {
		elements = append(elements, node.parent.StakeModifierChecksum)
	}
	elements = append(elements, node.Flags, node.HashProofOfStake, node.StakeModifier)

	checksumHash, err := hashElements(elements...)
	if err != nil {
		return 0, err
	}

	bigChecksum := hashToBig(checksumHash)
	bigChecksum.Rsh(bigChecksum, 224)
	return uint32(bigChecksum.Uint64()), nil
}

// CheckStakeModifierCheckpoints reports whether checksum is consistent
// with the hard checkpoint recorded for height in params, if any. Heights
// with no recorded checkpoint always pass: the checkpoint set only pins
// down a sparse handful of historical heights against which the modifier
// selection algorithm has already been independently verified, not every
// height.
func CheckStakeModifierCheckpoints(height int64, checksum uint32, params *chaincfg.Params) bool {
	want, ok := params.StakeModifierCheckpoints[height]
	if !ok {
		return true
	}
	return checksum == want
}
