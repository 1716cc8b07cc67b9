// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the proof-of-stake kernel: the subsystem
// that decides which coinstake transactions are valid proof of stake, and
// the stake-modifier machinery that keeps the kernel's randomness from
// being predictable or grindable by whoever is about to stake a block.
//
// Glossary:
//
//   - Coinstake — the second transaction of a PoS block; its first input
//     spends the staked coin.
//   - Kernel — input 0 of the coinstake; the value whose hash is tested
//     against the target.
//   - Stake modifier — 64-bit value that scrambles kernel computation;
//     updated at fixed real-time intervals, not per block.
//   - Entropy bit — single deterministic bit per block, contributed to the
//     next modifier.
//   - Selection interval — T, the total time window (sum of 64 sections)
//     from which modifier contributors are drawn.
//   - Coin-day weight — value * min(age - STAKE_MIN_AGE, STAKE_MAX_AGE) /
//     COIN / 86400.
//   - Target per coin-day — the 256-bit difficulty value decoded from the
//     block's compact n_bits.
package blockchain
