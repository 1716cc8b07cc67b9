// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the consensus-critical tunables of the
// proof-of-stake kernel as an immutable parameter struct, instead of the
// writeable package-global variables the reference implementation uses.
// Production code receives a *Params and never mutates it; tests are free
// to build their own for alternate scenarios.
package chaincfg

// Params holds the consensus constants consumed by the blockchain package's
// stake-modifier and kernel-verification logic.
//
// All of these were non-const globals in the original implementation
// (nStakeMinAge, nStakeMaxAge, nModifierInterval, ...). Carrying them here
// as struct fields threaded explicitly through every entry point, rather
// than as process-wide mutable state, is deliberate: see DESIGN.md.
type Params struct {
	// Name is a human-readable identifier for the network, e.g. "mainnet".
	Name string

	// StakeMinAge is the minimum coin age, in seconds, before a coin is
	// eligible to stake.
	StakeMinAge int64

	// StakeMaxAge is the coin age, in seconds, at which a staking coin
	// reaches full kernel weight.
	StakeMaxAge int64

	// ModifierInterval is the number of seconds that must elapse before a
	// new stake modifier is computed.
	ModifierInterval int64

	// ModifierIntervalRatio controls how unevenly the 64 selection-interval
	// sections are sized; later rounds get proportionally larger windows.
	ModifierIntervalRatio int64

	// PosTargetSpacing is the expected number of seconds between blocks.
	// It is only used to pre-size the candidate-block buffer in
	// ComputeNextStakeModifier.
	PosTargetSpacing int64

	// Coin is the number of smallest indivisible units (satoshis) per coin.
	Coin int64

	// CoinbaseMaturity is the number of confirmations a coin must have
	// before it is stakeable.
	CoinbaseMaturity int64

	// StakeModifierCheckpoints is a frozen height->checksum table used to
	// detect any non-determinism in stake modifier computation across
	// implementations. Absent heights are unconstrained.
	StakeModifierCheckpoints map[int64]uint32
}

// MainNetParams are the consensus parameters for the main network. The
// stake modifier checkpoints are the exact pairs carried by the reference
// implementation (pos.cpp's mapStakeModifierCheckpoints) and must never be
// changed once a height has shipped.
var MainNetParams = Params{
	Name:                  "mainnet",
	StakeMinAge:           60 * 60 * 24,      // 1 day
	StakeMaxAge:           60 * 60 * 24 * 30, // 30 days
	ModifierInterval:      8 * 60,            // 8 minutes
	ModifierIntervalRatio: 3,
	PosTargetSpacing:      60,
	Coin:                  100000000,
	CoinbaseMaturity:      60,
	StakeModifierCheckpoints: map[int64]uint32{
		0:      0xfd11f4e7,
		1000:   0x353653fe,
		10000:  0x8c341084,
		50008:  0x9f0053f2,
		100000: 0xaf212909,
		150006: 0x3883af95,
		200830: 0xf2daec0a,
		250008: 0x76bd1777,
		300836: 0x18dbac5e,
		350003: 0x17223fa8,
		400002: 0xd1662b8f,
		450000: 0x0fc0c8d3,
		500001: 0x17ac1811,
		550004: 0xcfb3340f,
		600014: 0x74d7cf8c,
		621306: 0x4890a081,
	},
}

// TestNetParams are the consensus parameters for the test network. Only the
// genesis checksum is pinned; the test network is not expected to stay in
// lockstep with mainnet heights.
var TestNetParams = Params{
	Name:                  "testnet",
	StakeMinAge:           MainNetParams.StakeMinAge,
	StakeMaxAge:           MainNetParams.StakeMaxAge,
	ModifierInterval:      MainNetParams.ModifierInterval,
	ModifierIntervalRatio: MainNetParams.ModifierIntervalRatio,
	PosTargetSpacing:      MainNetParams.PosTargetSpacing,
	Coin:                  MainNetParams.Coin,
	CoinbaseMaturity:      MainNetParams.CoinbaseMaturity,
	StakeModifierCheckpoints: map[int64]uint32{
		0: 0xfd11f4e7,
	},
}
