// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/Dracarys07/deeponion/blockchain"
	"github.com/Dracarys07/deeponion/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
)

// config holds the command-line options this tool accepts.
type config struct {
	Network string `short:"n" long:"network" description:"Network to build the synthetic chain for" choice:"mainnet" choice:"testnet" default:"mainnet"`
	Height  int64  `long:"height" description:"Number of synthetic blocks to generate past genesis" default:"2000"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug-level logging of stake modifier computation"`
}

var log btclog.Logger

// fixedTimeSource is a TimeSource whose clock always reports now. Nothing
// in this command uses it: buildSyntheticChain computes stake modifiers
// and checksums only and never runs a kernel check.
type fixedTimeSource struct {
	now int64
}

func (f fixedTimeSource) AdjustedTime() int64 {
	return f.now
}

// buildSyntheticChain deterministically generates a height-block PoS chain
// rooted at genesis, recomputing the stake modifier at every block via
// ComputeNextStakeModifier exactly as a node would while connecting new
// blocks. Block hashes, entropy bits and the kernel hash used as
// HashProofOfStake are all derived from a simple counter-based PRNG seeded
// by the block height, so two runs against the same height always produce
// the same chain.
func buildSyntheticChain(params *chaincfg.Params, height int64) (*blockchain.BlockIndex, error) {
	index := blockchain.NewBlockIndex()

	genesisHash := syntheticHash(0)
	genesis := index.NewBlockNode(nil, genesisHash, 1400000000, 0x1d00ffff, 0, false)
	genesis.GeneratedStakeModifier = true

	blockTime := uint32(genesis.Timestamp)
	tip := genesis
	for h := int64(1); h <= height; h++ {
		blockTime += uint32(params.PosTargetSpacing)
		hash := syntheticHash(h)
		entropyBit := uint8(hash[0] & 0x01)
		isPoS := h > 1

		node := index.NewBlockNode(tip, hash, blockTime, 0x1d00ffff, entropyBit, isPoS)
		if isPoS {
			node.HashProofOfStake = syntheticHash(h * 1000003)
		}

		modifier, generated, err := blockchain.ComputeNextStakeModifier(params, tip)
		if err != nil {
			return nil, fmt.Errorf("height %d: %w", h, err)
		}
		node.StakeModifier = modifier
		node.GeneratedStakeModifier = generated

		checksum, err := blockchain.StakeModifierChecksum(node)
		if err != nil {
			return nil, fmt.Errorf("height %d: %w", h, err)
		}
		node.StakeModifierChecksum = checksum

		if !blockchain.CheckStakeModifierCheckpoints(h, checksum, params) {
			return nil, fmt.Errorf("height %d: stake modifier checksum 0x%08x disagrees with checkpoint", h, checksum)
		}

		tip = node
	}

	return index, nil
}

// syntheticHash derives a deterministic chainhash.Hash from n by
// double-hashing its little-endian encoding. It exists purely to give the
// synthetic chain distinct, reproducible block hashes without depending on
// any actual block-header serialization.
func syntheticHash(n int64) chainhash.Hash {
	var seed [8]byte
	for i := 0; i < 8; i++ {
		seed[i] = byte(n >> (8 * i))
	}
	return chainhash.DoubleHashH(seed[:])
}

func realMain() error {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	backendLogger := btclog.NewBackend(os.Stdout)
	log = backendLogger.Logger("PSVR")
	if cfg.Verbose {
		log.SetLevel(btclog.LevelDebug)
		blockchain.UseLogger(backendLogger.Logger("KRNL"))
	}

	var params *chaincfg.Params
	switch cfg.Network {
	case "testnet":
		params = &chaincfg.TestNetParams
	default:
		params = &chaincfg.MainNetParams
	}

	log.Infof("Building synthetic %s chain of height %d", params.Name, cfg.Height)

	index, err := buildSyntheticChain(params, cfg.Height)
	if err != nil {
		return err
	}

	tip := index.Tip()
	checksum, err := blockchain.StakeModifierChecksum(tip)
	if err != nil {
		return err
	}

	fmt.Printf("height=%d modifier=0x%016x checksum=0x%08x generated=%v\n",
		tip.Height, tip.StakeModifier, checksum, tip.GeneratedStakeModifier)

	return nil
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
