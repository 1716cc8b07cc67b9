// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// OutPoint identifies a single transaction output: the hash of the
// transaction that created it and the output's index within that
// transaction's vout list.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// TxPrev is the subset of a transaction's fields the kernel needs from the
// output being staked: its legacy timestamp and its output values. Tx-index
// disambiguation (tx hash, full script, etc.) is deliberately absent — the
// kernel hash excludes it by design (spec section 4.C.3).
type TxPrev struct {
	// Timestamp is the transaction's legacy nTime field, Unix seconds.
	Timestamp uint32

	// Outputs holds each output's satoshi value, indexed the same way as
	// OutPoint.Index.
	Outputs []int64

	// IsCoinStake is true iff this transaction is itself a coinstake (the
	// second transaction of a PoS block).
	IsCoinStake bool
}

// Coin is the UTXO-view record for a single unspent output: the height at
// which it was created, its value, and whether it came from a coinbase
// (coinbase outputs are subject to the same COINBASE_MATURITY rule as
// coinstake outputs).
type Coin struct {
	Height     int64
	Value      int64
	IsCoinBase bool
}

// DiskPos identifies a transaction's on-disk location as handed back by a
// TxIndexReader: which block it lives in, and its byte offset within that
// block's serialized transaction list (i.e. past the 80-byte header).
type DiskPos struct {
	BlockHash chainhash.Hash
	TxOffset  uint32
}

// TxIndexReader resolves a transaction hash to its on-disk location. This
// is the external tx-index collaborator of spec section 6
// (BlockTreeDb.read_tx_index).
type TxIndexReader interface {
	ReadTxIndex(txHash chainhash.Hash) (DiskPos, bool, error)
}

// BlockFileReader reads a transaction back off disk given its DiskPos, and
// reports the offset (relative to the start of the transaction list, i.e.
// already past the header) at which it was found. This is the external
// BlockFileReader collaborator of spec section 6.
type BlockFileReader interface {
	ReadTxPrev(pos DiskPos) (tx TxPrev, txOffset uint32, err error)
}

// UtxoViewer resolves an OutPoint to its Coin record. This is the external
// UtxoView collaborator of spec section 6.
type UtxoViewer interface {
	GetCoin(op OutPoint) (Coin, bool, error)
}

// TimeSource supplies the network-adjusted wall clock used by
// GetKernelStakeModifier's tip-boundary check. This is the external
// get_adjusted_time collaborator of spec section 6.
type TimeSource interface {
	AdjustedTime() int64
}
