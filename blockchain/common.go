// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2024 The deeponion developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// writeElement writes the little-endian wire representation of element to
// w. It only understands the handful of concrete types the stake-modifier
// selection hash, the kernel hash, and the checksum hash preimages are
// built from; every multi-byte integer in this subsystem's serialized
// inputs is little-endian per the chain's canonical wire format.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint32:
		var scratch [4]byte
		binary.LittleEndian.PutUint32(scratch[:], e)
		_, err := w.Write(scratch[:])
		return err

	case int64:
		var scratch [8]byte
		binary.LittleEndian.PutUint64(scratch[:], uint64(e))
		_, err := w.Write(scratch[:])
		return err

	case uint64:
		var scratch [8]byte
		binary.LittleEndian.PutUint64(scratch[:], e)
		_, err := w.Write(scratch[:])
		return err

	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	}

	return binary.Write(w, binary.LittleEndian, element)
}

// hashElements double-SHA256-hashes the little-endian concatenation of the
// supplied elements, in order, with no delimiters between them. This is the
// shared plumbing behind the selection hash (stakemodifier.go), the kernel
// hash (kernel.go), and the stake-modifier checksum (checkpoints.go) — all
// three are "H(fixed little-endian fields concatenated)" per spec section
// 6's serialization rule.
func hashElements(elements ...interface{}) (chainhash.Hash, error) {
	buf := new(bytes.Buffer)
	for _, e := range elements {
		if err := writeElement(buf, e); err != nil {
			return chainhash.Hash{}, err
		}
	}
	return chainhash.DoubleHashH(buf.Bytes()), nil
}

// minInt64 returns the smaller of a and b.
func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
