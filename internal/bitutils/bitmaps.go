// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package bitutils contains the bitmap helpers used when converting decoded
// definition levels into validity bitmaps.
package bitutils

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/apache/arrow/go/arrow/bitutil"
	"github.com/apache/arrow/go/arrow/memory"
)

var (
	// PrecedingBitmask is a mask for the bits strictly below bit i.
	PrecedingBitmask = [8]byte{0, 1, 3, 7, 15, 31, 63, 127}
	// TrailingBitmask is the bitwise complement of PrecedingBitmask.
	TrailingBitmask = [8]byte{255, 254, 252, 248, 240, 224, 192, 128}
)

// GreaterThanBitmap builds a bitmap where bit i is set when levels[i] > rhs.
// At most 64 levels are consumed.
func GreaterThanBitmap(levels []int16, rhs int16) (mask uint64) {
	for i, lvl := range levels {
		if lvl > rhs {
			mask |= uint64(1) << uint(i)
		}
	}
	return
}

// ExtractBits performs a parallel bit extract: for each bit set in
// selectBitmap the corresponding bit of bitmap is written to the next
// contiguous low bit of the result, remaining upper bits are zeroed.
func ExtractBits(bitmap, selectBitmap uint64) (result uint64) {
	outIdx := uint(0)
	for selectBitmap != 0 {
		idx := uint(bits.TrailingZeros64(selectBitmap))
		if bitmap&(uint64(1)<<idx) != 0 {
			result |= uint64(1) << outIdx
		}
		outIdx++
		selectBitmap &= selectBitmap - 1
	}
	return
}

// SetBitsTo sets or clears length bits of the bitmap starting at startOffset.
func SetBitsTo(bitmap []byte, startOffset, length int64, areSet bool) {
	if length == 0 {
		return
	}

	beg := startOffset
	end := startOffset + length
	var fill uint8 = 0
	if areSet {
		fill = math.MaxUint8
	}

	byteBeg := beg / 8
	byteEnd := end/8 + 1

	firstByteMask := PrecedingBitmask[beg%8]
	lastByteMask := TrailingBitmask[end%8]

	if byteEnd == byteBeg+1 {
		onlyByteMask := firstByteMask
		if end%8 != 0 {
			onlyByteMask = firstByteMask | lastByteMask
		}
		bitmap[byteBeg] &= onlyByteMask
		bitmap[byteBeg] |= fill &^ onlyByteMask
		return
	}

	bitmap[byteBeg] &= firstByteMask
	bitmap[byteBeg] |= fill &^ firstByteMask

	if byteEnd-byteBeg > 2 {
		memory.Set(bitmap[byteBeg+1:byteEnd-1], fill)
	}

	if end%8 == 0 {
		return
	}

	bitmap[byteEnd-1] &= lastByteMask
	bitmap[byteEnd-1] |= fill &^ lastByteMask
}

// FirstTimeBitmapWriter writes bits into a bitmap that is assumed not to
// have been written to before: bits are only ever set, never cleared, so
// whole words can be appended at a time.
type FirstTimeBitmapWriter struct {
	buf    []byte
	pos    int64
	length int64

	curByte    uint8
	bitMask    uint8
	byteOffset int64
}

// NewFirstTimeBitmapWriter constructs a writer over buf beginning at the
// given bit offset.
func NewFirstTimeBitmapWriter(buf []byte, start, length int64) *FirstTimeBitmapWriter {
	ret := &FirstTimeBitmapWriter{
		buf:        buf,
		byteOffset: start / 8,
		bitMask:    bitutil.BitMask[start%8],
		length:     length,
	}
	if length > 0 {
		ret.curByte = buf[int(ret.byteOffset)] & PrecedingBitmask[start%8]
	}
	return ret
}

// Pos reports the number of bits written so far.
func (w *FirstTimeBitmapWriter) Pos() int64 { return w.pos }

// AppendWord appends the low nbits of word to the bitmap.
func (w *FirstTimeBitmapWriter) AppendWord(word uint64, nbits int64) {
	if nbits == 0 {
		return
	}

	appslice := w.buf[int(w.byteOffset):]

	w.pos += nbits
	bitOffset := bits.TrailingZeros32(uint32(w.bitMask))
	w.bitMask = bitutil.BitMask[(int64(bitOffset)+nbits)%8]
	w.byteOffset += (int64(bitOffset) + nbits) / 8

	if bitOffset != 0 {
		// straddling the current partially written byte
		carry := 8 - bitOffset
		w.curByte |= uint8((word & uint64(PrecedingBitmask[carry])) << uint(bitOffset))
		if nbits < int64(carry) {
			return
		}
		appslice[0] = w.curByte
		appslice = appslice[1:]
		word >>= uint(carry)
		nbits -= int64(carry)
	}

	var scratch [8]byte
	bytesForWord := bitutil.BytesForBits(nbits)
	binary.LittleEndian.PutUint64(scratch[:], word)
	copy(appslice, scratch[:bytesForWord])

	if w.bitMask == 0x1 {
		w.curByte = 0
	} else {
		w.curByte = appslice[bytesForWord-1]
	}
}

// Set sets the bit at the current position.
func (w *FirstTimeBitmapWriter) Set() { w.curByte |= w.bitMask }

// Clear is a no-op: unwritten bits are already zero.
func (w *FirstTimeBitmapWriter) Clear() {}

// Next advances the writer by one bit, flushing the current byte when it
// fills up.
func (w *FirstTimeBitmapWriter) Next() {
	w.bitMask <<= 1
	w.pos++
	if w.bitMask == 0 {
		w.bitMask = 0x1
		w.buf[int(w.byteOffset)] = w.curByte
		w.byteOffset++
		w.curByte = 0
	}
}

// Finish flushes the trailing partially filled byte.
func (w *FirstTimeBitmapWriter) Finish() {
	if (w.length > 0 && w.bitMask != 0x01) || w.pos < w.length {
		w.buf[int(w.byteOffset)] = w.curByte
	}
}
