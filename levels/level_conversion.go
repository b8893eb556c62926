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

package levels

import (
	"math/bits"

	"github.com/lapfelix/parquet-nested/internal/bitutils"
)

// ValidityBitmapInputOutput is used as the in/out parameters for turning
// definition levels into a validity bitmap.
type ValidityBitmapInputOutput struct {
	// ReadUpperBound is the maximum number of values processable, an upper
	// bound on Read.
	ReadUpperBound int64
	// Read is the number of values added to the bitmap. This only
	// diverges from the number of definition levels consumed when the
	// leaf has a repeated ancestor, since empty and null containers take
	// up a definition level but no value slot.
	Read int64
	// NullCount is incremented by the number of null slots encountered.
	NullCount int64
	// ValidBits is the validity bitmap to populate.
	ValidBits []byte
	// ValidBitsOffset is the bit offset into ValidBits where writing starts.
	ValidBitsOffset int64
}

// DefLevelsToBitmap builds a validity bitmap from definition levels.
//
// A definition level below info.RepeatedAncestorDefLevel contributes no bit
// at all: some repeated ancestor was empty or null there, so the leaf has no
// value slot at that position. A level at or above the ancestor level but
// below info.DefLevel contributes a null slot, and a level equal to
// info.DefLevel contributes a valid one.
func DefLevelsToBitmap(defLevels []int16, info LevelInfo, out *ValidityBitmapInputOutput) {
	wr := bitutils.NewFirstTimeBitmapWriter(out.ValidBits, out.ValidBitsOffset, out.ReadUpperBound)
	defer wr.Finish()
	setCount := defLevelsBatchToBitmap(defLevels, out.ReadUpperBound, info, wr, info.RepLevel > 0)
	out.Read = wr.Pos()
	out.NullCount += out.Read - int64(setCount)
}

// defLevelsBatchToBitmap builds the bitmap 64 levels at a time via
// greater-than bitmasks, filtering out positions below the repeated
// ancestor definition level when hasRepeatedParent is set. Returns the
// number of valid (set) bits appended.
func defLevelsBatchToBitmap(defLevels []int16, remainingUpperBound int64, info LevelInfo, wr *bitutils.FirstTimeBitmapWriter, hasRepeatedParent bool) (count uint64) {
	if !hasRepeatedParent && int64(len(defLevels)) > remainingUpperBound {
		panic("levels: number of definition levels exceeds upper bound")
	}

	var batch []int16
	for len(defLevels) > 0 {
		batchSize := len(defLevels)
		if batchSize > 64 {
			batchSize = 64
		}
		batch, defLevels = defLevels[:batchSize], defLevels[batchSize:]
		definedBitmap := bitutils.GreaterThanBitmap(batch, info.DefLevel-1)

		if hasRepeatedParent {
			// only count positions where a slot for the leaf exists at all
			presentBitmap := bitutils.GreaterThanBitmap(batch, info.RepeatedAncestorDefLevel-1)
			selected := bitutils.ExtractBits(definedBitmap, presentBitmap)
			selectedCount := int64(bits.OnesCount64(presentBitmap))
			if selectedCount > remainingUpperBound {
				panic("levels: values read exceed upper bound")
			}
			wr.AppendWord(selected, selectedCount)
			remainingUpperBound -= selectedCount
			count += uint64(bits.OnesCount64(selected))
			continue
		}

		wr.AppendWord(definedBitmap, int64(batchSize))
		count += uint64(bits.OnesCount64(definedBitmap))
	}
	return
}
