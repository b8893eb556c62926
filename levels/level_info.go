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

// Package levels implements the level calculus for nested columns: the
// per-leaf bookkeeping that maps repetition and definition levels to the
// leaf's chain of optional-or-repeated ancestors, and the conversion from
// decoded definition levels to validity bitmaps.
package levels

import "fmt"

// LevelInfo describes the definition and repetition level bounds of a leaf
// relative to its ancestors.
type LevelInfo struct {
	// NullSlotUsage is the number of value slots a null element consumes
	// in the decoded representation. It is 1 for everything except
	// fixed-size containers decoded in place.
	NullSlotUsage int32
	// DefLevel is the maximum definition level of the leaf: the number of
	// optional-or-repeated nodes on the path from the root to the leaf,
	// inclusive.
	DefLevel int16
	// RepLevel is the maximum repetition level of the leaf: the number of
	// repeated nodes on the path from the root to the leaf, inclusive.
	RepLevel int16
	// RepeatedAncestorDefLevel is the definition level at which the
	// closest repeated ancestor of the leaf has at least one element. Any
	// definition level below this means no value slot exists for the leaf
	// at that position. Zero when the leaf has no repeated ancestor.
	RepeatedAncestorDefLevel int16
}

// IncrementOptional updates the level information for a traversal through
// an optional node.
func (l *LevelInfo) IncrementOptional() { l.DefLevel++ }

// IncrementRepeated updates the level information for a traversal through a
// repeated node and returns the definition level of the previous closest
// repeated ancestor.
func (l *LevelInfo) IncrementRepeated() int16 {
	last := l.RepeatedAncestorDefLevel
	// A repeated node adds both a definition level (distinguishing an
	// empty container from one with elements) and a repetition level.
	l.DefLevel++
	l.RepLevel++
	l.RepeatedAncestorDefLevel = l.DefLevel
	return last
}

// Equal reports whether two LevelInfo describe identical level bounds.
func (l *LevelInfo) Equal(other *LevelInfo) bool {
	return l.NullSlotUsage == other.NullSlotUsage &&
		l.DefLevel == other.DefLevel &&
		l.RepLevel == other.RepLevel &&
		l.RepeatedAncestorDefLevel == other.RepeatedAncestorDefLevel
}

func (l LevelInfo) String() string {
	return fmt.Sprintf("LevelInfo{nullSlots: %d, def: %d, rep: %d, repeatedAncestorDef: %d}",
		l.NullSlotUsage, l.DefLevel, l.RepLevel, l.RepeatedAncestorDefLevel)
}

// Ancestor is a single optional-or-repeated ancestor on the path from the
// schema root to a leaf. Nodes that are required contribute no ancestor
// entry because their presence is guaranteed.
type Ancestor struct {
	// DefLevel is the definition level at which this ancestor is present
	// (or, for repeated ancestors, non-empty). Equals its chain index + 1.
	DefLevel int16
	// RepLevel is the repetition level of this ancestor when Repeated is
	// true, otherwise the repetition level of the closest repeated
	// ancestor above it.
	RepLevel int16
	// Repeated marks the entry as contributed by a repeated node rather
	// than an optional one.
	Repeated bool
}

// AncestorChain is the ordered, root-first list of optional-or-repeated
// ancestors of a leaf. An observed definition level d at the leaf means the
// first d entries of the chain are present and everything deeper, the leaf
// value included, is absent. The chain length equals the leaf's maximum
// definition level.
type AncestorChain []Ancestor

// PresentDepth returns the number of chain entries satisfied by the given
// definition level.
func (c AncestorChain) PresentDepth(defLevel int16) int {
	if int(defLevel) > len(c) {
		return len(c)
	}
	return int(defLevel)
}

// MaxRepLevel returns the repetition level of the deepest repeated entry.
func (c AncestorChain) MaxRepLevel() int16 {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Repeated {
			return c[i].RepLevel
		}
	}
	return 0
}
