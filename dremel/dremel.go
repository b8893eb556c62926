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

// Package dremel implements record shredding and assembly for nested
// columns: the conversion between nested values and the flat per-leaf
// repetition level / definition level / value streams of a parquet-style
// columnar format.
package dremel

import (
	"golang.org/x/xerrors"

	"github.com/lapfelix/parquet-nested/schema"
)

var (
	// ErrLevelOutOfRange is wrapped by errors reporting a repetition or
	// definition level that exceeds the leaf's computed maximum. Fatal to
	// the row being assembled, recoverable by reading the next row.
	ErrLevelOutOfRange = xerrors.New("nested: level out of range")
	// ErrLeafDesync is wrapped by errors reporting leaf streams that
	// disagree about the structure of a shared ancestor. Fatal to the row
	// being assembled, recoverable by reading the next row.
	ErrLeafDesync = xerrors.New("nested: leaf streams desynchronized")
	// ErrValueMismatch is wrapped by shredding errors reporting a value
	// that does not conform to the schema.
	ErrValueMismatch = xerrors.New("nested: value does not conform to schema")
)

// LeafTriple is one (repetition level, definition level, value) triple of a
// leaf stream. Value is nil unless DefLevel equals the leaf's maximum
// definition level.
type LeafTriple struct {
	RepLevel int16
	DefLevel int16
	Value    interface{}
}

// LeafStream holds the shredded stream of one leaf column: parallel
// repetition and definition level slices plus the dense value slice, which
// carries one entry per position whose definition level equals the leaf
// maximum. This matches the physical page layout: levels and values are
// encoded separately and absent values take no space.
type LeafStream struct {
	Column    *schema.Column
	DefLevels []int16
	RepLevels []int16
	Values    []interface{}
}

// Len returns the number of level positions in the stream.
func (s *LeafStream) Len() int { return len(s.DefLevels) }

// Triples materializes the (repetition, definition, value) triple view of
// the stream.
func (s *LeafStream) Triples() []LeafTriple {
	out := make([]LeafTriple, len(s.DefLevels))
	valIdx := 0
	maxDef := s.Column.MaxDefinitionLevel()
	for i := range s.DefLevels {
		out[i] = LeafTriple{RepLevel: s.RepLevels[i], DefLevel: s.DefLevels[i]}
		if s.DefLevels[i] == maxDef {
			out[i].Value = s.Values[valIdx]
			valIdx++
		}
	}
	return out
}

// Result maps dotted leaf paths to their shredded streams.
type Result map[string]*LeafStream
