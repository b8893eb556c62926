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

// Package nested provides the shared types for the nested-column shredding
// and assembly engine: repetition kinds, physical primitive types, column
// paths and the nested value model that the shredder consumes and the
// assembler produces.
package nested

import (
	"encoding/binary"
	"strings"
	"time"
)

const (
	julianUnixEpoch int64 = 2440588
	nanosPerDay     int64 = 3600 * 24 * 1000 * 1000 * 1000
	// Int96SizeBytes is the number of bytes that make up an Int96
	Int96SizeBytes int = 12
)

// Repetition is the underlying parquet field repetition type of a schema node.
type Repetition int8

const (
	repRequired Repetition = iota
	repOptional
	repRepeated
	repUndefined
)

// Repetitions contains the constants for the types of field repetitions.
var Repetitions = struct {
	Required  Repetition // field must exist exactly once
	Optional  Repetition // field may be absent
	Repeated  Repetition // field may occur zero or more times
	Undefined Repetition
}{
	Required:  repRequired,
	Optional:  repOptional,
	Repeated:  repRepeated,
	Undefined: repUndefined,
}

func (r Repetition) String() string {
	switch r {
	case repRequired:
		return "required"
	case repOptional:
		return "optional"
	case repRepeated:
		return "repeated"
	}
	return "undefined"
}

// Type is the underlying physical type of a primitive leaf.
type Type int

// Types contains the constants for the physical primitive types.
var Types = struct {
	Boolean           Type
	Int32             Type
	Int64             Type
	Int96             Type
	Float             Type
	Double            Type
	ByteArray         Type
	FixedLenByteArray Type
}{
	Boolean:           0,
	Int32:             1,
	Int64:             2,
	Int96:             3,
	Float:             4,
	Double:            5,
	ByteArray:         6,
	FixedLenByteArray: 7,
}

func (t Type) String() string {
	switch t {
	case Types.Boolean:
		return "BOOLEAN"
	case Types.Int32:
		return "INT32"
	case Types.Int64:
		return "INT64"
	case Types.Int96:
		return "INT96"
	case Types.Float:
		return "FLOAT"
	case Types.Double:
		return "DOUBLE"
	case Types.ByteArray:
		return "BYTE_ARRAY"
	case Types.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	}
	return "UNKNOWN"
}

// ColumnPath is the path from the root of the schema to a given column,
// field names joined with '.' in the string form.
type ColumnPath []string

func (c ColumnPath) String() string {
	if c == nil {
		return ""
	}
	return strings.Join(c, ".")
}

// Extend creates a new ColumnPath from the current one with the
// passed in leaf appended to the end.
func (c ColumnPath) Extend(s string) ColumnPath {
	p := make([]string, len(c), len(c)+1)
	copy(p, c)
	return append(p, s)
}

// ColumnPathFromString constructs a ColumnPath from a dotted path string.
func ColumnPathFromString(s string) ColumnPath {
	return strings.Split(s, ".")
}

// ByteArray is a variable length byte slice scalar.
type ByteArray []byte

// Len returns the length of the byte slice.
func (b ByteArray) Len() int { return len(b) }

func (b ByteArray) String() string { return string(b) }

// FixedLenByteArray is a byte slice scalar whose length is determined by
// the schema rather than stored alongside the values.
type FixedLenByteArray []byte

// Len returns the length of the byte slice.
func (b FixedLenByteArray) Len() int { return len(b) }

func (b FixedLenByteArray) String() string { return string(b) }

// NewInt96 creates a new Int96 from the given 3 uint32 values.
func NewInt96(v [3]uint32) (out Int96) {
	binary.LittleEndian.PutUint32(out[0:], v[0])
	binary.LittleEndian.PutUint32(out[4:], v[1])
	binary.LittleEndian.PutUint32(out[8:], v[2])
	return
}

// Int96 is a 12 byte integer value utilized for representing timestamps as
// a 64 bit integer and a 32 bit integer.
type Int96 [12]byte

// SetNanoSeconds sets the Nanosecond field of the Int96 timestamp to the provided value
func (i96 *Int96) SetNanoSeconds(nanos int64) {
	binary.LittleEndian.PutUint64(i96[:8], uint64(nanos))
}

// String provides the string representation as a timestamp via converting
// to a time.Time and then calling String
func (i96 Int96) String() string {
	return i96.ToTime().String()
}

// ToTime returns a go time.Time object that represents the same time instant
// as the given Int96 value
func (i96 Int96) ToTime() time.Time {
	nanos := binary.LittleEndian.Uint64(i96[:8])
	jdays := binary.LittleEndian.Uint32(i96[8:])

	nanos = (uint64(jdays)-uint64(julianUnixEpoch))*uint64(nanosPerDay) + nanos
	t := time.Unix(0, int64(nanos))
	return t.UTC()
}
