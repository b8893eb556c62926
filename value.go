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

package nested

import (
	"bytes"
	"fmt"
	"strings"
)

// ValueKind discriminates the variants of a Value.
type ValueKind int8

const (
	// KindNull is an absent value. A null list is distinct from an empty one.
	KindNull ValueKind = iota
	// KindScalar is a typed primitive value.
	KindScalar
	// KindList is an ordered sequence of element values.
	KindList
	// KindMap is an ordered sequence of key/value entry pairs.
	KindMap
	// KindStruct is an ordered sequence of named field values.
	KindStruct
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	}
	return "invalid"
}

// MapEntry is a single key/value pair of a map value. Keys are never null,
// values may be.
type MapEntry struct {
	Key   Value
	Value Value
}

// StructField is a single named field of a struct value. Field order follows
// the schema's field order.
type StructField struct {
	Name  string
	Value Value
}

// Value is the tagged nested value representation used as the input of the
// shredder and the output of the assembler. The zero Value is null.
//
// Scalars hold one of the Go types bool, int32, int64, float32, float64,
// string, ByteArray, FixedLenByteArray or Int96.
type Value struct {
	kind    ValueKind
	scalar  interface{}
	list    []Value
	entries []MapEntry
	fields  []StructField
}

// NullValue returns the null value.
func NullValue() Value { return Value{kind: KindNull} }

// ScalarValue wraps a primitive scalar.
func ScalarValue(v interface{}) Value { return Value{kind: KindScalar, scalar: v} }

// ListValue wraps an ordered element sequence. A nil slice is the empty,
// present list, not the null list.
func ListValue(elems []Value) Value { return Value{kind: KindList, list: elems} }

// MapValue wraps an ordered entry sequence. A nil slice is the empty,
// present map, not the null map.
func MapValue(entries []MapEntry) Value { return Value{kind: KindMap, entries: entries} }

// StructValue wraps an ordered field sequence.
func StructValue(fields []StructField) Value { return Value{kind: KindStruct, fields: fields} }

// Kind returns the variant tag of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Scalar returns the primitive payload of a scalar value, nil otherwise.
func (v Value) Scalar() interface{} { return v.scalar }

// Len returns the number of elements, entries or fields of a container
// value, and 0 for null and scalar values.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.entries)
	case KindStruct:
		return len(v.fields)
	}
	return 0
}

// Elem returns the i-th element of a list value.
func (v Value) Elem(i int) Value { return v.list[i] }

// Entry returns the i-th entry of a map value.
func (v Value) Entry(i int) MapEntry { return v.entries[i] }

// FieldAt returns the i-th field of a struct value.
func (v Value) FieldAt(i int) StructField { return v.fields[i] }

// Field looks a struct field up by name.
func (v Value) Field(name string) (Value, bool) {
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal reports deep equality, including the null vs empty distinction for
// containers and entry/field order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return scalarEqual(v.scalar, other.scalar)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.entries) != len(other.entries) {
			return false
		}
		for i := range v.entries {
			if !v.entries[i].Key.Equal(other.entries[i].Key) ||
				!v.entries[i].Value.Equal(other.entries[i].Value) {
				return false
			}
		}
		return true
	case KindStruct:
		if len(v.fields) != len(other.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != other.fields[i].Name ||
				!v.fields[i].Value.Equal(other.fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func scalarEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case ByteArray:
		bv, ok := b.(ByteArray)
		return ok && bytes.Equal(av, bv)
	case FixedLenByteArray:
		bv, ok := b.(FixedLenByteArray)
		return ok && bytes.Equal(av, bv)
	default:
		return a == b
	}
}

// String renders the value for debugging output.
func (v Value) String() string {
	var bld strings.Builder
	v.render(&bld)
	return bld.String()
}

func (v Value) render(bld *strings.Builder) {
	switch v.kind {
	case KindNull:
		bld.WriteString("null")
	case KindScalar:
		fmt.Fprintf(bld, "%v", v.scalar)
	case KindList:
		bld.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				bld.WriteString(", ")
			}
			e.render(bld)
		}
		bld.WriteByte(']')
	case KindMap:
		bld.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				bld.WriteString(", ")
			}
			e.Key.render(bld)
			bld.WriteString(": ")
			e.Value.render(bld)
		}
		bld.WriteByte('}')
	case KindStruct:
		bld.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				bld.WriteString(", ")
			}
			bld.WriteString(f.Name)
			bld.WriteString(": ")
			f.Value.render(bld)
		}
		bld.WriteByte('}')
	}
}
