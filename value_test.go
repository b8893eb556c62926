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

package nested_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	nested "github.com/lapfelix/parquet-nested"
)

func TestValueKinds(t *testing.T) {
	assert.Equal(t, nested.KindNull, nested.NullValue().Kind())
	assert.Equal(t, nested.KindScalar, nested.ScalarValue(int64(1)).Kind())
	assert.Equal(t, nested.KindList, nested.ListValue(nil).Kind())
	assert.Equal(t, nested.KindMap, nested.MapValue(nil).Kind())
	assert.Equal(t, nested.KindStruct, nested.StructValue(nil).Kind())

	// the zero Value is null
	var zero nested.Value
	assert.True(t, zero.IsNull())
	assert.False(t, nested.ListValue(nil).IsNull())
}

func TestValueAccessors(t *testing.T) {
	lst := nested.ListValue([]nested.Value{
		nested.ScalarValue(int64(1)), nested.NullValue(),
	})
	assert.Equal(t, 2, lst.Len())
	assert.Equal(t, int64(1), lst.Elem(0).Scalar())
	assert.True(t, lst.Elem(1).IsNull())

	m := nested.MapValue([]nested.MapEntry{
		{Key: nested.ScalarValue(nested.ByteArray("k")), Value: nested.ScalarValue(int64(7))},
	})
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, nested.ByteArray("k"), m.Entry(0).Key.Scalar())

	s := nested.StructValue([]nested.StructField{
		{Name: "a", Value: nested.ScalarValue(true)},
		{Name: "b", Value: nested.NullValue()},
	})
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "a", s.FieldAt(0).Name)

	fv, ok := s.Field("b")
	assert.True(t, ok)
	assert.True(t, fv.IsNull())

	fv, ok = s.Field("missing")
	assert.False(t, ok)
	assert.True(t, fv.IsNull())

	assert.Zero(t, nested.NullValue().Len())
	assert.Zero(t, nested.ScalarValue(int64(1)).Len())
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  nested.Value
		equal bool
	}{
		{"nulls", nested.NullValue(), nested.NullValue(), true},
		{"null vs empty list", nested.NullValue(), nested.ListValue(nil), false},
		{"null vs empty map", nested.NullValue(), nested.MapValue(nil), false},
		{"scalars", nested.ScalarValue(int64(1)), nested.ScalarValue(int64(1)), true},
		{"scalar type differs", nested.ScalarValue(int64(1)), nested.ScalarValue(int32(1)), false},
		{"byte arrays", nested.ScalarValue(nested.ByteArray("ab")),
			nested.ScalarValue(nested.ByteArray("ab")), true},
		{"byte array vs fixed", nested.ScalarValue(nested.ByteArray("ab")),
			nested.ScalarValue(nested.FixedLenByteArray("ab")), false},
		{"empty lists nil vs zero len", nested.ListValue(nil), nested.ListValue([]nested.Value{}), true},
		{"lists", nested.ListValue([]nested.Value{nested.ScalarValue(int64(1))}),
			nested.ListValue([]nested.Value{nested.ScalarValue(int64(1))}), true},
		{"list length differs", nested.ListValue([]nested.Value{nested.ScalarValue(int64(1))}),
			nested.ListValue(nil), false},
		{"map entry order matters", nested.MapValue([]nested.MapEntry{
			{Key: nested.ScalarValue(nested.ByteArray("a")), Value: nested.ScalarValue(int64(1))},
			{Key: nested.ScalarValue(nested.ByteArray("b")), Value: nested.ScalarValue(int64(2))},
		}), nested.MapValue([]nested.MapEntry{
			{Key: nested.ScalarValue(nested.ByteArray("b")), Value: nested.ScalarValue(int64(2))},
			{Key: nested.ScalarValue(nested.ByteArray("a")), Value: nested.ScalarValue(int64(1))},
		}), false},
		{"structs", nested.StructValue([]nested.StructField{
			{Name: "a", Value: nested.NullValue()},
		}), nested.StructValue([]nested.StructField{
			{Name: "a", Value: nested.NullValue()},
		}), true},
		{"struct field name differs", nested.StructValue([]nested.StructField{
			{Name: "a", Value: nested.NullValue()},
		}), nested.StructValue([]nested.StructField{
			{Name: "b", Value: nested.NullValue()},
		}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
		})
	}
}

func TestValueString(t *testing.T) {
	v := nested.StructValue([]nested.StructField{
		{Name: "id", Value: nested.ScalarValue(int64(1))},
		{Name: "tags", Value: nested.ListValue([]nested.Value{
			nested.ScalarValue(nested.ByteArray("x")), nested.NullValue(),
		})},
		{Name: "attrs", Value: nested.MapValue([]nested.MapEntry{
			{Key: nested.ScalarValue(nested.ByteArray("k")), Value: nested.ScalarValue(int64(2))},
		})},
	})
	assert.Equal(t, "{id: 1, tags: [x, null], attrs: {k: 2}}", v.String())

	assert.Equal(t, "null", nested.NullValue().String())
	assert.Equal(t, "[]", nested.ListValue(nil).String())
	assert.Equal(t, "{}", nested.MapValue(nil).String())
}
