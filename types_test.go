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
	"time"

	"github.com/stretchr/testify/assert"

	nested "github.com/lapfelix/parquet-nested"
)

func TestTypeToString(t *testing.T) {
	tests := []struct {
		expected string
		typ      nested.Type
	}{
		{"BOOLEAN", nested.Types.Boolean},
		{"INT32", nested.Types.Int32},
		{"INT64", nested.Types.Int64},
		{"INT96", nested.Types.Int96},
		{"FLOAT", nested.Types.Float},
		{"DOUBLE", nested.Types.Double},
		{"BYTE_ARRAY", nested.Types.ByteArray},
		{"FIXED_LEN_BYTE_ARRAY", nested.Types.FixedLenByteArray},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.typ.String())
		})
	}
}

func TestRepetitionToString(t *testing.T) {
	assert.Equal(t, "required", nested.Repetitions.Required.String())
	assert.Equal(t, "optional", nested.Repetitions.Optional.String())
	assert.Equal(t, "repeated", nested.Repetitions.Repeated.String())
	assert.Equal(t, "undefined", nested.Repetitions.Undefined.String())
}

func TestInt96(t *testing.T) {
	val := nested.NewInt96([3]uint32{1, 2, 3})
	assert.Equal(t, [12]byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}, [12]byte(val))

	ts := time.Date(2021, time.October, 25, 13, 22, 50, 12345, time.UTC)
	i96 := nested.NewInt96([3]uint32{0, 0, 2459513}) // julian day for 2021-10-25
	i96.SetNanoSeconds(int64(13*3600+22*60+50)*int64(time.Second) + 12345)
	assert.Equal(t, ts, i96.ToTime())
	assert.Equal(t, ts.String(), i96.String())
}

func TestByteArray(t *testing.T) {
	ba := nested.ByteArray("hello")
	assert.Equal(t, 5, ba.Len())
	assert.Equal(t, "hello", ba.String())

	flba := nested.FixedLenByteArray("fixed")
	assert.Equal(t, 5, flba.Len())
	assert.Equal(t, "fixed", flba.String())
}

func TestColumnPath(t *testing.T) {
	p := nested.ColumnPath([]string{"toplevel", "leaf"})
	assert.Equal(t, "toplevel.leaf", p.String())

	p2 := p.Extend("anotherlevel")
	assert.Equal(t, []string{"toplevel", "leaf", "anotherlevel"}, []string(p2))
	assert.Equal(t, "toplevel.leaf.anotherlevel", p2.String())
	// the original path is untouched
	assert.Equal(t, "toplevel.leaf", p.String())

	assert.Equal(t, p2, nested.ColumnPathFromString("toplevel.leaf.anotherlevel"))
	assert.Equal(t, "", nested.ColumnPath(nil).String())
}
