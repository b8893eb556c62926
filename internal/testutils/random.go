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

// Package testutils provides random nested value generation for round trip
// tests.
package testutils

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	nested "github.com/lapfelix/parquet-nested"
	"github.com/lapfelix/parquet-nested/schema"
)

// RandomValueGenerator produces rows conforming to a schema, with
// deterministic output for a given seed. Optional nodes are null with
// probability nullProb, containers hold up to maxElems elements.
type RandomValueGenerator struct {
	seed  uint64
	extra uint64
	rnd   *rand.Rand

	nullProb float64
	maxElems int
}

func NewRandomValueGenerator(seed uint64) RandomValueGenerator {
	return RandomValueGenerator{
		seed:     seed,
		rnd:      rand.New(rand.NewSource(seed)),
		nullProb: 0.25,
		maxElems: 4,
	}
}

// Rows generates n rows for the schema root.
func (r *RandomValueGenerator) Rows(sc *schema.Schema, n int) []nested.Value {
	rows := make([]nested.Value, n)
	for i := range rows {
		rows[i] = r.structValue(sc.Root())
	}
	return rows
}

// Value generates one value for the node, honoring its repetition type.
func (r *RandomValueGenerator) Value(n schema.Node) nested.Value {
	if n.RepetitionType() == nested.Repetitions.Optional && r.nextBool(r.nullProb) {
		return nested.NullValue()
	}

	switch t := n.(type) {
	case *schema.PrimitiveNode:
		return nested.ScalarValue(r.scalar(t))
	case *schema.GroupNode:
		switch t.LogicalKind() {
		case schema.KindList:
			elems := make([]nested.Value, r.rnd.Intn(r.maxElems+1))
			for i := range elems {
				elems[i] = r.Value(t.ListElement())
			}
			return nested.ListValue(elems)
		case schema.KindMap:
			entries := make([]nested.MapEntry, r.rnd.Intn(r.maxElems+1))
			for i := range entries {
				entries[i] = nested.MapEntry{
					Key:   r.mapKey(t.MapKey(), i),
					Value: r.Value(t.MapValue()),
				}
			}
			return nested.MapValue(entries)
		default:
			return r.structValue(t)
		}
	}
	panic(fmt.Sprintf("testutils: unknown node type for %s", n.Path()))
}

func (r *RandomValueGenerator) structValue(g *schema.GroupNode) nested.Value {
	fields := make([]nested.StructField, 0, g.NumFields())
	for _, f := range g.Fields() {
		fields = append(fields, nested.StructField{Name: f.Name(), Value: r.Value(f)})
	}
	return nested.StructValue(fields)
}

// mapKey never generates nulls and keeps keys distinct within one map by
// folding the entry index into string keys.
func (r *RandomValueGenerator) mapKey(key schema.Node, idx int) nested.Value {
	p := key.(*schema.PrimitiveNode)
	if p.PhysicalType() == nested.Types.ByteArray {
		return nested.ScalarValue(nested.ByteArray(fmt.Sprintf("%s_%d", r.letters(4), idx)))
	}
	return nested.ScalarValue(r.scalar(p))
}

func (r *RandomValueGenerator) scalar(p *schema.PrimitiveNode) interface{} {
	switch p.PhysicalType() {
	case nested.Types.Boolean:
		return r.nextBool(0.5)
	case nested.Types.Int32:
		return int32(r.rnd.Uint32())
	case nested.Types.Int64:
		return int64(r.rnd.Uint64())
	case nested.Types.Int96:
		return nested.NewInt96([3]uint32{r.rnd.Uint32(), r.rnd.Uint32(), r.rnd.Uint32()})
	case nested.Types.Float:
		return r.rnd.Float32()
	case nested.Types.Double:
		return r.rnd.Float64()
	case nested.Types.ByteArray:
		return nested.ByteArray(r.letters(1 + r.rnd.Intn(12)))
	case nested.Types.FixedLenByteArray:
		buf := make([]byte, p.TypeLength())
		r.rnd.Read(buf)
		return nested.FixedLenByteArray(buf)
	}
	panic(fmt.Sprintf("testutils: unknown physical type %s", p.PhysicalType()))
}

func (r *RandomValueGenerator) letters(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(r.rnd.Int31n(int32('z')-int32('a')+1) + int32('a'))
	}
	return buf
}

func (r *RandomValueGenerator) nextBool(prob float64) bool {
	r.extra++
	dist := distuv.Bernoulli{P: prob, Src: rand.NewSource(r.seed + r.extra)}
	return dist.Rand() != 0
}
