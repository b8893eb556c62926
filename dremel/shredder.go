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

package dremel

import (
	"golang.org/x/xerrors"

	nested "github.com/lapfelix/parquet-nested"
	"github.com/lapfelix/parquet-nested/schema"
)

// Shred decomposes rows conforming to the schema into per-leaf level and
// value streams. Each row must be a struct value whose fields match the
// schema root; fields missing from a row shred as null.
//
// The walk carries the current repetition level and the definition level
// accumulated so far. A null node emits one position for every leaf beneath
// it at the definition level of the deepest present ancestor; an empty
// container emits one position at the container's own definition level,
// exactly one above the null case; elements after the first of a repeated
// node restart at that node's repetition level.
func Shred(sc *schema.Schema, rows []nested.Value) (Result, error) {
	sh := shredder{sc: sc, streams: make([]*LeafStream, sc.NumColumns())}
	for i := 0; i < sc.NumColumns(); i++ {
		sh.streams[i] = &LeafStream{Column: sc.Column(i)}
	}

	root := sc.Root()
	for i, row := range rows {
		if row.Kind() != nested.KindStruct {
			return nil, xerrors.Errorf("nested: row %d is %s, not a struct: %w",
				i, row.Kind(), ErrValueMismatch)
		}
		for _, f := range root.Fields() {
			fv, _ := row.Field(f.Name())
			if err := sh.shredNode(f, fv, 0, 0); err != nil {
				return nil, xerrors.Errorf("row %d: %w", i, err)
			}
		}
	}

	out := make(Result, len(sh.streams))
	for _, s := range sh.streams {
		out[s.Column.Path()] = s
	}
	return out, nil
}

type shredder struct {
	sc      *schema.Schema
	streams []*LeafStream
}

// shredNode emits the level stream for value v of node n. rep is the
// repetition level of the first position emitted beneath n, def is the
// definition level accumulated by n's ancestors, not counting n itself.
func (sh *shredder) shredNode(n schema.Node, v nested.Value, rep, def int16) error {
	optional := n.RepetitionType() == nested.Repetitions.Optional
	if v.IsNull() {
		if !optional {
			return xerrors.Errorf("nested: null value for %s field %s: %w",
				n.RepetitionType(), n.Path(), ErrValueMismatch)
		}
		sh.padLeaves(n, rep, def)
		return nil
	}
	if optional {
		def++
	}

	switch t := n.(type) {
	case *schema.PrimitiveNode:
		if v.Kind() != nested.KindScalar {
			return xerrors.Errorf("nested: %s value for primitive field %s: %w",
				v.Kind(), n.Path(), ErrValueMismatch)
		}
		begin, _, _ := sh.sc.LeafRange(n)
		sh.appendLeaf(begin, rep, def, v.Scalar())
		return nil

	case *schema.GroupNode:
		switch t.LogicalKind() {
		case schema.KindStruct:
			if v.Kind() != nested.KindStruct {
				return xerrors.Errorf("nested: %s value for struct field %s: %w",
					v.Kind(), n.Path(), ErrValueMismatch)
			}
			for _, f := range t.Fields() {
				fv, _ := v.Field(f.Name())
				if err := sh.shredNode(f, fv, rep, def); err != nil {
					return err
				}
			}
			return nil

		case schema.KindList:
			if v.Kind() != nested.KindList {
				return xerrors.Errorf("nested: %s value for list field %s: %w",
					v.Kind(), n.Path(), ErrValueMismatch)
			}
			if v.Len() == 0 {
				sh.padLeaves(n, rep, def)
				return nil
			}
			elem := t.ListElement()
			elemDef, elemRep, _ := sh.sc.NodeLevels(elem.Parent())
			for i := 0; i < v.Len(); i++ {
				r := rep
				if i > 0 {
					r = elemRep
				}
				if err := sh.shredNode(elem, v.Elem(i), r, elemDef); err != nil {
					return err
				}
			}
			return nil

		case schema.KindMap:
			if v.Kind() != nested.KindMap {
				return xerrors.Errorf("nested: %s value for map field %s: %w",
					v.Kind(), n.Path(), ErrValueMismatch)
			}
			if v.Len() == 0 {
				sh.padLeaves(n, rep, def)
				return nil
			}
			key, val := t.MapKey(), t.MapValue()
			kvDef, kvRep, _ := sh.sc.NodeLevels(key.Parent())
			for i := 0; i < v.Len(); i++ {
				r := rep
				if i > 0 {
					r = kvRep
				}
				entry := v.Entry(i)
				if entry.Key.IsNull() {
					return xerrors.Errorf("nested: null key in map field %s: %w",
						n.Path(), ErrValueMismatch)
				}
				if err := sh.shredNode(key, entry.Key, r, kvDef); err != nil {
					return err
				}
				if err := sh.shredNode(val, entry.Value, r, kvDef); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return xerrors.Errorf("nested: unknown node %s: %w", n.Path(), ErrValueMismatch)
}

// padLeaves records one position at (rep, def) for every leaf beneath n,
// marking the whole subtree absent or empty at this point.
func (sh *shredder) padLeaves(n schema.Node, rep, def int16) {
	begin, end, _ := sh.sc.LeafRange(n)
	for i := begin; i < end; i++ {
		s := sh.streams[i]
		s.RepLevels = append(s.RepLevels, rep)
		s.DefLevels = append(s.DefLevels, def)
	}
}

func (sh *shredder) appendLeaf(idx int, rep, def int16, value interface{}) {
	s := sh.streams[idx]
	s.RepLevels = append(s.RepLevels, rep)
	s.DefLevels = append(s.DefLevels, def)
	s.Values = append(s.Values, value)
}
