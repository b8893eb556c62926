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

// cursor walks one leaf stream a triple at a time.
type cursor struct {
	stream *LeafStream
	col    *schema.Column
	pos    int
	valPos int

	// positions at the start of the current row, for skipping a poisoned
	// row without losing the boundary
	rowPos    int
	rowValPos int
}

func (c *cursor) done() bool { return c.pos >= c.stream.Len() }

func (c *cursor) peek() (rep, def int16) {
	return c.stream.RepLevels[c.pos], c.stream.DefLevels[c.pos]
}

// pop consumes the next triple, validating its levels against the leaf's
// computed maxima.
func (c *cursor) pop() (LeafTriple, error) {
	rep, def := c.peek()
	if rep < 0 || rep > c.col.MaxRepetitionLevel() {
		return LeafTriple{}, xerrors.Errorf("nested: column %s: repetition level %d outside [0, %d]: %w",
			c.col.Path(), rep, c.col.MaxRepetitionLevel(), ErrLevelOutOfRange)
	}
	if def < 0 || def > c.col.MaxDefinitionLevel() {
		return LeafTriple{}, xerrors.Errorf("nested: column %s: definition level %d outside [0, %d]: %w",
			c.col.Path(), def, c.col.MaxDefinitionLevel(), ErrLevelOutOfRange)
	}
	t := LeafTriple{RepLevel: rep, DefLevel: def}
	if def == c.col.MaxDefinitionLevel() {
		if c.valPos >= len(c.stream.Values) {
			return LeafTriple{}, xerrors.Errorf("nested: column %s: level stream names more values than present: %w",
				c.col.Path(), ErrLeafDesync)
		}
		t.Value = c.stream.Values[c.valPos]
		c.valPos++
	}
	c.pos++
	return t, nil
}

// markRow remembers the current position as a row boundary.
func (c *cursor) markRow() {
	c.rowPos = c.pos
	c.rowValPos = c.valPos
}

// skipRow rewinds to the last row boundary and advances past exactly one
// row worth of triples.
func (c *cursor) skipRow() {
	c.pos, c.valPos = c.rowPos, c.rowValPos
	if c.done() {
		return
	}
	maxDef := c.col.MaxDefinitionLevel()
	for {
		if c.stream.DefLevels[c.pos] == maxDef {
			c.valPos++
		}
		c.pos++
		if c.done() || c.stream.RepLevels[c.pos] == 0 {
			return
		}
	}
}

// RowReader assembles rows from shredded leaf streams by advancing one
// cursor per leaf in lock-step. Rows are assembled lazily; errors local to
// one row poison only that row, the reader skips to the next row boundary
// and continues. A fresh reader over the same streams restarts from the
// first row.
type RowReader struct {
	sc      *schema.Schema
	cursors []*cursor
}

// NewRowReader constructs a reader over the given streams, which must
// contain exactly one stream per leaf of the schema.
func NewRowReader(sc *schema.Schema, cols Result) (*RowReader, error) {
	r := &RowReader{sc: sc, cursors: make([]*cursor, sc.NumColumns())}
	for i := 0; i < sc.NumColumns(); i++ {
		col := sc.Column(i)
		stream, ok := cols[col.Path()]
		if !ok {
			return nil, xerrors.Errorf("nested: no stream for column %s: %w", col.Path(), ErrLeafDesync)
		}
		if len(stream.DefLevels) != len(stream.RepLevels) {
			return nil, xerrors.Errorf("nested: column %s: %d definition levels but %d repetition levels: %w",
				col.Path(), len(stream.DefLevels), len(stream.RepLevels), ErrLeafDesync)
		}
		r.cursors[i] = &cursor{stream: stream, col: col}
	}
	if len(cols) != sc.NumColumns() {
		return nil, xerrors.Errorf("nested: %d streams for %d columns: %w",
			len(cols), sc.NumColumns(), ErrLeafDesync)
	}
	return r, nil
}

// HasNext reports whether any leaf stream has triples left.
func (r *RowReader) HasNext() bool {
	for _, c := range r.cursors {
		if !c.done() {
			return true
		}
	}
	return false
}

// Next assembles the next row. An error wrapping ErrLevelOutOfRange or
// ErrLeafDesync refers to this row only; the reader has already advanced to
// the next row boundary and may be read again.
func (r *RowReader) Next() (nested.Value, error) {
	if !r.HasNext() {
		return nested.Value{}, xerrors.New("nested: no rows left")
	}

	for _, c := range r.cursors {
		c.markRow()
	}
	row, err := r.assembleRow()
	if err != nil {
		for _, c := range r.cursors {
			c.skipRow()
		}
		return nested.Value{}, err
	}
	return row, nil
}

func (r *RowReader) assembleRow() (nested.Value, error) {
	for _, c := range r.cursors {
		if c.done() {
			return nested.Value{}, xerrors.Errorf("nested: column %s exhausted before its siblings: %w",
				c.col.Path(), ErrLeafDesync)
		}
		if rep, _ := c.peek(); rep != 0 {
			return nested.Value{}, xerrors.Errorf("nested: column %s: row does not begin at repetition level 0, got %d: %w",
				c.col.Path(), rep, ErrLeafDesync)
		}
	}

	root := r.sc.Root()
	fields := make([]nested.StructField, 0, root.NumFields())
	for _, f := range root.Fields() {
		fv, err := r.assembleNode(f)
		if err != nil {
			return nested.Value{}, err
		}
		fields = append(fields, nested.StructField{Name: f.Name(), Value: fv})
	}
	return nested.StructValue(fields), nil
}

// leafCursors returns the cursors of the leaves beneath n.
func (r *RowReader) leafCursors(n schema.Node) []*cursor {
	begin, end, _ := r.sc.LeafRange(n)
	return r.cursors[begin:end]
}

// checkPresence decides whether the node is present at the current position
// of every leaf beneath it. defLevel is the node's own definition level and
// doubles as its depth in each leaf's ancestor chain: the node is present
// when the observed definition level satisfies at least that many chain
// entries. All leaves must agree, and an absent node must sit exactly one
// entry short, since any shallower absence belongs to an ancestor that was
// already checked.
func (r *RowReader) checkPresence(n schema.Node, defLevel int16) (bool, error) {
	curs := r.leafCursors(n)
	depth := int(defLevel)
	present := false
	for i, c := range curs {
		if c.done() {
			return false, xerrors.Errorf("nested: column %s exhausted inside a row: %w",
				c.col.Path(), ErrLeafDesync)
		}
		_, def := c.peek()
		p := c.col.AncestorChain().PresentDepth(def) >= depth
		if i == 0 {
			present = p
			continue
		}
		if p != present {
			return false, xerrors.Errorf("nested: columns under %s disagree on its presence: %w",
				n.Path(), ErrLeafDesync)
		}
	}
	if !present {
		for _, c := range curs {
			_, def := c.peek()
			if c.col.AncestorChain().PresentDepth(def) != depth-1 {
				return false, xerrors.Errorf("nested: column %s: definition level %d does not match absence of %s at level %d: %w",
					c.col.Path(), def, n.Path(), defLevel-1, ErrLeafDesync)
			}
		}
	}
	return present, nil
}

// consumeOne advances every leaf beneath n by a single triple, used when
// the node or an entire container instance is absent or empty.
func (r *RowReader) consumeOne(n schema.Node) error {
	for _, c := range r.leafCursors(n) {
		if _, err := c.pop(); err != nil {
			return err
		}
	}
	return nil
}

// assembleNode reconstructs the value of node n at the current position of
// its leaf cursors, consuming every triple belonging to that value.
func (r *RowReader) assembleNode(n schema.Node) (nested.Value, error) {
	nodeDef, _, ok := r.sc.NodeLevels(n)
	if !ok {
		return nested.Value{}, xerrors.Errorf("nested: node %s does not belong to this schema: %w",
			n.Path(), ErrLeafDesync)
	}

	if n.RepetitionType() == nested.Repetitions.Optional {
		present, err := r.checkPresence(n, nodeDef)
		if err != nil {
			return nested.Value{}, err
		}
		if !present {
			if err := r.consumeOne(n); err != nil {
				return nested.Value{}, err
			}
			return nested.NullValue(), nil
		}
	}

	switch t := n.(type) {
	case *schema.PrimitiveNode:
		c := r.leafCursors(n)[0]
		triple, err := c.pop()
		if err != nil {
			return nested.Value{}, err
		}
		if triple.DefLevel != c.col.MaxDefinitionLevel() {
			// ancestors all checked present, so the leaf value must be too
			return nested.Value{}, xerrors.Errorf("nested: column %s: definition level %d with all ancestors present: %w",
				c.col.Path(), triple.DefLevel, ErrLeafDesync)
		}
		return nested.ScalarValue(triple.Value), nil

	case *schema.GroupNode:
		switch t.LogicalKind() {
		case schema.KindStruct:
			fields := make([]nested.StructField, 0, t.NumFields())
			for _, f := range t.Fields() {
				fv, err := r.assembleNode(f)
				if err != nil {
					return nested.Value{}, err
				}
				fields = append(fields, nested.StructField{Name: f.Name(), Value: fv})
			}
			return nested.StructValue(fields), nil

		case schema.KindList:
			elem := t.ListElement()
			return r.assembleRepeated(t, func() (nested.Value, error) {
				return r.assembleNode(elem)
			})

		case schema.KindMap:
			key, val := t.MapKey(), t.MapValue()
			return r.assembleRepeated(t, func() (nested.Value, error) {
				k, err := r.assembleNode(key)
				if err != nil {
					return nested.Value{}, err
				}
				v, err := r.assembleNode(val)
				if err != nil {
					return nested.Value{}, err
				}
				return nested.StructValue([]nested.StructField{
					{Name: "key", Value: k},
					{Name: "value", Value: v},
				}), nil
			})
		}
	}
	return nested.Value{}, xerrors.Errorf("nested: unknown node %s: %w", n.Path(), ErrLeafDesync)
}

// assembleRepeated reconstructs a list or map container that is known to be
// present. assembleElem consumes exactly one element worth of triples from
// the leaves beneath the container's repeated group.
func (r *RowReader) assembleRepeated(t *schema.GroupNode, assembleElem func() (nested.Value, error)) (nested.Value, error) {
	rg := t.Field(0)
	rgDef, rgRep, _ := r.sc.NodeLevels(rg)

	// "absent" at the repeated group means the container is present but
	// holds no elements
	hasElems, err := r.checkPresence(rg, rgDef)
	if err != nil {
		return nested.Value{}, err
	}
	if !hasElems {
		if err := r.consumeOne(t); err != nil {
			return nested.Value{}, err
		}
		return r.emptyContainer(t), nil
	}

	var elems []nested.Value
	for {
		ev, err := assembleElem()
		if err != nil {
			return nested.Value{}, err
		}
		elems = append(elems, ev)

		more, err := r.moreElements(rg, rgRep)
		if err != nil {
			return nested.Value{}, err
		}
		if !more {
			break
		}
	}
	return r.wrapContainer(t, elems)
}

// moreElements peeks every leaf beneath the repeated group to decide if
// another element of this container follows. The next triple starts a new
// element exactly when its repetition level equals the repeated group's
// level; a lower level closes this container in favor of an ancestor (or a
// new row), a higher one names a repeated ancestor this container does not
// have.
func (r *RowReader) moreElements(rg schema.Node, rgRep int16) (bool, error) {
	curs := r.leafCursors(rg)
	more := false
	for i, c := range curs {
		cont := false
		if !c.done() {
			rep, _ := c.peek()
			if rep > rgRep {
				return false, xerrors.Errorf("nested: column %s: repetition level %d deeper than enclosing container level %d: %w",
					c.col.Path(), rep, rgRep, ErrLevelOutOfRange)
			}
			cont = rep == rgRep
		}
		if i == 0 {
			more = cont
			continue
		}
		if cont != more {
			return false, xerrors.Errorf("nested: columns under %s disagree on element count: %w",
				rg.Path(), ErrLeafDesync)
		}
	}
	return more, nil
}

func (r *RowReader) emptyContainer(t *schema.GroupNode) nested.Value {
	if t.LogicalKind() == schema.KindMap {
		return nested.MapValue([]nested.MapEntry{})
	}
	return nested.ListValue([]nested.Value{})
}

func (r *RowReader) wrapContainer(t *schema.GroupNode, elems []nested.Value) (nested.Value, error) {
	if t.LogicalKind() == schema.KindList {
		return nested.ListValue(elems), nil
	}
	entries := make([]nested.MapEntry, len(elems))
	for i, e := range elems {
		k, _ := e.Field("key")
		v, _ := e.Field("value")
		if k.IsNull() {
			return nested.Value{}, xerrors.Errorf("nested: map %s entry %d has a null key: %w",
				t.Path(), i, ErrLeafDesync)
		}
		entries[i] = nested.MapEntry{Key: k, Value: v}
	}
	return nested.MapValue(entries), nil
}

// Assemble drains a fresh reader over the streams, failing on the first
// malformed row.
func Assemble(sc *schema.Schema, cols Result) ([]nested.Value, error) {
	r, err := NewRowReader(sc, cols)
	if err != nil {
		return nil, err
	}
	rows := make([]nested.Value, 0)
	for r.HasNext() {
		row, err := r.Next()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
