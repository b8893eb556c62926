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

package schema

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
	"golang.org/x/xerrors"

	nested "github.com/lapfelix/parquet-nested"
	"github.com/lapfelix/parquet-nested/levels"
)

// Column is the descriptor of one leaf of the schema: its path, its level
// bounds and its chain of optional-or-repeated ancestors. Columns are built
// once by NewSchema and shared read-only between the shredder and the
// assembler for the lifetime of a session.
type Column struct {
	pnode *PrimitiveNode
	path  nested.ColumnPath
	info  levels.LevelInfo
	chain levels.AncestorChain
	index int
}

// Index returns the position of the column in the schema's leaf order.
func (c *Column) Index() int { return c.index }

// Name returns the leaf field name.
func (c *Column) Name() string { return c.pnode.Name() }

// Path returns the dotted string form of the column path.
func (c *Column) Path() string { return c.path.String() }

// ColumnPath returns the ordered field names from root to leaf.
func (c *Column) ColumnPath() nested.ColumnPath { return c.path }

// SchemaNode returns the leaf node the column describes.
func (c *Column) SchemaNode() *PrimitiveNode { return c.pnode }

// PhysicalType returns the physical type of the leaf.
func (c *Column) PhysicalType() nested.Type { return c.pnode.PhysicalType() }

// MaxDefinitionLevel returns the maximum definition level of the leaf.
func (c *Column) MaxDefinitionLevel() int16 { return c.info.DefLevel }

// MaxRepetitionLevel returns the maximum repetition level of the leaf.
func (c *Column) MaxRepetitionLevel() int16 { return c.info.RepLevel }

// LevelInfo returns the full level bounds of the leaf.
func (c *Column) LevelInfo() levels.LevelInfo { return c.info }

// AncestorChain returns the leaf's ordered chain of optional-or-repeated
// ancestors.
func (c *Column) AncestorChain() levels.AncestorChain { return c.chain }

type nodeInfo struct {
	node     Node
	parent   int
	defLevel int16
	repLevel int16
	// half-open range of column indices beneath this node
	leafBegin, leafEnd int
}

// Schema is an immutable schema tree together with its arena of per-node
// level information and per-leaf column descriptors, all computed once at
// construction.
type Schema struct {
	root *GroupNode

	nodes     []nodeInfo
	nodeIdx   map[Node]int
	columns   []*Column
	leafByKey map[string]int

	fingerprint uint64
}

// NewSchema validates the tree rooted at root and computes the level
// information for every node. The root must be a required group.
func NewSchema(root *GroupNode) (*Schema, error) {
	if root == nil {
		return nil, xerrors.Errorf("nested: schema root must not be nil: %w", ErrInvalidSchema)
	}
	if root.RepetitionType() != nested.Repetitions.Required {
		return nil, xerrors.Errorf("nested: schema root must be required, got %s: %w",
			root.RepetitionType(), ErrInvalidSchema)
	}
	s := &Schema{
		root:      root,
		nodeIdx:   make(map[Node]int),
		leafByKey: make(map[string]int),
	}
	if err := s.walk(root, -1, levels.LevelInfo{NullSlotUsage: 1}, nil); err != nil {
		return nil, err
	}
	s.fingerprint = xxh3.HashString(s.String())
	return s, nil
}

func (s *Schema) walk(n Node, parent int, info levels.LevelInfo, chain levels.AncestorChain) error {
	switch n.RepetitionType() {
	case nested.Repetitions.Required:
	case nested.Repetitions.Optional:
		info.IncrementOptional()
		chain = append(chain[:len(chain):len(chain)],
			levels.Ancestor{DefLevel: info.DefLevel, RepLevel: info.RepLevel})
	case nested.Repetitions.Repeated:
		// repeated nodes are only legal as the synthetic group of the
		// three-level list and map conventions; the level streams have no
		// encoding for a bare repeated field
		if !s.insideContainer(parent) {
			return xerrors.Errorf("nested: repeated field %s outside a list or map group: %w",
				n.Name(), ErrInvalidSchema)
		}
		info.IncrementRepeated()
		chain = append(chain[:len(chain):len(chain)],
			levels.Ancestor{DefLevel: info.DefLevel, RepLevel: info.RepLevel, Repeated: true})
	default:
		return xerrors.Errorf("nested: node %s has unrecognized repetition kind %d: %w",
			n.Name(), int(n.RepetitionType()), ErrInvalidSchema)
	}

	idx := len(s.nodes)
	s.nodes = append(s.nodes, nodeInfo{
		node:      n,
		parent:    parent,
		defLevel:  info.DefLevel,
		repLevel:  info.RepLevel,
		leafBegin: len(s.columns),
	})
	s.nodeIdx[n] = idx

	switch t := n.(type) {
	case *PrimitiveNode:
		col := &Column{
			pnode: t,
			path:  t.Path(),
			info:  info,
			chain: chain,
			index: len(s.columns),
		}
		if _, ok := s.leafByKey[col.Path()]; ok {
			return xerrors.Errorf("nested: duplicate column path %s: %w", col.Path(), ErrInvalidSchema)
		}
		s.leafByKey[col.Path()] = col.index
		s.columns = append(s.columns, col)
	case *GroupNode:
		if err := checkGroupShape(t); err != nil {
			return err
		}
		for _, f := range t.Fields() {
			if err := s.walk(f, idx, info, chain); err != nil {
				return err
			}
		}
	default:
		return xerrors.Errorf("nested: unknown node implementation %T: %w", n, ErrInvalidSchema)
	}

	s.nodes[idx].leafEnd = len(s.columns)
	return nil
}

// insideContainer reports whether the node at parent is a list or map
// group, the only place a repeated child may appear.
func (s *Schema) insideContainer(parent int) bool {
	if parent < 0 {
		return false
	}
	g, ok := s.nodes[parent].node.(*GroupNode)
	return ok && (g.LogicalKind() == KindList || g.LogicalKind() == KindMap)
}

// checkGroupShape re-validates the three-level list and map invariants for
// trees not built through the package constructors.
func checkGroupShape(g *GroupNode) error {
	switch g.LogicalKind() {
	case KindList:
		if g.NumFields() != 1 || g.Field(0).RepetitionType() != nested.Repetitions.Repeated {
			return xerrors.Errorf("nested: list %s must hold exactly one repeated group: %w",
				g.Name(), ErrInvalidSchema)
		}
	case KindMap:
		if g.NumFields() != 1 || g.Field(0).RepetitionType() != nested.Repetitions.Repeated {
			return xerrors.Errorf("nested: map %s must hold exactly one repeated group: %w",
				g.Name(), ErrInvalidSchema)
		}
		kv, ok := g.Field(0).(*GroupNode)
		if !ok || kv.NumFields() != 2 {
			return xerrors.Errorf("nested: map %s key_value group must hold a key and a value: %w",
				g.Name(), ErrInvalidSchema)
		}
		if kv.Field(0).RepetitionType() != nested.Repetitions.Required {
			return xerrors.Errorf("nested: map %s key must be required, got %s: %w",
				g.Name(), kv.Field(0).RepetitionType(), ErrInvalidSchema)
		}
	}
	return nil
}

// Root returns the root group of the schema.
func (s *Schema) Root() *GroupNode { return s.root }

// NumColumns returns the number of leaves.
func (s *Schema) NumColumns() int { return len(s.columns) }

// Column returns the i-th leaf descriptor in schema order.
func (s *Schema) Column(i int) *Column { return s.columns[i] }

// Columns returns all leaf descriptors in schema order.
func (s *Schema) Columns() []*Column { return s.columns }

// ColumnIndexByPath returns the index of the column with the given dotted
// path, or -1 if no such leaf exists.
func (s *Schema) ColumnIndexByPath(path string) int {
	if i, ok := s.leafByKey[path]; ok {
		return i
	}
	return -1
}

// NodeLevels returns the maximum definition and repetition levels of any
// node belonging to this schema.
func (s *Schema) NodeLevels(n Node) (defLevel, repLevel int16, ok bool) {
	i, ok := s.nodeIdx[n]
	if !ok {
		return 0, 0, false
	}
	return s.nodes[i].defLevel, s.nodes[i].repLevel, true
}

// LeafRange returns the half-open range of column indices of the leaves
// beneath the given node.
func (s *Schema) LeafRange(n Node) (begin, end int, ok bool) {
	i, ok := s.nodeIdx[n]
	if !ok {
		return 0, 0, false
	}
	return s.nodes[i].leafBegin, s.nodes[i].leafEnd, true
}

// Fingerprint returns a hash of the canonical schema text. Two schemas with
// the same fingerprint compute identical level tables, which lets a cache
// key level information shared between a write and a read session.
func (s *Schema) Fingerprint() uint64 { return s.fingerprint }

// String renders the schema as a parquet-style message definition.
func (s *Schema) String() string {
	var bld strings.Builder
	printNode(&bld, s.root, 0)
	return bld.String()
}

func printNode(bld *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch t := n.(type) {
	case *GroupNode:
		annotation := ""
		switch t.LogicalKind() {
		case KindList:
			annotation = " (List)"
		case KindMap:
			annotation = " (Map)"
		}
		fmt.Fprintf(bld, "%s%s group %s%s {\n", indent, t.RepetitionType(), t.Name(), annotation)
		for _, f := range t.Fields() {
			printNode(bld, f, depth+1)
		}
		fmt.Fprintf(bld, "%s}\n", indent)
	case *PrimitiveNode:
		if t.PhysicalType() == nested.Types.FixedLenByteArray {
			fmt.Fprintf(bld, "%s%s %s(%d) %s;\n", indent, t.RepetitionType(), t.PhysicalType(), t.TypeLength(), t.Name())
			return
		}
		fmt.Fprintf(bld, "%s%s %s %s;\n", indent, t.RepetitionType(), t.PhysicalType(), t.Name())
	}
}
