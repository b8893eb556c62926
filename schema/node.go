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

// Package schema provides the immutable typed schema tree for nested
// columns. Lists and maps are modeled with the parquet three-level
// convention: a list is an annotated group holding a repeated "list" group
// with a single element field, a map is an annotated group holding a
// repeated "key_value" group with a required key and a value field.
package schema

import (
	"golang.org/x/xerrors"

	nested "github.com/lapfelix/parquet-nested"
)

// ErrInvalidSchema is wrapped by all schema construction failures.
var ErrInvalidSchema = xerrors.New("nested: invalid schema")

// NodeType is either Primitive or Group for a given schema node.
type NodeType int

// The possible node types.
const (
	Primitive NodeType = iota
	Group
)

// LogicalKind annotates what a group node represents at the application
// level. Plain groups are structs.
type LogicalKind int8

// The possible logical kinds of a group node.
const (
	KindStruct LogicalKind = iota
	KindList
	KindMap
)

func (k LogicalKind) String() string {
	switch k {
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "invalid"
}

// Node is the interface for both primitive and group schema nodes. A node
// is immutable once constructed and owned by its parent group.
type Node interface {
	Name() string
	Type() NodeType
	RepetitionType() nested.Repetition
	Parent() Node
	Path() nested.ColumnPath

	setParent(Node)
}

// FieldList is an alias for a slice of Nodes to refer to when dealing with
// the fields of a group node.
type FieldList []Node

// Len is equivalent to len(fieldlist)
func (f FieldList) Len() int { return len(f) }

type node struct {
	name   string
	rep    nested.Repetition
	parent Node
}

func (n *node) Name() string                      { return n.name }
func (n *node) RepetitionType() nested.Repetition { return n.rep }
func (n *node) Parent() Node                      { return n.parent }
func (n *node) setParent(p Node)                  { n.parent = p }

func (n *node) Path() nested.ColumnPath {
	var path nested.ColumnPath
	cur := Node(nil)
	// walk upwards; the root group's name is not part of the path
	for cur = n.parent; cur != nil && cur.Parent() != nil; cur = cur.Parent() {
		path = append(nested.ColumnPath{cur.Name()}, path...)
	}
	// the receiver embeds into Primitive/Group nodes, whose Name is n.name
	return append(path, n.name)
}

func checkRepetition(rep nested.Repetition) error {
	switch rep {
	case nested.Repetitions.Required, nested.Repetitions.Optional, nested.Repetitions.Repeated:
		return nil
	}
	return xerrors.Errorf("nested: unrecognized repetition kind %d: %w", int(rep), ErrInvalidSchema)
}

// PrimitiveNode is a leaf node of the schema tree, the unit of physical
// column storage.
type PrimitiveNode struct {
	node

	physicalType nested.Type
	typeLength   int
}

// NewPrimitiveNode constructs a leaf with the given physical type.
// typeLength is only meaningful for FixedLenByteArray and must be positive
// there.
func NewPrimitiveNode(name string, rep nested.Repetition, typ nested.Type, typeLength int) (*PrimitiveNode, error) {
	if err := checkRepetition(rep); err != nil {
		return nil, err
	}
	if typ == nested.Types.FixedLenByteArray && typeLength <= 0 {
		return nil, xerrors.Errorf("nested: invalid FIXED_LEN_BYTE_ARRAY length %d for node %s: %w",
			typeLength, name, ErrInvalidSchema)
	}
	return &PrimitiveNode{
		node:         node{name: name, rep: rep},
		physicalType: typ,
		typeLength:   typeLength,
	}, nil
}

// Convenience constructors mirroring the physical types. These panic only
// on an undefined repetition, which is a programming error.

// NewBooleanNode creates a required/optional/repeated boolean leaf.
func NewBooleanNode(name string, rep nested.Repetition) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.Boolean, -1))
}

// NewInt32Node creates an int32 leaf.
func NewInt32Node(name string, rep nested.Repetition) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.Int32, -1))
}

// NewInt64Node creates an int64 leaf.
func NewInt64Node(name string, rep nested.Repetition) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.Int64, -1))
}

// NewInt96Node creates an int96 leaf.
func NewInt96Node(name string, rep nested.Repetition) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.Int96, -1))
}

// NewFloatNode creates a float32 leaf.
func NewFloatNode(name string, rep nested.Repetition) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.Float, -1))
}

// NewDoubleNode creates a float64 leaf.
func NewDoubleNode(name string, rep nested.Repetition) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.Double, -1))
}

// NewByteArrayNode creates a variable length byte array leaf, also used for
// strings.
func NewByteArrayNode(name string, rep nested.Repetition) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.ByteArray, -1))
}

// NewFixedLenByteArrayNode creates a fixed length byte array leaf of the
// given length.
func NewFixedLenByteArrayNode(name string, rep nested.Repetition, length int) *PrimitiveNode {
	return mustPrimitive(NewPrimitiveNode(name, rep, nested.Types.FixedLenByteArray, length))
}

func mustPrimitive(n *PrimitiveNode, err error) *PrimitiveNode {
	if err != nil {
		panic(err)
	}
	return n
}

// Type returns Primitive.
func (p *PrimitiveNode) Type() NodeType { return Primitive }

// PhysicalType returns the underlying physical type of the leaf.
func (p *PrimitiveNode) PhysicalType() nested.Type { return p.physicalType }

// TypeLength returns the byte width of a FixedLenByteArray leaf, -1 for
// every other physical type.
func (p *PrimitiveNode) TypeLength() int { return p.typeLength }

// GroupNode is an internal node of the schema tree holding an ordered list
// of child fields. Its LogicalKind distinguishes structs, lists and maps.
type GroupNode struct {
	node

	fields    FieldList
	nameToIdx map[string]int
	logical   LogicalKind
}

func newGroup(name string, rep nested.Repetition, kind LogicalKind, fields FieldList) (*GroupNode, error) {
	if err := checkRepetition(rep); err != nil {
		return nil, err
	}
	g := &GroupNode{
		node:      node{name: name, rep: rep},
		fields:    fields,
		nameToIdx: make(map[string]int, len(fields)),
		logical:   kind,
	}
	for i, f := range fields {
		if f == nil {
			return nil, xerrors.Errorf("nested: group %s has a nil field: %w", name, ErrInvalidSchema)
		}
		if _, ok := g.nameToIdx[f.Name()]; ok {
			return nil, xerrors.Errorf("nested: group %s has duplicate field %s: %w", name, f.Name(), ErrInvalidSchema)
		}
		f.setParent(g)
		g.nameToIdx[f.Name()] = i
	}
	return g, nil
}

// NewGroupNode constructs a plain struct group from the given fields.
func NewGroupNode(name string, rep nested.Repetition, fields FieldList) (*GroupNode, error) {
	if len(fields) == 0 {
		return nil, xerrors.Errorf("nested: group %s must have at least one field: %w", name, ErrInvalidSchema)
	}
	return newGroup(name, rep, KindStruct, fields)
}

// NewListNode constructs a list group in the three-level convention:
//
//	<rep> group <name> (List) {
//	  repeated group list {
//	    <element>
//	  }
//	}
//
// The list node itself cannot be repeated (wrap it in another list instead)
// and neither can the element.
func NewListNode(name string, rep nested.Repetition, element Node) (*GroupNode, error) {
	if rep == nested.Repetitions.Repeated {
		return nil, xerrors.Errorf("nested: list %s cannot itself be repeated: %w", name, ErrInvalidSchema)
	}
	if element.RepetitionType() == nested.Repetitions.Repeated {
		return nil, xerrors.Errorf("nested: list %s element cannot be repeated: %w", name, ErrInvalidSchema)
	}
	repeated, err := newGroup("list", nested.Repetitions.Repeated, KindStruct, FieldList{element})
	if err != nil {
		return nil, err
	}
	return newGroup(name, rep, KindList, FieldList{repeated})
}

// NewMapNode constructs a map group in the three-level convention:
//
//	<rep> group <name> (Map) {
//	  repeated group key_value {
//	    required <key>;
//	    <value>;
//	  }
//	}
//
// The key must be a required primitive; map keys are never null and never
// repeated. The value may be optional or required but not repeated.
func NewMapNode(name string, rep nested.Repetition, key, value Node) (*GroupNode, error) {
	if rep == nested.Repetitions.Repeated {
		return nil, xerrors.Errorf("nested: map %s cannot itself be repeated: %w", name, ErrInvalidSchema)
	}
	if _, ok := key.(*PrimitiveNode); !ok {
		return nil, xerrors.Errorf("nested: map %s key must be a primitive: %w", name, ErrInvalidSchema)
	}
	if key.RepetitionType() != nested.Repetitions.Required {
		return nil, xerrors.Errorf("nested: map %s key must be required, got %s: %w",
			name, key.RepetitionType(), ErrInvalidSchema)
	}
	if value.RepetitionType() == nested.Repetitions.Repeated {
		return nil, xerrors.Errorf("nested: map %s value cannot be repeated: %w", name, ErrInvalidSchema)
	}
	keyval, err := newGroup("key_value", nested.Repetitions.Repeated, KindStruct, FieldList{key, value})
	if err != nil {
		return nil, err
	}
	return newGroup(name, rep, KindMap, FieldList{keyval})
}

// Type returns Group.
func (g *GroupNode) Type() NodeType { return Group }

// LogicalKind returns what the group represents: struct, list or map.
func (g *GroupNode) LogicalKind() LogicalKind { return g.logical }

// NumFields returns the number of direct child fields.
func (g *GroupNode) NumFields() int { return len(g.fields) }

// Field returns the i-th child field.
func (g *GroupNode) Field(i int) Node { return g.fields[i] }

// Fields returns the ordered child field list.
func (g *GroupNode) Fields() FieldList { return g.fields }

// FieldIndexByName returns the index of the named child field or -1.
func (g *GroupNode) FieldIndexByName(name string) int {
	if i, ok := g.nameToIdx[name]; ok {
		return i
	}
	return -1
}

// repeatedGroup returns the synthetic repeated child of a list or map group.
func (g *GroupNode) repeatedGroup() *GroupNode {
	return g.fields[0].(*GroupNode)
}

// ListElement returns the element node of a list group.
func (g *GroupNode) ListElement() Node {
	return g.repeatedGroup().Field(0)
}

// MapKey returns the key node of a map group.
func (g *GroupNode) MapKey() Node {
	return g.repeatedGroup().Field(0)
}

// MapValue returns the value node of a map group.
func (g *GroupNode) MapValue() Node {
	return g.repeatedGroup().Field(1)
}
