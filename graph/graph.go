// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for building computation graphs
// consumed by the NetIR serializer.
//
// Example:
//
//	g := graph.New("net")
//	data := g.AddParameter("data", graph.F32, graph.StaticShape(1, 3, 22, 22))
//	act, _ := g.AddOp("Relu", "act", data.Output(0))
//	g.AddResult("out", act.Output(0))
package graph

import (
	"github.com/born-ml/netir/internal/graph"
)

// Type aliases for public API

// Graph is an ordered, acyclic collection of nodes with designated
// input/output boundary nodes.
type Graph = graph.Graph

// Node is a single operation in a computation graph.
type Node = graph.Node

// Output is a producer port of a node.
type Output = graph.Output

// Input is a consumer port of a node.
type Input = graph.Input

// Attribute is a named, kind-tagged node value.
type Attribute = graph.Attribute

// AttributeVisitor receives a node's attributes one at a time.
type AttributeVisitor = graph.AttributeVisitor

// PartialShape is a tensor shape with possibly dynamic dimensions.
type PartialShape = graph.PartialShape

// Dimension is a single, possibly dynamic shape dimension.
type Dimension = graph.Dimension

// ElementType represents a tensor element type.
type ElementType = graph.ElementType

// Element type constants.
const (
	Undefined ElementType = graph.Undefined
	F16       ElementType = graph.F16
	F32       ElementType = graph.F32
	BF16      ElementType = graph.BF16
	F64       ElementType = graph.F64
	I8        ElementType = graph.I8
	I16       ElementType = graph.I16
	I32       ElementType = graph.I32
	I64       ElementType = graph.I64
	U1        ElementType = graph.U1
	U8        ElementType = graph.U8
	U16       ElementType = graph.U16
	U32       ElementType = graph.U32
	U64       ElementType = graph.U64
	Bool      ElementType = graph.Bool
)

// NoBound marks a dynamic dimension without a declared upper bound.
const NoBound = graph.NoBound

// New creates an empty graph with a friendly name.
func New(name string) *Graph {
	return graph.New(name)
}

// StaticShape builds a fully static shape from concrete dimension sizes.
func StaticShape(dims ...int) PartialShape {
	return graph.StaticShape(dims...)
}

// DynamicRankShape returns a shape with dynamic rank.
func DynamicRankShape() PartialShape {
	return graph.DynamicRankShape()
}

// Dim returns a concrete dimension.
func Dim(v int) Dimension {
	return graph.Dim(v)
}

// DynamicDim returns a dynamic dimension with an upper bound, or an
// unbounded one when passed NoBound.
func DynamicDim(bound int) Dimension {
	return graph.DynamicDim(bound)
}
