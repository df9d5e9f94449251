package graph

import (
	"encoding/binary"
	"fmt"
)

// inferFunc recomputes a node's output types from its current inputs.
type inferFunc func(n *Node) error

// foldFunc evaluates a node whose inputs permit it, materializing one
// constant output per node output inside the owning graph.
type foldFunc func(n *Node) ([]*Output, bool)

var inferRegistry = map[string]inferFunc{
	"Parameter": inferDeclared,
	"Constant":  inferDeclared,
	"Add":       inferBroadcast,
	"Subtract":  inferBroadcast,
	"Multiply":  inferBroadcast,
	"Divide":    inferBroadcast,
	"MatMul":    inferMatMul,
	"ShapeOf":   inferShapeOf,
}

var foldRegistry = map[string]foldFunc{
	"Constant": foldConstant,
	"ShapeOf":  foldShapeOf,
}

// inferDefault copies the first input's element type and shape onto
// every output. Nodes without inputs keep their declared outputs. This
// covers unary element-wise operations and results.
func inferDefault(n *Node) error {
	if len(n.inputs) == 0 {
		return nil
	}
	src := n.inputs[0]
	for i := range n.outputs {
		n.SetOutputType(i, src.ElementType(), src.Shape())
	}
	return nil
}

// inferDeclared resets the node's single output to its declared type,
// discarding anything written onto the port since construction.
func inferDeclared(n *Node) error {
	n.SetOutputType(0, n.declElem, n.declShape)
	return nil
}

func inferBroadcast(n *Node) error {
	if len(n.inputs) != 2 {
		return fmt.Errorf("expected 2 inputs, got %d", len(n.inputs))
	}
	a, b := n.inputs[0].Shape(), n.inputs[1].Shape()
	if a.RankDynamic || b.RankDynamic {
		n.SetOutputType(0, n.inputs[0].ElementType(), DynamicRankShape())
		return nil
	}
	out, err := broadcastPartial(a, b)
	if err != nil {
		return err
	}
	n.SetOutputType(0, n.inputs[0].ElementType(), out)
	return nil
}

// broadcastPartial applies NumPy-style broadcasting to partial shapes.
// A dynamic dimension broadcasts to a dynamic dimension carrying the
// widest declared bound.
func broadcastPartial(a, b PartialShape) (PartialShape, error) {
	rank := len(a.Dims)
	if len(b.Dims) > rank {
		rank = len(b.Dims)
	}
	out := PartialShape{Dims: make([]Dimension, rank)}
	for i := 0; i < rank; i++ {
		da, db := Dim(1), Dim(1)
		if j := len(a.Dims) - rank + i; j >= 0 {
			da = a.Dims[j]
		}
		if j := len(b.Dims) - rank + i; j >= 0 {
			db = b.Dims[j]
		}
		d, err := broadcastDim(da, db)
		if err != nil {
			return PartialShape{}, fmt.Errorf("dimension %d: %w", i, err)
		}
		out.Dims[i] = d
	}
	return out, nil
}

func broadcastDim(a, b Dimension) (Dimension, error) {
	switch {
	case a.IsStatic() && b.IsStatic():
		if a.Value == b.Value {
			return a, nil
		}
		if a.Value == 1 {
			return b, nil
		}
		if b.Value == 1 {
			return a, nil
		}
		return Dimension{}, fmt.Errorf("cannot broadcast %d against %d", a.Value, b.Value)
	case a.IsStatic() && a.Value == 1:
		return b, nil
	case b.IsStatic() && b.Value == 1:
		return a, nil
	default:
		if a.MaxLength() == NoBound || b.MaxLength() == NoBound {
			return DynamicDim(NoBound), nil
		}
		bound := a.MaxLength()
		if b.MaxLength() > bound {
			bound = b.MaxLength()
		}
		return DynamicDim(bound), nil
	}
}

func inferMatMul(n *Node) error {
	if len(n.inputs) != 2 {
		return fmt.Errorf("expected 2 inputs, got %d", len(n.inputs))
	}
	a, b := n.inputs[0].Shape(), n.inputs[1].Shape()
	if a.RankDynamic || b.RankDynamic || a.Rank() < 2 || b.Rank() < 2 {
		n.SetOutputType(0, n.inputs[0].ElementType(), DynamicRankShape())
		return nil
	}
	out := a.Clone()
	out.Dims[len(out.Dims)-1] = b.Dims[len(b.Dims)-1]
	n.SetOutputType(0, n.inputs[0].ElementType(), out)
	return nil
}

func inferShapeOf(n *Node) error {
	if len(n.inputs) != 1 {
		return fmt.Errorf("expected 1 input, got %d", len(n.inputs))
	}
	in := n.inputs[0].Shape()
	if in.RankDynamic {
		n.SetOutputType(0, I64, PartialShape{Dims: []Dimension{DynamicDim(NoBound)}})
		return nil
	}
	n.SetOutputType(0, I64, StaticShape(in.Rank()))
	return nil
}

// foldConstant reports a constant as already folded: its own output is
// the folded value.
func foldConstant(n *Node) ([]*Output, bool) {
	return []*Output{n.outputs[0]}, true
}

// foldShapeOf evaluates ShapeOf when the input shape is fully static,
// producing an i64 constant holding the dimension sizes.
func foldShapeOf(n *Node) ([]*Output, bool) {
	if len(n.inputs) != 1 {
		return nil, false
	}
	dims, err := n.inputs[0].Shape().Static()
	if err != nil {
		return nil, false
	}
	data := make([]byte, 8*len(dims))
	for i, d := range dims {
		binary.LittleEndian.PutUint64(data[i*8:], uint64(d))
	}
	c := n.graph.AddConstant(n.friendly+"/folded", I64, []int{len(dims)}, data)
	return []*Output{c.outputs[0]}, true
}
