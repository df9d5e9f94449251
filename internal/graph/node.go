package graph

import "fmt"

// Kind classifies a node's structural role in the graph.
type Kind int

// Node kinds. KindGeneric covers every ordinary operation.
const (
	KindGeneric Kind = iota
	KindParameter
	KindConstant
	KindResult
)

// Output is a producer port of a node: an index, an element type and a
// partial shape.
type Output struct {
	node  *Node
	index int
	elem  ElementType
	shape PartialShape
}

// Node returns the owning node.
func (o *Output) Node() *Node { return o.node }

// Index returns the output's position among the node's outputs.
func (o *Output) Index() int { return o.index }

// ElementType returns the output's element type.
func (o *Output) ElementType() ElementType { return o.elem }

// Shape returns the output's declared partial shape.
func (o *Output) Shape() PartialShape { return o.shape }

// Input is a consumer port of a node. Its element type and shape are
// those of the connected source output.
type Input struct {
	node   *Node
	index  int
	source *Output
}

// Node returns the owning node.
func (in *Input) Node() *Node { return in.node }

// Index returns the input's position among the node's inputs.
func (in *Input) Index() int { return in.index }

// Source returns the output this input is connected to.
func (in *Input) Source() *Output { return in.source }

// ElementType returns the connected output's element type.
func (in *Input) ElementType() ElementType { return in.source.elem }

// Shape returns the connected output's partial shape.
func (in *Input) Shape() PartialShape { return in.source.shape }

// Node is a single operation in a computation graph.
type Node struct {
	graph     *Graph
	typeName  string
	friendly  string
	kind      Kind
	inputs    []*Input
	outputs   []*Output
	attrs     []Attribute
	attrIndex map[string]int
	rtInfo    map[string]string
	body      *Graph

	// Declared output type for boundary and constant nodes. Inference
	// resets their outputs from these, which is what lets a restoration
	// pass discard temporarily forced static shapes.
	declElem  ElementType
	declShape PartialShape
}

// TypeName returns the node's canonical operation type name.
func (n *Node) TypeName() string { return n.typeName }

// FriendlyName returns the node's display name. Friendly names are not
// required to be unique within a graph.
func (n *Node) FriendlyName() string { return n.friendly }

// SetFriendlyName replaces the node's display name.
func (n *Node) SetFriendlyName(name string) { n.friendly = name }

// Kind returns the node's structural role.
func (n *Node) Kind() Kind { return n.kind }

// Inputs returns the node's input ports in declaration order.
func (n *Node) Inputs() []*Input { return n.inputs }

// Outputs returns the node's output ports in declaration order.
func (n *Node) Outputs() []*Output { return n.outputs }

// Output returns the output port at index i.
func (n *Node) Output(i int) *Output { return n.outputs[i] }

// Body returns the nested sub-graph for control-flow operations, or nil.
func (n *Node) Body() *Graph { return n.body }

// SetBody attaches a nested sub-graph owned by this node.
func (n *Node) SetBody(g *Graph) { n.body = g }

// RuntimeInfo returns the node's mutable runtime metadata map. Earlier
// passes use it for side-channel values such as profiling timestamps.
func (n *Node) RuntimeInfo() map[string]string {
	if n.rtInfo == nil {
		n.rtInfo = make(map[string]string)
	}
	return n.rtInfo
}

// SetAttribute adds or replaces an attribute, keeping insertion order for
// new names.
func (n *Node) SetAttribute(a Attribute) {
	if n.attrIndex == nil {
		n.attrIndex = make(map[string]int)
	}
	if i, ok := n.attrIndex[a.Name]; ok {
		n.attrs[i] = a
		return
	}
	n.attrIndex[a.Name] = len(n.attrs)
	n.attrs = append(n.attrs, a)
}

// Attribute looks up an attribute by name.
func (n *Node) Attribute(name string) (Attribute, bool) {
	i, ok := n.attrIndex[name]
	if !ok {
		return Attribute{}, false
	}
	return n.attrs[i], true
}

// Attributes returns the node's attributes in insertion order.
func (n *Node) Attributes() []Attribute { return n.attrs }

// VisitAttributes presents every attribute to the visitor exactly once,
// in insertion order.
func (n *Node) VisitAttributes(v AttributeVisitor) error {
	for _, a := range n.attrs {
		if err := a.dispatch(v); err != nil {
			return fmt.Errorf("attribute %q: %w", a.Name, err)
		}
	}
	return nil
}

// IsDynamic reports whether any output shape is not fully static.
func (n *Node) IsDynamic() bool {
	for _, o := range n.outputs {
		if o.shape.IsDynamic() {
			return true
		}
	}
	return false
}

// SetOutputType overwrites the element type and shape of output i.
func (n *Node) SetOutputType(i int, et ElementType, shape PartialShape) {
	n.outputs[i].elem = et
	n.outputs[i].shape = shape.Clone()
}

// InferTypes re-runs shape and type inference for this node, writing the
// result onto its output ports. Operation types without a registered
// inference rule keep their declared output types.
func (n *Node) InferTypes() error {
	fn, ok := inferRegistry[n.typeName]
	if !ok {
		fn = inferDefault
	}
	if err := fn(n); err != nil {
		return fmt.Errorf("node %q (%s): %w", n.friendly, n.typeName, err)
	}
	return nil
}

// ConstantFold attempts to evaluate the node given its current inputs.
// On success it returns one freshly materialized constant output per node
// output, created inside the owning graph.
func (n *Node) ConstantFold() ([]*Output, bool) {
	fn, ok := foldRegistry[n.typeName]
	if !ok {
		return nil, false
	}
	return fn(n)
}

// ConstantData returns the raw payload of a Constant node's "value"
// attribute, or nil for other nodes.
func (n *Node) ConstantData() []byte {
	if n.kind != KindConstant {
		return nil
	}
	a, ok := n.Attribute("value")
	if !ok {
		return nil
	}
	return a.Buffer
}

func (n *Node) addOutput(et ElementType, shape PartialShape) *Output {
	o := &Output{node: n, index: len(n.outputs), elem: et, shape: shape.Clone()}
	n.outputs = append(n.outputs, o)
	return o
}

func (n *Node) connect(src *Output) *Input {
	in := &Input{node: n, index: len(n.inputs), source: src}
	n.inputs = append(n.inputs, in)
	return in
}
