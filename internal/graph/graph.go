package graph

import "fmt"

// Graph is an ordered, acyclic collection of nodes with designated
// parameter (input) and result (output) boundary nodes.
type Graph struct {
	name    string
	nodes   []*Node // registration order
	params  []*Node
	results []*Node
}

// New creates an empty graph with a friendly name.
func New(name string) *Graph {
	return &Graph{name: name}
}

// Name returns the graph's friendly name.
func (g *Graph) Name() string { return g.name }

// Parameters returns the graph's input boundary nodes.
func (g *Graph) Parameters() []*Node { return g.params }

// Results returns the graph's output boundary nodes.
func (g *Graph) Results() []*Node { return g.results }

// AddParameter adds an input boundary node with a declared element type
// and shape.
func (g *Graph) AddParameter(name string, et ElementType, shape PartialShape) *Node {
	n := g.register(&Node{typeName: "Parameter", friendly: name, kind: KindParameter})
	n.declElem = et
	n.declShape = shape.Clone()
	n.addOutput(et, shape)
	g.params = append(g.params, n)
	return n
}

// AddConstant adds a constant node holding a raw data payload. The
// payload, element type and static shape are exposed as the node's
// attributes, so the serializer sees them through the ordinary visitor
// protocol.
func (g *Graph) AddConstant(name string, et ElementType, dims []int, data []byte) *Node {
	n := g.register(&Node{typeName: "Constant", friendly: name, kind: KindConstant})
	n.declElem = et
	n.declShape = StaticShape(dims...)
	n.addOutput(et, n.declShape)
	shape := make([]int64, len(dims))
	for i, d := range dims {
		shape[i] = int64(d)
	}
	n.SetAttribute(StringAttribute("element_type", et.String()))
	n.SetAttribute(IntVectorAttribute("shape", shape))
	n.SetAttribute(BufferAttribute("value", data))
	return n
}

// AddOp adds a generic operation node with a single output, connected to
// the given source outputs. The output type is produced by shape
// inference.
func (g *Graph) AddOp(typeName, name string, sources ...*Output) (*Node, error) {
	return g.AddOpN(typeName, name, 1, sources...)
}

// AddOpN adds a generic operation node with a fixed number of outputs.
func (g *Graph) AddOpN(typeName, name string, outputs int, sources ...*Output) (*Node, error) {
	n := g.register(&Node{typeName: typeName, friendly: name, kind: KindGeneric})
	for _, src := range sources {
		n.connect(src)
	}
	for i := 0; i < outputs; i++ {
		n.addOutput(Undefined, DynamicRankShape())
	}
	if err := n.InferTypes(); err != nil {
		return nil, err
	}
	return n, nil
}

// AddResult marks a source output as a graph output by attaching a
// result boundary node to it.
func (g *Graph) AddResult(name string, src *Output) *Node {
	n := g.register(&Node{typeName: "Result", friendly: name, kind: KindResult})
	n.connect(src)
	n.addOutput(src.elem, src.shape)
	g.results = append(g.results, n)
	return n
}

func (g *Graph) register(n *Node) *Node {
	n.graph = g
	g.nodes = append(g.nodes, n)
	return n
}

// OrderedNodes returns every node in a deterministic topological order:
// dependencies come before dependents, ties broken by registration
// order. The ordering is stable across repeated calls and is the
// authoritative visitation order for serialization.
func (g *Graph) OrderedNodes() []*Node {
	index := make(map[*Node]int, len(g.nodes))
	for i, n := range g.nodes {
		index[n] = i
	}
	visited := make([]bool, len(g.nodes))
	ordered := make([]*Node, 0, len(g.nodes))

	var visit func(i int)
	visit = func(i int) {
		if visited[i] {
			return
		}
		visited[i] = true
		for _, in := range g.nodes[i].inputs {
			if j, ok := index[in.source.node]; ok {
				visit(j)
			}
		}
		ordered = append(ordered, g.nodes[i])
	}
	for i := range g.nodes {
		visit(i)
	}
	return ordered
}

// ValidateAndInferTypes re-runs shape and type inference over the whole
// graph in topological order, discarding any previously forced output
// types. Nested sub-graph bodies are re-validated the same way.
func (g *Graph) ValidateAndInferTypes() error {
	for _, n := range g.OrderedNodes() {
		if body := n.Body(); body != nil {
			if err := body.ValidateAndInferTypes(); err != nil {
				return err
			}
		}
		if err := n.InferTypes(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a structurally identical deep copy of the graph,
// including nested sub-graphs. Node order, names, attributes, runtime
// metadata and port types are all preserved.
func (g *Graph) Clone() *Graph {
	clone := New(g.name)
	mapping := make(map[*Node]*Node, len(g.nodes))

	for _, n := range g.nodes {
		cn := &Node{
			graph:     clone,
			typeName:  n.typeName,
			friendly:  n.friendly,
			kind:      n.kind,
			declElem:  n.declElem,
			declShape: n.declShape.Clone(),
		}
		for _, a := range n.attrs {
			cn.SetAttribute(a.clone())
		}
		if n.rtInfo != nil {
			cn.rtInfo = make(map[string]string, len(n.rtInfo))
			for k, v := range n.rtInfo {
				cn.rtInfo[k] = v
			}
		}
		if n.body != nil {
			cn.body = n.body.Clone()
		}
		for _, o := range n.outputs {
			cn.addOutput(o.elem, o.shape)
		}
		clone.nodes = append(clone.nodes, cn)
		mapping[n] = cn
	}

	// Second pass: rewire inputs now that every producer exists.
	for _, n := range g.nodes {
		cn := mapping[n]
		for _, in := range n.inputs {
			src := mapping[in.source.node]
			cn.connect(src.outputs[in.source.index])
		}
	}

	for _, p := range g.params {
		clone.params = append(clone.params, mapping[p])
	}
	for _, r := range g.results {
		clone.results = append(clone.results, mapping[r])
	}
	return clone
}

// ReplaceOutput rewires every input currently sourced at old to read
// from replacement instead. The producing nodes themselves are left in
// place.
func (g *Graph) ReplaceOutput(old, replacement *Output) {
	for _, n := range g.nodes {
		for _, in := range n.inputs {
			if in.source == old {
				in.source = replacement
			}
		}
	}
}

// HasDynamicNodes reports whether any node in the graph has a dynamic
// output shape.
func (g *Graph) HasDynamicNodes() bool {
	for _, n := range g.nodes {
		if n.IsDynamic() {
			return true
		}
	}
	return false
}

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%s, %d nodes)", g.name, len(g.nodes))
}
