package serialize

import (
	"errors"

	"github.com/born-ml/netir/internal/graph"
)

// resolveDynamicShapes forces every dynamic output shape in the graph to
// a concrete value so the emitted topology can declare fixed shapes.
//
// Graphs with only static shapes are left untouched. Otherwise a shadow
// copy of the graph is resolved alongside the real one, node pair by
// node pair in topological order: constant folding is attempted on the
// shadow node first, and when it succeeds the folded output types are
// adopted by the real node while the shadow graph is rewired to the
// folded constants so downstream shadow nodes see concrete inputs. When
// folding fails, each bounded dynamic dimension is substituted with its
// upper bound on both nodes. Rank-dynamic shapes cannot be bounded and
// are left as-is; they surface as a hard error at port emission.
//
// The returned flag tells the driver whether a restoration pass is owed
// after serialization. Sub-graph bodies are resolved recursively and
// are covered by the same flag: bodies are only ever touched on the
// resolved path, and the restoration re-validation recurses into them.
func resolveDynamicShapes(g *graph.Graph) (bool, error) {
	if !g.HasDynamicNodes() {
		return false, nil
	}

	shadow := g.Clone()
	nodes := g.OrderedNodes()
	shadowNodes := shadow.OrderedNodes()
	if len(nodes) != len(shadowNodes) {
		return false, &SerializationError{
			Phase: "resolve",
			Err:   errors.New("shadow copy has a different node order"),
		}
	}

	for i := range nodes {
		node, shadowNode := nodes[i], shadowNodes[i]

		if body := node.Body(); body != nil {
			if _, err := resolveDynamicShapes(body); err != nil {
				return false, err
			}
		}

		if err := node.InferTypes(); err != nil {
			return false, &SerializationError{Phase: "resolve", Node: node.FriendlyName(), Err: err}
		}
		if err := shadowNode.InferTypes(); err != nil {
			return false, &SerializationError{Phase: "resolve", Node: node.FriendlyName(), Err: err}
		}

		folded, ok := shadowNode.ConstantFold()
		if !ok {
			for oi, out := range shadowNode.Outputs() {
				bounded := out.Shape().BoundToStatic()
				shadowNode.SetOutputType(oi, out.ElementType(), bounded)
				node.SetOutputType(oi, out.ElementType(), bounded)
			}
			continue
		}
		for oi, out := range shadowNode.Outputs() {
			replacement := folded[oi]
			node.SetOutputType(oi, replacement.ElementType(), replacement.Shape())
			if replacement != out {
				shadow.ReplaceOutput(out, replacement)
			}
		}
	}
	return true, nil
}
