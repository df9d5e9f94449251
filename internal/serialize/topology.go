package serialize

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/beevik/etree"

	"github.com/born-ml/netir/internal/graph"
	"github.com/born-ml/netir/internal/opset"
)

const (
	// execTimeKey marks a graph as a profiling (exec-graph) dump.
	execTimeKey = "execTimeMcs"
	// layerTypeKey overrides the emitted type name in exec-graph mode.
	layerTypeKey = "layerType"
)

// isExecGraph detects a profiling graph by the presence of a performance
// stat on any node.
func isExecGraph(g *graph.Graph) bool {
	for _, n := range g.OrderedNodes() {
		if _, ok := n.RuntimeInfo()[execTimeKey]; ok {
			return true
		}
	}
	return false
}

// visitExecGraphNode emits a node's runtime metadata entries as <data>
// attributes, in sorted key order for byte-stable output. The layerType
// entry is diverted to override the emitted type name.
func visitExecGraphNode(data *etree.Element, typeName *string, n *graph.Node) {
	rt := n.RuntimeInfo()
	keys := make([]string, 0, len(rt))
	for k := range rt {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if k == layerTypeKey {
			*typeName = rt[k]
			continue
		}
		data.CreateAttr(k, rt[k])
	}
}

// layerIDs assigns each node its layer id from the graph's topological
// order. Ids are a permutation of 0..N-1 and stable for the run.
func layerIDs(g *graph.Graph) map[*graph.Node]int {
	ids := make(map[*graph.Node]int)
	for i, n := range g.OrderedNodes() {
		ids[n] = i
	}
	return ids
}

// edge is one data-flow connection in the legacy port numbering scheme:
// a source port id is offset past the source node's input-port count.
type edge struct {
	fromLayer int
	fromPort  int
	toLayer   int
	toPort    int
}

// edgeMapping derives the edge list from per-input source references.
// Parameter nodes consume nothing and are skipped. Both endpoints must
// have assigned layer ids; a miss is an internal consistency bug, not a
// user error. The result is stable-sorted ascending by source layer id.
func edgeMapping(ids map[*graph.Node]int, g *graph.Graph) ([]edge, error) {
	var edges []edge
	for _, node := range g.OrderedNodes() {
		if node.Kind() == graph.KindParameter {
			continue
		}
		for _, in := range node.Inputs() {
			src := in.Source()
			fromLayer, ok := ids[src.Node()]
			if !ok {
				return nil, &SerializationError{Phase: "edge", Node: src.Node().FriendlyName(), Err: ErrNoLayerID}
			}
			toLayer, ok := ids[node]
			if !ok {
				return nil, &SerializationError{Phase: "edge", Node: node.FriendlyName(), Err: ErrNoLayerID}
			}
			edges = append(edges, edge{
				fromLayer: fromLayer,
				fromPort:  len(src.Node().Inputs()) + src.Index(),
				toLayer:   toLayer,
				toPort:    in.Index(),
			})
		}
	}
	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].fromLayer < edges[j].fromLayer
	})
	return edges, nil
}

// writeTopology builds the IR v10 document for the graph and streams
// constant payloads into the binary sink. Shapes concretized for
// emission are restored before returning.
func writeTopology(doc *etree.Document, bin *binWriter, g *graph.Graph, custom map[string]*opset.OpSet) error {
	execGraph := isExecGraph(g)

	net := doc.CreateElement("net")
	net.CreateAttr("name", g.Name())
	net.CreateAttr("version", "10")
	layers := net.CreateElement("layers")

	ids := layerIDs(g)
	names := newNameAllocator()

	resolved, err := resolveDynamicShapes(g)
	if err != nil {
		return err
	}

	for _, node := range g.OrderedNodes() {
		id, ok := ids[node]
		if !ok {
			return &SerializationError{Phase: "layer", Node: node.FriendlyName(), Err: ErrNoLayerID}
		}
		layer := layers.CreateElement("layer")
		layer.CreateAttr("id", strconv.Itoa(id))
		layer.CreateAttr("name", names.unique(node.FriendlyName()))
		// Placeholder keeps the attribute position; the value is known
		// only after attribute visitation may have overridden it.
		layer.CreateAttr("type", "")
		if !execGraph {
			layer.CreateAttr("version", opsetName(node.TypeName(), custom))
		}

		data := layer.CreateElement("data")
		typeName := node.TypeName()
		if execGraph {
			visitExecGraphNode(data, &typeName, node)
		} else {
			visitor := &xmlAttrVisitor{data: data, bin: bin, typeName: &typeName}
			if err := node.VisitAttributes(visitor); err != nil {
				return &SerializationError{Phase: "layer", Node: node.FriendlyName(), Err: err}
			}
		}
		layer.CreateAttr("type", TranslateTypeName(typeName))

		if len(data.Attr) == 0 {
			layer.RemoveChild(data)
		}

		portID := 0
		if ins := node.Inputs(); len(ins) > 0 {
			input := layer.CreateElement("input")
			for _, in := range ins {
				dims, serr := in.Shape().Static()
				if serr != nil {
					return &SerializationError{
						Phase: "layer",
						Node:  node.FriendlyName(),
						Err:   fmt.Errorf("%w: input %d has shape %s", ErrDynamicShape, in.Index(), in.Shape()),
					}
				}
				port := input.CreateElement("port")
				port.CreateAttr("id", strconv.Itoa(portID))
				portID++
				for _, d := range dims {
					port.CreateElement("dim").SetText(strconv.Itoa(d))
				}
			}
		}

		if outs := node.Outputs(); len(outs) > 0 && node.Kind() != graph.KindResult {
			output := layer.CreateElement("output")
			for _, out := range outs {
				dims, serr := out.Shape().Static()
				if serr != nil {
					return &SerializationError{
						Phase: "layer",
						Node:  node.FriendlyName(),
						Err:   fmt.Errorf("%w: output %d has shape %s", ErrDynamicShape, out.Index(), out.Shape()),
					}
				}
				precision, perr := PrecisionName(out.ElementType())
				if perr != nil {
					return &SerializationError{Phase: "layer", Node: node.FriendlyName(), Err: perr}
				}
				port := output.CreateElement("port")
				port.CreateAttr("id", strconv.Itoa(portID))
				portID++
				port.CreateAttr("precision", precision)
				for _, d := range dims {
					port.CreateElement("dim").SetText(strconv.Itoa(d))
				}
			}
		}
	}

	edgeList, err := edgeMapping(ids, g)
	if err != nil {
		return err
	}
	edgesEl := net.CreateElement("edges")
	for _, e := range edgeList {
		el := edgesEl.CreateElement("edge")
		el.CreateAttr("from-layer", strconv.Itoa(e.fromLayer))
		el.CreateAttr("from-port", strconv.Itoa(e.fromPort))
		el.CreateAttr("to-layer", strconv.Itoa(e.toLayer))
		el.CreateAttr("to-port", strconv.Itoa(e.toPort))
	}

	// Move the temporary bounds back out of the graph.
	if resolved {
		if err := g.ValidateAndInferTypes(); err != nil {
			return &SerializationError{Phase: "resolve", Err: err}
		}
	}
	return nil
}
