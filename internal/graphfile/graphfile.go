// Package graphfile loads computation graphs from YAML descriptions.
// The CLI uses it to build graphs without linking a frontend.
//
// A description lists nodes in construction order. Parameters and
// constants declare an element type and shape; constants additionally
// carry a hex-encoded payload. Ordinary operations reference their
// inputs as "node" or "node:port". Dimensions may be dynamic: "?" is
// unbounded, "?<=N" declares an upper bound.
package graphfile

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/netir/internal/graph"
)

type fileGraph struct {
	Name    string     `yaml:"name"`
	Nodes   []fileNode `yaml:"nodes"`
	Results []string   `yaml:"results"`
}

type fileNode struct {
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"`
	ElementType string            `yaml:"element_type,omitempty"`
	Shape       []any             `yaml:"shape,omitempty"`
	Data        string            `yaml:"data,omitempty"`
	Inputs      []string          `yaml:"inputs,omitempty"`
	Outputs     int               `yaml:"outputs,omitempty"`
	Attributes  map[string]any    `yaml:"attributes,omitempty"`
	RuntimeInfo map[string]string `yaml:"runtime_info,omitempty"`
}

// Load reads a YAML graph description from a file.
func Load(path string) (*graph.Graph, error) {
	//nolint:gosec // G304: the description path comes from user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph description: %w", err)
	}
	return Parse(data)
}

// Parse builds a graph from YAML bytes.
func Parse(data []byte) (*graph.Graph, error) {
	var fg fileGraph
	if err := yaml.Unmarshal(data, &fg); err != nil {
		return nil, fmt.Errorf("failed to parse graph description: %w", err)
	}
	if fg.Name == "" {
		return nil, fmt.Errorf("graph description has no name")
	}

	g := graph.New(fg.Name)
	byName := make(map[string]*graph.Node, len(fg.Nodes))

	for i := range fg.Nodes {
		fn := &fg.Nodes[i]
		if fn.Name == "" || fn.Type == "" {
			return nil, fmt.Errorf("node %d: name and type are required", i)
		}
		if _, dup := byName[fn.Name]; dup {
			return nil, fmt.Errorf("node %q: duplicate node name in description", fn.Name)
		}
		node, err := buildNode(g, fn, byName)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", fn.Name, err)
		}
		for k, v := range fn.RuntimeInfo {
			node.RuntimeInfo()[k] = v
		}
		byName[fn.Name] = node
	}

	for _, ref := range fg.Results {
		src, err := resolveInput(ref, byName)
		if err != nil {
			return nil, fmt.Errorf("result %q: %w", ref, err)
		}
		g.AddResult(src.Node().FriendlyName()+"/sink", src)
	}
	return g, nil
}

func buildNode(g *graph.Graph, fn *fileNode, byName map[string]*graph.Node) (*graph.Node, error) {
	switch fn.Type {
	case "Parameter":
		et, shape, err := declaredType(fn)
		if err != nil {
			return nil, err
		}
		return g.AddParameter(fn.Name, et, shape), nil

	case "Constant":
		et, shape, err := declaredType(fn)
		if err != nil {
			return nil, err
		}
		dims, err := shape.Static()
		if err != nil {
			return nil, fmt.Errorf("constant shape must be static: %w", err)
		}
		payload, err := hex.DecodeString(fn.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid hex payload: %w", err)
		}
		return g.AddConstant(fn.Name, et, dims, payload), nil

	default:
		sources := make([]*graph.Output, len(fn.Inputs))
		for i, ref := range fn.Inputs {
			src, err := resolveInput(ref, byName)
			if err != nil {
				return nil, err
			}
			sources[i] = src
		}
		outputs := fn.Outputs
		if outputs == 0 {
			outputs = 1
		}
		node, err := g.AddOpN(fn.Type, fn.Name, outputs, sources...)
		if err != nil {
			return nil, err
		}
		if err := applyAttributes(node, fn.Attributes); err != nil {
			return nil, err
		}
		return node, nil
	}
}

func declaredType(fn *fileNode) (graph.ElementType, graph.PartialShape, error) {
	et, ok := graph.ParseElementType(fn.ElementType)
	if !ok {
		return graph.Undefined, graph.PartialShape{}, fmt.Errorf("unknown element type %q", fn.ElementType)
	}
	shape, err := parseShape(fn.Shape)
	if err != nil {
		return graph.Undefined, graph.PartialShape{}, err
	}
	return et, shape, nil
}

func parseShape(raw []any) (graph.PartialShape, error) {
	dims := make([]graph.Dimension, len(raw))
	for i, v := range raw {
		switch d := v.(type) {
		case int:
			dims[i] = graph.Dim(d)
		case string:
			if d == "?" {
				dims[i] = graph.DynamicDim(graph.NoBound)
				continue
			}
			boundText, ok := strings.CutPrefix(d, "?<=")
			if !ok {
				return graph.PartialShape{}, fmt.Errorf("invalid dimension %q", d)
			}
			bound, err := strconv.Atoi(boundText)
			if err != nil {
				return graph.PartialShape{}, fmt.Errorf("invalid dimension bound %q: %w", d, err)
			}
			dims[i] = graph.DynamicDim(bound)
		default:
			return graph.PartialShape{}, fmt.Errorf("invalid dimension %v (%T)", v, v)
		}
	}
	return graph.PartialShape{Dims: dims}, nil
}

// applyAttributes converts YAML attribute values to typed node
// attributes. Names are applied in sorted order so repeated loads
// produce identical attribute insertion order.
func applyAttributes(node *graph.Node, attrs map[string]any) error {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		attr, err := convertAttribute(name, attrs[name])
		if err != nil {
			return err
		}
		node.SetAttribute(attr)
	}
	return nil
}

func convertAttribute(name string, value any) (graph.Attribute, error) {
	switch v := value.(type) {
	case bool:
		return graph.BoolAttribute(name, v), nil
	case int:
		return graph.IntAttribute(name, int64(v)), nil
	case float64:
		return graph.FloatAttribute(name, v), nil
	case string:
		return graph.StringAttribute(name, v), nil
	case []any:
		return convertVectorAttribute(name, v)
	default:
		return graph.Attribute{}, fmt.Errorf("attribute %q: unsupported value %v (%T)", name, value, value)
	}
}

func convertVectorAttribute(name string, items []any) (graph.Attribute, error) {
	if len(items) == 0 {
		return graph.IntVectorAttribute(name, nil), nil
	}
	switch items[0].(type) {
	case int:
		ints := make([]int64, len(items))
		for i, item := range items {
			n, ok := item.(int)
			if !ok {
				return graph.Attribute{}, fmt.Errorf("attribute %q: mixed element types", name)
			}
			ints[i] = int64(n)
		}
		return graph.IntVectorAttribute(name, ints), nil
	case float64:
		floats := make([]float64, len(items))
		for i, item := range items {
			f, ok := item.(float64)
			if !ok {
				return graph.Attribute{}, fmt.Errorf("attribute %q: mixed element types", name)
			}
			floats[i] = f
		}
		return graph.FloatVectorAttribute(name, floats), nil
	case string:
		strs := make([]string, len(items))
		for i, item := range items {
			s, ok := item.(string)
			if !ok {
				return graph.Attribute{}, fmt.Errorf("attribute %q: mixed element types", name)
			}
			strs[i] = s
		}
		return graph.StringVectorAttribute(name, strs), nil
	default:
		return graph.Attribute{}, fmt.Errorf("attribute %q: unsupported vector element %T", name, items[0])
	}
}

func resolveInput(ref string, byName map[string]*graph.Node) (*graph.Output, error) {
	name, portText, hasPort := strings.Cut(ref, ":")
	node, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown input node %q", name)
	}
	port := 0
	if hasPort {
		p, err := strconv.Atoi(portText)
		if err != nil {
			return nil, fmt.Errorf("invalid port in %q: %w", ref, err)
		}
		port = p
	}
	if port < 0 || port >= len(node.Outputs()) {
		return nil, fmt.Errorf("input %q: node has %d outputs", ref, len(node.Outputs()))
	}
	return node.Output(port), nil
}
