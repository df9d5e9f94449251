package serialize

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/beevik/etree"

	"github.com/born-ml/netir/internal/graph"
	"github.com/born-ml/netir/internal/opset"
)

func TestNewPathValidation(t *testing.T) {
	tests := []struct {
		name    string
		xmlPath string
		version Version
		wantErr error
	}{
		{"too short", ".xml", IRv10, ErrPathTooShort},
		{"empty", "", IRv10, ErrPathTooShort},
		{"wrong extension", "model.txt", IRv10, ErrMissingExtension},
		{"bad version", "model.xml", Version(7), ErrUnsupportedVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.xmlPath, "", tt.version, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New(%q, %d) error = %v, want %v", tt.xmlPath, tt.version, err, tt.wantErr)
			}
		})
	}
}

func TestNewDefaultBinPath(t *testing.T) {
	s, err := New("models/net.xml", "", IRv10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.BinPath(); got != "models/net.bin" {
		t.Errorf("BinPath() = %q, want models/net.bin", got)
	}

	s, err = New("net.xml", "weights.dat", IRv10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.BinPath(); got != "weights.dat" {
		t.Errorf("BinPath() = %q, want weights.dat", got)
	}
}

// runSerializer serializes g into a temp dir and returns the parsed
// <net> root and the bin file contents.
func runSerializer(t *testing.T, g *graph.Graph, custom map[string]*opset.OpSet) (*etree.Element, []byte) {
	t.Helper()
	dir := t.TempDir()
	xmlPath := filepath.Join(dir, "net.xml")

	s, err := New(xmlPath, "", IRv10, custom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	changed, err := s.Run(g)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if changed {
		t.Error("Run reported the graph as modified")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(xmlPath); err != nil {
		t.Fatalf("parse xml: %v", err)
	}
	net := doc.SelectElement("net")
	if net == nil {
		t.Fatal("no <net> root element")
	}
	binData, err := os.ReadFile(s.BinPath())
	if err != nil {
		t.Fatalf("read bin: %v", err)
	}
	return net, binData
}

func selectLayers(t *testing.T, net *etree.Element) []*etree.Element {
	t.Helper()
	layers := net.SelectElement("layers")
	if layers == nil {
		t.Fatal("no <layers> element")
	}
	return layers.SelectElements("layer")
}

func selectEdges(t *testing.T, net *etree.Element) []*etree.Element {
	t.Helper()
	edges := net.SelectElement("edges")
	if edges == nil {
		t.Fatal("no <edges> element")
	}
	return edges.SelectElements("edge")
}

func TestSerializeTwoNodeGraph(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	g := graph.New("two_node")
	c := g.AddConstant("weights", graph.F32, []int{2}, payload)
	if _, err := g.AddOp("Relu", "act", c.Output(0)); err != nil {
		t.Fatal(err)
	}

	net, binData := runSerializer(t, g, nil)

	if got := net.SelectAttrValue("name", ""); got != "two_node" {
		t.Errorf("net name = %q, want two_node", got)
	}
	if got := net.SelectAttrValue("version", ""); got != "10" {
		t.Errorf("net version = %q, want 10", got)
	}

	layers := selectLayers(t, net)
	if len(layers) != 2 {
		t.Fatalf("got %d layers, want 2", len(layers))
	}

	constLayer, reluLayer := layers[0], layers[1]
	if got := constLayer.SelectAttrValue("id", ""); got != "0" {
		t.Errorf("const layer id = %q, want 0", got)
	}
	if got := constLayer.SelectAttrValue("type", ""); got != "Const" {
		t.Errorf("const layer type = %q, want Const", got)
	}
	if got := constLayer.SelectAttrValue("name", ""); got != "weights" {
		t.Errorf("const layer name = %q, want weights", got)
	}
	if got := constLayer.SelectAttrValue("version", ""); got != "opset1" {
		t.Errorf("const layer version = %q, want opset1", got)
	}

	data := constLayer.SelectElement("data")
	if data == nil {
		t.Fatal("const layer has no <data>")
	}
	if got := data.SelectAttrValue("element_type", ""); got != "f32" {
		t.Errorf("element_type = %q, want f32", got)
	}
	if got := data.SelectAttrValue("shape", ""); got != "2" {
		t.Errorf("shape = %q, want 2", got)
	}
	if got := data.SelectAttrValue("offset", ""); got != "0" {
		t.Errorf("offset = %q, want 0", got)
	}
	if got := data.SelectAttrValue("size", ""); got != "8" {
		t.Errorf("size = %q, want 8", got)
	}

	if got := reluLayer.SelectAttrValue("id", ""); got != "1" {
		t.Errorf("relu layer id = %q, want 1", got)
	}
	if got := reluLayer.SelectAttrValue("type", ""); got != "ReLU" {
		t.Errorf("relu layer type = %q, want ReLU", got)
	}
	// Attribute-free layers carry no <data> element at all.
	if reluLayer.SelectElement("data") != nil {
		t.Error("relu layer has an empty <data> element")
	}

	edges := selectEdges(t, net)
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	e := edges[0]
	if got := e.SelectAttrValue("from-layer", ""); got != "0" {
		t.Errorf("from-layer = %q, want 0", got)
	}
	if got := e.SelectAttrValue("from-port", ""); got != "0" {
		t.Errorf("from-port = %q, want 0", got)
	}
	if got := e.SelectAttrValue("to-layer", ""); got != "1" {
		t.Errorf("to-layer = %q, want 1", got)
	}
	if got := e.SelectAttrValue("to-port", ""); got != "0" {
		t.Errorf("to-port = %q, want 0", got)
	}

	if string(binData) != string(payload) {
		t.Errorf("bin content = %v, want %v", binData, payload)
	}
}

func TestSerializePortLayout(t *testing.T) {
	g := graph.New("ports")
	p := g.AddParameter("in", graph.F32, graph.StaticShape(1, 3))
	relu, err := g.AddOp("Relu", "act", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	g.AddResult("out", relu.Output(0))

	net, _ := runSerializer(t, g, nil)
	layers := selectLayers(t, net)
	if len(layers) != 3 {
		t.Fatalf("got %d layers, want 3", len(layers))
	}

	paramLayer, reluLayer, resultLayer := layers[0], layers[1], layers[2]

	// Parameters consume nothing.
	if paramLayer.SelectElement("input") != nil {
		t.Error("parameter layer has an <input> section")
	}
	out := paramLayer.SelectElement("output")
	if out == nil {
		t.Fatal("parameter layer has no <output> section")
	}
	port := out.SelectElement("port")
	if got := port.SelectAttrValue("precision", ""); got != "FP32" {
		t.Errorf("parameter precision = %q, want FP32", got)
	}
	dims := port.SelectElements("dim")
	if len(dims) != 2 || dims[0].Text() != "1" || dims[1].Text() != "3" {
		t.Errorf("parameter dims wrong: %v", dims)
	}

	// Port ids are sequential, inputs first.
	reluIn := reluLayer.SelectElement("input").SelectElement("port")
	reluOut := reluLayer.SelectElement("output").SelectElement("port")
	if got := reluIn.SelectAttrValue("id", ""); got != "0" {
		t.Errorf("relu input port id = %q, want 0", got)
	}
	if got := reluOut.SelectAttrValue("id", ""); got != "1" {
		t.Errorf("relu output port id = %q, want 1", got)
	}

	// Results terminate the flow: input section only.
	if resultLayer.SelectElement("input") == nil {
		t.Error("result layer has no <input> section")
	}
	if resultLayer.SelectElement("output") != nil {
		t.Error("result layer has an <output> section")
	}
}

func TestSerializeNameDisambiguation(t *testing.T) {
	g := graph.New("names")
	p := g.AddParameter("A", graph.F32, graph.StaticShape(2))
	relu, err := g.AddOp("Relu", "A", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddOp("Sigmoid", "A", relu.Output(0)); err != nil {
		t.Fatal(err)
	}

	net, _ := runSerializer(t, g, nil)
	layers := selectLayers(t, net)
	want := []string{"A", "A0", "A1"}
	for i, layer := range layers {
		if got := layer.SelectAttrValue("name", ""); got != want[i] {
			t.Errorf("layer %d name = %q, want %q", i, got, want[i])
		}
	}
}

func TestSerializeLayerIDsArePermutation(t *testing.T) {
	g := graph.New("ids")
	p := g.AddParameter("data", graph.F32, graph.StaticShape(1, 4))
	relu, err := g.AddOp("Relu", "relu", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	sig, err := g.AddOp("Sigmoid", "sigmoid", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	add, err := g.AddOp("Add", "add", relu.Output(0), sig.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	g.AddResult("out", add.Output(0))

	net, _ := runSerializer(t, g, nil)
	layers := selectLayers(t, net)
	seen := make(map[string]bool)
	for i, layer := range layers {
		id := layer.SelectAttrValue("id", "")
		if seen[id] {
			t.Errorf("duplicate layer id %q", id)
		}
		seen[id] = true
		// Ids follow document order, which is the topological order.
		if want := len(seen) - 1; id != strconv.Itoa(want) {
			t.Errorf("layer %d id = %q, want %d", i, id, want)
		}
	}
}

func TestSerializeEdgesSortedBySource(t *testing.T) {
	g := graph.New("edges")
	p := g.AddParameter("data", graph.F32, graph.StaticShape(1, 4))
	relu, err := g.AddOp("Relu", "relu", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	sig, err := g.AddOp("Sigmoid", "sigmoid", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	add, err := g.AddOp("Add", "add", relu.Output(0), sig.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	g.AddResult("out", add.Output(0))

	net, _ := runSerializer(t, g, nil)
	prev := -1
	for _, e := range selectEdges(t, net) {
		n, err := strconv.Atoi(e.SelectAttrValue("from-layer", ""))
		if err != nil {
			t.Fatalf("bad from-layer attribute: %v", err)
		}
		if n < prev {
			t.Errorf("edges not sorted: from-layer %d after %d", n, prev)
		}
		prev = n
	}
}

func TestSerializeFromPortOffset(t *testing.T) {
	// A producer with inputs numbers its output ports past them.
	g := graph.New("fromport")
	a := g.AddParameter("a", graph.F32, graph.StaticShape(2))
	b := g.AddParameter("b", graph.F32, graph.StaticShape(2))
	add, err := g.AddOp("Add", "add", a.Output(0), b.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddOp("Relu", "relu", add.Output(0)); err != nil {
		t.Fatal(err)
	}

	net, _ := runSerializer(t, g, nil)
	edges := selectEdges(t, net)
	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}
	// The add->relu edge leaves the Add node, whose output port sits past
	// its two input ports.
	last := edges[len(edges)-1]
	if got := last.SelectAttrValue("from-port", ""); got != "2" {
		t.Errorf("from-port = %q, want 2", got)
	}
	if got := last.SelectAttrValue("to-port", ""); got != "0" {
		t.Errorf("to-port = %q, want 0", got)
	}
}

func TestSerializeBoundedDynamicGraph(t *testing.T) {
	g := graph.New("dyn")
	shape := graph.PartialShape{Dims: []graph.Dimension{graph.DynamicDim(8), graph.Dim(3)}}
	p := g.AddParameter("p", graph.F32, shape)
	if _, err := g.AddOp("Relu", "relu", p.Output(0)); err != nil {
		t.Fatal(err)
	}

	net, _ := runSerializer(t, g, nil)
	layers := selectLayers(t, net)
	dims := layers[0].SelectElement("output").SelectElement("port").SelectElements("dim")
	if len(dims) != 2 || dims[0].Text() != "8" || dims[1].Text() != "3" {
		t.Errorf("emitted dims wrong: want [8 3]")
	}

	// Serialization must leave no net effect on the graph.
	if !g.HasDynamicNodes() {
		t.Error("graph not restored to its declared dynamic shapes")
	}
	if !p.Output(0).Shape().Equal(shape) {
		t.Errorf("parameter shape = %s, want %s", p.Output(0).Shape(), shape)
	}
}

func TestSerializeRestoresSubGraphBody(t *testing.T) {
	g := graph.New("looped")
	p := g.AddParameter("p", graph.F32, graph.PartialShape{Dims: []graph.Dimension{graph.DynamicDim(8)}})
	loop, err := g.AddOp("Loop", "loop", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}

	body := graph.New("body")
	bodyShape := graph.PartialShape{Dims: []graph.Dimension{graph.DynamicDim(4), graph.Dim(2)}}
	bp := body.AddParameter("bp", graph.F32, bodyShape)
	if _, err := body.AddOp("Relu", "brelu", bp.Output(0)); err != nil {
		t.Fatal(err)
	}
	loop.SetBody(body)

	runSerializer(t, g, nil)

	// A run has no net effect: nested bodies get their dynamic shapes
	// back, same as the outer graph.
	if !bp.Output(0).Shape().Equal(bodyShape) {
		t.Errorf("body parameter shape after run = %s, want %s", bp.Output(0).Shape(), bodyShape)
	}
	if !body.HasDynamicNodes() {
		t.Error("sub-graph body left fully concretized after the run")
	}
	if !g.HasDynamicNodes() {
		t.Error("outer graph left fully concretized after the run")
	}
}

func TestSerializeRankDynamicFails(t *testing.T) {
	g := graph.New("rankdyn")
	p := g.AddParameter("p", graph.F32, graph.DynamicRankShape())
	if _, err := g.AddOp("Relu", "relu", p.Output(0)); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "net.xml"), "", IRv10, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Run(g)
	if !errors.Is(err, ErrDynamicShape) {
		t.Errorf("Run error = %v, want ErrDynamicShape", err)
	}
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("Run error %T is not a SerializationError", err)
	}
	if serr.Node != "p" {
		t.Errorf("error node = %q, want p", serr.Node)
	}
}

func TestSerializeUnboundedDynamicFails(t *testing.T) {
	g := graph.New("unbounded")
	p := g.AddParameter("p", graph.F32, graph.PartialShape{
		Dims: []graph.Dimension{graph.DynamicDim(graph.NoBound)},
	})
	if _, err := g.AddOp("Relu", "relu", p.Output(0)); err != nil {
		t.Fatal(err)
	}

	s, err := New(filepath.Join(t.TempDir(), "net.xml"), "", IRv10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(g); !errors.Is(err, ErrDynamicShape) {
		t.Errorf("Run error = %v, want ErrDynamicShape", err)
	}
}

func TestSerializeIdempotent(t *testing.T) {
	g := graph.New("twice")
	c := g.AddConstant("w", graph.F32, []int{2, 2}, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	mm := g.AddParameter("in", graph.F32, graph.PartialShape{
		Dims: []graph.Dimension{graph.DynamicDim(4), graph.Dim(2)},
	})
	add, err := g.AddOp("MatMul", "mm", mm.Output(0), c.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	g.AddResult("out", add.Output(0))

	dir := t.TempDir()
	first, err := New(filepath.Join(dir, "a.xml"), "", IRv10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Run(g); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := New(filepath.Join(dir, "b.xml"), "", IRv10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := second.Run(g); err != nil {
		t.Fatalf("second run: %v", err)
	}

	xmlA, err := os.ReadFile(first.XMLPath())
	if err != nil {
		t.Fatal(err)
	}
	xmlB, err := os.ReadFile(second.XMLPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(xmlA) != string(xmlB) {
		t.Error("topology documents differ between runs")
	}

	binA, err := os.ReadFile(first.BinPath())
	if err != nil {
		t.Fatal(err)
	}
	binB, err := os.ReadFile(second.BinPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(binA) != string(binB) {
		t.Error("binary blobs differ between runs")
	}
}

func TestSerializeCustomOpset(t *testing.T) {
	g := graph.New("custom")
	p := g.AddParameter("p", graph.F32, graph.StaticShape(2))
	if _, err := g.AddOp("MyDetector", "det", p.Output(0)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddOp("Mystery", "unknown", p.Output(0)); err != nil {
		t.Fatal(err)
	}

	custom := map[string]*opset.OpSet{
		"extension": opset.New("extension", "MyDetector"),
	}
	net, _ := runSerializer(t, g, custom)
	layers := selectLayers(t, net)

	byName := make(map[string]*etree.Element)
	for _, l := range layers {
		byName[l.SelectAttrValue("name", "")] = l
	}
	if got := byName["det"].SelectAttrValue("version", ""); got != "extension" {
		t.Errorf("det version = %q, want extension", got)
	}
	if got := byName["unknown"].SelectAttrValue("version", ""); got != "experimental" {
		t.Errorf("unknown version = %q, want experimental", got)
	}
	if got := byName["p"].SelectAttrValue("version", ""); got != "opset1" {
		t.Errorf("p version = %q, want opset1", got)
	}
}

func TestSerializeGenericTypeOverride(t *testing.T) {
	g := graph.New("generic")
	p := g.AddParameter("p", graph.F32, graph.StaticShape(2))
	gen, err := g.AddOp("GenericIE", "gen", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	gen.SetAttribute(graph.StringAttribute("__generic_ie_type__", "CustomNMS"))
	gen.SetAttribute(graph.IntAttribute("max_boxes", 100))

	net, _ := runSerializer(t, g, nil)
	layers := selectLayers(t, net)
	genLayer := layers[1]
	if got := genLayer.SelectAttrValue("type", ""); got != "CustomNMS" {
		t.Errorf("layer type = %q, want CustomNMS", got)
	}
	data := genLayer.SelectElement("data")
	if data == nil {
		t.Fatal("generic layer has no <data>")
	}
	if data.SelectAttr("__generic_ie_type__") != nil {
		t.Error("type override leaked into <data>")
	}
	if got := data.SelectAttrValue("max_boxes", ""); got != "100" {
		t.Errorf("max_boxes = %q, want 100", got)
	}
}

func TestSerializeExecGraph(t *testing.T) {
	g := graph.New("execnet")
	p := g.AddParameter("in", graph.F32, graph.StaticShape(1, 3))
	p.RuntimeInfo()["execTimeMcs"] = "42"
	p.RuntimeInfo()["layerType"] = "Input"
	p.RuntimeInfo()["outputLayouts"] = "NC"
	relu, err := g.AddOp("Relu", "act", p.Output(0))
	if err != nil {
		t.Fatal(err)
	}
	relu.RuntimeInfo()["execTimeMcs"] = "7"
	relu.RuntimeInfo()["layerType"] = "ReLU"

	net, _ := runSerializer(t, g, nil)
	layers := selectLayers(t, net)

	first := layers[0]
	// Exec-graph layers take their type from the profiling metadata and
	// carry no opset version.
	if got := first.SelectAttrValue("type", ""); got != "Input" {
		t.Errorf("layer type = %q, want Input", got)
	}
	if first.SelectAttr("version") != nil {
		t.Error("exec-graph layer carries a version attribute")
	}
	data := first.SelectElement("data")
	if data == nil {
		t.Fatal("exec-graph layer has no <data>")
	}
	if got := data.SelectAttrValue("execTimeMcs", ""); got != "42" {
		t.Errorf("execTimeMcs = %q, want 42", got)
	}
	if got := data.SelectAttrValue("outputLayouts", ""); got != "NC" {
		t.Errorf("outputLayouts = %q, want NC", got)
	}
	if data.SelectAttr("layerType") != nil {
		t.Error("layerType leaked into <data>")
	}
	// Metadata keys come out in sorted order.
	if len(data.Attr) != 2 || data.Attr[0].Key != "execTimeMcs" || data.Attr[1].Key != "outputLayouts" {
		t.Errorf("exec-graph attrs not in sorted key order: %v", data.Attr)
	}
}
