package serialize

// Operation type names are translated from the graph convention to the
// IR convention. Most are identical, with a handful of exceptions. New
// discrepancies get an entry here.
var typeNameTranslator = map[string]string{
	"Constant": "Const",
	"Relu":     "ReLU",
	"Softmax":  "SoftMax",
}

// TranslateTypeName maps a canonical operation type name to the name the
// IR format expects.
func TranslateTypeName(name string) string {
	if translated, ok := typeNameTranslator[name]; ok {
		return translated
	}
	return name
}
