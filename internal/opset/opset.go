// Package opset defines versioned operation sets and the membership
// predicate the serializer uses to tag each layer with the opset that
// first introduced its type.
package opset

// OpSet is a named collection of operation type names. The serializer
// only ever asks whether a type belongs to a set.
type OpSet struct {
	name  string
	types map[string]struct{}
}

// New creates an opset from a list of operation type names.
func New(name string, types ...string) *OpSet {
	s := &OpSet{name: name, types: make(map[string]struct{}, len(types))}
	for _, t := range types {
		s.types[t] = struct{}{}
	}
	return s
}

// Extend creates an opset containing everything in base plus the extra
// type names. Later opset versions are supersets of earlier ones.
func Extend(name string, base *OpSet, extra ...string) *OpSet {
	s := &OpSet{name: name, types: make(map[string]struct{}, len(base.types)+len(extra))}
	for t := range base.types {
		s.types[t] = struct{}{}
	}
	for _, t := range extra {
		s.types[t] = struct{}{}
	}
	return s
}

// Name returns the opset's name, e.g. "opset1".
func (s *OpSet) Name() string { return s.name }

// Contains reports whether the opset defines the operation type.
func (s *OpSet) Contains(typeName string) bool {
	_, ok := s.types[typeName]
	return ok
}

var builtin []*OpSet

func init() {
	opset1 := New("opset1",
		"Parameter", "Result", "Constant",
		"Add", "Subtract", "Multiply", "Divide", "Power",
		"MatMul", "Relu", "Sigmoid", "Tanh", "Softmax", "Clamp", "Elu", "PRelu",
		"Concat", "Reshape", "Squeeze", "Unsqueeze", "Transpose", "ShapeOf",
		"Convolution", "GroupConvolution", "MaxPool", "AvgPool",
		"Split", "StridedSlice", "Pad", "Interpolate", "Tile",
		"ReduceMax", "ReduceMean", "ReduceMin", "ReduceSum", "ReduceProd",
		"Gather", "Broadcast", "TopK", "GenericIE",
	)
	opset2 := Extend("opset2", opset1,
		"Gelu", "BatchToSpace", "SpaceToBatch", "MVN", "ROIPooling", "ReorgYolo",
	)
	opset3 := Extend("opset3", opset2,
		"Bucketize", "CumSum", "EmbeddingBagOffsetsSum", "EmbeddingBagPackedSum",
		"ExtractImagePatches", "GRUCell", "NonZero", "ScatterUpdate",
		"ScatterElementsUpdate", "ShuffleChannels",
	)
	opset4 := Extend("opset4", opset3,
		"Acosh", "Asinh", "Atanh", "CTCLoss", "HSwish", "Mish", "SoftPlus", "Swish",
	)
	opset5 := Extend("opset5", opset4,
		"GRUSequence", "LSTMSequence", "RNNSequence", "Loop", "Round", "LogSoftmax",
	)
	builtin = []*OpSet{opset1, opset2, opset3, opset4, opset5}
}

// Builtin returns the built-in opsets in ascending version order. The
// slice must be treated as read-only.
func Builtin() []*OpSet {
	return builtin
}
