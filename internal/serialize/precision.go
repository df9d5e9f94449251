package serialize

import (
	"fmt"

	"github.com/born-ml/netir/internal/graph"
)

// PrecisionName maps an element type to the IR format's canonical
// precision string.
func PrecisionName(et graph.ElementType) (string, error) {
	switch et {
	case graph.Undefined:
		return "UNSPECIFIED", nil
	case graph.F16:
		return "FP16", nil
	case graph.F32:
		return "FP32", nil
	case graph.BF16:
		return "BF16", nil
	case graph.F64:
		return "FP64", nil
	case graph.I8:
		return "I8", nil
	case graph.I16:
		return "I16", nil
	case graph.I32:
		return "I32", nil
	case graph.I64:
		return "I64", nil
	case graph.U8:
		return "U8", nil
	case graph.U16:
		return "U16", nil
	case graph.U32:
		return "U32", nil
	case graph.U64:
		return "U64", nil
	case graph.U1:
		return "BIN", nil
	case graph.Bool:
		return "BOOL", nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnsupportedType, et)
	}
}
