package graph

// ElementType represents the element type of a tensor flowing along a
// graph edge.
type ElementType int

// Supported element types.
const (
	Undefined ElementType = iota
	F16
	F32
	BF16
	F64
	I8
	I16
	I32
	I64
	U1
	U8
	U16
	U32
	U64
	Bool
)

// Size returns the byte size of one element. U1 is bit-packed and reports
// 1 together with Bool and the 8-bit integer types; Undefined reports 0.
func (et ElementType) Size() int {
	switch et {
	case F16, BF16, I16, U16:
		return 2
	case F32, I32, U32:
		return 4
	case F64, I64, U64:
		return 8
	case I8, U1, U8, Bool:
		return 1
	default:
		return 0
	}
}

// String returns a human-readable name for the element type.
func (et ElementType) String() string {
	switch et {
	case F16:
		return "f16"
	case F32:
		return "f32"
	case BF16:
		return "bf16"
	case F64:
		return "f64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U1:
		return "u1"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case Bool:
		return "boolean"
	default:
		return "undefined"
	}
}

// ParseElementType converts a textual element type name back to its
// ElementType value. The zero value Undefined is returned for unknown
// names along with false.
func ParseElementType(s string) (ElementType, bool) {
	for et := F16; et <= Bool; et++ {
		if et.String() == s {
			return et, true
		}
	}
	if s == "undefined" {
		return Undefined, true
	}
	return Undefined, false
}
