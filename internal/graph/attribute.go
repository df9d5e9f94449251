package graph

import "fmt"

// AttributeKind discriminates the closed set of attribute value kinds.
type AttributeKind int

// Attribute kinds.
const (
	BoolAttr AttributeKind = iota
	IntAttr
	FloatAttr
	StringAttr
	IntVectorAttr
	FloatVectorAttr
	StringVectorAttr
	BufferAttr
)

// Attribute is a named, kind-tagged value attached to a node.
// Exactly one of the value fields is meaningful, selected by Kind.
type Attribute struct {
	Name   string
	Kind   AttributeKind
	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Ints   []int64
	Floats []float64
	Strs   []string
	Buffer []byte
}

// BoolAttribute builds a boolean attribute.
func BoolAttribute(name string, v bool) Attribute {
	return Attribute{Name: name, Kind: BoolAttr, Bool: v}
}

// IntAttribute builds a 64-bit signed integer attribute.
func IntAttribute(name string, v int64) Attribute {
	return Attribute{Name: name, Kind: IntAttr, Int: v}
}

// FloatAttribute builds a double attribute.
func FloatAttribute(name string, v float64) Attribute {
	return Attribute{Name: name, Kind: FloatAttr, Float: v}
}

// StringAttribute builds a string attribute.
func StringAttribute(name, v string) Attribute {
	return Attribute{Name: name, Kind: StringAttr, Str: v}
}

// IntVectorAttribute builds an integer vector attribute.
func IntVectorAttribute(name string, v []int64) Attribute {
	return Attribute{Name: name, Kind: IntVectorAttr, Ints: v}
}

// FloatVectorAttribute builds a double vector attribute.
func FloatVectorAttribute(name string, v []float64) Attribute {
	return Attribute{Name: name, Kind: FloatVectorAttr, Floats: v}
}

// StringVectorAttribute builds a string vector attribute.
func StringVectorAttribute(name string, v []string) Attribute {
	return Attribute{Name: name, Kind: StringVectorAttr, Strs: v}
}

// BufferAttribute builds an opaque binary buffer attribute.
func BufferAttribute(name string, v []byte) Attribute {
	return Attribute{Name: name, Kind: BufferAttr, Buffer: v}
}

// AttributeVisitor receives a node's attributes one at a time, dispatched
// by kind. Implementations decide how each kind is recorded; a node never
// needs to know what the visitor does with the values.
type AttributeVisitor interface {
	VisitBool(name string, value bool) error
	VisitInt(name string, value int64) error
	VisitFloat(name string, value float64) error
	VisitString(name string, value string) error
	VisitIntVector(name string, value []int64) error
	VisitFloatVector(name string, value []float64) error
	VisitStringVector(name string, value []string) error
	VisitBuffer(name string, value []byte) error
}

// dispatch feeds a single attribute into the visitor method matching its
// kind.
func (a Attribute) dispatch(v AttributeVisitor) error {
	switch a.Kind {
	case BoolAttr:
		return v.VisitBool(a.Name, a.Bool)
	case IntAttr:
		return v.VisitInt(a.Name, a.Int)
	case FloatAttr:
		return v.VisitFloat(a.Name, a.Float)
	case StringAttr:
		return v.VisitString(a.Name, a.Str)
	case IntVectorAttr:
		return v.VisitIntVector(a.Name, a.Ints)
	case FloatVectorAttr:
		return v.VisitFloatVector(a.Name, a.Floats)
	case StringVectorAttr:
		return v.VisitStringVector(a.Name, a.Strs)
	case BufferAttr:
		return v.VisitBuffer(a.Name, a.Buffer)
	default:
		return fmt.Errorf("unknown attribute kind %d for %q", a.Kind, a.Name)
	}
}

// clone returns a deep copy of the attribute, including slice payloads.
func (a Attribute) clone() Attribute {
	c := a
	if a.Ints != nil {
		c.Ints = append([]int64(nil), a.Ints...)
	}
	if a.Floats != nil {
		c.Floats = append([]float64(nil), a.Floats...)
	}
	if a.Strs != nil {
		c.Strs = append([]string(nil), a.Strs...)
	}
	if a.Buffer != nil {
		c.Buffer = append([]byte(nil), a.Buffer...)
	}
	return c
}
