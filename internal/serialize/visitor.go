package serialize

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	// constStorageAttr is the one buffer attribute that reaches the
	// binary sink, and only on nodes whose translated type is Const.
	constStorageAttr = "value"
	constTypeName    = "Const"

	// genericTypeName nodes carry their real layer type inside a string
	// attribute; it overrides the emitted type instead of landing in
	// <data>.
	genericTypeName = "GenericIE"
	genericTypeAttr = "__generic_ie_type__"
)

// xmlAttrVisitor records a node's attributes onto its <data> element.
// Scalars and vectors become textual attributes; the constant-storage
// buffer goes to the binary sink and is recorded as offset/size.
type xmlAttrVisitor struct {
	data *etree.Element
	bin  *binWriter

	// typeName is the node's emitted type, shared with the caller so the
	// GenericIE override can rewrite it mid-visit.
	typeName *string
}

// VisitBool records a boolean as a canonical true/false token.
func (v *xmlAttrVisitor) VisitBool(name string, value bool) error {
	v.data.CreateAttr(name, strconv.FormatBool(value))
	return nil
}

// VisitInt records a 64-bit signed integer.
func (v *xmlAttrVisitor) VisitInt(name string, value int64) error {
	v.data.CreateAttr(name, strconv.FormatInt(value, 10))
	return nil
}

// VisitFloat records a double with locale-independent formatting.
func (v *xmlAttrVisitor) VisitFloat(name string, value float64) error {
	v.data.CreateAttr(name, strconv.FormatFloat(value, 'g', -1, 64))
	return nil
}

// VisitString records a string as-is, except for the GenericIE layer
// type override, which rewrites the emitted type name instead of
// producing a <data> attribute.
func (v *xmlAttrVisitor) VisitString(name string, value string) error {
	if *v.typeName == genericTypeName && name == genericTypeAttr {
		*v.typeName = value
		return nil
	}
	v.data.CreateAttr(name, value)
	return nil
}

// VisitIntVector records the elements joined by ", ".
func (v *xmlAttrVisitor) VisitIntVector(name string, value []int64) error {
	parts := make([]string, len(value))
	for i, x := range value {
		parts[i] = strconv.FormatInt(x, 10)
	}
	v.data.CreateAttr(name, strings.Join(parts, ", "))
	return nil
}

// VisitFloatVector records the elements joined by ", ".
func (v *xmlAttrVisitor) VisitFloatVector(name string, value []float64) error {
	parts := make([]string, len(value))
	for i, x := range value {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	v.data.CreateAttr(name, strings.Join(parts, ", "))
	return nil
}

// VisitStringVector records the elements joined by ", ".
func (v *xmlAttrVisitor) VisitStringVector(name string, value []string) error {
	v.data.CreateAttr(name, strings.Join(value, ", "))
	return nil
}

// VisitBuffer appends constant storage to the binary sink and records
// the resulting offset and size. Every other buffer attribute is a
// deliberate no-op: the binary kind is otherwise unsupported, and
// widening the gate would silently change output for unrelated types.
func (v *xmlAttrVisitor) VisitBuffer(name string, value []byte) error {
	if name != constStorageAttr || TranslateTypeName(*v.typeName) != constTypeName {
		return nil
	}
	offset, err := v.bin.Append(value)
	if err != nil {
		return err
	}
	v.data.CreateAttr("offset", strconv.FormatInt(offset, 10))
	v.data.CreateAttr("size", strconv.Itoa(len(value)))
	return nil
}
