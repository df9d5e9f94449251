package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// NoBound marks a dynamic dimension with no declared upper bound.
const NoBound = -1

// Dimension is a single dimension of a partial shape. A dimension is
// either concrete (Value) or dynamic with an optional upper bound.
type Dimension struct {
	Value   int
	Bound   int
	Dynamic bool
}

// Dim returns a concrete dimension.
func Dim(v int) Dimension {
	return Dimension{Value: v}
}

// DynamicDim returns a dynamic dimension with an upper bound.
// Pass NoBound for an unbounded dimension.
func DynamicDim(bound int) Dimension {
	return Dimension{Bound: bound, Dynamic: true}
}

// IsStatic reports whether the dimension has a concrete value.
func (d Dimension) IsStatic() bool {
	return !d.Dynamic
}

// MaxLength returns the concrete value for static dimensions and the
// declared upper bound for dynamic ones (NoBound when unbounded).
func (d Dimension) MaxLength() int {
	if d.Dynamic {
		return d.Bound
	}
	return d.Value
}

func (d Dimension) String() string {
	if !d.Dynamic {
		return strconv.Itoa(d.Value)
	}
	if d.Bound == NoBound {
		return "?"
	}
	return fmt.Sprintf("?<=%d", d.Bound)
}

// PartialShape is a tensor shape whose dimensions may be concrete or
// dynamic. A shape may also be rank-dynamic, in which case it has no
// dimension list at all.
type PartialShape struct {
	RankDynamic bool
	Dims        []Dimension
}

// StaticShape builds a fully static shape from concrete dimension sizes.
func StaticShape(dims ...int) PartialShape {
	ds := make([]Dimension, len(dims))
	for i, v := range dims {
		ds[i] = Dim(v)
	}
	return PartialShape{Dims: ds}
}

// DynamicRankShape returns a shape with dynamic rank.
func DynamicRankShape() PartialShape {
	return PartialShape{RankDynamic: true}
}

// Rank returns the number of dimensions. Rank of a rank-dynamic shape is
// not meaningful and reported as -1.
func (s PartialShape) Rank() int {
	if s.RankDynamic {
		return -1
	}
	return len(s.Dims)
}

// IsStatic reports whether every dimension is concrete.
func (s PartialShape) IsStatic() bool {
	if s.RankDynamic {
		return false
	}
	for _, d := range s.Dims {
		if d.Dynamic {
			return false
		}
	}
	return true
}

// IsDynamic reports whether any dimension (or the rank) is dynamic.
func (s PartialShape) IsDynamic() bool {
	return !s.IsStatic()
}

// Static returns the concrete dimension sizes. It fails when the shape is
// rank-dynamic or has any dynamic dimension.
func (s PartialShape) Static() ([]int, error) {
	if s.IsDynamic() {
		return nil, fmt.Errorf("shape %s is not static", s)
	}
	dims := make([]int, len(s.Dims))
	for i, d := range s.Dims {
		dims[i] = d.Value
	}
	return dims, nil
}

// Clone returns a deep copy of the shape.
func (s PartialShape) Clone() PartialShape {
	c := PartialShape{RankDynamic: s.RankDynamic}
	if s.Dims != nil {
		c.Dims = make([]Dimension, len(s.Dims))
		copy(c.Dims, s.Dims)
	}
	return c
}

// BoundToStatic substitutes every bounded dynamic dimension with its
// upper bound. Static shapes are returned unchanged, as are rank-dynamic
// shapes and dimensions without a declared bound: those cannot be
// concretized and keep their dynamism.
func (s PartialShape) BoundToStatic() PartialShape {
	if s.IsStatic() || s.RankDynamic {
		return s.Clone()
	}
	out := s.Clone()
	for i, d := range out.Dims {
		if d.Dynamic && d.Bound != NoBound {
			out.Dims[i] = Dim(d.Bound)
		}
	}
	return out
}

// NumElements returns the total element count for static shapes.
// The second result is false when the shape is dynamic.
func (s PartialShape) NumElements() (int, bool) {
	if s.IsDynamic() {
		return 0, false
	}
	n := 1
	for _, d := range s.Dims {
		n *= d.Value
	}
	return n, true
}

// Equal checks if two partial shapes are identical, dimension by
// dimension.
func (s PartialShape) Equal(other PartialShape) bool {
	if s.RankDynamic != other.RankDynamic || len(s.Dims) != len(other.Dims) {
		return false
	}
	for i := range s.Dims {
		if s.Dims[i] != other.Dims[i] {
			return false
		}
	}
	return true
}

func (s PartialShape) String() string {
	if s.RankDynamic {
		return "[...]"
	}
	parts := make([]string, len(s.Dims))
	for i, d := range s.Dims {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}
