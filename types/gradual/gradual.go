/*
 *	Copyright 2026 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package gradual defines the gradual type universe used to describe tensor
// shapes flowing through a computation graph: the unknown type Dyn, ranked
// tensor types whose individual dimensions may themselves be unknown, and the
// scalar integer marker type.
//
// Two relations connect the types and are used by every shape inference rule:
//
//   - Consistency (IsConsistent): a reflexive, symmetric compatibility
//     relation. Dyn is consistent with everything; two tensor types are
//     consistent iff they have the same rank and agree on every known
//     dimension. Consistency is deliberately not transitive: [Dyn, 2] is
//     consistent with both [1, 2] and [3, 2], which are not consistent with
//     each other.
//
//   - Precision (IsMorePrecise): a partial order where "more precise" means
//     "carries more shape information". Dyn is the global minimum; a known
//     dimension is more precise than an unknown one. Tensor types of
//     different rank are incomparable.
//
// ## Glossary
//
//   - Rank: number of axes of a tensor type.
//   - Dim: the size of a tensor type along one axis, possibly unknown (DynDim).
//   - Dyn: the fully unknown type, consistent with everything, least precise.
package gradual

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
)

// Dim is the size of a tensor type along one axis: either a known
// non-negative size or DynDim, the unknown dimension.
type Dim int

// DynDim is the unknown dimension. Any negative value is treated as unknown,
// but DynDim is the canonical representation and the only one constructors
// store.
const DynDim Dim = -1

// IsDyn reports whether the dimension is unknown.
func (d Dim) IsDyn() bool { return d < 0 }

// String implements fmt.Stringer.
func (d Dim) String() string {
	if d.IsDyn() {
		return "Dyn"
	}
	return fmt.Sprintf("%d", int(d))
}

// Kind discriminates the closed set of type variants.
type Kind int8

const (
	// KindInvalid is the zero value: the type slot of a graph node before
	// type checking assigns anything to it.
	KindInvalid Kind = iota

	// KindDyn is the fully unknown type.
	KindDyn

	// KindTensor is a ranked tensor type with per-dimension values.
	KindTensor

	// KindInt is the scalar integer marker type, used by the elementwise-add
	// scalar broadcast special case.
	KindInt
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "Invalid"
	case KindDyn:
		return "Dyn"
	case KindTensor:
		return "Tensor"
	case KindInt:
		return "Int"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Type is a gradual tensor-shape type. It is a small value object, pass it
// by value. The zero value is invalid (Ok returns false) and models an
// "unset" type slot.
//
// Use Dyn, Int or Make to create one.
type Type struct {
	kind Kind
	dims []Dim
}

// Dyn returns the fully unknown type.
func Dyn() Type { return Type{kind: KindDyn} }

// Int returns the scalar integer marker type.
func Int() Type { return Type{kind: KindInt} }

// Invalid returns the invalid type, same as the zero value.
//
// Invalid().Ok() == false.
func Invalid() Type { return Type{} }

// Make returns a tensor type with the given dimensions. The rank is
// len(dims) and is immutable: no operation changes a tensor type's rank in
// place, transformations always build a new Type.
//
// Dimensions must be either known (>= 0) or DynDim; any other negative
// value panics. In particular the -1 reshape-target convention is input
// syntax for the reshape rule only and never stored here.
func Make(dims ...Dim) Type {
	t := Type{kind: KindTensor, dims: make([]Dim, len(dims))}
	for i, d := range dims {
		if d < DynDim {
			exceptions.Panicf("gradual.Make(%v): dimension #%d is %d, must be >= 0 or DynDim", dims, i, int(d))
		}
		t.dims[i] = d
	}
	return t
}

// Ok returns whether this is a valid Type. The zero value Type{} is invalid.
func (t Type) Ok() bool { return t.kind != KindInvalid }

// Kind returns the type variant tag.
func (t Type) Kind() Kind { return t.kind }

// IsDyn reports whether t is the fully unknown type.
func (t Type) IsDyn() bool { return t.kind == KindDyn }

// IsTensor reports whether t is a tensor type.
func (t Type) IsTensor() bool { return t.kind == KindTensor }

// IsInt reports whether t is the scalar integer marker type.
func (t Type) IsInt() bool { return t.kind == KindInt }

// Rank returns the number of axes of a tensor type, and 0 for every other
// kind. Notice Dyn carries no rank information at all: a rank of 0 from a
// Dyn type means "unknown", not "scalar".
func (t Type) Rank() int { return len(t.dims) }

// Dim returns the dimension of the given axis of a tensor type. axis can
// take negative values, in which case it counts from the end, so axis=-1
// refers to the last axis. Like slice indexing, it panics for an
// out-of-bounds axis or a non-tensor type.
func (t Type) Dim(axis int) Dim {
	if !t.IsTensor() {
		exceptions.Panicf("Type.Dim(%d) called on non-tensor type %s", axis, t)
	}
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += t.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= t.Rank() {
		exceptions.Panicf("Type.Dim(%d) out-of-bounds for rank %d (type=%s)", axis, t.Rank(), t)
	}
	return t.dims[adjustedAxis]
}

// Dims returns a copy of the dimensions of a tensor type, nil for every
// other kind.
func (t Type) Dims() []Dim {
	if !t.IsTensor() {
		return nil
	}
	dims := make([]Dim, len(t.dims))
	copy(dims, t.dims)
	return dims
}

// Clone returns a deep copy of the type.
func (t Type) Clone() Type {
	t2 := Type{kind: t.kind}
	if t.dims != nil {
		t2.dims = make([]Dim, len(t.dims))
		copy(t2.dims, t.dims)
	}
	return t2
}

// Equal compares two types for structural equality. Notice this is not
// consistency: Dyn is equal only to Dyn.
func (t Type) Equal(t2 Type) bool {
	if t.kind != t2.kind {
		return false
	}
	if t.kind != KindTensor {
		return true
	}
	if len(t.dims) != len(t2.dims) {
		return false
	}
	for i, d := range t.dims {
		if d != t2.dims[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer, pretty-prints the type.
func (t Type) String() string {
	switch t.kind {
	case KindInvalid:
		return "InvalidType"
	case KindDyn:
		return "Dyn"
	case KindInt:
		return "int"
	}
	parts := make([]string, 0, len(t.dims))
	for _, d := range t.dims {
		parts = append(parts, d.String())
	}
	return fmt.Sprintf("TensorType[%s]", strings.Join(parts, ", "))
}

// KnownSize returns the product of the known dimensions of a tensor type,
// counting each unknown dimension as 1. Used by the reshape divisibility
// check.
func (t Type) KnownSize() int {
	size := 1
	for _, d := range t.dims {
		if !d.IsDyn() {
			size *= int(d)
		}
	}
	return size
}

// HasDynDim reports whether any dimension of a tensor type is unknown.
func (t Type) HasDynDim() bool {
	for _, d := range t.dims {
		if d.IsDyn() {
			return true
		}
	}
	return false
}
