package gradual

import (
	"github.com/pkg/errors"
)

var (
	// ErrRankMismatch is returned when a type's rank does not match the
	// rank an operator requires.
	ErrRankMismatch = errors.New("rank mismatch")

	// ErrBroadcast is returned when two tensor types cannot be broadcast
	// against each other.
	ErrBroadcast = errors.New("cannot broadcast")

	// ErrInPlaceShape is returned when broadcasting would change the shape
	// of both operands: an in-place operation must leave at least one
	// operand's shape untouched.
	ErrInPlaceShape = errors.New("in-place operation cannot change shape")
)

// ApplyMatching expands a type to a tensor type of the given rank if
// possible: Dyn expands to a tensor of rank unknown dimensions, a tensor
// type of exactly that rank is returned unchanged, anything else fails with
// ErrRankMismatch.
func ApplyMatching(t Type, rank int) (Type, error) {
	if t.IsDyn() {
		dims := make([]Dim, rank)
		for i := range dims {
			dims[i] = DynDim
		}
		return Make(dims...), nil
	}
	if t.IsTensor() {
		if t.Rank() != rank {
			return Invalid(), errors.Wrapf(ErrRankMismatch, "tensor %s has rank %d, it should have rank %d", t, t.Rank(), rank)
		}
		return t, nil
	}
	return Invalid(), errors.Wrapf(ErrRankMismatch, "cannot match type %s to rank %d", t, rank)
}

// Broadcast aligns two tensor types and returns both after broadcasting.
//
// The ranks may differ by at most 1 and neither may be 0 (ErrBroadcast
// otherwise). The shorter type is left-padded with the longer type's
// leading dimension -- notice this reproduces the original upstream rule
// and is not numpy's pad-with-1; the difference is visible only when the
// longer type's leading dimension is not 1. After alignment, a dimension of
// 1 on either side takes the other side's value.
//
// A post-condition rejects the broadcast with ErrInPlaceShape when both
// sides ended up changed from their original shape, modeling the constraint
// that an in-place operation must not change its own operand's shape; a
// single side changing is fine.
//
// If either type is Dyn the broadcast short-circuits and both types are
// returned unchanged.
func Broadcast(t1, t2 Type) (out1, out2 Type, err error) {
	if t1.IsDyn() || t2.IsDyn() {
		return t1, t2, nil
	}
	if !t1.IsTensor() || !t2.IsTensor() {
		err = errors.Wrapf(ErrBroadcast, "cannot broadcast types %s and %s", t1, t2)
		return
	}

	r1, r2 := t1.Rank(), t2.Rank()
	if r1-r2 > 1 || r2-r1 > 1 || r1 == 0 || r2 == 0 {
		err = errors.Wrapf(ErrBroadcast, "cannot broadcast the tensors %s and %s", t1, t2)
		return
	}

	dims1 := t1.Dims()
	dims2 := t2.Dims()
	if r1 > r2 {
		dims2 = append([]Dim{dims1[0]}, dims2...)
	} else if r2 > r1 {
		dims1 = append([]Dim{dims2[0]}, dims1...)
	}

	for i := range dims1 {
		if dims1[i] == 1 {
			dims1[i] = dims2[i]
		} else if dims2[i] == 1 {
			dims2[i] = dims1[i]
		}
	}

	out1, out2 = Make(dims1...), Make(dims2...)
	if !out1.Equal(t1) && !out2.Equal(t2) {
		err = errors.Wrapf(ErrInPlaceShape, "broadcasting %s with %s would change both shapes (to %s and %s)", t1, t2, out1, out2)
		out1, out2 = Invalid(), Invalid()
		return
	}
	return
}
