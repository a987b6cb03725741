package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
)

// transposeRule infers the type of a transposition swapping two axes. A
// Dyn operand stays Dyn; a tensor operand has the two dimensions swapped.
func transposeRule(g *graph.Graph, n *graph.Node, _ modules.Module) (gradual.Type, error) {
	x, err := argNode(n, 0)
	if err != nil {
		return gradual.Invalid(), err
	}
	dim1, ok1 := n.Arg(1).Int()
	dim2, ok2 := n.Arg(2).Int()
	if n.NumArgs() != 3 || !ok1 || !ok2 {
		return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument,
			"transpose takes a node and two axis literals, got %s", n)
	}

	t := x.Type()
	if t.IsDyn() {
		n.SetType(gradual.Dyn())
		return n.Type(), nil
	}
	if !t.IsTensor() || dim1 < 0 || dim1 >= t.Rank() || dim2 < 0 || dim2 >= t.Rank() {
		return gradual.Invalid(), errors.Wrapf(ErrAxisOutOfRange,
			"cannot transpose axes %d and %d in type %s", dim1, dim2, t)
	}
	dims := t.Dims()
	dims[dim1], dims[dim2] = dims[dim2], dims[dim1]
	n.SetType(gradual.Make(dims...))
	return n.Type(), nil
}

// reshapeRule infers the type of a reshape to a literal target shape. A -1
// entry in the target means an unknown dimension.
//
// A Dyn operand adopts the target shape as-is. If the operand has any
// unknown dimension or the target has a -1, the products of the known
// dimensions on the two sides must divide one another; with everything
// known the products must be equal.
func reshapeRule(g *graph.Graph, n *graph.Node, _ modules.Module) (gradual.Type, error) {
	x, err := argNode(n, 0)
	if err != nil {
		return gradual.Invalid(), err
	}
	target, ok := n.Arg(1).IntList()
	if n.NumArgs() != 2 || !ok {
		return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument,
			"reshape takes a node and a target shape literal, got %s", n)
	}

	targetDims := make([]gradual.Dim, len(target))
	targetHasUnknown := false
	targetKnownSize := 1
	for i, v := range target {
		if v == -1 {
			targetDims[i] = gradual.DynDim
			targetHasUnknown = true
			continue
		}
		if v < 0 {
			return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument,
				"reshape target %v: dimension #%d must be >= 0 or -1", target, i)
		}
		targetDims[i] = gradual.Dim(v)
		targetKnownSize *= v
	}
	targetType := gradual.Make(targetDims...)

	t1 := x.Type()
	switch {
	case t1.IsDyn():
		// Nothing known about the source: the target shape is the answer.
		n.SetType(targetType)
		return n.Type(), nil

	case t1.IsTensor() && (t1.HasDynDim() || targetHasUnknown):
		p1, p2 := t1.KnownSize(), targetKnownSize
		if p1 == 0 || p2 == 0 {
			if p1 != p2 {
				return gradual.Invalid(), errors.Wrapf(ErrReshape, "from %s to %s", t1, targetType)
			}
		} else if p1%p2 != 0 && p2%p1 != 0 {
			return gradual.Invalid(), errors.Wrapf(ErrReshape,
				"from %s to %s: %d and %d do not divide one another", t1, targetType, p1, p2)
		}
		n.SetType(targetType)
		return n.Type(), nil

	case t1.IsTensor():
		if t1.KnownSize() != targetKnownSize {
			return gradual.Invalid(), errors.Wrapf(ErrReshape,
				"from %s to %s: %d elements != %d elements", t1, targetType, t1.KnownSize(), targetKnownSize)
		}
		n.SetType(targetType)
		return n.Type(), nil
	}

	return gradual.Invalid(), errors.Wrapf(ErrReshape, "from non-tensor type %s to %s", t1, targetType)
}
