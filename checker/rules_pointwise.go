package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// addRule infers the type of an elementwise addition.
//
// A scalar integer operand leaves the tensor operand's type unchanged.
// Otherwise, both operand types are broadcast against each other -- the
// broadcast results are also written back into the argument nodes -- and,
// if consistent, the more precise of the two becomes the node's type.
func addRule(g *graph.Graph, n *graph.Node, _ modules.Module) (gradual.Type, error) {
	x, err := argNode(n, 0)
	if err != nil {
		return gradual.Invalid(), err
	}
	y, err := argNode(n, 1)
	if err != nil {
		return gradual.Invalid(), err
	}
	t1, t2 := x.Type(), y.Type()

	// Scalar addition: int + tensor keeps the tensor's type.
	if t1.IsInt() && t2.IsTensor() {
		n.SetType(t2)
		return n.Type(), nil
	}
	if t2.IsInt() && t1.IsTensor() {
		n.SetType(t1)
		return n.Type(), nil
	}

	b1, b2, err := gradual.Broadcast(t1, t2)
	if err != nil {
		if errors.Is(err, gradual.ErrInPlaceShape) {
			// The shapes would broadcast under plain numpy rules; the
			// in-place restriction is what rejects them.
			klog.Warningf("gradtype: add of %s and %s rejected by the in-place shape rule", t1, t2)
		}
		return gradual.Invalid(), err
	}
	x.SetType(b1)
	y.SetType(b2)

	if !gradual.IsConsistent(b1, b2) {
		return gradual.Invalid(), errors.Wrapf(ErrConsistency,
			"cannot add %s (%s) and %s (%s)", x.Name(), b1, y.Name(), b2)
	}
	if gradual.IsMorePrecise(b2, b1) {
		n.SetType(b2)
	} else {
		n.SetType(b1)
	}
	return n.Type(), nil
}

// reluRule infers the type of a ReLU application: shape preserving, the
// result is the more precise of the argument's type and the node's own
// declared type.
func reluRule(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error) {
	x, err := argNode(n, 0)
	if err != nil {
		return gradual.Invalid(), err
	}
	argType := x.Type()
	if !gradual.IsConsistent(argType, n.Type()) {
		return gradual.Invalid(), errors.Wrapf(ErrConsistency,
			"cannot apply %s: declared type %s does not match argument type %s", m, n.Type(), argType)
	}
	if gradual.IsMorePrecise(argType, n.Type()) {
		n.SetType(argType)
	}
	return n.Type(), nil
}
