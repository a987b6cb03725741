package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
)

// linearTransfer checks that a tensor type can feed the linear module --
// rank at least 2, last dimension consistent with in_features -- and
// returns the type with the last dimension replaced by out_features.
func linearTransfer(t gradual.Type, lin *modules.Linear) (gradual.Type, error) {
	if t.Rank() < 2 {
		return gradual.Invalid(), errors.Wrapf(gradual.ErrRankMismatch,
			"type %s must have rank 2 or more for %s", t, lin)
	}
	if !gradual.DimsConsistent(t.Dim(-1), gradual.Dim(lin.InFeatures)) {
		return gradual.Invalid(), errors.Wrapf(ErrFeatureMismatch,
			"last dimension %s of %s is inconsistent with in_features of %s", t.Dim(-1), t, lin)
	}
	dims := t.Dims()
	dims[len(dims)-1] = gradual.Dim(lin.OutFeatures)
	return gradual.Make(dims...), nil
}

// linearRule infers the type of an affine module application. A Dyn
// argument under a tensor-typed node slot is first expanded to the slot's
// rank (the operation preserves rank); a tensor argument goes through the
// feature-matching transfer and the result is reconciled with the node's
// slot. Two Dyn operands stay Dyn.
func linearRule(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error) {
	lin, ok := m.(*modules.Linear)
	if !ok {
		return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument, "linear rule applied to module %s", m)
	}
	x, err := argNode(n, 0)
	if err != nil {
		return gradual.Invalid(), err
	}
	argType := x.Type()
	if argType.IsDyn() && n.Type().IsTensor() {
		argType, err = gradual.ApplyMatching(argType, n.Type().Rank())
		if err != nil {
			return gradual.Invalid(), err
		}
		x.SetType(argType)
	}

	switch {
	case argType.IsTensor():
		out, err := linearTransfer(argType, lin)
		if err != nil {
			return gradual.Invalid(), err
		}
		return mergeComputed(n, out, lin)

	case argType.IsDyn():
		return n.Type(), nil
	}

	return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument,
		"wrong argument type %s for %s", argType, lin)
}
