package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
)

// batchNorm2dRule infers the type of a 2D batch-normalization. The
// operation is shape preserving: after matching both the argument's and
// the declared type to rank 4 and checking the channel dimension against
// num_features, the node keeps the more precise of the two.
func batchNorm2dRule(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error) {
	bn, ok := m.(*modules.BatchNorm2D)
	if !ok {
		return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument, "batchnorm2d rule applied to module %s", m)
	}
	argType, err := matchArgRank4(n)
	if err != nil {
		return gradual.Invalid(), err
	}
	declared, err := gradual.ApplyMatching(n.Type(), 4)
	if err != nil {
		return gradual.Invalid(), err
	}
	n.SetType(declared)

	numFeatures := gradual.Dim(bn.NumFeatures)
	if !gradual.DimsConsistent(argType.Dim(1), numFeatures) ||
		!gradual.DimsConsistent(declared.Dim(1), numFeatures) {
		return gradual.Invalid(), errors.Wrapf(ErrChannelMismatch,
			"cannot apply %s: argument channels %s, declared channels %s", bn, argType.Dim(1), declared.Dim(1))
	}
	if !gradual.IsConsistent(argType, declared) {
		return gradual.Invalid(), errors.Wrapf(ErrConsistency,
			"cannot apply %s with argument type %s and declared type %s", bn, argType, declared)
	}

	if gradual.IsMorePrecise(argType, declared) {
		n.SetType(argType)
	}
	return n.Type(), nil
}
