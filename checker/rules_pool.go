package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
)

// maxPool2dRule infers the output type of a 2D max-pool: batch and channel
// dimensions are preserved from the argument, the spatial dimensions go
// through the sliding-window formula.
func maxPool2dRule(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error) {
	pool, ok := m.(*modules.MaxPool2D)
	if !ok {
		return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument, "maxpool2d rule applied to module %s", m)
	}
	argType, err := matchArgRank4(n)
	if err != nil {
		return gradual.Invalid(), err
	}

	hOut := gradual.SlidingWindowDim(argType.Dim(2),
		pool.Padding.H(), pool.KernelSize.H(), pool.Stride.H(), pool.Dilation.H())
	wOut := gradual.SlidingWindowDim(argType.Dim(3),
		pool.Padding.W(), pool.KernelSize.W(), pool.Stride.W(), pool.Dilation.W())

	out := gradual.Make(argType.Dim(0), argType.Dim(1), hOut, wOut)
	return mergeComputed(n, out, pool)
}

// adaptiveAvgPool2dTransfer replaces the last two dimensions of a rank-3 or
// rank-4 tensor type with the module's output size. A still-unspecified
// output half (both halves negative) keeps the input's dimension, matching
// the "same as input" meaning of an omitted adaptive output size.
func adaptiveAvgPool2dTransfer(t gradual.Type, pool *modules.AdaptiveAvgPool2D) (gradual.Type, error) {
	if t.Rank() != 3 && t.Rank() != 4 {
		return gradual.Invalid(), errors.Wrapf(gradual.ErrRankMismatch,
			"tensor rank must be 3 or 4 for %s, got %s", pool, t)
	}
	size := pool.OutputSize.Filled()
	dims := t.Dims()
	if size.H() >= 0 {
		dims[len(dims)-2] = gradual.Dim(size.H())
	}
	if size.W() >= 0 {
		dims[len(dims)-1] = gradual.Dim(size.W())
	}
	return gradual.Make(dims...), nil
}

// adaptiveAvgPool2dRule infers the output type of a 2D adaptive
// average-pool. A Dyn argument under a tensor-typed node slot is first
// expanded to the slot's rank (the operation preserves rank); a tensor
// argument goes through the transfer and the result is reconciled with the
// node's slot. Two Dyn operands stay Dyn.
func adaptiveAvgPool2dRule(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error) {
	pool, ok := m.(*modules.AdaptiveAvgPool2D)
	if !ok {
		return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument, "adaptiveavgpool2d rule applied to module %s", m)
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
		out, err := adaptiveAvgPool2dTransfer(argType, pool)
		if err != nil {
			return gradual.Invalid(), err
		}
		return mergeComputed(n, out, pool)

	case argType.IsDyn():
		return n.Type(), nil
	}

	return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument,
		"wrong argument type %s for %s", argType, pool)
}
