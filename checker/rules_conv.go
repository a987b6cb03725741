package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
)

// matchArgRank4 expands the first argument's type to rank 4
// ([batch, channels, height, width]), writing the expansion back into the
// argument node, and returns it. This is the shared precondition of the 2D
// channel-structured modules (convolution, max-pool, batch-norm).
func matchArgRank4(n *graph.Node) (gradual.Type, error) {
	x, err := argNode(n, 0)
	if err != nil {
		return gradual.Invalid(), err
	}
	argType, err := gradual.ApplyMatching(x.Type(), 4)
	if err != nil {
		return gradual.Invalid(), err
	}
	x.SetType(argType)
	return argType, nil
}

// mergeComputed reconciles a rule's computed output type with the node's
// current type slot: the two must be consistent, and the more precise one
// wins, with ties (and incomparable pairs) keeping the slot as it is.
//
// The slot holds either the tracer's annotation of the node's *result* or,
// on a re-check, the previous pass's output; validating the computed type
// against it keeps checking idempotent for shape-changing operators.
func mergeComputed(n *graph.Node, computed gradual.Type, m modules.Module) (gradual.Type, error) {
	if !gradual.IsConsistent(computed, n.Type()) {
		return gradual.Invalid(), errors.Wrapf(ErrConsistency,
			"cannot apply %s: computed type %s is inconsistent with declared type %s", m, computed, n.Type())
	}
	if gradual.IsMorePrecise(computed, n.Type()) {
		n.SetType(computed)
	}
	return n.Type(), nil
}

// conv2dRule infers the output type of a 2D convolution:
// [batch, in_channels, h, w] -> [batch, out_channels, hOut, wOut], with the
// spatial output sizes given by the sliding-window formula.
//
// Backward propagation of the inferred input shape into the argument is
// not performed.
func conv2dRule(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error) {
	conv, ok := m.(*modules.Conv2D)
	if !ok {
		return gradual.Invalid(), errors.Wrapf(ErrInvalidArgument, "conv2d rule applied to module %s", m)
	}
	argType, err := matchArgRank4(n)
	if err != nil {
		return gradual.Invalid(), err
	}
	if !gradual.DimsConsistent(argType.Dim(1), gradual.Dim(conv.InChannels)) {
		return gradual.Invalid(), errors.Wrapf(ErrChannelMismatch,
			"cannot apply %s: argument has %s channels", conv, argType.Dim(1))
	}

	hOut := gradual.SlidingWindowDim(argType.Dim(2),
		conv.Padding.H(), conv.KernelSize.H(), conv.Stride.H(), conv.Dilation.H())
	wOut := gradual.SlidingWindowDim(argType.Dim(3),
		conv.Padding.W(), conv.KernelSize.W(), conv.Stride.W(), conv.Dilation.W())

	out := gradual.Make(argType.Dim(0), gradual.Dim(conv.OutChannels), hOut, wOut)
	return mergeComputed(n, out, conv)
}
