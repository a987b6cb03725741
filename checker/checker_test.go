package checker

import (
	"testing"

	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(graph.OpAdd, addRule))
	err := r.Register(graph.OpAdd, addRule)
	require.ErrorIs(t, err, ErrDuplicateRule)

	rule, err := r.Rule(graph.OpAdd)
	require.NoError(t, err)
	require.NotNil(t, rule)

	_, err = r.Rule(graph.OpTranspose)
	require.ErrorIs(t, err, ErrNoRuleRegistered)
}

func TestEmptyRegistry(t *testing.T) {
	g := graph.New("test")
	x := g.Placeholder("x", gradual.Dyn())
	g.Add("sum", x, x)

	c := NewWithRegistry(modules.Map{}, NewRegistry())
	err := c.Check(g)
	require.ErrorIs(t, err, ErrNoRuleRegistered)
}

func TestPlaceholderDefaultsToDyn(t *testing.T) {
	g := graph.New("test")
	x := g.Placeholder("x", gradual.Invalid())
	annotated := g.Placeholder("y", gradual.Make(1, 2))

	require.NoError(t, New(modules.Map{}).Check(g))
	require.True(t, x.Type().Equal(gradual.Dyn()))
	require.True(t, annotated.Type().Equal(gradual.Make(1, 2)))
}

func TestOutputCopiesArgument(t *testing.T) {
	g := graph.New("test")
	x := g.Placeholder("x", gradual.Make(4, 5))
	out := g.Output(x)

	require.NoError(t, New(modules.Map{}).Check(g))
	require.True(t, out.Type().Equal(gradual.Make(4, 5)))
}

func TestUnsupportedNodeKind(t *testing.T) {
	g := graph.New("test")
	g.GetAttr("w", "weight")

	err := New(modules.Map{}).Check(g)
	require.ErrorIs(t, err, ErrUnsupportedOp)
}

func TestUnknownModule(t *testing.T) {
	g := graph.New("test")
	x := g.Placeholder("x", gradual.Dyn())
	g.CallModule("conv", "nope", x)

	err := New(modules.Map{}).Check(g)
	require.ErrorIs(t, err, modules.ErrUnknownModule)
}

// The end-to-end graph from the spec of the problem: a placeholder typed
// [Dyn, 3, 32, 32] into a 3->8 channel convolution with kernel 3, stride 1,
// padding 1 keeps the spatial size and widens the channels.
func TestEndToEndConv(t *testing.T) {
	g := graph.New("convnet")
	x := g.Placeholder("x", gradual.Make(gradual.DynDim, 3, 32, 32))
	conv := g.CallModule("conv", "conv1", x)
	out := g.Output(conv)

	convMod := modules.NewConv2D(3, 8, modules.Square(3))
	convMod.Padding = modules.Square(1)
	lookup := modules.Map{"conv1": convMod}

	require.NoError(t, New(lookup).Check(g))
	require.True(t, conv.Type().Equal(gradual.Make(gradual.DynDim, 8, 32, 32)), "got %s", conv.Type())
	require.True(t, out.Type().Equal(conv.Type()))
}

func TestEndToEndBroadcastFailure(t *testing.T) {
	g := graph.New("bad")
	x := g.Placeholder("x", gradual.Make(2, 3))
	y := g.Placeholder("y", gradual.Make(2, 4))
	g.Add("sum", x, y)

	err := New(modules.Map{}).Check(g)
	require.ErrorIs(t, err, ErrConsistency)
	require.Contains(t, err.Error(), "sum")
}

func TestCheckIsIdempotent(t *testing.T) {
	g := graph.New("net")
	x := g.Placeholder("x", gradual.Make(1, 3, 32, 32))
	y := g.Placeholder("y", gradual.Make(2, 3, 32, 32))
	sum := g.Add("sum", x, y)
	conv := g.CallModule("conv", "conv1", sum)
	relu := g.CallModule("act", "act1", conv)
	g.Output(relu)

	convMod := modules.NewConv2D(3, 8, modules.Square(3))
	convMod.Padding = modules.Square(1)
	lookup := modules.Map{"conv1": convMod, "act1": modules.NewReLU()}
	c := New(lookup)

	require.NoError(t, c.Check(g))
	first := make([]gradual.Type, 0, g.NumNodes())
	for _, n := range g.Nodes() {
		first = append(first, n.Type().Clone())
	}

	require.NoError(t, c.Check(g))
	for i, n := range g.Nodes() {
		require.True(t, n.Type().Equal(first[i]),
			"node %s changed type between passes: %s vs %s", n.Name(), first[i], n.Type())
	}
}

func TestFailFastAbortsPass(t *testing.T) {
	g := graph.New("bad")
	x := g.Placeholder("x", gradual.Make(2, 3))
	y := g.Placeholder("y", gradual.Make(2, 4))
	sum := g.Add("sum", x, y)
	tail := g.Transpose("tail", sum, 0, 1)
	g.Output(tail)

	err := New(modules.Map{}).Check(g)
	require.ErrorIs(t, err, ErrConsistency)
	// Nodes after the failing one were never visited.
	require.False(t, tail.Type().Ok())
}

// Custom rule sets coexist: the same graph checks under one registry and
// fails under another.
func TestCustomRegistries(t *testing.T) {
	g := graph.New("test")
	x := g.Placeholder("x", gradual.Make(2, 3))
	g.Add("sum", x, x)

	strict := NewRegistry()
	require.NoError(t, strict.Register(graph.OpAdd,
		func(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error) {
			return gradual.Invalid(), ErrConsistency
		}))

	require.NoError(t, New(modules.Map{}).Check(g))
	require.ErrorIs(t, NewWithRegistry(modules.Map{}, strict).Check(g), ErrConsistency)
}
