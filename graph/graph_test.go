package graph

import (
	"strings"
	"testing"

	"github.com/gomlx/gradtype/types/gradual"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	g := New("test")
	x := g.Placeholder("x", gradual.Make(gradual.DynDim, 3, 32, 32))
	y := g.Placeholder("y", gradual.Invalid())
	sum := g.Add("sum", x, y)
	conv := g.CallModule("conv", "conv1", sum)
	tr := g.Transpose("tr", conv, 0, 1)
	rs := g.Reshape("rs", tr, -1, 4)
	out := g.Output(rs)

	require.Equal(t, 7, g.NumNodes())
	require.Equal(t, NodeID(0), x.ID())
	require.Equal(t, NodeID(6), out.ID())
	require.Same(t, x, g.NodeByID(0))

	require.Equal(t, NodeKindPlaceholder, x.Kind())
	require.False(t, y.Type().Ok())
	require.True(t, x.Type().Equal(gradual.Make(gradual.DynDim, 3, 32, 32)))

	require.Equal(t, NodeKindCallFunction, sum.Kind())
	require.Equal(t, OpAdd, sum.Fn())
	require.Same(t, x, sum.ArgNode(0))
	require.Same(t, y, sum.ArgNode(1))

	require.Equal(t, NodeKindCallModule, conv.Kind())
	require.Equal(t, "conv1", conv.Module())

	dim1, ok := tr.Arg(1).Int()
	require.True(t, ok)
	require.Equal(t, 0, dim1)
	require.Nil(t, tr.ArgNode(1))

	target, ok := rs.Arg(1).IntList()
	require.True(t, ok)
	require.Equal(t, []int{-1, 4}, target)

	require.Equal(t, NodeKindOutput, out.Kind())
	require.Same(t, rs, out.ArgNode(0))
}

func TestBuilderPanics(t *testing.T) {
	g := New("test")
	x := g.Placeholder("x", gradual.Dyn())
	other := New("other")

	require.Panics(t, func() { g.Add("bad", x, nil) })
	require.Panics(t, func() { g.Add("bad", x, other.Placeholder("y", gradual.Dyn())) })
	require.Panics(t, func() { g.NodeByID(99) })
}

func TestSetType(t *testing.T) {
	g := New("test")
	x := g.Placeholder("x", gradual.Invalid())
	x.SetType(gradual.Make(2, 3))
	require.True(t, x.Type().Equal(gradual.Make(2, 3)))
	x.SetType(gradual.Make(2, 4))
	require.True(t, x.Type().Equal(gradual.Make(2, 4)))
}

func TestString(t *testing.T) {
	g := New("mini")
	x := g.Placeholder("x", gradual.Make(1, 2))
	g.GetAttr("w", "weight")
	g.Output(x)

	s := g.String()
	require.Contains(t, s, `Graph "mini": 3 nodes`)
	require.Contains(t, s, "placeholder")
	require.Contains(t, s, `attr="weight"`)
	require.Contains(t, s, "TensorType[1, 2]")
	require.Equal(t, 4, strings.Count(s, "\n"), "header plus one line per node: %s", s)
}
