package gradual

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestType(t *testing.T) {
	invalid := Invalid()
	require.False(t, invalid.Ok())
	require.Equal(t, KindInvalid, invalid.Kind())

	dyn := Dyn()
	require.True(t, dyn.Ok())
	require.True(t, dyn.IsDyn())
	require.False(t, dyn.IsTensor())
	require.Equal(t, 0, dyn.Rank())
	require.Equal(t, "Dyn", dyn.String())

	scalar := Int()
	require.True(t, scalar.Ok())
	require.True(t, scalar.IsInt())
	require.Equal(t, "int", scalar.String())

	tensor := Make(2, 3, DynDim)
	require.True(t, tensor.Ok())
	require.True(t, tensor.IsTensor())
	require.Equal(t, 3, tensor.Rank())
	require.Equal(t, Dim(2), tensor.Dim(0))
	require.Equal(t, DynDim, tensor.Dim(2))
	require.Equal(t, DynDim, tensor.Dim(-1))
	require.Equal(t, Dim(2), tensor.Dim(-3))
	require.True(t, tensor.HasDynDim())
	require.Equal(t, 6, tensor.KnownSize())
	require.Equal(t, "TensorType[2, 3, Dyn]", tensor.String())

	require.Panics(t, func() { _ = tensor.Dim(3) })
	require.Panics(t, func() { _ = tensor.Dim(-4) })
	require.Panics(t, func() { _ = dyn.Dim(0) })
	require.Panics(t, func() { Make(2, -7) })
}

func TestEqualAndClone(t *testing.T) {
	a := Make(2, DynDim, 4)
	require.True(t, a.Equal(Make(2, DynDim, 4)))
	require.False(t, a.Equal(Make(2, 3, 4)))
	require.False(t, a.Equal(Make(2, DynDim)))
	require.False(t, a.Equal(Dyn()))
	require.True(t, Dyn().Equal(Dyn()))
	require.False(t, Dyn().Equal(Int()))

	clone := a.Clone()
	require.True(t, a.Equal(clone))
	// Mutating the clone's dims must not leak back.
	dims := clone.Dims()
	dims[0] = 7
	require.Equal(t, Dim(2), clone.Dim(0))
}

func TestConsistency(t *testing.T) {
	// Dyn is consistent with everything.
	require.True(t, IsConsistent(Dyn(), Dyn()))
	require.True(t, IsConsistent(Dyn(), Make(1, 2)))
	require.True(t, IsConsistent(Make(1, 2), Dyn()))
	require.True(t, IsConsistent(Dyn(), Int()))

	// Reflexive and symmetric, but not transitive.
	middle := Make(DynDim, 2)
	left, right := Make(1, 2), Make(3, 2)
	require.True(t, IsConsistent(middle, middle))
	require.True(t, IsConsistent(middle, left))
	require.True(t, IsConsistent(left, middle))
	require.True(t, IsConsistent(middle, right))
	require.False(t, IsConsistent(left, right))

	// Rank must match for tensors.
	require.False(t, IsConsistent(Make(1, 2), Make(1, 2, 3)))

	// Scalar int only with itself (and Dyn).
	require.True(t, IsConsistent(Int(), Int()))
	require.False(t, IsConsistent(Int(), Make(1)))

	// Invalid types are consistent with nothing.
	require.False(t, IsConsistent(Invalid(), Dyn()))
	require.False(t, IsConsistent(Make(1), Invalid()))
}

func TestPrecision(t *testing.T) {
	// Dyn is the global minimum.
	require.True(t, IsMorePrecise(Make(1, 2), Dyn()))
	require.False(t, IsMorePrecise(Dyn(), Make(1, 2)))
	require.True(t, IsMorePrecise(Dyn(), Dyn()))
	require.True(t, IsMorePrecise(Int(), Dyn()))

	// Per-dimension ordering.
	require.True(t, IsMorePrecise(Make(1, 2), Make(DynDim, 2)))
	require.False(t, IsMorePrecise(Make(DynDim, 2), Make(1, 2)))
	require.True(t, IsMorePrecise(Make(1, 2), Make(1, 2)))

	// Incomparable: different ranks, or disagreeing known dims.
	require.False(t, IsMorePrecise(Make(1, 2), Make(1, 2, 3)))
	require.False(t, IsMorePrecise(Make(1, 2, 3), Make(1, 2)))
	require.False(t, IsMorePrecise(Make(1, 2), Make(3, 2)))

	// Mixed Dyn dims on both sides are incomparable too.
	require.False(t, IsMorePrecise(Make(DynDim, 2), Make(1, DynDim)))
	require.False(t, IsMorePrecise(Make(1, DynDim), Make(DynDim, 2)))
}

func TestDimRelations(t *testing.T) {
	require.True(t, DimsConsistent(DynDim, 5))
	require.True(t, DimsConsistent(5, DynDim))
	require.True(t, DimsConsistent(5, 5))
	require.False(t, DimsConsistent(5, 6))

	require.True(t, DimMorePrecise(5, DynDim))
	require.False(t, DimMorePrecise(DynDim, 5))
	require.True(t, DimMorePrecise(DynDim, DynDim))
	require.False(t, DimMorePrecise(5, 6))
}
