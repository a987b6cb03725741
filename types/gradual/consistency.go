package gradual

// DimsConsistent reports whether two dimensions are consistent: an unknown
// dimension is consistent with anything, two known dimensions are consistent
// iff equal.
func DimsConsistent(d1, d2 Dim) bool {
	return d1.IsDyn() || d2.IsDyn() || d1 == d2
}

// DimMorePrecise reports whether d1 is at least as precise as d2: an
// unknown dimension is the least precise, two known dimensions are equally
// precise only when equal.
func DimMorePrecise(d1, d2 Dim) bool {
	return d2.IsDyn() || d1 == d2
}

// IsConsistent reports whether two types do not contradict each other.
//
// The relation is reflexive and symmetric but not transitive: Dyn is
// consistent with every type, tensor types are consistent iff they have the
// same rank and every pair of aligned dimensions is consistent, and the
// scalar integer type is consistent only with itself. Invalid types are
// consistent with nothing.
func IsConsistent(t1, t2 Type) bool {
	if !t1.Ok() || !t2.Ok() {
		return false
	}
	if t1.IsDyn() || t2.IsDyn() {
		return true
	}
	if t1.kind != t2.kind {
		return false
	}
	if t1.kind == KindInt {
		return true
	}
	if t1.Rank() != t2.Rank() {
		return false
	}
	for i, d := range t1.dims {
		if !DimsConsistent(d, t2.dims[i]) {
			return false
		}
	}
	return true
}

// IsMorePrecise reports whether t1 is at least as precise as t2, i.e.
// carries at least as much shape information. It is a partial order with
// Dyn as the global minimum. Tensor types of different rank are
// incomparable and the function returns false for both argument orders, so
// rules can call it unconditionally after establishing consistency.
func IsMorePrecise(t1, t2 Type) bool {
	if !t1.Ok() || !t2.Ok() {
		return false
	}
	if t2.IsDyn() {
		return true
	}
	if t1.IsDyn() {
		return false
	}
	if t1.kind != t2.kind {
		return false
	}
	if t1.kind == KindInt {
		return true
	}
	if t1.Rank() != t2.Rank() {
		return false
	}
	for i, d := range t1.dims {
		if !DimMorePrecise(d, t2.dims[i]) {
			return false
		}
	}
	return true
}
