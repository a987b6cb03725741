package gradual

// SlidingWindowDim computes the output size of a sliding-window operator
// (convolution, pooling) along one spatial axis:
//
//	floor((in + 2*padding - dilation*(kernel-1) - 1) / stride) + 1
//
// An unknown input dimension yields an unknown output dimension. The
// division is a true floor: a negative numerator (window larger than the
// padded input) rounds towards negative infinity, matching the
// floating-point floor of the reference formula.
func SlidingWindowDim(in Dim, padding, kernel, stride, dilation int) Dim {
	if in.IsDyn() {
		return DynDim
	}
	numerator := int(in) + 2*padding - dilation*(kernel-1) - 1
	return Dim(floorDiv(numerator, stride) + 1)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
