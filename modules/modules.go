/*
 *	Copyright 2026 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package modules defines the operator instances referenced by call_module
// nodes: one strongly-typed hyperparameter struct per supported operator
// kind, plus the Lookup collaborator the checker uses to resolve a module
// name to its instance.
//
// The structs replace the duck-typed attribute access of the original
// design: every hyperparameter is a named field, and scalar-or-pair
// hyperparameters (kernel size, stride, padding, dilation) are a Pair with
// the scalar broadcast over both spatial axes at construction time.
package modules

import (
	"fmt"

	"github.com/gomlx/gradtype/graph"
	"github.com/pkg/errors"
)

// ErrUnknownModule is returned by Lookup implementations when no module is
// bound to the requested name.
var ErrUnknownModule = errors.New("unknown module")

// Module is an operator instance: a bag of hyperparameters tagged with its
// operator identity, which the checker uses to select the inference rule.
type Module interface {
	// Op returns the operator class identity of the module.
	Op() graph.Op

	// String pretty-prints the module with its hyperparameters.
	String() string
}

// Lookup resolves the module name of a call_module node to the operator
// instance bound to it. It is provided by the caller; Map is a ready-made
// implementation.
type Lookup interface {
	Module(name string) (Module, error)
}

// Map is a Lookup over a plain name->module map.
type Map map[string]Module

// Module implements Lookup.
func (m Map) Module(name string) (Module, error) {
	mod, found := m[name]
	if !found {
		return nil, errors.Wrapf(ErrUnknownModule, "no module bound to name %q", name)
	}
	return mod, nil
}

// Conv2D holds the hyperparameters of a 2D convolution module.
type Conv2D struct {
	InChannels, OutChannels int

	KernelSize, Stride, Padding, Dilation Pair
}

// NewConv2D creates a Conv2D with the conventional defaults: stride 1,
// padding 0, dilation 1. Adjust the fields afterwards for anything else.
func NewConv2D(inChannels, outChannels int, kernelSize Pair) *Conv2D {
	return &Conv2D{
		InChannels:  inChannels,
		OutChannels: outChannels,
		KernelSize:  kernelSize,
		Stride:      Square(1),
		Padding:     Square(0),
		Dilation:    Square(1),
	}
}

// Op implements Module.
func (c *Conv2D) Op() graph.Op { return graph.OpConv2D }

// String implements fmt.Stringer.
func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in=%d, out=%d, kernel=%s, stride=%s, padding=%s, dilation=%s)",
		c.InChannels, c.OutChannels, c.KernelSize, c.Stride, c.Padding, c.Dilation)
}

// MaxPool2D holds the hyperparameters of a 2D max-pooling module.
type MaxPool2D struct {
	KernelSize, Stride, Padding, Dilation Pair
}

// NewMaxPool2D creates a MaxPool2D with the conventional defaults: stride
// equal to the kernel size, padding 0, dilation 1.
func NewMaxPool2D(kernelSize Pair) *MaxPool2D {
	return &MaxPool2D{
		KernelSize: kernelSize,
		Stride:     kernelSize,
		Padding:    Square(0),
		Dilation:   Square(1),
	}
}

// Op implements Module.
func (m *MaxPool2D) Op() graph.Op { return graph.OpMaxPool2D }

// String implements fmt.Stringer.
func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel=%s, stride=%s, padding=%s, dilation=%s)",
		m.KernelSize, m.Stride, m.Padding, m.Dilation)
}

// AdaptiveAvgPool2D holds the hyperparameters of a 2D adaptive
// average-pooling module.
//
// A negative half of OutputSize means "unspecified" and mirrors the other
// half when the rule applies the module. (The original implementation
// dropped this defaulting on the floor; here it is real.)
type AdaptiveAvgPool2D struct {
	OutputSize Pair
}

// NewAdaptiveAvgPool2D creates an AdaptiveAvgPool2D with the given output
// size.
func NewAdaptiveAvgPool2D(outputSize Pair) *AdaptiveAvgPool2D {
	return &AdaptiveAvgPool2D{OutputSize: outputSize}
}

// Op implements Module.
func (a *AdaptiveAvgPool2D) Op() graph.Op { return graph.OpAdaptiveAvgPool2D }

// String implements fmt.Stringer.
func (a *AdaptiveAvgPool2D) String() string {
	return fmt.Sprintf("AdaptiveAvgPool2D(output_size=%s)", a.OutputSize)
}

// BatchNorm2D holds the hyperparameters of a 2D batch-normalization module.
type BatchNorm2D struct {
	NumFeatures int
}

// NewBatchNorm2D creates a BatchNorm2D over the given number of channels.
func NewBatchNorm2D(numFeatures int) *BatchNorm2D {
	return &BatchNorm2D{NumFeatures: numFeatures}
}

// Op implements Module.
func (b *BatchNorm2D) Op() graph.Op { return graph.OpBatchNorm2D }

// String implements fmt.Stringer.
func (b *BatchNorm2D) String() string {
	return fmt.Sprintf("BatchNorm2D(num_features=%d)", b.NumFeatures)
}

// ReLU is the rectified linear unit module. It has no hyperparameters; it
// exists so traced call_module nodes can resolve to it.
type ReLU struct{}

// NewReLU creates a ReLU module.
func NewReLU() *ReLU { return &ReLU{} }

// Op implements Module.
func (r *ReLU) Op() graph.Op { return graph.OpReLU }

// String implements fmt.Stringer.
func (r *ReLU) String() string { return "ReLU()" }

// Linear holds the hyperparameters of an affine (fully-connected) module.
type Linear struct {
	InFeatures, OutFeatures int
}

// NewLinear creates a Linear module mapping inFeatures to outFeatures.
func NewLinear(inFeatures, outFeatures int) *Linear {
	return &Linear{InFeatures: inFeatures, OutFeatures: outFeatures}
}

// Op implements Module.
func (l *Linear) Op() graph.Op { return graph.OpLinear }

// String implements fmt.Stringer.
func (l *Linear) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d)", l.InFeatures, l.OutFeatures)
}
