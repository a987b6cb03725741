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

// Package checker implements the gradual type checker for tensor-shape
// types flowing through a dataflow graph.
//
// A GraphChecker walks the graph once, in its stored (topological) order,
// and dispatches every node to the inference rule registered for its
// operator identity. Each rule validates its shape preconditions against
// the argument types and the node's own declared type, computes the most
// informative output type, and installs it into the node's type slot.
//
// The policy is fail-fast: the first rule failure aborts the whole pass and
// no partial result is considered valid. All failures are ordinary errors
// wrapping the sentinels in errors.go (or the gradual package's shape
// algebra sentinels); the checker never panics on user graphs.
package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GraphChecker type-checks graphs against a rule registry and a module
// lookup. It is cheap to create and holds no per-graph state; the graphs'
// node type slots are the only thing it mutates.
type GraphChecker struct {
	registry *Registry
	modules  modules.Lookup
}

// New creates a GraphChecker with the default rule registry. lookup
// resolves the module names of call_module nodes; pass an empty
// modules.Map for graphs without module calls.
func New(lookup modules.Lookup) *GraphChecker {
	return NewWithRegistry(lookup, DefaultRegistry())
}

// NewWithRegistry creates a GraphChecker with a custom rule registry.
// Checkers with different registries are independent and can coexist.
func NewWithRegistry(lookup modules.Lookup, registry *Registry) *GraphChecker {
	return &GraphChecker{registry: registry, modules: lookup}
}

// Check type-checks every node of the graph, in stored order, exactly
// once. On success every node's type slot holds its final gradual type.
// The first failing node aborts the pass, and the returned error carries
// the node identity along with the rule's diagnostic.
//
// Running Check again on an already-checked, unchanged graph is a no-op:
// the second pass recomputes the same types.
func (c *GraphChecker) Check(g *graph.Graph) error {
	for _, n := range g.Nodes() {
		if _, err := c.CheckNode(g, n); err != nil {
			return errors.WithMessagef(err, "type-checking node %%%d (%s) of graph %q", int(n.ID()), n.Name(), g.Name())
		}
		if klog.V(2).Enabled() {
			klog.Infof("gradtype: %s", n)
		}
	}
	return nil
}

// CheckNode type-checks a single node, dispatching on its kind, and
// returns the type installed into it.
func (c *GraphChecker) CheckNode(g *graph.Graph, n *graph.Node) (gradual.Type, error) {
	// An unset type slot reads as Dyn from here on.
	if !n.Type().Ok() {
		n.SetType(gradual.Dyn())
	}

	switch n.Kind() {
	case graph.NodeKindPlaceholder:
		return n.Type(), nil

	case graph.NodeKindCallFunction:
		rule, err := c.registry.Rule(n.Fn())
		if err != nil {
			return gradual.Invalid(), err
		}
		return rule(g, n, nil)

	case graph.NodeKindCallModule:
		mod, err := c.modules.Module(n.Module())
		if err != nil {
			return gradual.Invalid(), err
		}
		rule, err := c.registry.Rule(mod.Op())
		if err != nil {
			return gradual.Invalid(), err
		}
		return rule(g, n, mod)

	case graph.NodeKindOutput:
		arg, err := argNode(n, 0)
		if err != nil {
			return gradual.Invalid(), err
		}
		n.SetType(arg.Type())
		return n.Type(), nil
	}

	return gradual.Invalid(), errors.Wrapf(ErrUnsupportedOp, "node kind %s is not modeled", n.Kind())
}

// argNode resolves the i-th operand of a node to a node reference, failing
// with ErrInvalidArgument when the operand is missing or a literal.
func argNode(n *graph.Node, i int) (*graph.Node, error) {
	if i >= n.NumArgs() {
		return nil, errors.Wrapf(ErrInvalidArgument, "operand #%d of %s is missing", i, n.Name())
	}
	arg := n.ArgNode(i)
	if arg == nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "operand #%d of %s must be a node, got %s", i, n.Name(), n.Arg(i))
	}
	return arg, nil
}
