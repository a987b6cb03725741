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

// Package graph models the dataflow graph the type checker consumes: an
// ordered arena of nodes, each a placeholder, a function call, a module call
// or the final output.
//
// The arena order is the graph's topological order -- every argument of a
// node refers to a node added earlier. The builder methods enforce this by
// construction, so the checker can walk nodes linearly without cycle
// detection.
//
// Nodes carry a mutable gradual type slot (see Node.Type and Node.SetType):
// the checker overwrites it in place, possibly several times during one
// pass; everything else about a node is immutable after construction.
//
// Graph construction errors (nil inputs, nodes from another graph) are
// programming errors and panic via exceptions.Panicf. They are expected to
// be caught by the tracer front end, not handled.
package graph

import (
	"fmt"
	"strings"

	. "github.com/gomlx/exceptions"
	"github.com/gomlx/gradtype/types/gradual"
)

// NodeID is the unique identifier of a node within its graph, also its
// index in the arena order.
type NodeID int

// InvalidNodeID is the NodeID of no node.
const InvalidNodeID = NodeID(-1)

// Graph is an ordered arena of nodes. Create one with New and grow it with
// the builder methods (Placeholder, Add, CallModule, Output, ...).
type Graph struct {
	name  string
	nodes []*Node
}

// New creates an empty Graph with the given name (used only for messages).
func New(name string) *Graph {
	return &Graph{name: name}
}

// Name of the graph.
func (g *Graph) Name() string { return g.name }

// NumNodes returns how many nodes the graph holds.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NodeByID returns the node with the given id. It panics for ids not in the
// graph.
func (g *Graph) NodeByID(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		Panicf("graph %q has no node with id %d", g.name, id)
	}
	return g.nodes[id]
}

// Nodes returns the graph's nodes in arena (topological) order. The slice
// is shared, don't modify it.
func (g *Graph) Nodes() []*Node { return g.nodes }

// String pretty-prints the graph, one node per line with its current type.
func (g *Graph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Graph %q: %d nodes\n", g.name, len(g.nodes))
	for _, n := range g.nodes {
		fmt.Fprintf(&b, "\t%s\n", n)
	}
	return b.String()
}

func (g *Graph) registerNode(n *Node) *Node {
	n.id = NodeID(len(g.nodes))
	n.graph = g
	g.nodes = append(g.nodes, n)
	return n
}

// checkInputs panics if any of the given nodes is nil or belongs to a
// different graph.
func (g *Graph) checkInputs(op string, inputs ...*Node) {
	for i, n := range inputs {
		if n == nil {
			Panicf("%s: input node #%d is nil", op, i)
		}
		if n.graph != g {
			Panicf("%s: input node #%d (%q) belongs to a different graph", op, i, n.name)
		}
	}
}

// Placeholder adds a graph input with the given name and declared type.
// Pass gradual.Invalid() for an unannotated input; the checker defaults it
// to Dyn.
func (g *Graph) Placeholder(name string, typ gradual.Type) *Node {
	return g.registerNode(&Node{name: name, kind: NodeKindPlaceholder, typ: typ})
}

// CallFunction adds a call to the given function identity with explicit
// arguments. Prefer the typed helpers (Add, Transpose, Reshape) for the
// supported functions.
func (g *Graph) CallFunction(name string, fn Op, args ...Arg) *Node {
	for i, a := range args {
		if a.IsNode() {
			g.checkInputs(fmt.Sprintf("CallFunction(%s) arg #%d", fn, i), g.nodeFromArg(a))
		}
	}
	return g.registerNode(&Node{name: name, kind: NodeKindCallFunction, fn: fn, args: args})
}

func (g *Graph) nodeFromArg(a Arg) *Node {
	if a.node < 0 || int(a.node) >= len(g.nodes) {
		return nil
	}
	return g.nodes[a.node]
}

// Add adds an elementwise addition of x and y.
func (g *Graph) Add(name string, x, y *Node) *Node {
	g.checkInputs("Add", x, y)
	return g.registerNode(&Node{
		name: name, kind: NodeKindCallFunction, fn: OpAdd,
		args: []Arg{NodeArg(x.id), NodeArg(y.id)},
	})
}

// Transpose adds a transposition of x swapping axes dim1 and dim2.
func (g *Graph) Transpose(name string, x *Node, dim1, dim2 int) *Node {
	g.checkInputs("Transpose", x)
	return g.registerNode(&Node{
		name: name, kind: NodeKindCallFunction, fn: OpTranspose,
		args: []Arg{NodeArg(x.id), IntArg(dim1), IntArg(dim2)},
	})
}

// Reshape adds a reshape of x to the target shape. A -1 entry means an
// unknown dimension, following the usual reshape convention.
func (g *Graph) Reshape(name string, x *Node, target ...int) *Node {
	g.checkInputs("Reshape", x)
	return g.registerNode(&Node{
		name: name, kind: NodeKindCallFunction, fn: OpReshape,
		args: []Arg{NodeArg(x.id), IntListArg(target...)},
	})
}

// CallModule adds a call to the named module (looked up by the checker
// through its modules.Lookup collaborator) on input x.
func (g *Graph) CallModule(name, module string, x *Node) *Node {
	g.checkInputs("CallModule", x)
	return g.registerNode(&Node{
		name: name, kind: NodeKindCallModule, module: module,
		args: []Arg{NodeArg(x.id)},
	})
}

// GetAttr adds a node fetching the named attribute (a parameter or buffer)
// of the module bound to target. The checker does not model get_attr nodes
// yet and fails on them.
func (g *Graph) GetAttr(name, target string) *Node {
	return g.registerNode(&Node{name: name, kind: NodeKindGetAttr, module: target})
}

// Output adds the graph output node referring to x. A graph has exactly one
// output node, added last; this is not enforced here, the tracer
// guarantees it.
func (g *Graph) Output(x *Node) *Node {
	g.checkInputs("Output", x)
	return g.registerNode(&Node{
		name: "output", kind: NodeKindOutput,
		args: []Arg{NodeArg(x.id)},
	})
}
