package graph

import (
	"fmt"
	"strings"

	"github.com/gomlx/gradtype/types/gradual"
)

// NodeKind is the structural role of a node in the graph.
type NodeKind int

const (
	// NodeKindInvalid is the zero value, never stored by the builder.
	NodeKindInvalid NodeKind = iota

	// NodeKindPlaceholder is a graph input.
	NodeKindPlaceholder

	// NodeKindCallFunction applies a function identity (OpAdd, OpTranspose,
	// OpReshape) to its arguments.
	NodeKindCallFunction

	// NodeKindCallModule applies a named module, resolved to an operator
	// config through the external module lookup.
	NodeKindCallModule

	// NodeKindOutput is the graph output, mirroring its argument's type.
	NodeKindOutput

	// NodeKindGetAttr fetches a module attribute (a parameter or buffer).
	// Tracers produce it, but the checker does not model it yet.
	NodeKindGetAttr
)

// String implements fmt.Stringer.
func (k NodeKind) String() string {
	switch k {
	case NodeKindPlaceholder:
		return "placeholder"
	case NodeKindCallFunction:
		return "call_function"
	case NodeKindCallModule:
		return "call_module"
	case NodeKindOutput:
		return "output"
	case NodeKindGetAttr:
		return "get_attr"
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Op identifies a supported operator: either a function identity for
// call_function nodes or a module class identity for call_module nodes.
// The set is closed; the checker's rule registry is keyed by it.
type Op int

const (
	OpInvalid Op = iota

	// Function identities.
	OpAdd
	OpTranspose
	OpReshape

	// Module class identities.
	OpConv2D
	OpMaxPool2D
	OpAdaptiveAvgPool2D
	OpBatchNorm2D
	OpReLU
	OpLinear
)

// String implements fmt.Stringer.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpTranspose:
		return "transpose"
	case OpReshape:
		return "reshape"
	case OpConv2D:
		return "conv2d"
	case OpMaxPool2D:
		return "maxpool2d"
	case OpAdaptiveAvgPool2D:
		return "adaptiveavgpool2d"
	case OpBatchNorm2D:
		return "batchnorm2d"
	case OpReLU:
		return "relu"
	case OpLinear:
		return "linear"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

type argKind int8

const (
	argInvalid argKind = iota
	argNode
	argInt
	argIntList
)

// Arg is one operand of a node: a reference to an earlier node, an integer
// literal (transpose axes) or an integer-list literal (reshape target).
type Arg struct {
	kind argKind
	node NodeID
	i    int
	list []int
}

// NodeArg returns an Arg referring to the node with the given id.
func NodeArg(id NodeID) Arg { return Arg{kind: argNode, node: id} }

// IntArg returns an integer literal Arg.
func IntArg(v int) Arg { return Arg{kind: argInt, i: v} }

// IntListArg returns an integer-list literal Arg.
func IntListArg(vs ...int) Arg { return Arg{kind: argIntList, list: vs} }

// IsNode reports whether the Arg refers to a node.
func (a Arg) IsNode() bool { return a.kind == argNode }

// NodeID returns the referred node id and whether the Arg is a node
// reference.
func (a Arg) NodeID() (NodeID, bool) { return a.node, a.kind == argNode }

// Int returns the integer literal and whether the Arg is one.
func (a Arg) Int() (int, bool) { return a.i, a.kind == argInt }

// IntList returns the integer-list literal and whether the Arg is one.
func (a Arg) IntList() ([]int, bool) { return a.list, a.kind == argIntList }

// String implements fmt.Stringer.
func (a Arg) String() string {
	switch a.kind {
	case argNode:
		return fmt.Sprintf("%%%d", int(a.node))
	case argInt:
		return fmt.Sprintf("%d", a.i)
	case argIntList:
		return fmt.Sprintf("%v", a.list)
	}
	return "<invalid arg>"
}

// Node is one element of the graph. Everything but the type slot is
// immutable after construction.
type Node struct {
	graph *Graph
	id    NodeID
	name  string
	kind  NodeKind

	fn     Op     // set for NodeKindCallFunction
	module string // set for NodeKindCallModule

	args []Arg

	// typ is the update-in-place gradual type slot. It starts as
	// gradual.Invalid() unless the tracer annotated the node, and holds the
	// authoritative type once a full check pass succeeds.
	typ gradual.Type
}

// ID of the node within its graph.
func (n *Node) ID() NodeID { return n.id }

// Name of the node, for messages.
func (n *Node) Name() string { return n.name }

// Kind of the node.
func (n *Node) Kind() NodeKind { return n.kind }

// Fn returns the function identity of a call_function node, OpInvalid
// otherwise.
func (n *Node) Fn() Op { return n.fn }

// Module returns the module name of a call_module node, "" otherwise.
func (n *Node) Module() string { return n.module }

// NumArgs returns the number of operands.
func (n *Node) NumArgs() int { return len(n.args) }

// Arg returns the i-th operand.
func (n *Node) Arg(i int) Arg { return n.args[i] }

// ArgNode resolves the i-th operand to its node, or nil if the operand is
// not a node reference.
func (n *Node) ArgNode(i int) *Node {
	id, ok := n.args[i].NodeID()
	if !ok {
		return nil
	}
	return n.graph.NodeByID(id)
}

// Type returns the node's current gradual type. It is gradual.Invalid()
// before checking if the tracer provided no annotation.
func (n *Node) Type() gradual.Type { return n.typ }

// SetType overwrites the node's type slot. The checker calls it, possibly
// several times within a pass; the last write of a successful pass wins.
func (n *Node) SetType(t gradual.Type) { n.typ = t }

// String implements fmt.Stringer.
func (n *Node) String() string {
	var target string
	switch n.kind {
	case NodeKindCallFunction:
		target = fmt.Sprintf(" fn=%s", n.fn)
	case NodeKindCallModule:
		target = fmt.Sprintf(" module=%q", n.module)
	case NodeKindGetAttr:
		target = fmt.Sprintf(" attr=%q", n.module)
	}
	args := make([]string, 0, len(n.args))
	for _, a := range n.args {
		args = append(args, a.String())
	}
	return fmt.Sprintf("%%%d %s [%s]%s(%s) -> %s",
		int(n.id), n.name, n.kind, target, strings.Join(args, ", "), n.typ)
}
