package checker

import (
	"github.com/gomlx/gradtype/graph"
	"github.com/gomlx/gradtype/modules"
	"github.com/gomlx/gradtype/types/gradual"
	"github.com/pkg/errors"
)

// Rule is one operator's shape-transfer function. It reads the argument
// nodes' current types, validates the operator's preconditions, stores the
// computed type into n (and sometimes refines an argument's type, e.g.
// after broadcasting) and returns it.
//
// For module-class operators, m is the resolved operator instance; for
// function operators it is nil.
type Rule func(g *graph.Graph, n *graph.Node, m modules.Module) (gradual.Type, error)

// Registry maps operator identities to their inference rules. It is an
// explicit object so checkers with different rule sets can coexist; there
// is no process-wide registry.
//
// Registration is one-shot: a second rule for the same identity fails with
// ErrDuplicateRule.
type Registry struct {
	rules map[graph.Op]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[graph.Op]Rule)}
}

// Register binds a rule to an operator identity. Registering the same
// identity twice fails with ErrDuplicateRule.
func (r *Registry) Register(op graph.Op, rule Rule) error {
	if _, found := r.rules[op]; found {
		return errors.Wrapf(ErrDuplicateRule, "operator %s", op)
	}
	r.rules[op] = rule
	return nil
}

// Rule looks up the rule for an operator identity, failing with
// ErrNoRuleRegistered if absent.
func (r *Registry) Rule(op graph.Op) (Rule, error) {
	rule, found := r.rules[op]
	if !found {
		return nil, errors.Wrapf(ErrNoRuleRegistered, "operator %s", op)
	}
	return rule, nil
}

// DefaultRegistry returns a new Registry with all built-in inference rules
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for op, rule := range map[graph.Op]Rule{
		graph.OpAdd:               addRule,
		graph.OpTranspose:         transposeRule,
		graph.OpReshape:           reshapeRule,
		graph.OpConv2D:            conv2dRule,
		graph.OpMaxPool2D:         maxPool2dRule,
		graph.OpAdaptiveAvgPool2D: adaptiveAvgPool2dRule,
		graph.OpBatchNorm2D:       batchNorm2dRule,
		graph.OpReLU:              reluRule,
		graph.OpLinear:            linearRule,
	} {
		// Cannot fail: the map keys are unique.
		_ = r.Register(op, rule)
	}
	return r
}
