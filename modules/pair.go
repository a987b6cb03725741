package modules

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Pair is a per-spatial-axis (height, width) hyperparameter value.
type Pair [2]int

// Square returns a Pair with the same value on both axes, the broadcast of
// a scalar hyperparameter.
func Square(v int) Pair { return Pair{v, v} }

// H returns the height (first axis) component.
func (p Pair) H() int { return p[0] }

// W returns the width (second axis) component.
func (p Pair) W() int { return p[1] }

// Filled returns the pair with any negative ("unspecified") half replaced
// by the other half. If both halves are unspecified the pair is returned
// as-is.
func (p Pair) Filled() Pair {
	if p[0] < 0 && p[1] >= 0 {
		p[0] = p[1]
	} else if p[1] < 0 && p[0] >= 0 {
		p[1] = p[0]
	}
	return p
}

// String implements fmt.Stringer.
func (p Pair) String() string {
	if p[0] == p[1] {
		return fmt.Sprintf("%d", p[0])
	}
	return fmt.Sprintf("(%d, %d)", p[0], p[1])
}

// UnmarshalYAML implements yaml.Unmarshaler: a Pair decodes from either a
// scalar (broadcast over both axes) or a 2-element sequence.
func (p *Pair) UnmarshalYAML(value *yaml.Node) error {
	var scalar int
	if err := value.Decode(&scalar); err == nil {
		*p = Square(scalar)
		return nil
	}
	var list []int
	if err := value.Decode(&list); err != nil {
		return errors.Wrapf(err, "a pair must be an integer or a 2-element list")
	}
	if len(list) != 2 {
		return errors.Errorf("a pair must have exactly 2 elements, got %v", list)
	}
	*p = Pair{list[0], list[1]}
	return nil
}
