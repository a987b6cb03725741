package checker

import (
	"github.com/pkg/errors"
)

// The checker's error taxonomy. Every failure aborts the whole check pass;
// rules wrap these sentinels with context (node, offending types, operator)
// via pkg/errors, so callers match them with errors.Is.
//
// Rank-mismatch failures reuse gradual.ErrRankMismatch from the shape
// algebra, since ApplyMatching is where most of them originate.
var (
	// ErrConsistency means two types that must be consistent are not.
	ErrConsistency = errors.New("inconsistent types")

	// ErrChannelMismatch means a channel dimension disagrees with a
	// module's channel hyperparameter (in_channels, num_features).
	ErrChannelMismatch = errors.New("channel mismatch")

	// ErrFeatureMismatch means a tensor's last dimension disagrees with a
	// linear module's in_features.
	ErrFeatureMismatch = errors.New("feature mismatch")

	// ErrReshape means a reshape target's element count is not compatible
	// with the source's, by equality or divisibility.
	ErrReshape = errors.New("cannot reshape")

	// ErrAxisOutOfRange means a transpose axis index is outside the
	// operand's rank.
	ErrAxisOutOfRange = errors.New("axis out of range")

	// ErrNoRuleRegistered means an operator identity has no inference rule
	// in the registry.
	ErrNoRuleRegistered = errors.New("no inference rule registered")

	// ErrDuplicateRule means a second rule was registered for the same
	// operator identity.
	ErrDuplicateRule = errors.New("inference rule already registered")

	// ErrUnsupportedOp means a node kind outside the four modeled kinds.
	ErrUnsupportedOp = errors.New("unsupported operation kind")

	// ErrInvalidArgument means a node's operand list does not have the form
	// its operator requires, e.g. a literal where a node reference must be.
	ErrInvalidArgument = errors.New("invalid argument")
)
