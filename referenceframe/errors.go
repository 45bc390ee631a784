package referenceframe

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmptyChain is returned when a chain is built without nodes.
	ErrEmptyChain = errors.New("kinematic chain must have at least one node")

	// ErrZeroEffectorOffset is returned when the end effector offset has no length, leaving no
	// direction to align with a target.
	ErrZeroEffectorOffset = errors.New("end effector offset must have non-zero length")

	// ErrCircularReference is returned when linking a node would make it its own ancestor.
	ErrCircularReference = errors.New("infinite loop finding path from node to root")
)

// NewBrokenChainError returns an error indicating that a chain's node order does not follow the
// nodes' actual parent links.
func NewBrokenChainError(child, expectedParent string) error {
	return errors.Errorf("node %q must be linked to %q to follow it in a chain", child, expectedParent)
}

// NewNotAncestorError returns an error indicating that a chain base is not above its tip.
func NewNotAncestorError(base, tip string) error {
	return errors.Errorf("node %q is not an ancestor of %q", base, tip)
}

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not
// match the degrees of freedom of a chain.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of dof (%d) does not match the number of inputs (%d)", expected, actual)
}

// NewInvalidDeviationError returns an error for a joint deviation that is negative or not a number.
func NewInvalidDeviationError(axis int, deviation float64) error {
	return errors.Errorf("max deviation on axis %d must be a non-negative number, got %v", axis, deviation)
}

// NewUnknownJointTypeError returns an error for a joint type name that is not recognized.
func NewUnknownJointTypeError(name string) error {
	return errors.Errorf("unknown joint type %q, expected %q or %q", name, Rotational, Prismatic)
}

// NewOutOfBoundsError returns an error for a joint value outside the range its constraint allows.
func NewOutOfBoundsError(axis int, value float64, lim Limit) error {
	return errors.Errorf("value %v on axis %d is outside the joint range [%v, %v]", value, axis, lim.Min, lim.Max)
}
