package referenceframe

import (
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "go.viam.com/kinchain/spatialmath"
	"go.viam.com/kinchain/utils"
)

// JointType is the kind of motion a joint allows.
type JointType int

const (
	// Rotational joints move their node's euler components.
	Rotational JointType = iota
	// Prismatic joints move their node's origin components.
	Prismatic
)

func (t JointType) String() string {
	switch t {
	case Rotational:
		return "rotational"
	case Prismatic:
		return "prismatic"
	default:
		return fmt.Sprintf("JointType(%d)", int(t))
	}
}

// ParseJointType parses "rotational" / "revolute" or "prismatic", case-insensitively.
func ParseJointType(name string) (JointType, error) {
	switch strings.ToLower(name) {
	case "rotational", "revolute":
		return Rotational, nil
	case "prismatic":
		return Prismatic, nil
	default:
		return 0, NewUnknownJointTypeError(name)
	}
}

// Limit represents the limits of motion for one joint axis.
type Limit struct {
	Min float64
	Max float64
}

// freeRotation is the range of an axis with no limit.
var freeRotation = Limit{Min: -180, Max: 180}

// JointConstraint limits the motion of a node. Only enabled axes may be moved by a solver, and an
// enabled axis is kept within MaxDeviation of Center. Rotational values are in degrees.
type JointConstraint struct {
	Type         JointType
	Enabled      [3]bool
	Center       r3.Vector
	MaxDeviation r3.Vector
}

// NewJointConstraint validates and returns a joint constraint.
func NewJointConstraint(jointType JointType, enabled [3]bool, center, maxDeviation r3.Vector) (*JointConstraint, error) {
	if jointType != Rotational && jointType != Prismatic {
		return nil, NewUnknownJointTypeError(jointType.String())
	}
	for axis := spatial.AxisX; axis <= spatial.AxisZ; axis++ {
		dev := spatial.Component(maxDeviation, axis)
		if dev < 0 || math.IsNaN(dev) || math.IsInf(dev, 0) {
			return nil, NewInvalidDeviationError(axis, dev)
		}
		if c := spatial.Component(center, axis); math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.Errorf("center on axis %d must be finite, got %v", axis, c)
		}
	}
	return &JointConstraint{
		Type:         jointType,
		Enabled:      enabled,
		Center:       center,
		MaxDeviation: maxDeviation,
	}, nil
}

// Bounds returns the range of an axis and whether the axis may move at all.
func (jc *JointConstraint) Bounds(axis int) (Limit, bool) {
	if axis < spatial.AxisX || axis > spatial.AxisZ || !jc.Enabled[axis] {
		return Limit{}, false
	}
	c := spatial.Component(jc.Center, axis)
	d := spatial.Component(jc.MaxDeviation, axis)
	return Limit{Min: c - d, Max: c + d}, true
}

// DoF returns the limits of the enabled axes, in axis order.
func (jc *JointConstraint) DoF() []Limit {
	dof := make([]Limit, 0, 3)
	for axis := spatial.AxisX; axis <= spatial.AxisZ; axis++ {
		if lim, ok := jc.Bounds(axis); ok {
			dof = append(dof, lim)
		}
	}
	return dof
}

// Clamp returns the value a solver may set on `axis` when it proposes `proposed` and the axis
// currently holds `current`. Disabled axes keep their current value. Enabled axes are clamped into
// [center-deviation, center+deviation]; a rotational range covering a full turn first wraps the
// proposal around the center instead of pinning it to an edge.
func (jc *JointConstraint) Clamp(axis int, current, proposed float64) float64 {
	lim, ok := jc.Bounds(axis)
	if !ok {
		return current
	}
	if jc.fullTurn(lim) {
		proposed = utils.WrapDeg(proposed, (lim.Min+lim.Max)/2)
	}
	return utils.Clamp(proposed, lim.Min, lim.Max)
}

// fullTurn reports whether a rotational axis may take any angle.
func (jc *JointConstraint) fullTurn(lim Limit) bool {
	return jc.Type == Rotational && lim.Max-lim.Min >= 360
}

// Project clamps every enabled axis of v into its range and leaves disabled axes alone. v is the
// node's euler for a rotational joint and its origin for a prismatic one.
func (jc *JointConstraint) Project(v r3.Vector) r3.Vector {
	for axis := spatial.AxisX; axis <= spatial.AxisZ; axis++ {
		value := spatial.Component(v, axis)
		v = spatial.WithComponent(v, axis, jc.Clamp(axis, value, value))
	}
	return v
}

// CheckPose returns an error for the first enabled axis of v outside its range. Axes covering a
// full turn accept any angle.
func (jc *JointConstraint) CheckPose(v r3.Vector) error {
	const tolerance = 1e-9
	for axis := spatial.AxisX; axis <= spatial.AxisZ; axis++ {
		lim, ok := jc.Bounds(axis)
		if !ok || jc.fullTurn(lim) {
			continue
		}
		value := spatial.Component(v, axis)
		if value < lim.Min-tolerance || value > lim.Max+tolerance {
			return NewOutOfBoundsError(axis, value, lim)
		}
	}
	return nil
}

// clampRotation applies a node's rotational limits, treating a nil constraint as free.
func clampRotation(jc *JointConstraint, axis int, current, proposed float64) float64 {
	if jc == nil {
		return utils.WrapDeg(proposed, 0)
	}
	return jc.Clamp(axis, current, proposed)
}

// ClampEuler applies a node's rotational limits to one euler component. It is the gate every
// solver step passes through: nil constraints are free, prismatic joints never rotate.
func ClampEuler(n *Node, axis int, proposed float64) float64 {
	current := spatial.Component(n.euler, axis)
	if n.constraint != nil && n.constraint.Type != Rotational {
		return current
	}
	return clampRotation(n.constraint, axis, current, proposed)
}

// ClampOrigin applies a node's prismatic limits to one origin component. Nodes without a
// prismatic constraint never translate.
func ClampOrigin(n *Node, axis int, proposed float64) float64 {
	current := spatial.Component(n.origin, axis)
	if n.constraint == nil || n.constraint.Type != Prismatic {
		return current
	}
	return n.constraint.Clamp(axis, current, proposed)
}

// IsPrismatic reports whether the node's joint translates.
func IsPrismatic(n *Node) bool {
	return n.constraint != nil && n.constraint.Type == Prismatic
}

// RotationEnabled reports whether a solver may rotate the node about the given euler axis.
func RotationEnabled(n *Node, axis int) bool {
	if n.constraint == nil {
		return true
	}
	if n.constraint.Type != Rotational {
		return false
	}
	_, ok := n.constraint.Bounds(axis)
	return ok
}

// nodeDoF returns the limits of every input a node contributes to a chain.
func nodeDoF(n *Node) []Limit {
	if n.constraint == nil {
		return []Limit{freeRotation, freeRotation, freeRotation}
	}
	return n.constraint.DoF()
}

// nodeInputAxes returns the axes a node contributes inputs for.
func nodeInputAxes(n *Node) []int {
	axes := make([]int, 0, 3)
	for axis := spatial.AxisX; axis <= spatial.AxisZ; axis++ {
		if n.constraint == nil {
			axes = append(axes, axis)
		} else if _, ok := n.constraint.Bounds(axis); ok {
			axes = append(axes, axis)
		}
	}
	return axes
}
