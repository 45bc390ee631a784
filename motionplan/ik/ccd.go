// Package ik contains the cyclic coordinate descent solver used to pose kinematic chains.
package ik

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/referenceframe"
	spatial "go.viam.com/kinchain/spatialmath"
	"go.viam.com/kinchain/utils"
)

const (
	defaultIterations        = 1
	defaultPositionThreshold = 0.001
	defaultAngleThreshold    = 0.001
)

// yaw, then pitch, then roll: the intrinsic order the euler components are applied in.
var rotationOrder = [3]int{spatial.AxisY, spatial.AxisX, spatial.AxisZ}

// Goal is what a solve moves the end effector toward. A nil Orientation ignores orientation.
type Goal struct {
	Position    r3.Vector
	Orientation *r3.Vector
}

// Options bound a single solve.
type Options struct {
	// Iterations is the maximum number of tip to base sweeps.
	Iterations int `json:"iterations" yaml:"iterations"`
	// PositionThreshold is the end effector distance at which a solve is converged.
	PositionThreshold float64 `json:"position_threshold" yaml:"position_threshold"`
	// AngleThreshold is the mean per-axis euler difference, in degrees, at which the orientation
	// of a solve is converged.
	AngleThreshold float64 `json:"angle_threshold" yaml:"angle_threshold"`
}

// NewDefaultOptions returns a single sweep with 0.001 thresholds.
func NewDefaultOptions() Options {
	return Options{
		Iterations:        defaultIterations,
		PositionThreshold: defaultPositionThreshold,
		AngleThreshold:    defaultAngleThreshold,
	}
}

// Validate returns an error if the options cannot bound a solve.
func (o Options) Validate() error {
	if o.Iterations < 1 {
		return errors.Errorf("iterations must be at least 1, got %d", o.Iterations)
	}
	if o.PositionThreshold < 0 || math.IsNaN(o.PositionThreshold) {
		return errors.Errorf("position threshold must be non-negative, got %v", o.PositionThreshold)
	}
	if o.AngleThreshold < 0 || math.IsNaN(o.AngleThreshold) {
		return errors.Errorf("angle threshold must be non-negative, got %v", o.AngleThreshold)
	}
	return nil
}

// Solution reports the outcome of a solve. The chain itself holds the resulting pose.
type Solution struct {
	Converged bool
	// Iterations is the number of sweeps run; 0 when the chain was already converged.
	Iterations int
	// PositionError is the end effector distance to the goal position.
	PositionError float64
	// OrientationError is the mean per-axis euler difference in degrees, 0 without a goal orientation.
	OrientationError float64
	Configuration    []referenceframe.Input
	// Score is the goal metric of the final state.
	Score float64
}

// CCDSolver poses chains with cyclic coordinate descent. It keeps no state between solves and may
// be shared by goroutines solving independent chains.
type CCDSolver struct {
	logger logging.Logger
	opts   Options
}

// NewCCDSolver validates the options and returns a solver.
func NewCCDSolver(logger logging.Logger, opts Options) (*CCDSolver, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &CCDSolver{logger: logger, opts: opts}, nil
}

// Options returns the options the solver was built with.
func (s *CCDSolver) Options() Options {
	return s.opts
}

// Solve moves the chain's joints in place toward the goal. Each sweep visits the nodes from tip to
// base; rotational nodes turn about each enabled euler axis to swing the end effector toward the
// target and prismatic nodes slide along each enabled axis. Every proposal is clamped by the node's
// joint constraint before it is applied.
//
// Enabled axes that start outside their range are clamped into it before anything else, so every
// pose a solve leaves behind respects the chain's limits even when no sweep runs.
//
// Running out of iterations is not an error: the chain keeps the last pose reached and the Solution
// reports the residual. The only error is the context being done between sweeps, in which case the
// Solution describes the pose reached so far.
func (s *CCDSolver) Solve(ctx context.Context, chain *referenceframe.Chain, goal Goal) (*Solution, error) {
	if goal.Orientation != nil {
		canonical := spatial.CanonicalEuler(*goal.Orientation)
		goal.Orientation = &canonical
	}
	metric := NewGoalMetric(goal)

	chain.ClampToLimits()
	sol := s.evaluate(chain, goal, metric)
	if sol.Converged {
		return sol, nil
	}
	for iter := 1; iter <= s.opts.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return sol, err
		}
		s.sweep(chain, goal)
		sol = s.evaluate(chain, goal, metric)
		sol.Iterations = iter
		s.logger.CDebugw(ctx, "ccd sweep",
			"iteration", iter,
			"position_error", sol.PositionError,
			"orientation_error", sol.OrientationError)
		if sol.Converged {
			return sol, nil
		}
	}
	s.logger.CDebugw(ctx, "ccd iteration budget exhausted",
		"iterations", s.opts.Iterations,
		"position_error", sol.PositionError)
	return sol, nil
}

func (s *CCDSolver) evaluate(chain *referenceframe.Chain, goal Goal, metric StateMetric) *Solution {
	state := &State{
		Position:      chain.EndEffectorWorldPosition(),
		Orientation:   chain.EndEffectorWorldOrientation(),
		Configuration: chain.Inputs(),
	}
	sol := &Solution{
		PositionError: state.Position.Distance(goal.Position),
		Configuration: state.Configuration,
		Score:         metric(state),
	}
	sol.Converged = sol.PositionError <= s.opts.PositionThreshold
	if goal.Orientation != nil {
		sol.OrientationError = spatial.AvgAngleDist(state.Orientation, *goal.Orientation)
		sol.Converged = sol.Converged && sol.OrientationError <= s.opts.AngleThreshold
	}
	return sol
}

// sweep runs one tip to base pass.
func (s *CCDSolver) sweep(chain *referenceframe.Chain, goal Goal) {
	tip := chain.Len() - 1
	for j := tip; j >= 0; j-- {
		n := chain.Node(j)
		if referenceframe.IsPrismatic(n) {
			translateStep(chain, n, goal.Position)
			continue
		}
		rotateStep(chain, n, goal.Position)
		if j == tip && goal.Orientation != nil {
			orientStep(chain, n, *goal.Orientation)
		}
	}
}

// parentFrame returns the inverse of the linear part of the node's parent world matrix, mapping
// world vectors into the frame the node's origin and euler are expressed in.
func parentFrame(n *referenceframe.Node) mgl64.Mat3 {
	return n.ParentWorldMatrix().Mat3().Inv()
}

func toFrame(inv mgl64.Mat3, v r3.Vector) r3.Vector {
	return spatial.MglToVec(inv.Mul3x1(spatial.VecToMgl(v)))
}

// eulerAxis returns, in the parent frame, the axis that changing one euler component rotates about.
func eulerAxis(euler r3.Vector, axis int) r3.Vector {
	switch axis {
	case spatial.AxisY:
		return spatial.UnitAxis(spatial.AxisY)
	case spatial.AxisX:
		return spatial.TransformDirection(spatial.RotationMatrix(r3.Vector{Y: euler.Y}), spatial.UnitAxis(spatial.AxisX))
	default:
		return spatial.TransformDirection(spatial.RotationMatrix(r3.Vector{X: euler.X, Y: euler.Y}), spatial.UnitAxis(spatial.AxisZ))
	}
}

// onAxis reports whether v, taken from a point on the unit axis a, lies along it.
func onAxis(a, v r3.Vector) bool {
	return v.Sub(a.Mul(v.Dot(a))).Norm() < spatial.Epsilon
}

// rotateStep turns a rotational node about each enabled axis, in application order, to bring the end
// effector toward the target. Axes the end effector lies on cannot move it and are skipped.
func rotateStep(chain *referenceframe.Chain, n *referenceframe.Node, target r3.Vector) {
	inv := parentFrame(n)
	pivot := n.Pivot()
	toTarget := toFrame(inv, target.Sub(pivot))
	for _, axis := range rotationOrder {
		if !referenceframe.RotationEnabled(n, axis) {
			continue
		}
		euler := n.Euler()
		a := eulerAxis(euler, axis)
		toEffector := toFrame(inv, chain.EndEffectorWorldPosition().Sub(pivot))
		if onAxis(a, toEffector) {
			continue
		}
		angle, ok := spatial.SignedAngleAbout(a, toEffector, toTarget)
		if !ok {
			continue
		}
		current := spatial.Component(euler, axis)
		next := referenceframe.ClampEuler(n, axis, current+utils.RadToDeg(angle))
		if next != current {
			n.SetEuler(spatial.WithComponent(euler, axis, next))
		}
	}
}

// translateStep slides a prismatic node along each enabled axis by the parent frame projection of
// the remaining end effector error.
func translateStep(chain *referenceframe.Chain, n *referenceframe.Node, target r3.Vector) {
	delta := toFrame(parentFrame(n), target.Sub(chain.EndEffectorWorldPosition()))
	origin := n.Origin()
	next := origin
	for axis := spatial.AxisX; axis <= spatial.AxisZ; axis++ {
		proposed := spatial.Component(origin, axis) + spatial.Component(delta, axis)
		next = spatial.WithComponent(next, axis, referenceframe.ClampOrigin(n, axis, proposed))
	}
	if next != origin {
		n.SetOrigin(next)
	}
}

// orientStep turns the tip about the enabled axes that pass through the end effector, aligning the
// tip's frame with the goal orientation. Rotating about such an axis never moves the end effector.
func orientStep(chain *referenceframe.Chain, n *referenceframe.Node, goal r3.Vector) {
	goalRot := spatial.RotationMatrix(goal).Mat3()
	_, parentEuler, _ := spatial.Decompose(n.ParentWorldMatrix())
	parentRot := spatial.RotationMatrix(parentEuler)
	for _, axis := range rotationOrder {
		if !referenceframe.RotationEnabled(n, axis) {
			continue
		}
		euler := n.Euler()
		a := spatial.TransformDirection(parentRot, eulerAxis(euler, axis))
		if !onAxis(a, chain.EndEffectorWorldPosition().Sub(n.Pivot())) {
			continue
		}
		tipRot := parentRot.Mul4(spatial.RotationMatrix(euler)).Mat3()

		// Compare the local unit axis that is most perpendicular to the rotation axis.
		best, bestLen := 0., 0.
		for ref := spatial.AxisX; ref <= spatial.AxisZ; ref++ {
			cur := spatial.MglToVec(tipRot.Col(ref))
			want := spatial.MglToVec(goalRot.Col(ref))
			angle, ok := spatial.SignedAngleAbout(a, cur, want)
			perp := math.Min(cur.Cross(a).Norm(), want.Cross(a).Norm())
			if ok && perp > bestLen {
				best, bestLen = angle, perp
			}
		}
		if bestLen < spatial.Epsilon {
			continue
		}
		current := spatial.Component(euler, axis)
		next := referenceframe.ClampEuler(n, axis, current+utils.RadToDeg(best))
		if next != current {
			n.SetEuler(spatial.WithComponent(euler, axis, next))
		}
	}
}
