// Package rail is a three segment arm riding a pair of perpendicular prismatic rails, chasing a
// target that orbits one of eight waypoints.
package rail

import (
	"context"

	"github.com/golang/geo/r3"

	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/motionplan/ik"
	"go.viam.com/kinchain/referenceframe"
	"go.viam.com/kinchain/rig"
	"go.viam.com/kinchain/trajectory"
)

const (
	railLength    = 5
	segmentCount  = 3
	segmentLength = 1
	orbitRadius   = 1
	angleStep     = 1
	iterations    = 1
	threshold     = 0.001

	// ChainName is the name of the rail's only chain.
	ChainName = "arm"
)

// Targets are the waypoints cycled by NextTarget.
var Targets = []r3.Vector{
	{X: 1, Y: 2, Z: 2},
	{X: 1, Y: 2, Z: -2},
	{X: -1, Y: 2, Z: -2},
	{X: -1, Y: 2, Z: 2},
	{X: 2, Y: 2, Z: 1},
	{X: 2, Y: 2, Z: -1},
	{X: -2, Y: 2, Z: -1},
	{X: -2, Y: 2, Z: 1},
}

// EndEffectorOrientation is the orientation goal applied while the orientation constraint is on.
var EndEffectorOrientation = r3.Vector{X: 1}

// Rail is the rail rig and its target state.
type Rail struct {
	rig   *rig.Rig
	chain *referenceframe.Chain

	hrail, vrail, base *referenceframe.Node

	waypoints   *trajectory.Waypoints
	orbit       *trajectory.Orbit
	orientation bool
	tick        int
	goal        ik.Goal
}

func prismatic(enabled [3]bool, dev r3.Vector) *referenceframe.JointConstraint {
	jc, err := referenceframe.NewJointConstraint(referenceframe.Prismatic, enabled, r3.Vector{}, dev)
	if err != nil {
		panic(err)
	}
	return jc
}

func rotational(enabled [3]bool, dev r3.Vector) *referenceframe.JointConstraint {
	jc, err := referenceframe.NewJointConstraint(referenceframe.Rotational, enabled, r3.Vector{}, dev)
	if err != nil {
		panic(err)
	}
	return jc
}

// New builds the rail rig with the arm lying along +Z and the first waypoint selected.
func New(logger logging.Logger) (*Rail, error) {
	r, err := rig.New("rail", logger, ik.Options{
		Iterations:        iterations,
		PositionThreshold: threshold,
		AngleThreshold:    threshold,
	})
	if err != nil {
		return nil, err
	}

	// The horizontal rail only follows the base around; it is not part of the chain.
	hrail := referenceframe.NewNode("hrail")
	hrail.SetConstraint(prismatic([3]bool{false, false, true}, r3.Vector{Z: railLength * 0.5}))

	vrail := referenceframe.NewNode("vrail")
	vrail.SetConstraint(prismatic([3]bool{true, false, false}, r3.Vector{X: railLength * 0.5}))

	base := referenceframe.NewNode("base")
	base.SetConstraint(prismatic([3]bool{false, false, true}, r3.Vector{Z: railLength * 0.5}))
	if err := base.LinkParent(vrail, false); err != nil {
		return nil, err
	}

	segments := rig.CreateLinkedSegments("ik_box", segmentCount, segmentLength)
	if err := segments[0].LinkParent(base, false); err != nil {
		return nil, err
	}
	for i, seg := range segments {
		switch i {
		case 0:
			seg.SetConstraint(rotational([3]bool{false, true, false}, r3.Vector{Y: 180}))
		case segmentCount - 1:
			seg.SetConstraint(rotational([3]bool{true, false, true}, r3.Vector{X: 90, Z: 180}))
		default:
			seg.SetConstraint(rotational([3]bool{true, false, false}, r3.Vector{X: 90}))
		}
	}

	for _, n := range append([]*referenceframe.Node{hrail, vrail, base}, segments...) {
		if err := r.AddNode(n); err != nil {
			return nil, err
		}
	}
	chain, err := r.AddChain(ChainName, vrail.Name(), segments[segmentCount-1].Name(), r3.Vector{Z: segmentLength})
	if err != nil {
		return nil, err
	}

	waypoints, err := trajectory.NewPositionWaypoints(Targets...)
	if err != nil {
		return nil, err
	}
	return &Rail{
		rig:       r,
		chain:     chain,
		hrail:     hrail,
		vrail:     vrail,
		base:      base,
		waypoints: waypoints,
		orbit:     &trajectory.Orbit{Center: waypoints, Radius: orbitRadius, Step: angleStep},
	}, nil
}

// Rig returns the underlying rig.
func (r *Rail) Rig() *rig.Rig {
	return r.rig
}

// Chain returns the arm chain, from the vertical rail to the last segment.
func (r *Rail) Chain() *referenceframe.Chain {
	return r.chain
}

// NextTarget selects the next waypoint and returns its index.
func (r *Rail) NextTarget() int {
	idx := r.waypoints.Advance()
	r.rig.Logger().Infow("target changed", "index", idx, "target", r.waypoints.Current().Position)
	return idx
}

// SetOrientationConstraint turns the end effector orientation goal on or off.
func (r *Rail) SetOrientationConstraint(on bool) {
	r.orientation = on
}

// Goal returns the goal of the last tick.
func (r *Rail) Goal() ik.Goal {
	return r.goal
}

// Tick solves toward the orbiting target once and drags the horizontal rail along with the base.
func (r *Rail) Tick(ctx context.Context) (*ik.Solution, error) {
	var orientation *r3.Vector
	if r.orientation {
		o := EndEffectorOrientation
		orientation = &o
	}
	r.goal = trajectory.WithOrientation{Provider: r.orbit, Orientation: orientation}.Goal(r.tick)
	r.tick++

	sol, err := r.rig.Solver().Solve(ctx, r.chain, r.goal)
	r.hrail.SetOrigin(r.base.Origin())
	return sol, err
}

// Step runs one tick and reports it as a table row.
func (r *Rail) Step(ctx context.Context) ([]rig.SolutionRow, error) {
	tick := r.tick
	sol, err := r.Tick(ctx)
	if err != nil {
		return nil, err
	}
	return []rig.SolutionRow{{
		Tick:     tick,
		Chain:    ChainName,
		Target:   r.goal.Position,
		Effector: r.chain.EndEffectorWorldPosition(),
		Solution: sol,
	}}, nil
}
