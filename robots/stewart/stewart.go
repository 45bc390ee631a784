// Package stewart is a six legged platform whose body follows a looping keyframed path while every
// leg, a ball joint feeding a telescoping piston, keeps its foot planted on the base.
package stewart

import (
	"context"
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/motionplan/ik"
	"go.viam.com/kinchain/referenceframe"
	"go.viam.com/kinchain/rig"
	spatial "go.viam.com/kinchain/spatialmath"
	"go.viam.com/kinchain/trajectory"
)

const (
	// LegCount is the number of legs.
	LegCount      = 6
	segmentCount  = 2
	segmentLength = 1.5
	legRadius     = 1
	footingRadius = 1
	bodyElevation = 2
	bodyHeight    = 0.125
	pathRadius    = 0.5
	iterations    = 2
	threshold     = 0.001

	// BodyAngleSpeed is the step in degrees of Turn.
	BodyAngleSpeed = 2.0
	// BodySpeed is the step of Raise.
	BodySpeed = 0.05
)

type leg struct {
	name   string
	joint  *referenceframe.Node
	chain  *referenceframe.Chain
	target r3.Vector
}

// Platform is the stewart platform rig.
type Platform struct {
	rig   *rig.Rig
	body  *referenceframe.Node
	legs  []*leg
	track *trajectory.Track

	// offset is the user adjustment applied on top of the track.
	offset r3.Vector
	tick   int
}

// NewBodyTrack returns the body path: a loop around the base that bobs between two heights.
func NewBodyTrack() (*trajectory.Track, error) {
	low, high := -bodyElevation*0.25, 0.
	track := trajectory.NewTrack()
	for _, k := range []struct {
		frame int
		value r3.Vector
	}{
		{0, r3.Vector{X: pathRadius, Y: low, Z: pathRadius}},
		{25, r3.Vector{X: -pathRadius, Y: high, Z: pathRadius}},
		{50, r3.Vector{X: -pathRadius, Y: low, Z: -pathRadius}},
		{75, r3.Vector{X: pathRadius, Y: high, Z: -pathRadius}},
		{100, r3.Vector{X: pathRadius, Y: low, Z: pathRadius}},
	} {
		if err := track.Insert(k.frame, trajectory.Keyframe{Value: k.value, Smooth: true}); err != nil {
			return nil, err
		}
	}
	track.UpdateControlPoints(0.5)
	return track, nil
}

// New builds the platform with its body at the start of the track.
func New(logger logging.Logger) (*Platform, error) {
	r, err := rig.New("stewart", logger, ik.Options{
		Iterations:        iterations,
		PositionThreshold: threshold,
		AngleThreshold:    threshold,
	})
	if err != nil {
		return nil, err
	}
	track, err := NewBodyTrack()
	if err != nil {
		return nil, err
	}

	body := referenceframe.NewNode("body")
	body.SetAxis(r3.Vector{Y: bodyHeight * 0.5})
	if err := r.AddNode(body); err != nil {
		return nil, err
	}

	// The base only marks where the feet stand.
	base := referenceframe.NewNode("base")
	base.SetEuler(r3.Vector{Y: 360 / LegCount})
	base.SetAxis(r3.Vector{Y: bodyHeight * 0.5})
	base.SetOrigin(r3.Vector{Y: -bodyElevation})
	if err := r.AddNode(base); err != nil {
		return nil, err
	}

	var angles [LegCount]float64
	for i := range angles {
		angles[i] = float64(i * 360 / LegCount)
	}

	p := &Platform{rig: r, body: body, track: track}
	for i := 0; i < LegCount; i++ {
		// Joints pair up on the body and feet pair up on the base, offset by one so the legs cross.
		from := ((i + 1) % LegCount) / 2 * 2
		to := i/2*2 + 1

		joint := referenceframe.NewNode(fmt.Sprintf("joint_%d", i))
		if err := joint.LinkParent(body, false); err != nil {
			return nil, err
		}
		joint.SetOrigin(spatial.EulerToOffset(r3.Vector{Y: angles[from]}).Mul(legRadius))
		if err := r.AddNode(joint); err != nil {
			return nil, err
		}

		segments := rig.CreateLinkedSegments(fmt.Sprintf("ik_box_%d", i), segmentCount, segmentLength)
		for j, seg := range segments {
			if j > 0 {
				piston, err := referenceframe.NewJointConstraint(referenceframe.Prismatic, [3]bool{false, false, true},
					r3.Vector{Z: segmentLength * 0.5}, r3.Vector{Z: segmentLength * 0.5})
				if err != nil {
					return nil, err
				}
				seg.SetConstraint(piston)
			}
			if err := r.AddNode(seg); err != nil {
				return nil, err
			}
		}

		name := fmt.Sprintf("leg_%d", i)
		chain, err := r.AddChain(name, segments[0].Name(), segments[segmentCount-1].Name(), r3.Vector{Z: segmentLength})
		if err != nil {
			return nil, err
		}
		p.legs = append(p.legs, &leg{
			name:   name,
			joint:  joint,
			chain:  chain,
			target: spatial.EulerToOffset(r3.Vector{Y: angles[to]}).Mul(footingRadius).Add(r3.Vector{Y: -bodyElevation}),
		})
	}
	p.placeBody(0)
	return p, nil
}

// Rig returns the underlying rig.
func (p *Platform) Rig() *rig.Rig {
	return p.rig
}

// Body returns the platform body.
func (p *Platform) Body() *referenceframe.Node {
	return p.body
}

// Track returns the body path.
func (p *Platform) Track() *trajectory.Track {
	return p.track
}

// Leg returns the chain and foot target of leg i.
func (p *Platform) Leg(i int) (*referenceframe.Chain, r3.Vector, error) {
	if i < 0 || i >= len(p.legs) {
		return nil, r3.Vector{}, errors.Errorf("no leg %d, platform has %d", i, len(p.legs))
	}
	return p.legs[i].chain, p.legs[i].target, nil
}

// Turn adds to the body rotation, in degrees.
func (p *Platform) Turn(delta r3.Vector) {
	p.body.SetEuler(p.body.Euler().Add(delta))
}

// Raise moves the body up, or down for negative dy, relative to its path.
func (p *Platform) Raise(dy float64) {
	p.offset.Y += dy
}

// Home clears any Turn and Raise adjustments.
func (p *Platform) Home() {
	p.offset = r3.Vector{}
	p.body.SetEuler(r3.Vector{})
}

func (p *Platform) placeBody(tick int) {
	p.body.SetOrigin(p.track.Goal(tick).Position.Add(p.offset))
}

// Tick moves the body to the next point of its path, carries each leg's first segment to its joint
// and re-solves every leg concurrently. Solutions are in leg order.
func (p *Platform) Tick(ctx context.Context) ([]*ik.Solution, error) {
	p.placeBody(p.tick)
	p.tick++

	goals := make([]ik.ChainGoal, 0, len(p.legs))
	for _, l := range p.legs {
		l.chain.Base().SetOrigin(l.joint.InAbsSystem(r3.Vector{}))
		goals = append(goals, ik.ChainGoal{Name: l.name, Chain: l.chain, Goal: ik.Goal{Position: l.target}})
	}
	return ik.SolveChains(ctx, p.rig.Solver(), goals)
}

// Step runs one tick and reports a row per leg.
func (p *Platform) Step(ctx context.Context) ([]rig.SolutionRow, error) {
	tick := p.tick
	sols, err := p.Tick(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]rig.SolutionRow, 0, len(sols))
	for i, sol := range sols {
		l := p.legs[i]
		rows = append(rows, rig.SolutionRow{
			Tick:     tick,
			Chain:    l.name,
			Target:   l.target,
			Effector: l.chain.EndEffectorWorldPosition(),
			Solution: sol,
		})
	}
	return rows, nil
}
