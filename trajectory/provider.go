// Package trajectory produces the per-tick goals that rigs solve toward: fixed points, waypoint
// lists cycled by an index, orbits around another provider, and keyframe tracks.
package trajectory

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/kinchain/motionplan/ik"
	spatial "go.viam.com/kinchain/spatialmath"
)

// Provider yields the goal for a tick. Providers are read once per tick before solving and must not
// be mutated while chains are being solved.
type Provider interface {
	Goal(tick int) ik.Goal
}

// Fixed is a goal that never changes.
type Fixed ik.Goal

// Goal returns the fixed goal.
func (f Fixed) Goal(tick int) ik.Goal {
	return ik.Goal(f)
}

// Waypoints is a fixed list of goals advanced by an index.
type Waypoints struct {
	goals []ik.Goal
	index int
}

// NewWaypoints returns waypoints positioned at the first goal.
func NewWaypoints(goals ...ik.Goal) (*Waypoints, error) {
	if len(goals) == 0 {
		return nil, errors.New("waypoints need at least one goal")
	}
	return &Waypoints{goals: append([]ik.Goal(nil), goals...)}, nil
}

// NewPositionWaypoints returns waypoints for positions without orientation goals.
func NewPositionWaypoints(positions ...r3.Vector) (*Waypoints, error) {
	goals := make([]ik.Goal, 0, len(positions))
	for _, p := range positions {
		goals = append(goals, ik.Goal{Position: p})
	}
	return NewWaypoints(goals...)
}

// Advance moves to the next goal, wrapping after the last, and returns the new index.
func (w *Waypoints) Advance() int {
	w.index = (w.index + 1) % len(w.goals)
	return w.index
}

// Index returns the index of the current goal.
func (w *Waypoints) Index() int {
	return w.index
}

// Len returns the number of goals.
func (w *Waypoints) Len() int {
	return len(w.goals)
}

// Current returns the current goal.
func (w *Waypoints) Current() ik.Goal {
	return w.goals[w.index]
}

// Goal returns the current goal whatever the tick.
func (w *Waypoints) Goal(tick int) ik.Goal {
	return w.Current()
}

// Orbit circles the position of another provider in its horizontal plane, advancing Step degrees of
// yaw per tick. Orientation goals pass through unchanged.
type Orbit struct {
	Center Provider
	Radius float64
	Step   float64
}

// Angle returns the yaw of the orbit at a tick, in [0, 360).
func (o *Orbit) Angle(tick int) float64 {
	angle := math.Mod(float64(tick)*o.Step, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

// Goal returns the center's goal moved out along the orbit.
func (o *Orbit) Goal(tick int) ik.Goal {
	g := o.Center.Goal(tick)
	offset := spatial.EulerToOffset(r3.Vector{Y: o.Angle(tick)}).Mul(o.Radius)
	g.Position = g.Position.Add(offset)
	return g
}

// WithOrientation attaches an orientation goal to every goal of a provider, or strips it when
// orientation is nil.
type WithOrientation struct {
	Provider
	Orientation *r3.Vector
}

// Goal returns the wrapped goal with the orientation replaced.
func (w WithOrientation) Goal(tick int) ik.Goal {
	g := w.Provider.Goal(tick)
	g.Orientation = w.Orientation
	return g
}
