package ik

import (
	"math"

	"github.com/golang/geo/r3"

	"go.viam.com/kinchain/referenceframe"
	spatial "go.viam.com/kinchain/spatialmath"
)

// orientationDistanceScaling weights an orientation error in degrees against a position error in
// scene units.
const orientationDistanceScaling = 0.01

// State is a snapshot of a chain's end effector and joint values.
type State struct {
	Position      r3.Vector
	Orientation   r3.Vector
	Configuration []referenceframe.Input
}

// StateMetric are functions which, given a State, produces some score. Lower is better.
type StateMetric func(*State) float64

// NewZeroMetric always returns zero as the distance between two points.
func NewZeroMetric() StateMetric {
	return func(from *State) float64 { return 0 }
}

type combinableStateMetric struct {
	metrics []StateMetric
}

func (m *combinableStateMetric) combinedDist(input *State) float64 {
	dist := 0.
	for _, metric := range m.metrics {
		dist += metric(input)
	}
	return dist
}

// CombineMetrics will take a variable number of Metrics and return a new Metric which will combine
// all given metrics into one, summing their distances.
func CombineMetrics(metrics ...StateMetric) StateMetric {
	cm := &combinableStateMetric{metrics: metrics}
	return cm.combinedDist
}

// NewPositionOnlyMetric returns a Metric that reports the squared distance to the goal position
// without regard for orientation.
func NewPositionOnlyMetric(goal r3.Vector) StateMetric {
	return func(state *State) float64 {
		pDist := state.Position.Distance(goal)
		return pDist * pDist
	}
}

// NewOrientationMetric returns a Metric that reports the weighted squared arc length in degrees
// between the state's orientation and the goal orientation.
func NewOrientationMetric(goal r3.Vector) StateMetric {
	return func(state *State) float64 {
		oDist := spatial.OrientDist(state.Orientation, goal) * orientationDistanceScaling
		return oDist * oDist
	}
}

// NewGoalMetric scores a state against a goal, including orientation only if the goal has one.
func NewGoalMetric(goal Goal) StateMetric {
	if goal.Orientation == nil {
		return NewPositionOnlyMetric(goal.Position)
	}
	return CombineMetrics(NewPositionOnlyMetric(goal.Position), NewOrientationMetric(*goal.Orientation))
}

// JointMetric sums the absolute differences in each input from start to end.
func JointMetric(start, end []referenceframe.Input) float64 {
	if len(start) != len(end) {
		return math.Inf(1)
	}
	jScore := 0.
	for i, f := range start {
		jScore += math.Abs(f.Value - end[i].Value)
	}
	return jScore
}
