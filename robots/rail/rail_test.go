package rail

import (
	"context"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/kinchain/logging"
	"go.viam.com/kinchain/referenceframe"
	spatial "go.viam.com/kinchain/spatialmath"
)

func TestNew(t *testing.T) {
	r, err := New(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Chain().Len(), test.ShouldEqual, 5)
	test.That(t, r.Chain().Base().Name(), test.ShouldEqual, "vrail")
	test.That(t, r.Chain().Tip().Name(), test.ShouldEqual, "ik_box_2")
	test.That(t, r.Rig().NodeNames(), test.ShouldHaveLength, 6)

	eff := r.Chain().EndEffectorWorldPosition()
	test.That(t, eff.Distance(r3.Vector{Z: 3}), test.ShouldBeLessThan, 1e-9)
}

func TestTickMovesTowardTarget(t *testing.T) {
	r, err := New(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	// the first orbit point is one unit along +Z from the first waypoint
	before := r.Chain().EndEffectorWorldPosition().Distance(r3.Vector{X: 1, Y: 2, Z: 3})
	sol, err := r.Tick(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Goal().Position.Distance(r3.Vector{X: 1, Y: 2, Z: 3}), test.ShouldBeLessThan, 1e-9)
	test.That(t, sol.Iterations, test.ShouldEqual, 1)
	test.That(t, sol.PositionError, test.ShouldBeLessThan, before)

	hrail, err := r.Rig().Node("hrail")
	test.That(t, err, test.ShouldBeNil)
	base, err := r.Rig().Node("base")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hrail.Origin(), test.ShouldResemble, base.Origin())
}

func TestTicksRespectRails(t *testing.T) {
	r, err := New(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		if i%25 == 0 {
			r.NextTarget()
		}
		_, err := r.Tick(ctx)
		test.That(t, err, test.ShouldBeNil)
		for _, n := range r.Chain().Nodes() {
			checkWithinLimits(t, n)
		}
	}
}

func checkWithinLimits(t *testing.T, n *referenceframe.Node) {
	t.Helper()
	jc := n.Constraint()
	if jc == nil {
		return
	}
	values := [3]float64{n.Euler().X, n.Euler().Y, n.Euler().Z}
	if jc.Type == referenceframe.Prismatic {
		values = [3]float64{n.Origin().X, n.Origin().Y, n.Origin().Z}
	}
	for axis, v := range values {
		lim, ok := jc.Bounds(axis)
		if !ok {
			continue
		}
		test.That(t, v, test.ShouldBeGreaterThanOrEqualTo, lim.Min-1e-9)
		test.That(t, v, test.ShouldBeLessThanOrEqualTo, lim.Max+1e-9)
	}
}

func TestNextTargetWraps(t *testing.T) {
	r, err := New(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	for i := 1; i < len(Targets); i++ {
		test.That(t, r.NextTarget(), test.ShouldEqual, i)
	}
	test.That(t, r.NextTarget(), test.ShouldEqual, 0)
}

func TestOrientationConstraint(t *testing.T) {
	logger := logging.NewTestLogger(t)
	oriented, err := New(logger)
	test.That(t, err, test.ShouldBeNil)
	baseline, err := New(logger)
	test.That(t, err, test.ShouldBeNil)
	ctx := context.Background()

	_, err = oriented.Tick(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, oriented.Goal().Orientation, test.ShouldBeNil)
	_, err = baseline.Tick(ctx)
	test.That(t, err, test.ShouldBeNil)

	oriented.SetOrientationConstraint(true)
	var withRoll, withoutRoll float64
	for tick := 1; tick < 100; tick++ {
		if tick%25 == 0 {
			oriented.NextTarget()
			baseline.NextTarget()
		}
		sol, err := oriented.Tick(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, *oriented.Goal().Orientation, test.ShouldResemble, EndEffectorOrientation)
		base, err := baseline.Tick(ctx)
		test.That(t, err, test.ShouldBeNil)

		// the roll used for orientation never costs position
		test.That(t, sol.PositionError, test.ShouldAlmostEqual, base.PositionError, 1e-6)
		withRoll += sol.OrientationError
		withoutRoll += spatial.AvgAngleDist(baseline.Chain().EndEffectorWorldOrientation(), EndEffectorOrientation)
	}
	test.That(t, withRoll, test.ShouldBeLessThan, withoutRoll)
}

func TestStep(t *testing.T) {
	r, err := New(logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	for tick := 0; tick < 3; tick++ {
		rows, err := r.Step(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, rows, test.ShouldHaveLength, 1)
		test.That(t, rows[0].Tick, test.ShouldEqual, tick)
		test.That(t, rows[0].Chain, test.ShouldEqual, ChainName)
		test.That(t, rows[0].Effector, test.ShouldResemble, r.Chain().EndEffectorWorldPosition())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.NextTarget()
	_, err = r.Step(ctx)
	test.That(t, err, test.ShouldBeError, context.Canceled)
}
