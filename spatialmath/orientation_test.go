package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestOrientDist(t *testing.T) {
	test.That(t, OrientDist(r3.Vector{}, r3.Vector{Y: 30}), test.ShouldAlmostEqual, 30)
	test.That(t, OrientDist(r3.Vector{Y: 170}, r3.Vector{Y: -170}), test.ShouldAlmostEqual, 20)
	test.That(t, OrientDist(r3.Vector{X: 10, Y: 20}, r3.Vector{X: 10, Y: 20}), test.ShouldAlmostEqual, 0)
	// same orientation, different euler triple
	test.That(t, OrientDist(r3.Vector{X: 0, Y: 0, Z: 0}, r3.Vector{X: 180, Y: 180, Z: 180}), test.ShouldBeLessThan, 1e-6)
}

func TestAvgAngleDist(t *testing.T) {
	test.That(t, AvgAngleDist(r3.Vector{X: 10}, r3.Vector{X: -20}), test.ShouldAlmostEqual, 10)
	test.That(t, AvgAngleDist(r3.Vector{X: 179, Y: 1, Z: 0}, r3.Vector{X: -179, Y: -1, Z: 3}), test.ShouldAlmostEqual, 7.0/3)
}

func TestSignedAngleAbout(t *testing.T) {
	up := r3.Vector{Y: 1}
	angle, ok := SignedAngleAbout(up, r3.Vector{Z: 1}, r3.Vector{X: 1})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, angle, test.ShouldAlmostEqual, math.Pi/2)

	angle, ok = SignedAngleAbout(up, r3.Vector{X: 1, Y: 5}, r3.Vector{Z: 2, Y: -3})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, angle, test.ShouldAlmostEqual, -math.Pi/2)

	_, ok = SignedAngleAbout(up, r3.Vector{Y: 2}, r3.Vector{X: 1})
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = SignedAngleAbout(up, r3.Vector{X: 1}, r3.Vector{})
	test.That(t, ok, test.ShouldBeFalse)
}

func TestR4AA(t *testing.T) {
	aa := R4AA{Theta: math.Pi / 2, RX: 0, RY: 2, RZ: 0}
	got := aa.RotateVector(r3.Vector{Z: 1})
	test.That(t, R3VectorAlmostEqual(got, r3.Vector{X: 1}, 1e-9), test.ShouldBeTrue)
	test.That(t, aa.RY, test.ShouldAlmostEqual, 1)

	back := QuatToR4AA(aa.ToQuat())
	test.That(t, back.Theta, test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, back.RY, test.ShouldAlmostEqual, 1)
	test.That(t, QuaternionAlmostEqual(aa.ToQuat(), Flip(aa.ToQuat()), 1e-9), test.ShouldBeTrue)

	zero := R4AA{Theta: 1}
	test.That(t, zero.Normalize(), test.ShouldNotBeNil)
	test.That(t, zero.ToQuat().Real, test.ShouldEqual, 1)
	test.That(t, NewR4AA().ToR3(), test.ShouldResemble, r3.Vector{})
}
