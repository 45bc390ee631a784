package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngleConversions(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(37.5)), test.ShouldAlmostEqual, 37.5)
}

func TestAngleDiffDeg(t *testing.T) {
	test.That(t, AngleDiffDeg(10, 350), test.ShouldAlmostEqual, 20)
	test.That(t, AngleDiffDeg(350, 10), test.ShouldAlmostEqual, 20)
	test.That(t, AngleDiffDeg(-170, 170), test.ShouldAlmostEqual, 20)
	test.That(t, AngleDiffDeg(0, 180), test.ShouldAlmostEqual, 180)
	test.That(t, AngleDiffDeg(720, 0), test.ShouldAlmostEqual, 0)
}

func TestWrapDeg(t *testing.T) {
	test.That(t, ModAngDeg(-90), test.ShouldAlmostEqual, 270)
	test.That(t, WrapDeg(190, 0), test.ShouldAlmostEqual, -170)
	test.That(t, WrapDeg(-181, 0), test.ShouldAlmostEqual, 179)
	test.That(t, WrapDeg(180, 0), test.ShouldAlmostEqual, -180)
	test.That(t, WrapDeg(350, 90), test.ShouldAlmostEqual, -10)
	test.That(t, WrapDeg(45, 0), test.ShouldAlmostEqual, 45)
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(2, 0, 1.5), test.ShouldEqual, 1.5)
	test.That(t, Clamp(-1, 0, 1.5), test.ShouldEqual, 0.)
	test.That(t, Clamp(0.3, 0, 1.5), test.ShouldEqual, 0.3)
}
