package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/kinchain/utils"
)

// Epsilon is the length below which a vector is treated as having no direction.
const Epsilon = 1e-9

// OrientationBetween returns the rotation taking orientation e1 to e2, as a quaternion.
func OrientationBetween(e1, e2 r3.Vector) quat.Number {
	return quat.Mul(EulerToQuat(e2), quat.Conj(EulerToQuat(e1)))
}

// OrientDist returns the arc length in degrees between two euler orientations.
func OrientDist(e1, e2 r3.Vector) float64 {
	aa := QuatToR4AA(OrientationBetween(e1, e2))
	return math.Abs(utils.RadToDeg(aa.Theta))
}

// QuaternionAlmostEqual is an equality test for two quaternions, treating q and -q as equal.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	near := func(x, y quat.Number) bool {
		return math.Abs(x.Real-y.Real) < tol &&
			math.Abs(x.Imag-y.Imag) < tol &&
			math.Abs(x.Jmag-y.Jmag) < tol &&
			math.Abs(x.Kmag-y.Kmag) < tol
	}
	return near(a, b) || near(a, Flip(b))
}

// AvgAngleDist is the mean of the per-axis wrapped differences (degrees) between two euler
// vectors. Both inputs are compared as given, so callers comparing orientations from different
// sources should pass them through CanonicalEuler first.
func AvgAngleDist(e1, e2 r3.Vector) float64 {
	return (utils.AngleDiffDeg(e1.X, e2.X) + utils.AngleDiffDeg(e1.Y, e2.Y) + utils.AngleDiffDeg(e1.Z, e2.Z)) / 3
}

// SignedAngleAbout returns the angle in radians that rotates `from` onto `to` about the unit
// vector `axis`, after projecting both onto the plane normal to the axis. The bool is false if
// either projection is shorter than Epsilon, in which case the angle is meaningless.
func SignedAngleAbout(axis, from, to r3.Vector) (float64, bool) {
	fromP := from.Sub(axis.Mul(from.Dot(axis)))
	toP := to.Sub(axis.Mul(to.Dot(axis)))
	if fromP.Norm() < Epsilon || toP.Norm() < Epsilon {
		return 0, false
	}
	return math.Atan2(axis.Dot(fromP.Cross(toP)), fromP.Dot(toP)), true
}
