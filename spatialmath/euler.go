package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/kinchain/utils"
)

// Euler vectors are in degrees. X is pitch (about local X), Y is yaw (about local Y, which is up)
// and Z is roll (about local Z, the direction segments extend in). The rotation is applied
// intrinsically yaw, then pitch, then roll: R = Ry(yaw) * Rx(pitch) * Rz(roll).

// Axis indices shared by euler vectors, translations and joint masks.
const (
	AxisX = iota
	AxisY
	AxisZ
)

// Component returns v's X, Y or Z component by index.
func Component(v r3.Vector, axis int) float64 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns a copy of v with component `axis` replaced.
func WithComponent(v r3.Vector, axis int, value float64) r3.Vector {
	switch axis {
	case AxisX:
		v.X = value
	case AxisY:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// UnitAxis returns the unit vector along the given axis index.
func UnitAxis(axis int) r3.Vector {
	return WithComponent(r3.Vector{}, axis, 1)
}

// RotationMatrix returns the homogeneous rotation for an euler vector.
func RotationMatrix(euler r3.Vector) mgl64.Mat4 {
	return mgl64.HomogRotate3DY(utils.DegToRad(euler.Y)).
		Mul4(mgl64.HomogRotate3DX(utils.DegToRad(euler.X))).
		Mul4(mgl64.HomogRotate3DZ(utils.DegToRad(euler.Z)))
}

// EulerFromMatrix extracts the euler vector of a pure rotation matrix. Pitch is returned in
// [-90, 90]; at gimbal lock roll is folded into yaw and reported as 0.
// Euler angles are terrible, but they are what joints are limited in.
func EulerFromMatrix(m mgl64.Mat3) r3.Vector {
	sinPitch := utils.Clamp(-m.At(1, 2), -1, 1)
	pitch := math.Asin(sinPitch)
	if math.Abs(sinPitch) > 1-1e-9 {
		return r3.Vector{
			X: utils.RadToDeg(pitch),
			Y: utils.RadToDeg(math.Atan2(-m.At(2, 0), m.At(0, 0))),
			Z: 0,
		}
	}
	return r3.Vector{
		X: utils.RadToDeg(pitch),
		Y: utils.RadToDeg(math.Atan2(m.At(0, 2), m.At(2, 2))),
		Z: utils.RadToDeg(math.Atan2(m.At(1, 0), m.At(1, 1))),
	}
}

// CanonicalEuler returns the euler vector EulerFromMatrix would produce for the same rotation.
func CanonicalEuler(euler r3.Vector) r3.Vector {
	return EulerFromMatrix(RotationMatrix(euler).Mat3())
}

// EulerToOffset returns the unit direction of local +Z after rotating by euler.
func EulerToOffset(euler r3.Vector) r3.Vector {
	return MglToVec(RotationMatrix(euler).Mat3().Col(2))
}

// EulerToQuat converts an euler vector to a unit quaternion.
func EulerToQuat(euler r3.Vector) quat.Number {
	half := func(deg float64) (float64, float64) {
		s, c := math.Sincos(utils.DegToRad(deg) / 2)
		return s, c
	}
	sy, cy := half(euler.Y)
	sp, cp := half(euler.X)
	sr, cr := half(euler.Z)
	qy := quat.Number{Real: cy, Jmag: sy}
	qx := quat.Number{Real: cp, Imag: sp}
	qz := quat.Number{Real: cr, Kmag: sr}
	return quat.Mul(quat.Mul(qy, qx), qz)
}

// QuatToEuler converts a unit quaternion to an euler vector.
func QuatToEuler(q quat.Number) r3.Vector {
	return EulerFromMatrix(QuatToMat3(q))
}

// QuatToMat3 converts a unit quaternion to a rotation matrix.
func QuatToMat3(q quat.Number) mgl64.Mat3 {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}.Normalize().Mat4().Mat3()
}
