package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// VecToMgl converts an r3 vector to an mgl64 vector.
func VecToMgl(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// MglToVec converts an mgl64 vector to an r3 vector.
func MglToVec(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// TransformPoint applies an affine matrix to a point.
func TransformPoint(m mgl64.Mat4, p r3.Vector) r3.Vector {
	return MglToVec(m.Mul4x1(VecToMgl(p).Vec4(1)).Vec3())
}

// TransformDirection applies only the linear part of an affine matrix to a vector.
func TransformDirection(m mgl64.Mat4, d r3.Vector) r3.Vector {
	return MglToVec(m.Mat3().Mul3x1(VecToMgl(d)))
}

// Translation returns the translation column of an affine matrix.
func Translation(m mgl64.Mat4) r3.Vector {
	return MglToVec(m.Col(3).Vec3())
}

// Decompose splits an affine matrix without shear into translation, euler rotation and scale.
// Negative determinants are attributed to the X scale.
func Decompose(m mgl64.Mat4) (translation, euler, scale r3.Vector) {
	linear := m.Mat3()
	cols := [3]mgl64.Vec3{linear.Col(0), linear.Col(1), linear.Col(2)}
	scale = r3.Vector{X: cols[0].Len(), Y: cols[1].Len(), Z: cols[2].Len()}
	if linear.Det() < 0 {
		scale.X = -scale.X
	}
	for i, s := range []float64{scale.X, scale.Y, scale.Z} {
		if math.Abs(s) > Epsilon {
			cols[i] = cols[i].Mul(1 / s)
		}
	}
	rotation := mgl64.Mat3FromCols(cols[0], cols[1], cols[2])
	return Translation(m), EulerFromMatrix(rotation), scale
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}
