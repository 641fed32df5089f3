// Package vec provides the small 3-vector arithmetic used by the transport
// engine. Vectors are value types; every operation returns a new vector.
package vec

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func New(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func Zero() Vec3 { return Vec3{} }

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{v.X * f, v.Y * f, v.Z * f}
}

func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Unit returns v scaled to unit length. The zero vector is returned
// unchanged; callers that need a direction must check Norm first.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

func (v Vec3) IsValid() bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Trihedron completes a unit tangent t into a right-handed orthonormal basis
// (t, n, b). The normal is built by crossing t with whichever coordinate axis
// is least aligned with it, which keeps the construction stable for tangents
// near a pole.
func Trihedron(t Vec3) (n, b Vec3) {
	ref := Vec3{0, 0, 1}
	if math.Abs(t.Z) > math.Abs(t.X) && math.Abs(t.Z) > math.Abs(t.Y) {
		ref = Vec3{1, 0, 0}
	}
	n = t.Cross(ref).Unit()
	b = t.Cross(n).Unit()
	return n, b
}
