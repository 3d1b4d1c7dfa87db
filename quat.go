package spath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// === Quaternion Data Type ==================================================

// Quat is a rotation quaternion. It wraps gonum's quaternion number type,
// whose exponential map provides the basis for spherical interpolation.
// Rotations are expected to be unit quaternions; use Normalized to enforce
// this after composing many rotations.
type Quat quat.Number

// Identity is the neutral rotation.
func Identity() Quat {
	return Quat{Real: 1}
}

// Q is a quick notation for constructing a quaternion from its scalar part
// w and vector parts x, y, z.
func Q(w, x, y, z float64) Quat {
	return Quat{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// AxisAngle constructs the rotation around axis by angle (counterclockwise,
// in radians). A zero axis yields the identity rotation.
func AxisAngle(axis r3.Vector, angle float64) Quat {
	n := axis.Norm()
	if Is0(n) {
		tracer().Errorf("created rotation with zero axis")
		return Identity()
	}
	sin := math.Sin(angle / 2)
	cos := math.Cos(angle / 2)
	u := axis.Mul(sin / n)
	return Quat{Real: cos, Imag: u.X, Jmag: u.Y, Kmag: u.Z}
}

// Pretty Stringer for quaternions.
func (q Quat) String() string {
	return fmt.Sprintf("(%g|%g,%g,%g)", q.Real, q.Imag, q.Jmag, q.Kmag)
}

func (q Quat) n() quat.Number {
	return quat.Number(q)
}

// Mul composes two rotations; q.Mul(r) rotates by r first, then by q.
func (q Quat) Mul(r Quat) Quat {
	return Quat(quat.Mul(q.n(), r.n()))
}

// Inv returns the inverse rotation.
func (q Quat) Inv() Quat {
	return Quat(quat.Inv(q.n()))
}

// Dot is the 4-dimensional dot product of two quaternions.
func (q Quat) Dot(r Quat) float64 {
	return q.Real*r.Real + q.Imag*r.Imag + q.Jmag*r.Jmag + q.Kmag*r.Kmag
}

// Negated returns -q, which represents the same rotation on the opposite
// hemisphere of the double cover.
func (q Quat) Negated() Quat {
	return Quat{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// Normalized returns q scaled to unit length.
func (q Quat) Normalized() Quat {
	a := quat.Abs(q.n())
	if Is0(a) {
		tracer().Errorf("normalized zero quaternion")
		return Identity()
	}
	return Quat(quat.Scale(1/a, q.n()))
}

// Equal compares two quaternions componentwise with precision ε.
func (q Quat) Equal(r Quat) bool {
	return Is0(q.Real-r.Real) && Is0(q.Imag-r.Imag) &&
		Is0(q.Jmag-r.Jmag) && Is0(q.Kmag-r.Kmag)
}

// Rotate applies the rotation to a vector.
func (q Quat) Rotate(v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q.n(), p), quat.Inv(q.n()))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// === Spherical Interpolation ===============================================

// Slerp interpolates between rotations a and b along the great-circle arc,
// with t moving from a (t=0) to b (t=1). No hemisphere flipping is
// performed; callers wanting shortest-arc behavior must present a and b on
// a consistent hemisphere (see Quat.Dot and Quat.Negated).
func Slerp(a, b Quat, t float64) Quat {
	return Quat(quat.Mul(a.n(), quat.PowReal(quat.Mul(quat.Inv(a.n()), b.n()), t)))
}

// logDif is log(a⁻¹ b), the tangent-space displacement from a towards b.
func logDif(a, b Quat) quat.Number {
	return quat.Log(quat.Mul(quat.Inv(a.n()), b.n()))
}

// SquadTangent computes the intermediate control quaternion at center for a
// SQUAD segment, from the neighboring keyframe orientations before and
// after. The three quaternions are expected on a consistent hemisphere.
func SquadTangent(before, center, after Quat) Quat {
	l := quat.Add(logDif(center, before), logDif(center, after))
	return Quat(quat.Mul(center.n(), quat.Exp(quat.Scale(-0.25, l))))
}

// Squad performs spherical quadrangle interpolation between a and b, with
// control quaternions ta and tb (see SquadTangent). The result moves from
// a (t=0) to b (t=1), C1-continuous across adjacent segments.
func Squad(a, ta, tb, b Quat, t float64) Quat {
	return Slerp(Slerp(a, b, t), Slerp(ta, tb, t), 2*t*(1-t))
}
