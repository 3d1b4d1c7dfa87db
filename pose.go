package spath

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// === Pose Data Type ========================================================

// Pose is a rigid transform: a position and an orientation.
type Pose struct {
	Position    r3.Vector
	Orientation Quat
}

// Origin is the identity pose.
func Origin() Pose {
	return Pose{Orientation: Identity()}
}

// Pretty Stringer for poses.
func (p Pose) String() string {
	return fmt.Sprintf("[(%g,%g,%g) %s]",
		p.Position.X, p.Position.Y, p.Position.Z, p.Orientation)
}

// Transform maps a point given in pose-local coordinates to world
// coordinates.
func (p Pose) Transform(v r3.Vector) r3.Vector {
	return p.Orientation.Rotate(v).Add(p.Position)
}

// Compose returns the pose obtained by applying o in p's local coordinate
// system.
func (p Pose) Compose(o Pose) Pose {
	return Pose{
		Position:    p.Transform(o.Position),
		Orientation: p.Orientation.Mul(o.Orientation).Normalized(),
	}
}

// Equal compares two poses with precision ε.
func (p Pose) Equal(o Pose) bool {
	return Is0(p.Position.X-o.Position.X) &&
		Is0(p.Position.Y-o.Position.Y) &&
		Is0(p.Position.Z-o.Position.Z) &&
		p.Orientation.Equal(o.Orientation)
}

// Matrix returns the pose as a 4x4 homogeneous matrix, flattened
// column-major the way rendering APIs consume it.
func (p Pose) Matrix() [16]float64 {
	q := p.Orientation
	x2, y2, z2 := q.Imag+q.Imag, q.Jmag+q.Jmag, q.Kmag+q.Kmag
	xx, yy, zz := q.Imag*x2, q.Jmag*y2, q.Kmag*z2
	xy, xz, yz := q.Imag*y2, q.Imag*z2, q.Jmag*z2
	wx, wy, wz := q.Real*x2, q.Real*y2, q.Real*z2
	return [16]float64{
		1 - (yy + zz), xy + wz, xz - wy, 0,
		xy - wz, 1 - (xx + zz), yz + wx, 0,
		xz + wy, yz - wx, 1 - (xx + yy), 0,
		p.Position.X, p.Position.Y, p.Position.Z, 1,
	}
}
