package spatial

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/units"
)

// Pose is a rigid placement: a position and an orientation.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Origin is the identity pose.
func Origin() Pose {
	return Pose{Orientation: mgl64.QuatIdent()}
}

// Translation is a pure translation pose.
func Translation(x, y, z float64) Pose {
	return Pose{Position: mgl64.Vec3{x, y, z}, Orientation: mgl64.QuatIdent()}
}

// NewPose builds a pose from a position and a rotation of angle radians
// about axis. A zero axis means no rotation.
func NewPose(position, axis mgl64.Vec3, angle float64) Pose {
	if axis.Len() == 0 || angle == 0 {
		return Pose{Position: position, Orientation: mgl64.QuatIdent()}
	}
	return Pose{Position: position, Orientation: mgl64.QuatRotate(angle, axis.Normalize())}
}

// Compose places local relative to p.
func (p Pose) Compose(local Pose) Pose {
	return Pose{
		Position:    p.Position.Add(p.Orientation.Rotate(local.Position)),
		Orientation: p.Orientation.Mul(local.Orientation).Normalize(),
	}
}

// Translate moves p by d expressed in p's own frame.
func (p Pose) Translate(d mgl64.Vec3) Pose {
	return Pose{Position: p.Position.Add(p.Orientation.Rotate(d)), Orientation: p.Orientation}
}

// Rotate turns p by q about its own origin.
func (p Pose) Rotate(q mgl64.Quat) Pose {
	return Pose{Position: p.Position, Orientation: p.Orientation.Mul(q).Normalize()}
}

// TranslateRotate translates by d then rotates by q, both in p's frame.
func (p Pose) TranslateRotate(d mgl64.Vec3, q mgl64.Quat) Pose {
	return p.Translate(d).Rotate(q)
}

// TransformPoint maps a point from p's frame to the parent frame.
func (p Pose) TransformPoint(v mgl64.Vec3) mgl64.Vec3 {
	return p.Position.Add(p.Orientation.Rotate(v))
}

// TransformVector maps a free vector from p's frame to the parent frame.
func (p Pose) TransformVector(v mgl64.Vec3) mgl64.Vec3 {
	return p.Orientation.Rotate(v)
}

// RotationMatrix is the orientation as a 3×3 matrix.
func (p Pose) RotationMatrix() mgl64.Mat3 {
	q := p.Orientation
	return mgl64.Mat3FromCols(
		q.Rotate(mgl64.Vec3{1, 0, 0}),
		q.Rotate(mgl64.Vec3{0, 1, 0}),
		q.Rotate(mgl64.Vec3{0, 0, 1}),
	)
}

// Convert rescales the position from one unit system to another.
func (p Pose) Convert(from, to units.System) Pose {
	return Pose{
		Position:    p.Position.Mul(units.Length.Convert(from, to)),
		Orientation: p.Orientation,
	}
}

// ApproxEqual compares positions and rotations; q and -q are the same
// rotation.
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	if !NearVec3(p.Position, o.Position, eps) {
		return false
	}
	return NearQuat(p.Orientation, o.Orientation, eps) ||
		NearQuat(p.Orientation, o.Orientation.Scale(-1), eps)
}

func (p Pose) String() string {
	q := p.Orientation
	return fmt.Sprintf("Pose(pos=[%g,%g,%g], ori=[%g; %g,%g,%g])",
		p.Position[0], p.Position[1], p.Position[2], q.W, q.V[0], q.V[1], q.V[2])
}
