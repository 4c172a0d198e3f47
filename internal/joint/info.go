package joint

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/mass"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
)

// InitialConditions is the joint coordinate and its rate at t=0.
type InitialConditions struct {
	Q  float64
	QP float64
}

// Info is one joint and the body it carries. The local pose places the
// joint frame relative to the parent body frame; the axis and the mass
// properties are expressed in the joint frame.
type Info struct {
	kind  Kind
	units units.System
	mass  mass.Properties

	LocalPosition     spatial.Pose
	LocalAxis         mgl64.Vec3
	Pitch             float64
	Motor             Motor
	InitialConditions InitialConditions
}

// NewInfo builds a joint description. The pitch is forced to 0 for
// revolute joints and +Inf for prismatic ones; mp is converted into u.
func NewInfo(u units.System, kind Kind, local spatial.Pose, axis mgl64.Vec3, pitch float64, mp mass.Properties) (Info, error) {
	switch kind {
	case Screw:
	case Revolute:
		pitch = 0
	case Prismatic:
		pitch = math.Inf(1)
	default:
		return Info{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
	if local.Orientation == (mgl64.Quat{}) {
		local.Orientation = mgl64.QuatIdent()
	}
	return Info{
		kind:          kind,
		units:         u,
		mass:          mp.Convert(u),
		LocalPosition: local,
		LocalAxis:     axis,
		Pitch:         pitch,
		Motor:         ConstForcing(0),
	}, nil
}

func (j *Info) Kind() Kind                      { return j.kind }
func (j *Info) Units() units.System             { return j.units }
func (j *Info) MassProperties() mass.Properties { return j.mass }

// AddMassProperties rigidly attaches more mass to the body.
func (j *Info) AddMassProperties(mp mass.Properties) {
	j.mass = j.mass.Add(mp.Convert(j.units))
}

// SubMassProperties removes mass from the body.
func (j *Info) SubMassProperties(mp mass.Properties) {
	j.mass = j.mass.Sub(mp.Convert(j.units))
}

// ZeroMassProperties makes the body massless.
func (j *Info) ZeroMassProperties() {
	j.mass = mass.Zero(j.units)
}

// JointAxis is the joint motion subspace for a joint frame at pose, in the
// frame pose is expressed in.
func (j *Info) JointAxis(pose spatial.Pose) (spatial.Vector33, error) {
	axis := pose.TransformVector(j.LocalAxis)
	switch j.kind {
	case Screw:
		return spatial.TwistAt(axis, pose.Position, j.Pitch), nil
	case Revolute:
		return spatial.TwistAt(axis, pose.Position, 0), nil
	case Prismatic:
		return spatial.PureTwist(axis), nil
	default:
		return spatial.Vector33{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(j.kind))
	}
}

// LocalJointStep is the joint frame relative to the parent body after the
// joint coordinate advances by q from the reference pose.
func (j *Info) LocalJointStep(q float64) (spatial.Pose, error) {
	switch j.kind {
	case Screw:
		return j.LocalPosition.TranslateRotate(j.LocalAxis.Mul(j.Pitch*q), rotation(j.LocalAxis, q)), nil
	case Revolute:
		return j.LocalPosition.Rotate(rotation(j.LocalAxis, q)), nil
	case Prismatic:
		return j.LocalPosition.Translate(j.LocalAxis.Mul(q)), nil
	default:
		return spatial.Pose{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(j.kind))
	}
}

func rotation(axis mgl64.Vec3, angle float64) mgl64.Quat {
	if angle == 0 {
		return mgl64.QuatIdent()
	}
	return mgl64.QuatRotate(angle, axis.Normalize())
}

// Convert rescales this joint, and only this joint, into target. Whole
// trees must be converted through their owner so children stay in step.
func (j *Info) Convert(target units.System) {
	if j.units == target {
		return
	}
	from := j.units
	if j.kind == Screw {
		j.Pitch *= units.Length.Convert(from, target)
	}
	j.LocalPosition = j.LocalPosition.Convert(from, target)
	j.mass = j.mass.Convert(target)
	if j.kind == Prismatic {
		fl := units.Length.Convert(from, target)
		j.InitialConditions.Q *= fl
		j.InitialConditions.QP *= fl
	}
	if c, ok := j.Motor.(converter); ok {
		j.Motor = c.convert(j.kind, from, target)
	}
	j.units = target
}

// converter is implemented by motors whose parameters carry units.
type converter interface {
	convert(kind Kind, from, to units.System) Motor
}

// generalizedForce is the quantity of the joint force for a kind.
func generalizedForce(kind Kind) units.Quantity {
	if kind == Prismatic {
		return units.Force
	}
	return units.Torque
}

// coordinate is the quantity of the joint coordinate for a kind.
func coordinate(kind Kind) units.Quantity {
	if kind == Prismatic {
		return units.Length
	}
	return units.None
}

func (c ConstForcing) convert(kind Kind, from, to units.System) Motor {
	return ConstForcing(float64(c) * generalizedForce(kind).Convert(from, to))
}

func (s SpringDamper) convert(kind Kind, from, to units.System) Motor {
	ff := generalizedForce(kind).Convert(from, to)
	fq := coordinate(kind).Convert(from, to)
	return SpringDamper{K: s.K * ff / fq, C: s.C * ff / fq, Q0: s.Q0 * fq}
}

func (j *Info) String() string {
	switch j.kind {
	case Screw:
		return fmt.Sprintf("Screw(Units=%v, LocalPosition=%v, LocalAxis=%v, Pitch=%g)", j.units, j.LocalPosition, j.LocalAxis, j.Pitch)
	case Revolute:
		return fmt.Sprintf("Revolute(Units=%v, LocalPosition=%v, LocalAxis=%v)", j.units, j.LocalPosition, j.LocalAxis)
	case Prismatic:
		return fmt.Sprintf("Prismatic(Units=%v, LocalPosition=%v, LocalAxis=%v)", j.units, j.LocalPosition, j.LocalAxis)
	default:
		return fmt.Sprintf("%v(Units=%v, LocalPosition=%v, LocalAxis=%v, Pitch=%g)", j.kind, j.units, j.LocalPosition, j.LocalAxis, j.Pitch)
	}
}
