// Package mass holds rigid-body mass properties and their conversion
// between unit systems.
package mass

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
)

// Properties describes a rigid body relative to its own origin. Storing the
// first moment and the inertia about the origin (rather than about the
// center of mass) makes combining bodies a plain sum.
type Properties struct {
	Units units.System
	// Mass of the body.
	Mass float64
	// Moment is the first mass moment, mass times center of mass.
	Moment mgl64.Vec3
	// Inertia is the mass moment of inertia about the body origin.
	Inertia mgl64.Mat3
}

// Zero is a massless body.
func Zero(u units.System) Properties {
	return Properties{Units: u}
}

// PointMass is a mass m concentrated at cg.
func PointMass(u units.System, m float64, cg mgl64.Vec3) Properties {
	return FromCenter(u, m, cg, mgl64.Mat3{})
}

// Sphere is a solid sphere of mass m and radius r centered at cg.
func Sphere(u units.System, m, r float64, cg mgl64.Vec3) Properties {
	return FromCenter(u, m, cg, mgl64.Ident3().Mul(0.4*m*r*r))
}

// Rod is a slender uniform rod of mass m from the origin to end.
func Rod(u units.System, m float64, end mgl64.Vec3) Properties {
	l := end.Len()
	if l == 0 {
		return PointMass(u, m, end)
	}
	dir := end.Mul(1 / l)
	// m·l²/12 about the two axes normal to the rod.
	ic := mgl64.Ident3().Sub(outer(dir, dir)).Mul(m * l * l / 12)
	return FromCenter(u, m, end.Mul(0.5), ic)
}

// FromCenter builds properties from a mass, center of mass and inertia
// about the center of mass. The parallel axis theorem moves the inertia to
// the body origin.
func FromCenter(u units.System, m float64, cg mgl64.Vec3, ic mgl64.Mat3) Properties {
	cx := spatial.CrossOp(cg)
	return Properties{
		Units:   u,
		Mass:    m,
		Moment:  cg.Mul(m),
		Inertia: ic.Sub(cx.Mul3(cx).Mul(m)),
	}
}

// CenterOfMass is Moment/Mass, or the origin for a massless body.
func (p Properties) CenterOfMass() mgl64.Vec3 {
	if p.Mass == 0 {
		return mgl64.Vec3{}
	}
	return p.Moment.Mul(1 / p.Mass)
}

// InertiaAtCenter is the inertia about the center of mass.
func (p Properties) InertiaAtCenter() mgl64.Mat3 {
	if p.Mass == 0 {
		return p.Inertia
	}
	cx := spatial.CrossOp(p.CenterOfMass())
	return p.Inertia.Add(cx.Mul3(cx).Mul(p.Mass))
}

// Add combines two bodies rigidly. o is converted into p's units first.
func (p Properties) Add(o Properties) Properties {
	o = o.Convert(p.Units)
	return Properties{
		Units:   p.Units,
		Mass:    p.Mass + o.Mass,
		Moment:  p.Moment.Add(o.Moment),
		Inertia: p.Inertia.Add(o.Inertia),
	}
}

// Sub removes o from p. o is converted into p's units first.
func (p Properties) Sub(o Properties) Properties {
	o = o.Convert(p.Units)
	return Properties{
		Units:   p.Units,
		Mass:    p.Mass - o.Mass,
		Moment:  p.Moment.Sub(o.Moment),
		Inertia: p.Inertia.Sub(o.Inertia),
	}
}

// Convert expresses the properties in the target unit system.
func (p Properties) Convert(target units.System) Properties {
	if p.Units == target {
		return p
	}
	return Properties{
		Units:   target,
		Mass:    p.Mass * units.Mass.Convert(p.Units, target),
		Moment:  p.Moment.Mul(units.FirstMoment.Convert(p.Units, target)),
		Inertia: p.Inertia.Mul(units.Inertia.Convert(p.Units, target)),
	}
}

// Spatial is the 6×6 spatial inertia of the body placed at pose, taken
// about the world origin. It maps a twist (v, ω) to a momentum wrench:
//
//	| m·1     -m[c×]          |
//	| m[c×]   Ic - m[c×][c×]  |
//
// with c the world center of mass and Ic the world inertia about it.
func (p Properties) Spatial(pose spatial.Pose) spatial.Matrix33 {
	r := pose.RotationMatrix()
	c := pose.TransformPoint(p.CenterOfMass())
	ic := r.Mul3(p.InertiaAtCenter()).Mul3(r.Transpose())
	cx := spatial.CrossOp(c)
	mcx := cx.Mul(p.Mass)
	return spatial.Matrix33{
		A: mgl64.Ident3().Mul(p.Mass),
		B: mcx.Mul(-1),
		C: mcx,
		D: ic.Sub(mcx.Mul3(cx)),
	}
}

// Weight is the gravity wrench on the body placed at pose.
func (p Properties) Weight(pose spatial.Pose, gravity mgl64.Vec3) spatial.Vector33 {
	return spatial.WrenchAt(gravity.Mul(p.Mass), pose.TransformPoint(p.CenterOfMass()), 0)
}

// ApproxEqual compares all fields with an absolute threshold.
func (p Properties) ApproxEqual(o Properties, eps float64) bool {
	return p.Units == o.Units &&
		spatial.Near(p.Mass, o.Mass, eps) &&
		spatial.NearVec3(p.Moment, o.Moment, eps) &&
		spatial.NearMat3(p.Inertia, o.Inertia, eps)
}

func (p Properties) String() string {
	c := p.CenterOfMass()
	return fmt.Sprintf("Mass(units=%v, m=%g, cg=[%g,%g,%g])", p.Units, p.Mass, c[0], c[1], c[2])
}

func outer(a, b mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromCols(a.Mul(b[0]), a.Mul(b[1]), a.Mul(b[2]))
}
