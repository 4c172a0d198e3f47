package spatial

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/units"
)

// TwistAt is the twist of unit magnitude along axis through point with
// the given pitch: Linear = axis·pitch + point×axis, Angular = axis.
// An infinite pitch is not representable here; use PureTwist.
func TwistAt(axis, point mgl64.Vec3, pitch float64) Vector33 {
	return Vector33{
		Linear:  axis.Mul(pitch).Add(point.Cross(axis)),
		Angular: axis,
	}
}

// PureTwist is a translation along v.
func PureTwist(v mgl64.Vec3) Vector33 {
	return Vector33{Linear: v}
}

// IsPureTwist reports whether the twist has no rotation.
func IsPureTwist(t Vector33) bool {
	return t.Angular == (mgl64.Vec3{})
}

// TwistCross is the motion cross product a×b:
//
//	| ω× v× | | b.v |
//	|  0 ω× | | b.ω |
func TwistCross(a, b Vector33) Vector33 {
	return Vector33{
		Linear:  a.Angular.Cross(b.Linear).Add(a.Linear.Cross(b.Angular)),
		Angular: a.Angular.Cross(b.Angular),
	}
}

// TwistCrossOp is the matrix form of TwistCross(a, ·).
func TwistCrossOp(a Vector33) Matrix33 {
	wx := CrossOp(a.Angular)
	return Matrix33{A: wx, B: CrossOp(a.Linear), D: wx}
}

// TwistMagnitude is the rotation rate of a twist.
func TwistMagnitude(t Vector33) float64 { return t.Angular.Len() }

// TwistDirection is the unit direction of the twist line.
func TwistDirection(t Vector33) mgl64.Vec3 { return t.Angular.Normalize() }

// TwistPitch is ω·v / |ω|².
func TwistPitch(t Vector33) float64 {
	return t.Angular.Dot(t.Linear) / t.Angular.Dot(t.Angular)
}

// TwistPosition is the point of the twist line closest to the origin,
// ω×v / |ω|².
func TwistPosition(t Vector33) mgl64.Vec3 {
	return t.Angular.Cross(t.Linear).Mul(1 / t.Angular.Dot(t.Angular))
}

// ConvertTwist rescales a twist carrying quantity q per unit of rotation.
// The moment half picks up an extra length factor.
func ConvertTwist(t Vector33, from, to units.System, q units.Quantity) Vector33 {
	fl := units.Length.Convert(from, to)
	fq := q.Convert(from, to)
	return Vector33{Linear: t.Linear.Mul(fl * fq), Angular: t.Angular.Mul(fq)}
}

// WrenchAt is the wrench of magnitude |value| along value through point
// with the given pitch: Linear = value, Angular = value·pitch + point×value.
func WrenchAt(value, point mgl64.Vec3, pitch float64) Vector33 {
	return Vector33{
		Linear:  value,
		Angular: value.Mul(pitch).Add(point.Cross(value)),
	}
}

// PureWrench is a couple (pure torque) v.
func PureWrench(v mgl64.Vec3) Vector33 {
	return Vector33{Angular: v}
}

// IsPureWrench reports whether the wrench has no net force.
func IsPureWrench(w Vector33) bool {
	return w.Linear == (mgl64.Vec3{})
}

// WrenchCross is the force cross product a×*f of a twist a and a wrench f:
//
//	| ω×  0 | | f.F |
//	| v× ω× | | f.τ |
func WrenchCross(a, f Vector33) Vector33 {
	return Vector33{
		Linear:  a.Angular.Cross(f.Linear),
		Angular: a.Linear.Cross(f.Linear).Add(a.Angular.Cross(f.Angular)),
	}
}

// WrenchCrossOp is the matrix form of WrenchCross(a, ·).
func WrenchCrossOp(a Vector33) Matrix33 {
	wx := CrossOp(a.Angular)
	return Matrix33{A: wx, C: CrossOp(a.Linear), D: wx}
}

// WrenchMagnitude is the force magnitude of a wrench.
func WrenchMagnitude(w Vector33) float64 { return w.Linear.Len() }

// WrenchDirection is the unit direction of the wrench line.
func WrenchDirection(w Vector33) mgl64.Vec3 { return w.Linear.Normalize() }

// WrenchPitch is F·τ / |F|².
func WrenchPitch(w Vector33) float64 {
	return w.Linear.Dot(w.Angular) / w.Linear.Dot(w.Linear)
}

// WrenchPosition is the point of the wrench line closest to the origin,
// F×τ / |F|².
func WrenchPosition(w Vector33) mgl64.Vec3 {
	return w.Linear.Cross(w.Angular).Mul(1 / w.Linear.Dot(w.Linear))
}

// ConvertWrench rescales a wrench whose force half carries quantity q.
// The moment half picks up an extra length factor.
func ConvertWrench(w Vector33, from, to units.System, q units.Quantity) Vector33 {
	fl := units.Length.Convert(from, to)
	fq := q.Convert(from, to)
	return Vector33{Linear: w.Linear.Mul(fq), Angular: w.Angular.Mul(fl * fq)}
}
