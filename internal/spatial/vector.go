// Package spatial implements the six-dimensional vector and matrix algebra
// used by the articulated-body recursion.
//
// A [Vector33] is a pair of 3-vectors and a [Matrix33] a 2×2 arrangement of
// 3×3 blocks. Every operation behaves like ordinary linear algebra on the
// 6-vector (Linear, Angular) without ever materializing it.
//
// The same pair is read two ways:
//
//   - a twist (motion) puts the line direction in Angular and the moment in
//     Linear; see [TwistAt] and [PureTwist].
//   - a wrench (force) puts the line direction in Linear and the moment in
//     Angular; see [WrenchAt] and [PureWrench].
package spatial

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vector33 is a spatial vector made of a linear and an angular half.
type Vector33 struct {
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
}

// Zero33 is the zero spatial vector.
var Zero33 = Vector33{}

// NewVector33 builds a spatial vector from its halves.
func NewVector33(linear, angular mgl64.Vec3) Vector33 {
	return Vector33{Linear: linear, Angular: angular}
}

func (v Vector33) Add(o Vector33) Vector33 {
	return Vector33{v.Linear.Add(o.Linear), v.Angular.Add(o.Angular)}
}

func (v Vector33) Sub(o Vector33) Vector33 {
	return Vector33{v.Linear.Sub(o.Linear), v.Angular.Sub(o.Angular)}
}

func (v Vector33) Neg() Vector33 {
	return Vector33{v.Linear.Mul(-1), v.Angular.Mul(-1)}
}

func (v Vector33) Scale(f float64) Vector33 {
	return Vector33{v.Linear.Mul(f), v.Angular.Mul(f)}
}

// Div divides both halves by d. Callers are responsible for d != 0.
func (v Vector33) Div(d float64) Vector33 {
	return Vector33{v.Linear.Mul(1 / d), v.Angular.Mul(1 / d)}
}

// Dot is the plain 6-dimensional inner product.
func (v Vector33) Dot(o Vector33) float64 {
	return v.Linear.Dot(o.Linear) + v.Angular.Dot(o.Angular)
}

// Dot returns a·b.
func Dot(a, b Vector33) float64 {
	return a.Dot(b)
}

// Outer returns the 6×6 matrix a·bᵀ.
func Outer(a, b Vector33) Matrix33 {
	return Matrix33{
		A: outer3(a.Linear, b.Linear),
		B: outer3(a.Linear, b.Angular),
		C: outer3(a.Angular, b.Linear),
		D: outer3(a.Angular, b.Angular),
	}
}

// Norm is the Euclidean norm of the 6-vector.
func (v Vector33) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vector33) IsZero() bool {
	return v == Zero33
}

// ApproxEqual compares element-wise with an absolute threshold.
func (v Vector33) ApproxEqual(o Vector33, eps float64) bool {
	return NearVec3(v.Linear, o.Linear, eps) && NearVec3(v.Angular, o.Angular, eps)
}

// Elements returns the six components in (Linear, Angular) order.
func (v Vector33) Elements() [6]float64 {
	return [6]float64{
		v.Linear[0], v.Linear[1], v.Linear[2],
		v.Angular[0], v.Angular[1], v.Angular[2],
	}
}

func (v Vector33) String() string {
	return fmt.Sprintf("[%g,%g,%g | %g,%g,%g]",
		v.Linear[0], v.Linear[1], v.Linear[2],
		v.Angular[0], v.Angular[1], v.Angular[2])
}

func outer3(a, b mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromCols(a.Mul(b[0]), a.Mul(b[1]), a.Mul(b[2]))
}

// CrossOp returns the 3×3 matrix [v×] with [v×]u = v×u.
func CrossOp(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3{
		0, v[2], -v[1],
		-v[2], 0, v[0],
		v[1], -v[0], 0,
	}
}
