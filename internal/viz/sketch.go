package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/kinematics"
	"github.com/san-kum/featherstone/internal/world"
)

// Camera looks at the scene orthographically after turning it by Yaw
// about y and then Pitch about x. The zero camera looks down -z with y up.
type Camera struct {
	Yaw, Pitch float64
}

func (c Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

// Project maps a world point onto the view plane.
func (c Camera) Project(p mgl64.Vec3) mgl64.Vec2 {
	v := c.view().Mul3x1(p)
	return mgl64.Vec2{v[0], v[1]}
}

type segment struct{ a, b mgl64.Vec2 }

// Sketch draws the mechanism at the pose held by kin: a line from every
// joint to its parent joint (the world origin for roots), a line from the
// joint to its body's center of mass and a blob on the center of mass.
func Sketch(sim *world.Simulation, kin *kinematics.Kinematics, cam Camera, width, height int) string {
	c := NewCanvas(width, height)
	n := min(sim.Dof(), kin.Len())
	if n == 0 {
		return c.String()
	}

	var segs []segment
	var coms []mgl64.Vec2
	for i := 0; i < n; i++ {
		from := mgl64.Vec3{}
		if p := sim.Parent(i); p >= 0 {
			from = kin.Pose[p].Position
		}
		at := kin.Pose[i].Position
		com := kin.CenterOfMass(i)
		segs = append(segs,
			segment{cam.Project(from), cam.Project(at)},
			segment{cam.Project(at), cam.Project(com)},
		)
		coms = append(coms, cam.Project(com))
	}

	lo := mgl64.Vec2{math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec2{math.Inf(-1), math.Inf(-1)}
	grow := func(p mgl64.Vec2) {
		lo = mgl64.Vec2{math.Min(lo[0], p[0]), math.Min(lo[1], p[1])}
		hi = mgl64.Vec2{math.Max(hi[0], p[0]), math.Max(hi[1], p[1])}
	}
	for _, s := range segs {
		grow(s.a)
		grow(s.b)
	}

	dw, dh := c.Dots()
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		span = 1
	}
	scale := float64(min(dw, dh)-3) / span
	mid := lo.Add(hi).Mul(0.5)
	toDots := func(p mgl64.Vec2) (int, int) {
		x := float64(dw)/2 + (p[0]-mid[0])*scale
		y := float64(dh)/2 - (p[1]-mid[1])*scale
		return int(math.Round(x)), int(math.Round(y))
	}

	for _, s := range segs {
		x0, y0 := toDots(s.a)
		x1, y1 := toDots(s.b)
		c.Line(x0, y0, x1, y1)
	}
	for _, p := range coms {
		x, y := toDots(p)
		c.Blob(x, y)
	}
	return c.String()
}
