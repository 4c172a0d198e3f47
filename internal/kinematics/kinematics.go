// Package kinematics computes the per-joint quantities the articulated
// body solver consumes: poses, joint screws, spatial inertias, velocity
// products and gravity wrenches, all expressed about the world origin.
package kinematics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/world"
	"k8s.io/klog/v2"
)

// Kinematics holds the kinematic state of a flattened mechanism at one
// instant. Every slice is indexed like the Simulation it was updated from.
type Kinematics struct {
	// Pose is the world pose of each joint frame.
	Pose []spatial.Pose
	// S is the joint screw (motion subspace) in world coordinates.
	S []spatial.Vector33
	// K is the velocity-product acceleration V ×ₘ S·qp.
	K []spatial.Vector33
	// I is the spatial inertia of each body about the world origin.
	I []spatial.Matrix33
	// P is the gyroscopic bias wrench V ×f I·V.
	P []spatial.Vector33
	// W is the gravity wrench on each body.
	W []spatial.Vector33
	// V is the body twist.
	V []spatial.Vector33

	mass []float64
	com  []mgl64.Vec3
}

// New allocates room for n joints.
func New(n int) *Kinematics {
	k := &Kinematics{}
	k.Resize(n)
	return k
}

// Resize changes the joint count, reusing the existing storage when it is
// large enough.
func (k *Kinematics) Resize(n int) {
	k.Pose = resize(k.Pose, n)
	k.S = resize(k.S, n)
	k.K = resize(k.K, n)
	k.I = resize(k.I, n)
	k.P = resize(k.P, n)
	k.W = resize(k.W, n)
	k.V = resize(k.V, n)
	k.mass = resize(k.mass, n)
	k.com = resize(k.com, n)
}

func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}

func (k *Kinematics) Len() int { return len(k.S) }

// Update recomputes every quantity for joint coordinates q and rates qp.
// Parents must be indexed before their children.
func (k *Kinematics) Update(sim *world.Simulation, q, qp []float64) error {
	n := sim.Dof()
	if len(q) != n || len(qp) != n {
		return fmt.Errorf("kinematics: got %d coordinates and %d rates for %d joints", len(q), len(qp), n)
	}
	k.Resize(n)

	for i := 0; i < n; i++ {
		j := &sim.Joints[i]

		step, err := j.LocalJointStep(q[i])
		if err != nil {
			return fmt.Errorf("kinematics: joint %d: %w", i, err)
		}
		parentPose := spatial.Origin()
		var parentV spatial.Vector33
		if p := sim.Parent(i); p >= 0 {
			parentPose = k.Pose[p]
			parentV = k.V[p]
		}
		pose := parentPose.Compose(step)

		s, err := j.JointAxis(pose)
		if err != nil {
			return fmt.Errorf("kinematics: joint %d: %w", i, err)
		}
		sq := s.Scale(qp[i])
		v := parentV.Add(sq)

		mp := j.MassProperties()
		inertia := mp.Spatial(pose)

		k.Pose[i] = pose
		k.S[i] = s
		k.V[i] = v
		k.K[i] = spatial.TwistCross(v, sq)
		k.I[i] = inertia
		k.P[i] = spatial.WrenchCross(v, inertia.MulVec(v))
		k.W[i] = mp.Weight(pose, sim.Gravity)
		k.mass[i] = mp.Mass
		k.com[i] = pose.TransformPoint(mp.CenterOfMass())
	}
	if klog.V(4).Enabled() {
		for i := 0; i < n; i++ {
			klog.Infof("kinematics: joint %d pose=%v s=%v v=%v", i, k.Pose[i], k.S[i], k.V[i])
		}
	}
	return nil
}

func (k *Kinematics) Inertia(i int) spatial.Matrix33          { return k.I[i] }
func (k *Kinematics) Momentum(i int) spatial.Vector33         { return k.P[i] }
func (k *Kinematics) Weight(i int) spatial.Vector33           { return k.W[i] }
func (k *Kinematics) Axis(i int) spatial.Vector33             { return k.S[i] }
func (k *Kinematics) BiasAcceleration(i int) spatial.Vector33 { return k.K[i] }

// CenterOfMass is the world position of the center of mass of body i.
func (k *Kinematics) CenterOfMass(i int) mgl64.Vec3 { return k.com[i] }

// KineticEnergy is Σ ½·V·I·V over every body.
func (k *Kinematics) KineticEnergy() float64 {
	e := 0.0
	for i := range k.V {
		e += 0.5 * k.V[i].Dot(k.I[i].MulVec(k.V[i]))
	}
	return e
}

// PotentialEnergy is -Σ m·g·c, zero when every center of mass is at the
// origin.
func (k *Kinematics) PotentialEnergy(gravity mgl64.Vec3) float64 {
	e := 0.0
	for i := range k.mass {
		e -= k.mass[i] * gravity.Dot(k.com[i])
	}
	return e
}
