// Package articulated implements the articulated-body recursion over a
// tree of one degree of freedom joints.
//
// Calculate runs two sweeps. The backward sweep, leaves to root, folds
// every child's articulated inertia I_A and bias force p_A into its
// parent. The forward sweep, root to leaves, accumulates the inverse
// apparent inertia L_A and the bias acceleration b_A. Accelerations adds
// the usual third sweep that resolves joint accelerations from I_A and
// p_A.
//
// All spatial quantities are expressed about the world origin: twists as
// (linear, angular) with the angular half along the screw line, wrenches
// as (force, moment).
package articulated

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/featherstone/internal/spatial"
	"k8s.io/klog/v2"
)

var (
	// ErrDimension is returned when the force, acceleration or workspace
	// lengths disagree with the joint count.
	ErrDimension = errors.New("articulated: dimension mismatch")
	// ErrTopology is returned when a parent is indexed after its child.
	ErrTopology = errors.New("articulated: parent must precede child")
	// ErrDegenerateJoint is returned when s·X·s vanishes for a joint
	// screw s, which means a malformed axis or a massless subtree.
	ErrDegenerateJoint = errors.New("articulated: degenerate joint")
	// ErrSingularInertia is returned when Φ or a body inertia cannot be
	// inverted.
	ErrSingularInertia = errors.New("articulated: singular inertia")
)

// Pass names the sweep an error happened in.
type Pass string

const (
	Backward     Pass = "backward"
	Forward      Pass = "forward"
	Acceleration Pass = "acceleration"
)

// JointError reports the joint and sweep a failure happened in.
type JointError struct {
	Joint int
	Pass  Pass
	Err   error
}

func (e *JointError) Error() string {
	return fmt.Sprintf("%s pass, joint %d: %v", e.Pass, e.Joint, e.Err)
}

func (e *JointError) Unwrap() error { return e.Err }

// Topology is the flattened tree. Indices must be assigned so that every
// parent precedes its children; Parent returns a negative value for roots.
type Topology interface {
	Dof() int
	Parent(i int) int
	Children(i int) []int
}

// Kinematics supplies the per-joint inputs of the recursion at the current
// pose and velocity.
type Kinematics interface {
	// Inertia is the spatial inertia I of body i.
	Inertia(i int) spatial.Matrix33
	// Momentum is the velocity-product bias wrench p of body i.
	Momentum(i int) spatial.Vector33
	// Weight is the external (gravity) wrench w on body i.
	Weight(i int) spatial.Vector33
	// Axis is the joint screw s.
	Axis(i int) spatial.Vector33
	// BiasAcceleration is the velocity-product acceleration k.
	BiasAcceleration(i int) spatial.Vector33
}

// degenerateTolerance bounds |s·X·s| relative to |s|·|X·s|.
const degenerateTolerance = 1e-12

// Articulated is the reusable workspace of the recursion. The zero value
// is ready to use; it grows to the joint count on the first call and
// does not allocate again while the count stays within capacity.
//
// The arrays are overwritten in full by every successful call. After a
// failed call their content is undefined.
type Articulated struct {
	ia  []spatial.Matrix33
	pa  []spatial.Vector33
	la  []spatial.Matrix33
	ba  []spatial.Vector33
	acc []spatial.Vector33
}

// New returns a workspace sized for n joints.
func New(n int) *Articulated {
	a := &Articulated{}
	a.Resize(n)
	return a
}

// Resize sets the joint count, reusing capacity when possible.
func (a *Articulated) Resize(n int) {
	a.ia = resize(a.ia, n)
	a.pa = resize(a.pa, n)
	a.la = resize(a.la, n)
	a.ba = resize(a.ba, n)
	a.acc = resize(a.acc, n)
}

func resize[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]T, n)
}

// Count is the joint count the workspace is sized for.
func (a *Articulated) Count() int { return len(a.ia) }

// IA is the articulated inertia of the subtree rooted at joint i.
func (a *Articulated) IA(i int) spatial.Matrix33 { return a.ia[i] }

// PA is the articulated bias force of the subtree rooted at joint i.
func (a *Articulated) PA(i int) spatial.Vector33 { return a.pa[i] }

// LA is the inverse apparent inertia accumulated from the root to i.
func (a *Articulated) LA(i int) spatial.Matrix33 { return a.la[i] }

// BA is the bias acceleration accumulated from the root to i.
func (a *Articulated) BA(i int) spatial.Vector33 { return a.ba[i] }

// Calculate runs the backward and forward sweeps for generalized forces
// tau.
func (a *Articulated) Calculate(topo Topology, kin Kinematics, tau []float64) error {
	n := topo.Dof()
	if len(tau) != n {
		return fmt.Errorf("%w: %d forces for %d joints", ErrDimension, len(tau), n)
	}
	if err := checkOrder(topo); err != nil {
		return err
	}
	a.Resize(n)

	if err := a.backward(topo, kin, tau); err != nil {
		return err
	}
	if err := a.forward(topo, kin, tau); err != nil {
		return err
	}
	if klog.V(4).Enabled() {
		for i := 0; i < n; i++ {
			klog.Infof("articulated: joint %d IA.trace=%g pA=%v bA=%v", i, a.ia[i].Trace(), a.pa[i], a.ba[i])
		}
	}
	return nil
}

func checkOrder(topo Topology) error {
	n := topo.Dof()
	for i := 0; i < n; i++ {
		if p := topo.Parent(i); p >= i || p >= n {
			return fmt.Errorf("%w: joint %d has parent %d", ErrTopology, i, p)
		}
		for _, c := range topo.Children(i) {
			if c <= i || c >= n || topo.Parent(c) != i {
				return fmt.Errorf("%w: joint %d lists child %d", ErrTopology, i, c)
			}
		}
	}
	return nil
}

func (a *Articulated) backward(topo Topology, kin Kinematics, tau []float64) error {
	for i := topo.Dof() - 1; i >= 0; i-- {
		ia := kin.Inertia(i)
		pa := kin.Momentum(i).Sub(kin.Weight(i))

		for _, c := range topo.Children(i) {
			s := kin.Axis(c)
			ln := a.ia[c].MulVec(s)
			den := s.Dot(ln)
			if degenerate(den, s, ln) {
				return &JointError{Joint: c, Pass: Backward, Err: fmt.Errorf("%w: s·I_A·s = %g", ErrDegenerateJoint, den)}
			}
			tn := ln.Div(den)
			ru := spatial.Identity33().Sub(spatial.Outer(tn, s))

			ia = ia.Add(ru.Mul(a.ia[c]))
			pa = pa.Add(tn.Scale(tau[c])).
				Add(ru.MulVec(a.ia[c].MulVec(kin.BiasAcceleration(c)).Add(a.pa[c])))
		}
		a.ia[i] = ia
		a.pa[i] = pa
	}
	return nil
}

func (a *Articulated) forward(topo Topology, kin Kinematics, tau []float64) error {
	for i := 0; i < topo.Dof(); i++ {
		inertia := kin.Inertia(i)
		s := kin.Axis(i)

		var lp spatial.Matrix33
		var bp spatial.Vector33
		phiInv := spatial.Identity33()
		if par := topo.Parent(i); par >= 0 {
			lp, bp = a.la[par], a.ba[par]
			var err error
			phiInv, err = spatial.Identity33().Add(inertia.Mul(lp)).Inverse()
			if err != nil {
				return &JointError{Joint: i, Pass: Forward, Err: fmt.Errorf("%w: Φ: %v", ErrSingularInertia, err)}
			}
		}

		u := phiInv.MulVec(inertia.MulVec(s))
		den := s.Dot(u)
		if degenerate(den, s, u) {
			return &JointError{Joint: i, Pass: Forward, Err: fmt.Errorf("%w: s·Φ⁻¹·I·s = %g", ErrDegenerateJoint, den)}
		}
		t := u.Div(den)

		inv, err := inertia.Inverse()
		if err != nil {
			return &JointError{Joint: i, Pass: Forward, Err: fmt.Errorf("%w: body inertia: %v", ErrSingularInertia, err)}
		}

		st := spatial.Outer(s, t)
		la := phiInv.Mul(st.Mul(inv).Add(lp))
		ba := phiInv.MulVec(
			s.Scale(tau[i] / den).
				Add(spatial.Identity33().Sub(st).MulVec(bp.Add(kin.BiasAcceleration(i)))),
		).Sub(la.MulVec(a.pa[i]))

		a.la[i] = la
		a.ba[i] = ba
	}
	return nil
}

// Accelerations resolves the joint accelerations qpp from the articulated
// inertias and bias forces left by the last successful Calculate with the
// same inputs.
func (a *Articulated) Accelerations(topo Topology, kin Kinematics, tau, qpp []float64) error {
	n := topo.Dof()
	if len(tau) != n || len(qpp) != n || a.Count() != n {
		return fmt.Errorf("%w: %d forces, %d accelerations, workspace %d, %d joints",
			ErrDimension, len(tau), len(qpp), a.Count(), n)
	}
	for i := 0; i < n; i++ {
		var parent spatial.Vector33
		if par := topo.Parent(i); par >= 0 {
			parent = a.acc[par]
		}
		s := kin.Axis(i)
		k := kin.BiasAcceleration(i)
		u := a.ia[i].MulVec(s)
		den := s.Dot(u)
		if degenerate(den, s, u) {
			return &JointError{Joint: i, Pass: Acceleration, Err: fmt.Errorf("%w: s·I_A·s = %g", ErrDegenerateJoint, den)}
		}
		ak := parent.Add(k)
		qpp[i] = (tau[i] - s.Dot(a.ia[i].MulVec(ak).Add(a.pa[i]))) / den
		a.acc[i] = ak.Add(s.Scale(qpp[i]))
	}
	return nil
}

// Solve runs Calculate followed by Accelerations.
func (a *Articulated) Solve(topo Topology, kin Kinematics, tau, qpp []float64) error {
	if err := a.Calculate(topo, kin, tau); err != nil {
		return err
	}
	return a.Accelerations(topo, kin, tau, qpp)
}

func degenerate(den float64, s, x spatial.Vector33) bool {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return true
	}
	return math.Abs(den) <= degenerateTolerance*s.Norm()*x.Norm()
}
