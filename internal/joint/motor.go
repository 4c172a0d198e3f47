package joint

import "fmt"

// Motor is a joint actuation law. It returns the generalized force (torque
// for rotation, force for translation) applied along the joint.
type Motor interface {
	Force(t, q, qp float64) float64
}

// ConstForcing applies a fixed generalized force.
type ConstForcing float64

func (c ConstForcing) Force(t, q, qp float64) float64 { return float64(c) }

func (c ConstForcing) String() string { return fmt.Sprintf("Const(%g)", float64(c)) }

// SpringDamper pulls the joint toward Q0 with stiffness K and damping C.
type SpringDamper struct {
	K  float64
	C  float64
	Q0 float64
}

func (s SpringDamper) Force(t, q, qp float64) float64 {
	return -s.K*(q-s.Q0) - s.C*qp
}

func (s SpringDamper) String() string {
	return fmt.Sprintf("SpringDamper(k=%g, c=%g, q0=%g)", s.K, s.C, s.Q0)
}

// Func adapts an ordinary function to a Motor.
type Func func(t, q, qp float64) float64

func (f Func) Force(t, q, qp float64) float64 { return f(t, q, qp) }
