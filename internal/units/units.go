// Package units describes the unit systems a mechanism can be expressed in
// and the conversion factors between them.
//
// Every dimensional quantity in the repository is a product of powers of
// length, mass and time. A [Quantity] carries those exponents, and
// [Quantity.Convert] returns the factor that takes a value measured in one
// [System] into another.
package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrUnknownSystem is returned when parsing an unrecognized unit system name.
var ErrUnknownSystem = errors.New("units: unknown unit system")

// StandardGravity is the conventional earth gravity in m/s².
const StandardGravity = 9.80665

// System identifies a consistent set of base units.
type System int

const (
	// MKS is meter, kilogram, second.
	MKS System = iota
	// CGS is centimeter, gram, second.
	CGS
	// MMKS is millimeter, kilogram, second.
	MMKS
	// FPS is foot, pound-mass, second.
	FPS
	// IPS is inch, pound-mass, second.
	IPS
)

type base struct {
	name   string
	length float64 // meters per length unit
	mass   float64 // kilograms per mass unit
	time   float64 // seconds per time unit
}

var systems = [...]base{
	MKS:  {"MKS", 1, 1, 1},
	CGS:  {"CGS", 0.01, 0.001, 1},
	MMKS: {"MMKS", 0.001, 1, 1},
	FPS:  {"FPS", 0.3048, 0.45359237, 1},
	IPS:  {"IPS", 0.0254, 0.45359237, 1},
}

// Systems lists every supported unit system.
func Systems() []System {
	return []System{MKS, CGS, MMKS, FPS, IPS}
}

func (s System) valid() bool {
	return s >= MKS && int(s) < len(systems)
}

func (s System) String() string {
	if !s.valid() {
		return fmt.Sprintf("System(%d)", int(s))
	}
	return systems[s].name
}

// Parse returns the system with the given name, case-insensitively.
func Parse(name string) (System, error) {
	for _, s := range Systems() {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	return MKS, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
}

func (s System) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSystem, int(s))
	}
	return []byte(s.String()), nil
}

func (s *System) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// EarthGravity is the standard gravity expressed in this system.
func (s System) EarthGravity() float64 {
	return StandardGravity * Acceleration.Convert(MKS, s)
}

// Quantity is a physical dimension given by its length, mass and time
// exponents.
type Quantity struct {
	Length int
	Mass   int
	Time   int
}

var (
	None            = Quantity{}
	Length          = Quantity{Length: 1}
	Mass            = Quantity{Mass: 1}
	Time            = Quantity{Time: 1}
	Speed           = Quantity{Length: 1, Time: -1}
	Acceleration    = Quantity{Length: 1, Time: -2}
	Force           = Quantity{Length: 1, Mass: 1, Time: -2}
	Torque          = Quantity{Length: 2, Mass: 1, Time: -2}
	Energy          = Torque
	Momentum        = Quantity{Length: 1, Mass: 1, Time: -1}
	AngularMomentum = Quantity{Length: 2, Mass: 1, Time: -1}
	Inertia         = Quantity{Length: 2, Mass: 1}
	FirstMoment     = Quantity{Length: 1, Mass: 1}
)

// Convert returns the factor f such that a value v in from equals v*f in to.
func (q Quantity) Convert(from, to System) float64 {
	if from == to {
		return 1
	}
	a, b := systems[from], systems[to]
	return math.Pow(a.length/b.length, float64(q.Length)) *
		math.Pow(a.mass/b.mass, float64(q.Mass)) *
		math.Pow(a.time/b.time, float64(q.Time))
}

// Mul combines two quantities, e.g. Force.Mul(Length) is Torque.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{q.Length + o.Length, q.Mass + o.Mass, q.Time + o.Time}
}

func (q Quantity) String() string {
	if q == None {
		return "1"
	}
	var parts []string
	add := func(sym string, e int) {
		switch {
		case e == 0:
		case e == 1:
			parts = append(parts, sym)
		default:
			parts = append(parts, fmt.Sprintf("%s^%d", sym, e))
		}
	}
	add("L", q.Length)
	add("M", q.Mass)
	add("T", q.Time)
	return strings.Join(parts, "·")
}
