package units

import (
	"errors"
	"math"
	"testing"
)

func TestConvertLength(t *testing.T) {
	tests := []struct {
		from, to System
		want     float64
	}{
		{MKS, MKS, 1},
		{MKS, MMKS, 1000},
		{MKS, CGS, 100},
		{IPS, MKS, 0.0254},
		{FPS, IPS, 12},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			got := Length.Convert(tt.from, tt.to)
			if math.Abs(got-tt.want) > 1e-12*tt.want {
				t.Errorf("Length.Convert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertRoundTrip(t *testing.T) {
	quantities := []Quantity{Length, Mass, Force, Torque, Inertia, Acceleration, AngularMomentum}
	for _, q := range quantities {
		for _, a := range Systems() {
			for _, b := range Systems() {
				f := q.Convert(a, b) * q.Convert(b, a)
				if math.Abs(f-1) > 1e-12 {
					t.Errorf("%v %v->%v->%v factor = %v, want 1", q, a, b, a, f)
				}
			}
		}
	}
}

func TestEarthGravity(t *testing.T) {
	if g := MKS.EarthGravity(); g != StandardGravity {
		t.Errorf("MKS gravity = %v, want %v", g, StandardGravity)
	}
	if g := MMKS.EarthGravity(); math.Abs(g-9806.65) > 1e-9 {
		t.Errorf("MMKS gravity = %v, want 9806.65", g)
	}
	if g := IPS.EarthGravity(); math.Abs(g-386.0885826771654) > 1e-9 {
		t.Errorf("IPS gravity = %v, want ~386.09", g)
	}
}

func TestQuantityMul(t *testing.T) {
	if Force.Mul(Length) != Torque {
		t.Errorf("Force*Length = %v, want %v", Force.Mul(Length), Torque)
	}
	if Mass.Mul(Length).Mul(Length) != Inertia {
		t.Error("Mass*Length^2 should be Inertia")
	}
}

func TestParse(t *testing.T) {
	s, err := Parse("ips")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s != IPS {
		t.Errorf("Parse(ips) = %v, want IPS", s)
	}

	_, err = Parse("furlong")
	if !errors.Is(err, ErrUnknownSystem) {
		t.Errorf("expected ErrUnknownSystem, got %v", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	for _, s := range Systems() {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", s, err)
		}
		var got System
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s): %v", text, err)
		}
		if got != s {
			t.Errorf("round trip %v -> %v", s, got)
		}
	}
}
