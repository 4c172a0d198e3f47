package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a 6×6 operator has no inverse.
var ErrSingular = errors.New("spatial: singular matrix")

const (
	// detTolerance bounds |det| relative to the cube of the largest entry.
	detTolerance = 1e-12
	// cancelTolerance bounds a Schur complement relative to the terms it
	// was formed from; below it the complement is rounding noise.
	cancelTolerance = 1e-10
)

// Matrix33 is a 6×6 matrix stored as four 3×3 blocks:
//
//	| A B |
//	| C D |
//
// Rows and columns are ordered (Linear, Angular), matching [Vector33].
type Matrix33 struct {
	A, B, C, D mgl64.Mat3
}

// Identity33 returns the 6×6 identity.
func Identity33() Matrix33 {
	return Matrix33{A: mgl64.Ident3(), D: mgl64.Ident3()}
}

// Diagonal33 builds a block-diagonal matrix.
func Diagonal33(a, d mgl64.Mat3) Matrix33 {
	return Matrix33{A: a, D: d}
}

func (m Matrix33) Add(o Matrix33) Matrix33 {
	return Matrix33{m.A.Add(o.A), m.B.Add(o.B), m.C.Add(o.C), m.D.Add(o.D)}
}

func (m Matrix33) Sub(o Matrix33) Matrix33 {
	return Matrix33{m.A.Sub(o.A), m.B.Sub(o.B), m.C.Sub(o.C), m.D.Sub(o.D)}
}

func (m Matrix33) Scale(f float64) Matrix33 {
	return Matrix33{m.A.Mul(f), m.B.Mul(f), m.C.Mul(f), m.D.Mul(f)}
}

// ScaleBlocks multiplies every block on the left by the 3×3 matrix r, i.e.
// diag(r, r)·m.
func (m Matrix33) ScaleBlocks(r mgl64.Mat3) Matrix33 {
	return Matrix33{r.Mul3(m.A), r.Mul3(m.B), r.Mul3(m.C), r.Mul3(m.D)}
}

// Mul returns m·o.
func (m Matrix33) Mul(o Matrix33) Matrix33 {
	return Matrix33{
		A: m.A.Mul3(o.A).Add(m.B.Mul3(o.C)),
		B: m.A.Mul3(o.B).Add(m.B.Mul3(o.D)),
		C: m.C.Mul3(o.A).Add(m.D.Mul3(o.C)),
		D: m.C.Mul3(o.B).Add(m.D.Mul3(o.D)),
	}
}

// MulVec returns m·v.
func (m Matrix33) MulVec(v Vector33) Vector33 {
	return Vector33{
		Linear:  m.A.Mul3x1(v.Linear).Add(m.B.Mul3x1(v.Angular)),
		Angular: m.C.Mul3x1(v.Linear).Add(m.D.Mul3x1(v.Angular)),
	}
}

func (m Matrix33) Transpose() Matrix33 {
	return Matrix33{m.A.Transpose(), m.C.Transpose(), m.B.Transpose(), m.D.Transpose()}
}

// Trace is the sum of the six diagonal entries.
func (m Matrix33) Trace() float64 {
	return m.A.Trace() + m.D.Trace()
}

// At returns the entry at row r, column c of the 6×6 matrix.
func (m Matrix33) At(r, c int) float64 {
	switch {
	case r < 3 && c < 3:
		return m.A.At(r, c)
	case r < 3:
		return m.B.At(r, c-3)
	case c < 3:
		return m.C.At(r-3, c)
	default:
		return m.D.At(r-3, c-3)
	}
}

// ApproxEqual compares element-wise with an absolute threshold.
func (m Matrix33) ApproxEqual(o Matrix33, eps float64) bool {
	return NearMat3(m.A, o.A, eps) && NearMat3(m.B, o.B, eps) &&
		NearMat3(m.C, o.C, eps) && NearMat3(m.D, o.D, eps)
}

// MaxAbs is the largest absolute entry.
func (m Matrix33) MaxAbs() float64 {
	return math.Max(math.Max(maxAbs3(m.A), maxAbs3(m.B)), math.Max(maxAbs3(m.C), maxAbs3(m.D)))
}

// Inverse returns m⁻¹ by block inversion through the Schur complement of
// whichever diagonal block is invertible, falling back to a pivoted 6×6
// LU decomposition when neither is. The result is polished by Newton
// refinement; if the residual |m·m⁻¹ - 1| still exceeds residualTolerance
// the refined LU inverse is computed as well and the one with the smaller
// residual is kept. A singular m yields ErrSingular and the zero matrix.
func (m Matrix33) Inverse() (Matrix33, error) {
	if m.MaxAbs() == 0 || !m.finite() {
		return Matrix33{}, ErrSingular
	}
	inv, ok := m.inverseViaA()
	if !ok {
		inv, ok = m.inverseViaD()
	}
	if !ok {
		lu, err := m.inverseDense()
		if err != nil {
			return Matrix33{}, err
		}
		inv, _ = m.refine(lu)
		return inv, nil
	}

	inv, res := m.refine(inv)
	if res <= residualTolerance {
		return inv, nil
	}
	lu, err := m.inverseDense()
	if err != nil {
		return inv, nil
	}
	if lu, luRes := m.refine(lu); luRes < res {
		return lu, nil
	}
	return inv, nil
}

const (
	// residualTolerance bounds max|m·m⁻¹ - 1| for a block inverse to be
	// accepted without trying LU.
	residualTolerance = 1e-12
	refineSteps       = 2
)

// Residual is max|m·x - 1|.
func (m Matrix33) Residual(x Matrix33) float64 {
	return m.Mul(x).Sub(Identity33()).MaxAbs()
}

// refine applies x ← x + x·(1 - m·x) while the residual keeps shrinking.
func (m Matrix33) refine(x Matrix33) (Matrix33, float64) {
	best, res := x, m.Residual(x)
	for k := 0; k < refineSteps && res > 0; k++ {
		next := best.Add(best.Mul(Identity33().Sub(m.Mul(best))))
		r := m.Residual(next)
		if !(r < res) {
			break
		}
		best, res = next, r
	}
	return best, res
}

func (m Matrix33) inverseViaA() (Matrix33, bool) {
	ai, ok := inverse3(m.A, maxAbs3(m.A))
	if !ok {
		return Matrix33{}, false
	}
	aiB := ai.Mul3(m.B)
	cAi := m.C.Mul3(ai)
	reduction := m.C.Mul3(aiB)
	s := m.D.Sub(reduction)
	si, ok := inverse3(s, math.Max(maxAbs3(m.D), maxAbs3(reduction)))
	if !ok {
		return Matrix33{}, false
	}
	siCAi := si.Mul3(cAi)
	return Matrix33{
		A: ai.Add(aiB.Mul3(siCAi)),
		B: aiB.Mul3(si).Mul(-1),
		C: siCAi.Mul(-1),
		D: si,
	}, true
}

func (m Matrix33) inverseViaD() (Matrix33, bool) {
	di, ok := inverse3(m.D, maxAbs3(m.D))
	if !ok {
		return Matrix33{}, false
	}
	diC := di.Mul3(m.C)
	bDi := m.B.Mul3(di)
	reduction := m.B.Mul3(diC)
	s := m.A.Sub(reduction)
	si, ok := inverse3(s, math.Max(maxAbs3(m.A), maxAbs3(reduction)))
	if !ok {
		return Matrix33{}, false
	}
	siBDi := si.Mul3(bDi)
	return Matrix33{
		A: si,
		B: siBDi.Mul(-1),
		C: diC.Mul3(si).Mul(-1),
		D: di.Add(diC.Mul3(siBDi)),
	}, true
}

func (m Matrix33) inverseDense() (Matrix33, error) {
	data := make([]float64, 0, 36)
	for r := 0; r < 6; r++ {
		for c := 0; c < 6; c++ {
			data = append(data, m.At(r, c))
		}
	}
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(6, 6, data)); err != nil {
		return Matrix33{}, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	var out Matrix33
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out.A.Set(r, c, inv.At(r, c))
			out.B.Set(r, c, inv.At(r, c+3))
			out.C.Set(r, c, inv.At(r+3, c))
			out.D.Set(r, c, inv.At(r+3, c+3))
		}
	}
	return out, nil
}

func (m Matrix33) finite() bool {
	for _, b := range [...]mgl64.Mat3{m.A, m.B, m.C, m.D} {
		for _, x := range b {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return false
			}
		}
	}
	return true
}

func (m Matrix33) String() string {
	s := ""
	for r := 0; r < 6; r++ {
		if r == 3 {
			s += "  ------+------\n"
		}
		s += "  "
		for c := 0; c < 6; c++ {
			if c == 3 {
				s += "| "
			}
			s += fmt.Sprintf("%10.4g ", m.At(r, c))
		}
		s += "\n"
	}
	return s
}

// inverse3 inverts a 3×3 block. scale is the magnitude of the terms m was
// computed from; a block that is rounding noise relative to it, or whose
// determinant vanishes relative to its own entries, is singular.
func inverse3(m mgl64.Mat3, scale float64) (mgl64.Mat3, bool) {
	size := maxAbs3(m)
	if size == 0 || size <= cancelTolerance*scale {
		return mgl64.Mat3{}, false
	}
	det := m.Det()
	if math.IsNaN(det) || math.Abs(det) <= detTolerance*size*size*size {
		return mgl64.Mat3{}, false
	}
	return m.Inv(), true
}

func maxAbs3(m mgl64.Mat3) float64 {
	v := 0.0
	for _, x := range m {
		v = math.Max(v, math.Abs(x))
	}
	return v
}
