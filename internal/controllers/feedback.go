package controllers

import (
	"fmt"

	"github.com/san-kum/featherstone/internal/sim"
	"gonum.org/v1/gonum/mat"
)

// Feedback is full-state linear feedback u = -K·(x - target), with K
// holding one row per joint and one column per state component.
type Feedback struct {
	K      *mat.Dense
	Target sim.State

	err *mat.VecDense
	out *mat.VecDense
}

func NewFeedback(k [][]float64, target sim.State) (*Feedback, error) {
	if len(k) == 0 {
		return nil, fmt.Errorf("controllers: feedback gain has no rows")
	}
	cols := len(k[0])
	data := make([]float64, 0, len(k)*cols)
	for i, row := range k {
		if len(row) != cols {
			return nil, fmt.Errorf("controllers: gain row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Feedback{
		K:      mat.NewDense(len(k), cols, data),
		Target: target,
		err:    mat.NewVecDense(cols, nil),
		out:    mat.NewVecDense(len(k), nil),
	}, nil
}

// Compute ignores state components beyond the gain's column count.
func (f *Feedback) Compute(x sim.State, t float64) sim.Control {
	rows, cols := f.K.Dims()
	for j := 0; j < cols; j++ {
		v := 0.0
		if j < len(x) {
			v = x[j]
		}
		if j < len(f.Target) {
			v -= f.Target[j]
		}
		f.err.SetVec(j, v)
	}
	f.out.MulVec(f.K, f.err)

	u := make(sim.Control, rows)
	for i := range u {
		u[i] = -f.out.AtVec(i)
	}
	return u
}
