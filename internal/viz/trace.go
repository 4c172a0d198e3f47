package viz

import "github.com/san-kum/featherstone/internal/sim"

// Trace is a sim.Observer that keeps the leading state columns of every
// step for sparklines.
type Trace struct {
	cols   int
	series [][]float64
}

// NewTrace records up to cols columns of the state.
func NewTrace(cols int) *Trace {
	return &Trace{cols: cols, series: make([][]float64, cols)}
}

func (tr *Trace) OnStep(x sim.State, u sim.Control, t float64) {
	for j := 0; j < tr.cols && j < len(x); j++ {
		tr.series[j] = append(tr.series[j], x[j])
	}
}

// Column is the recorded history of state column j, nil when j is out of
// range.
func (tr *Trace) Column(j int) []float64 {
	if j < 0 || j >= tr.cols {
		return nil
	}
	return tr.series[j]
}

// Line renders column j as a sparkline of the given width.
func (tr *Trace) Line(j, width int) string {
	return Sparkline(tr.Column(j), width)
}
