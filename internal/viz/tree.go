package viz

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/san-kum/featherstone/internal/articulated"
	"github.com/san-kum/featherstone/internal/kinematics"
	"github.com/san-kum/featherstone/internal/world"
)

// JointName returns names[id], or a generated name when names is short.
func JointName(names []string, id world.ID) string {
	if int(id) >= 0 && int(id) < len(names) && names[id] != "" {
		return names[id]
	}
	return fmt.Sprintf("joint%d", id)
}

// Tree renders the joint forest of w, one subtree per root.
func Tree(w *world.World, names []string) string {
	p := Styles()
	label := func(j *world.Joint) string {
		mp := j.MassProperties()
		return fmt.Sprintf("%s %s %s",
			p.Value.Render(JointName(names, j.ID())),
			p.Label.Render(j.Kind().String()),
			p.Muted.Render(fmt.Sprintf("m=%g", mp.Mass)))
	}

	var build func(id world.ID) *tree.Tree
	build = func(id world.ID) *tree.Tree {
		j, _ := w.Joint(id)
		t := tree.Root(label(j))
		for _, c := range j.Children() {
			t.Child(build(c))
		}
		return t
	}

	root := tree.Root(p.Header.Render(fmt.Sprintf("world (%v)", w.Units))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(p.Muted)
	for _, r := range w.Roots() {
		root.Child(build(r))
	}
	return root.String()
}

// ArticulatedTable lists, per flattened joint, the effective inertia
// s·I_A·s seen by the joint, the trace of I_A and the size of p_A.
func ArticulatedTable(sim *world.Simulation, kin *kinematics.Kinematics, art *articulated.Articulated, names []string) string {
	p := Styles()
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.Muted).
		Headers("#", "joint", "kind", "s·I_A·s", "tr I_A", "|p_A|").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.Label.Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	n := min(sim.Dof(), kin.Len(), art.Count())
	for i := 0; i < n; i++ {
		s := kin.Axis(i)
		ia := art.IA(i)
		t.Row(
			fmt.Sprint(i),
			JointName(names, sim.IDs[i]),
			sim.Joints[i].Kind().String(),
			fmt.Sprintf("%.6g", s.Dot(ia.MulVec(s))),
			fmt.Sprintf("%.6g", ia.Trace()),
			fmt.Sprintf("%.6g", art.PA(i).Norm()),
		)
	}
	return t.String()
}
