package world

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/joint"
	"github.com/san-kum/featherstone/internal/units"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"k8s.io/klog/v2"
)

// Simulation is a world flattened into index order for the dynamics
// solvers: every parent index is smaller than its children's.
type Simulation struct {
	// Joints are copies of the world joints converted to Units.
	Joints []joint.Info
	// IDs maps a flattened index back to the world joint id.
	IDs     []ID
	Gravity mgl64.Vec3
	Units   units.System

	parents  []int
	children [][]int
	index    map[ID]int
}

func (s *Simulation) Dof() int { return len(s.Joints) }

// Parent is the flattened index of the parent of i, or -1 for a root.
func (s *Simulation) Parent(i int) int { return s.parents[i] }

// Children are the flattened indices of the children of i.
func (s *Simulation) Children(i int) []int { return s.children[i] }

// Index returns the flattened index of a world joint.
func (s *Simulation) Index(id ID) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// graph builds the parent to child graph of the forest.
func (w *World) graph() *simple.DirectedGraph {
	g := simple.NewDirectedGraph()
	for _, j := range w.joints {
		g.AddNode(simple.Node(j.id))
	}
	for _, j := range w.joints {
		for _, c := range j.children {
			g.SetEdge(g.NewEdge(simple.Node(j.id), simple.Node(c)))
		}
	}
	return g
}

// reaches reports whether to lies in the subtree rooted at from.
func (w *World) reaches(from, to ID) bool {
	if from == to {
		return true
	}
	return topo.PathExistsIn(w.graph(), simple.Node(from), simple.Node(to))
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// Flatten orders the forest topologically, ties broken by id, and copies
// every joint into world units.
func (w *World) Flatten() (*Simulation, error) {
	order, err := topo.SortStabilized(w.graph(), byID)
	if err != nil {
		return nil, fmt.Errorf("world: flatten: %w", err)
	}

	n := len(order)
	s := &Simulation{
		Joints:   make([]joint.Info, n),
		IDs:      make([]ID, n),
		Gravity:  w.Gravity,
		Units:    w.Units,
		parents:  make([]int, n),
		children: make([][]int, n),
		index:    make(map[ID]int, n),
	}
	for i, node := range order {
		id := ID(node.ID())
		s.IDs[i] = id
		s.index[id] = i
	}
	for i, id := range s.IDs {
		j := w.joints[id]
		info := j.Info
		info.Convert(w.Units)
		s.Joints[i] = info

		s.parents[i] = -1
		if j.parent != NoParent {
			p := s.index[j.parent]
			if p >= i {
				return nil, fmt.Errorf("world: flatten: joint %d ordered before its parent %d", id, j.parent)
			}
			s.parents[i] = p
			s.children[p] = append(s.children[p], i)
		}
	}
	klog.V(2).Infof("world: flattened %d joints", n)
	return s, nil
}
