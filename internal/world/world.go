// Package world holds a forest of articulated bodies, the contacts
// between them and the environment they live in.
//
// Joints are stored in an arena owned by the World and refer to each
// other by ID, so parents and children never hold pointers to one
// another.
package world

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/joint"
	"github.com/san-kum/featherstone/internal/mass"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
	"k8s.io/klog/v2"
)

var (
	ErrUnknownJoint = errors.New("world: unknown joint")
	ErrCycle        = errors.New("world: attachment would create a cycle")
)

// ID addresses a joint inside its World.
type ID int

// NoParent marks a root joint.
const NoParent ID = -1

// Joint is a node of the kinematic forest: the joint itself plus the
// links to its parent and children.
type Joint struct {
	joint.Info

	id       ID
	parent   ID
	children []ID
}

func (j *Joint) ID() ID       { return j.id }
func (j *Joint) Parent() ID   { return j.parent }
func (j *Joint) IsRoot() bool { return j.parent == NoParent }
func (j *Joint) IsLeaf() bool { return len(j.children) == 0 }

// Children returns the child ids in attachment order.
func (j *Joint) Children() []ID {
	return append([]ID(nil), j.children...)
}

// World is the arena of joints together with gravity, the unit system and
// the contact list.
type World struct {
	Units   units.System
	Gravity mgl64.Vec3

	joints   []*Joint
	roots    []ID
	contacts []*Contact
}

// New returns an empty world without gravity.
func New(u units.System) *World {
	return &World{Units: u}
}

// Len is the number of joints in the world.
func (w *World) Len() int { return len(w.joints) }

// Roots returns the root ids in creation order.
func (w *World) Roots() []ID {
	return append([]ID(nil), w.roots...)
}

// Contacts returns the contact list.
func (w *World) Contacts() []*Contact { return w.contacts }

// Joint looks up a joint by id.
func (w *World) Joint(id ID) (*Joint, error) {
	if id < 0 || int(id) >= len(w.joints) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownJoint, id)
	}
	return w.joints[id], nil
}

// NewJoint creates a root joint expressed in u, which may differ from the
// world's own units until the world is converted.
func (w *World) NewJoint(u units.System, kind joint.Kind, local spatial.Pose, axis mgl64.Vec3, pitch float64) (ID, error) {
	info, err := joint.NewInfo(u, kind, local, axis, pitch, mass.Zero(u))
	if err != nil {
		return NoParent, err
	}
	return w.insert(info, NoParent), nil
}

// NewScrew creates a root screw joint in world units.
func (w *World) NewScrew(local spatial.Pose, axis mgl64.Vec3, pitch float64) ID {
	id, _ := w.NewJoint(w.Units, joint.Screw, local, axis, pitch)
	return id
}

// NewRevolute creates a root revolute joint in world units.
func (w *World) NewRevolute(local spatial.Pose, axis mgl64.Vec3) ID {
	id, _ := w.NewJoint(w.Units, joint.Revolute, local, axis, 0)
	return id
}

// NewPrismatic creates a root prismatic joint in world units.
func (w *World) NewPrismatic(local spatial.Pose, axis mgl64.Vec3) ID {
	id, _ := w.NewJoint(w.Units, joint.Prismatic, local, axis, 0)
	return id
}

// AddJoint creates a joint attached to parent. The child is expressed in
// the parent's unit system.
func (w *World) AddJoint(parent ID, kind joint.Kind, local spatial.Pose, axis mgl64.Vec3, pitch float64) (ID, error) {
	p, err := w.Joint(parent)
	if err != nil {
		return NoParent, err
	}
	u := p.Units()
	info, err := joint.NewInfo(u, kind, local, axis, pitch, mass.Zero(u))
	if err != nil {
		return NoParent, err
	}
	return w.insert(info, parent), nil
}

func (w *World) AddScrew(parent ID, local spatial.Pose, axis mgl64.Vec3, pitch float64) (ID, error) {
	return w.AddJoint(parent, joint.Screw, local, axis, pitch)
}

func (w *World) AddRevolute(parent ID, local spatial.Pose, axis mgl64.Vec3) (ID, error) {
	return w.AddJoint(parent, joint.Revolute, local, axis, 0)
}

func (w *World) AddPrismatic(parent ID, local spatial.Pose, axis mgl64.Vec3) (ID, error) {
	return w.AddJoint(parent, joint.Prismatic, local, axis, 0)
}

func (w *World) insert(info joint.Info, parent ID) ID {
	id := ID(len(w.joints))
	w.joints = append(w.joints, &Joint{Info: info, id: id, parent: parent})
	if parent == NoParent {
		w.roots = append(w.roots, id)
	} else {
		p := w.joints[parent]
		p.children = append(p.children, id)
	}
	klog.V(2).Infof("world: joint %d (%v) created under %d", id, info.Kind(), parent)
	return id
}

// AttachTo moves id, with its whole subtree, under parent. Passing
// NoParent turns it into a root. The joint keeps its own unit system.
func (w *World) AttachTo(id, parent ID) error {
	j, err := w.Joint(id)
	if err != nil {
		return err
	}
	if parent != NoParent {
		if _, err := w.Joint(parent); err != nil {
			return err
		}
		if w.reaches(id, parent) {
			return fmt.Errorf("%w: %d under %d", ErrCycle, id, parent)
		}
	}
	if j.parent == parent {
		return nil
	}

	if j.parent == NoParent {
		w.roots = removeID(w.roots, id)
	} else {
		old := w.joints[j.parent]
		old.children = removeID(old.children, id)
	}
	if parent == NoParent {
		w.roots = append(w.roots, id)
	} else {
		p := w.joints[parent]
		p.children = append(p.children, id)
	}
	klog.V(2).Infof("world: joint %d moved from %d to %d", id, j.parent, parent)
	j.parent = parent
	return nil
}

func removeID(ids []ID, id ID) []ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Traverse visits every joint in pre-order, root by root.
func (w *World) Traverse(fn func(*Joint)) {
	for _, r := range w.roots {
		w.visit(r, fn)
	}
}

// TraverseFrom visits the subtree rooted at id in pre-order.
func (w *World) TraverseFrom(id ID, fn func(*Joint)) error {
	if _, err := w.Joint(id); err != nil {
		return err
	}
	w.visit(id, fn)
	return nil
}

func (w *World) visit(id ID, fn func(*Joint)) {
	j := w.joints[id]
	fn(j)
	for _, c := range j.children {
		w.visit(c, fn)
	}
}

// Fold accumulates over every joint in pre-order.
func Fold[T any](w *World, init T, fn func(T, *Joint) T) T {
	acc := init
	w.Traverse(func(j *Joint) { acc = fn(acc, j) })
	return acc
}

// ConvertJoint converts id and every joint below it into target.
func (w *World) ConvertJoint(id ID, target units.System) error {
	return w.TraverseFrom(id, func(j *Joint) { j.Convert(target) })
}

// Convert expresses the whole world in target: gravity, every root
// subtree and every contact.
func (w *World) Convert(target units.System) {
	if w.Units != target {
		w.Gravity = w.Gravity.Mul(units.Acceleration.Convert(w.Units, target))
	}
	for _, r := range w.roots {
		// Roots are valid by construction.
		_ = w.ConvertJoint(r, target)
	}
	for _, c := range w.contacts {
		c.Convert(target)
	}
	klog.V(2).Infof("world: converted from %v to %v", w.Units, target)
	w.Units = target
}

// AllJoints converts every joint into u and returns them in pre-order.
func (w *World) AllJoints(u units.System) []*Joint {
	out := make([]*Joint, 0, len(w.joints))
	w.Traverse(func(j *Joint) {
		j.Convert(u)
		out = append(out, j)
	})
	return out
}

// TotalMass is the sum of the body masses, in world units.
func (w *World) TotalMass() float64 {
	return Fold(w, 0.0, func(m float64, j *Joint) float64 {
		return m + j.MassProperties().Convert(w.Units).Mass
	})
}

func (w *World) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "World(units=%v, gravity=[%g,%g,%g], joints=%d, contacts=%d)\n",
		w.Units, w.Gravity[0], w.Gravity[1], w.Gravity[2], len(w.joints), len(w.contacts))
	var walk func(id ID, depth int)
	walk = func(id ID, depth int) {
		j := w.joints[id]
		fmt.Fprintf(&b, "%s%d: %s\n", strings.Repeat("  ", depth+1), id, j.Info.String())
		for _, c := range j.children {
			walk(c, depth+1)
		}
	}
	for _, r := range w.roots {
		walk(r, 0)
	}
	for _, c := range w.contacts {
		fmt.Fprintf(&b, "  %v\n", c)
	}
	return b.String()
}
