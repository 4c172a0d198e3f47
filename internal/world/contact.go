package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
)

// Contact is a unilateral constraint between a body and either another
// body or the ground.
type Contact struct {
	Units units.System
	// Normal is the unit wrench along the contact normal through the
	// contact point.
	Normal spatial.Vector33
	// COR is the coefficient of restitution.
	COR float64
	// Impulse is the last impulse magnitude applied along Normal.
	Impulse  float64
	Action   ID
	Reaction ID
}

// IsWithGround reports whether the contact has no reaction body.
func (c *Contact) IsWithGround() bool { return c.Reaction == NoParent }

// Convert rescales the normal and impulse into target.
func (c *Contact) Convert(target units.System) {
	if c.Units == target {
		return
	}
	c.Normal = spatial.ConvertWrench(c.Normal, c.Units, target, units.None)
	c.Impulse *= units.Momentum.Convert(c.Units, target)
	c.Units = target
}

func (c *Contact) String() string {
	if c.IsWithGround() {
		return fmt.Sprintf("Contact(units=%v, action=%d, ground, cor=%g, normal=%v)", c.Units, c.Action, c.COR, c.Normal)
	}
	return fmt.Sprintf("Contact(units=%v, action=%d, reaction=%d, cor=%g, normal=%v)", c.Units, c.Action, c.Reaction, c.COR, c.Normal)
}

// NewContact registers a contact between action and the ground at point
// along direction, in world units.
func (w *World) NewContact(action ID, point, direction mgl64.Vec3, cor float64) (*Contact, error) {
	return w.NewContactBetween(action, NoParent, point, direction, cor)
}

// NewContactBetween registers a contact between two bodies. A reaction of
// NoParent means the ground.
func (w *World) NewContactBetween(action, reaction ID, point, direction mgl64.Vec3, cor float64) (*Contact, error) {
	if _, err := w.Joint(action); err != nil {
		return nil, err
	}
	if reaction != NoParent {
		if _, err := w.Joint(reaction); err != nil {
			return nil, err
		}
	}
	if direction.Len() == 0 {
		return nil, fmt.Errorf("world: contact direction must be non-zero")
	}
	c := &Contact{
		Units:    w.Units,
		Normal:   spatial.WrenchAt(direction.Normalize(), point, 0),
		COR:      cor,
		Action:   action,
		Reaction: reaction,
	}
	w.contacts = append(w.contacts, c)
	return c, nil
}
