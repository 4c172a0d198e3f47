// Package joint describes single-degree-of-freedom joints: their geometry,
// the body they carry and how they are actuated.
package joint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKind is returned for a joint kind outside the known set.
var ErrUnknownKind = errors.New("joint: unknown joint kind")

// Kind is the type of motion a joint allows.
type Kind int

const (
	// Screw couples rotation about an axis with translation along it.
	Screw Kind = iota
	// Revolute is pure rotation about an axis.
	Revolute
	// Prismatic is pure translation along an axis.
	Prismatic
)

var kindNames = [...]string{
	Screw:     "screw",
	Revolute:  "revolute",
	Prismatic: "prismatic",
}

var kindDescriptions = [...]string{
	Screw:     "Combined rotation and parallel translation",
	Revolute:  "Pure rotation about an axis",
	Prismatic: "Pure translation along an axis",
}

func (k Kind) valid() bool {
	return k >= Screw && int(k) < len(kindNames)
}

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Description is a human readable summary of the motion.
func (k Kind) Description() string {
	if !k.valid() {
		return "unknown"
	}
	return kindDescriptions[k]
}

// ParseKind accepts the names produced by String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return Screw, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
