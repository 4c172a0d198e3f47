package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/featherstone/internal/mass"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
)

// BuildSerialChain builds n revolute joints about +Z, each carrying mp.
// The first sits at the origin and every next one delta along the local
// X axis of its parent. Gravity points along -Y.
func BuildSerialChain(u units.System, n int, delta float64, mp mass.Properties) (*World, error) {
	if n < 1 {
		return nil, fmt.Errorf("world: serial chain needs at least one joint, got %d", n)
	}
	w := New(u)
	w.Gravity = mgl64.Vec3{0, -u.EarthGravity(), 0}

	z := mgl64.Vec3{0, 0, 1}
	id := w.NewRevolute(spatial.Origin(), z)
	w.joints[id].AddMassProperties(mp)
	for i := 1; i < n; i++ {
		next, err := w.AddRevolute(id, spatial.Translation(delta, 0, 0), z)
		if err != nil {
			return nil, err
		}
		w.joints[next].AddMassProperties(mp)
		id = next
	}
	return w, nil
}
