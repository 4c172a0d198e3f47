package world

import (
	"github.com/go-gl/mathgl/mgl64"
	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"
	"github.com/san-kum/featherstone/internal/mass"
	"github.com/san-kum/featherstone/internal/spatial"
	"github.com/san-kum/featherstone/internal/units"
)

var _ = g.Describe("a serial chain", func() {
	var (
		w  *World
		mp mass.Properties
	)

	g.BeforeEach(func() {
		var err error
		mp = mass.Sphere(units.MKS, 2, 0.1, mgl64.Vec3{0.5, 0, 0})
		w, err = BuildSerialChain(units.MKS, 4, 1, mp)
		o.Expect(err).NotTo(o.HaveOccurred())
	})

	g.It("flattens in chain order", func() {
		sim, err := w.Flatten()
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(sim.IDs).To(o.Equal([]ID{0, 1, 2, 3}))
		o.Expect(sim.Children(3)).To(o.BeEmpty())
		o.Expect(sim.Gravity).To(o.Equal(w.Gravity))
	})

	g.Context("when the tail is moved onto the root", func() {
		g.BeforeEach(func() {
			o.Expect(w.AttachTo(3, 0)).To(o.Succeed())
		})

		g.It("becomes a sibling of the second link", func() {
			root, err := w.Joint(0)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(root.Children()).To(o.Equal([]ID{1, 3}))

			mid, _ := w.Joint(2)
			o.Expect(mid.IsLeaf()).To(o.BeTrue())
		})

		g.It("still flattens parents first", func() {
			sim, err := w.Flatten()
			o.Expect(err).NotTo(o.HaveOccurred())
			for i := 0; i < sim.Dof(); i++ {
				o.Expect(sim.Parent(i)).To(o.BeNumerically("<", i))
			}
			i3, _ := sim.Index(3)
			o.Expect(sim.Parent(i3)).To(o.Equal(0))
		})

		g.It("refuses to put the root under its own descendant", func() {
			o.Expect(w.AttachTo(0, 2)).To(o.MatchError(ErrCycle))
		})
	})

	g.Context("when converted to inch-pound units", func() {
		g.BeforeEach(func() {
			w.Convert(units.IPS)
		})

		g.It("keeps the total mass", func() {
			back := units.Mass.Convert(units.IPS, units.MKS)
			o.Expect(w.TotalMass() * back).To(o.BeNumerically("~", 8, 1e-9))
		})

		g.It("scales gravity and link offsets", func() {
			o.Expect(w.Gravity[1]).To(o.BeNumerically("~", -units.IPS.EarthGravity(), 1e-9))
			j, _ := w.Joint(1)
			o.Expect(j.LocalPosition.Position[0]).To(o.BeNumerically("~", 1/0.0254, 1e-9))
			o.Expect(j.LocalPosition.ApproxEqual(spatial.Translation(1/0.0254, 0, 0), 1e-9)).To(o.BeTrue())
		})
	})

	g.It("renders every joint in String", func() {
		s := w.String()
		for _, want := range []string{"0: Revolute", "3: Revolute", "joints=4"} {
			o.Expect(s).To(o.ContainSubstring(want))
		}
	})
})
