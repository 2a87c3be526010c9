package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/vortex/internal/compute"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/metrics"
	"github.com/san-kum/vortex/internal/sim"
)

// packedRing returns n particles on a unit circle in the xy plane carrying
// circulation gamma, in the packed particle form.
func packedRing(n int, gamma float64) []float64 {
	var out []float64
	ds := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		th := ds * float64(i)
		out = append(out,
			math.Cos(th), math.Sin(th), 0,
			-math.Sin(th)*gamma*ds, math.Cos(th)*gamma*ds, 0,
			0)
	}
	return out
}

func meanZ(s *sim.Simulation) float64 {
	p, ok := s.Vorticity()[0].Points()
	Expect(ok).To(BeTrue())
	z := 0.0
	for _, x := range p.Positions() {
		z += x.Z
	}
	return z / float64(p.N())
}

var _ = Describe("Params", func() {
	It("derives spacing and core size from dt and Re", func() {
		p := sim.Params{Re: 100, Dt: 0.01}
		Expect(p.HNu()).To(BeNumerically("~", 0.01, 1e-15))
		Expect(p.IPS()).To(BeNumerically("~", math.Sqrt(8)*0.01, 1e-15))
		Expect(p.VDelta()).To(BeNumerically("~", 1.5*math.Sqrt(8)*0.01, 1e-15))
	})

	It("chooses Re for a requested spacing", func() {
		p := sim.Params{Re: 1, Dt: 0.02}.WithReForIPS(0.05)
		Expect(p.IPS()).To(BeNumerically("~", 0.05, 1e-12))
	})

	It("rejects non-positive dt and Re", func() {
		_, err := sim.New(sim.Params{Re: 100, Dt: 0})
		Expect(err).To(MatchError(sim.ErrInvalidParams))
		_, err = sim.New(sim.Params{Re: -1, Dt: 0.1})
		Expect(err).To(MatchError(sim.ErrInvalidParams))
	})
})

var _ = Describe("Simulation", func() {
	var s *sim.Simulation

	BeforeEach(func() {
		var err error
		s, err = sim.New(sim.Params{Re: 100, Dt: 0.01}, sim.WithBackend(compute.NewSerialBackend()))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("adding particles", func() {
		It("replaces radii with the core size", func() {
			Expect(s.AddParticles(packedRing(8, 1))).To(Succeed())
			p, ok := s.Vorticity()[0].Points()
			Expect(ok).To(BeTrue())
			for _, r := range p.Radii() {
				Expect(r).To(Equal(s.Params().VDelta()))
			}
		})

		It("grows the last particle collection", func() {
			Expect(s.AddParticles(packedRing(8, 1))).To(Succeed())
			Expect(s.AddParticles(packedRing(4, 1))).To(Succeed())
			Expect(s.Vorticity()).To(HaveLen(1))
			Expect(s.NumParticles()).To(Equal(12))
		})

		It("starts a new collection after a non-particle one", func() {
			panels, err := elements.NewSurfaces([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2}, []float64{1, 0}, elements.Active, elements.Fixed, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.AddVortex(elements.FromSurfaces(panels))).To(Succeed())
			Expect(s.AddParticles(packedRing(4, 1))).To(Succeed())
			Expect(s.Vorticity()).To(HaveLen(2))
		})

		It("rejects a ragged packed array", func() {
			Expect(s.AddParticles(make([]float64, 9))).To(MatchError(elements.ErrMalformedInput))
			Expect(s.Vorticity()).To(BeEmpty())
		})
	})

	Describe("stepping", func() {
		BeforeEach(func() {
			Expect(s.AddParticles(packedRing(32, 1))).To(Succeed())
		})

		It("is idle before any step", func() {
			ready, err := s.Poll()
			Expect(ready).To(BeTrue())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.IsStepping()).To(BeFalse())
		})

		It("ignores a second BeginStep until the first is consumed", func() {
			Expect(s.BeginStep()).To(Succeed())
			Expect(s.BeginStep()).To(MatchError(sim.ErrStepInProgress))

			Eventually(func() bool {
				ready, err := s.Poll()
				Expect(err).NotTo(HaveOccurred())
				return ready
			}).Should(BeTrue())

			Expect(s.Steps()).To(Equal(1))
			Expect(s.Time()).To(BeNumerically("~", 0.01, 1e-15))
			Expect(s.IsStepping()).To(BeFalse())
		})

		It("refuses to change collections while a step is pending", func() {
			Expect(s.BeginStep()).To(Succeed())
			Expect(s.AddParticles(packedRing(4, 1))).To(MatchError(sim.ErrStepInProgress))
			Expect(s.AddVortex(elements.Collection{})).To(MatchError(sim.ErrStepInProgress))
			Expect(s.SetReForIPS(0.1)).To(MatchError(sim.ErrStepInProgress))
			Expect(s.Wait()).To(Succeed())
			Expect(s.NumParticles()).To(Equal(32))
		})

		It("advects a vortex ring along its axis", func() {
			for i := 0; i < 3; i++ {
				Expect(s.Step()).To(Succeed())
			}
			Expect(s.Time()).To(BeNumerically("~", 0.03, 1e-12))
			Expect(meanZ(s)).To(BeNumerically(">", 0))
		})

		It("records a summary and metrics after each step", func() {
			s.AddMetric(metrics.NewStability(1e3))
			s.AddMetric(metrics.NewCirculation())
			Expect(s.Step()).To(Succeed())

			rec := s.Result()
			Expect(rec.Step).To(Equal(1))
			Expect(rec.Particles).To(Equal(32))
			Expect(rec.MaxSpeed).To(BeNumerically(">", 0))

			m := s.Metrics()
			Expect(m).To(HaveKeyWithValue("stability", 1.0))
			// a closed ring has no net circulation
			Expect(m["circulation"]).To(BeNumerically("<", 1e-12))
		})

		It("waits for a running step on reset", func() {
			Expect(s.BeginStep()).To(Succeed())
			s.Reset()
			Expect(s.IsStepping()).To(BeFalse())
			Expect(s.Time()).To(Equal(0.0))
			Expect(s.Steps()).To(Equal(0))
			Expect(s.Vorticity()).To(BeEmpty())
		})

		It("gives the same result on every backend", func() {
			other, err := sim.New(s.Params(), sim.WithBackend(compute.NewCPUBackendWorkers(4, 2)))
			Expect(err).NotTo(HaveOccurred())
			Expect(other.AddParticles(packedRing(32, 1))).To(Succeed())

			Expect(s.Step()).To(Succeed())
			Expect(other.Step()).To(Succeed())

			a, _ := s.Vorticity()[0].Points()
			b, _ := other.Vorticity()[0].Points()
			Expect(b.Positions()).To(Equal(a.Positions()))
		})
	})

	Describe("boundaries and field points", func() {
		It("solves a flat plate in a freestream for zero slip", func() {
			p := s.Params()
			p.Freestream = r3.Vec{X: 1}
			Expect(s.SetParams(p)).To(Succeed())

			plate, err := elements.NewSurfaces([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2}, []float64{0, 0}, elements.Reactive, elements.Fixed, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.AddBoundary(plate)).To(Succeed())

			Expect(s.Step()).To(Succeed())
			vs := plate.VortexSheet()[0]
			Expect(vs[0]).To(BeNumerically("~", 0, 1e-12))
			Expect(vs[1]).To(BeNumerically("~", -2, 1e-12))
			Expect(s.NumPanels()).To(Equal(1))
		})

		It("carries tracers with the freestream", func() {
			p := s.Params()
			p.Freestream = r3.Vec{X: 1}
			Expect(s.SetParams(p)).To(Succeed())

			tracers, err := elements.NewPoints([]float64{0, 0, 0, 0, 1, 0}, nil, elements.Inert, elements.Lagrangian, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.AddFieldPoints(tracers)).To(Succeed())

			Expect(s.Step()).To(Succeed())
			Expect(s.NumFieldPoints()).To(Equal(2))
			Expect(tracers.Positions()[0].X).To(BeNumerically("~", 0.01, 1e-15))
			Expect(tracers.Positions()[1].Y).To(BeNumerically("~", 1, 1e-15))
		})

		It("moves body-bound panels with their body", func() {
			body := elements.NewBody("cart")
			body.Vel = r3.Vec{Z: 2}
			panels, err := elements.NewSurfaces([]float64{0, 0, 0, 1, 0, 0, 0, 1, 0}, []int{0, 1, 2}, []float64{0, 0}, elements.Reactive, elements.BodyBound, body)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.AddBoundary(panels)).To(Succeed())

			Expect(s.Step()).To(Succeed())
			Expect(panels.Positions()[0].Z).To(BeNumerically("~", 0.02, 1e-15))
			// the plate moves normal to itself so it sees no tangential slip
			Expect(panels.VortexSheet()[0][0]).To(BeNumerically("~", 0, 1e-12))
		})
	})

	Describe("failures", func() {
		It("reports non-finite velocities through Poll", func() {
			coincident, err := elements.NewPoints(
				[]float64{0, 0, 0, 0, 0, 0},
				[]float64{0, 0, 1, 0, 0, 0, 1, 0},
				elements.Active, elements.Lagrangian, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.AddVortex(elements.FromPoints(coincident))).To(Succeed())

			Expect(s.BeginStep()).To(Succeed())
			var stepErr error
			Eventually(func() bool {
				ready, err := s.Poll()
				stepErr = err
				return ready
			}).Should(BeTrue())

			Expect(stepErr).To(MatchError(sim.ErrUnstable))
			var se *sim.StepError
			Expect(stepErr).To(BeAssignableToTypeOf(se))
			Expect(s.Time()).To(Equal(0.0))
		})
	})
})
