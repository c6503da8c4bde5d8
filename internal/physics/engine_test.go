package physics_test

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/vecmath"
)

const (
	marsMass   = 6.4171e23
	phobosMass = 1.0659e16
	orbit      = 2.2e10
)

func marsPhobos() []body.Body {
	return []body.Body{
		body.New("Mars", marsMass, 0, 3.4e6, colorful.Color{R: 1, G: 0.3, B: 0.1}),
		body.New("Phobos", phobosMass, orbit, 1.1e4, colorful.Color{R: 0.6, G: 0.6, B: 0.6}),
	}
}

// earthSatellite is a fast circular orbit: period ~9900 s.
func earthSatellite() []body.Body {
	return []body.Body{
		body.New("Earth", 6e24, 0, 6.4e6, colorful.Color{B: 1}),
		body.New("Sat", 1000, 1e7, 1, colorful.Color{R: 1, G: 1, B: 1}),
	}
}

func relDiff(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
}

var _ = Describe("Engine construction", func() {
	DescribeTable("rejects invalid input",
		func(bodies []body.Body, dt float64, opts []physics.Option, want error) {
			eng, err := physics.New(bodies, dt, opts...)
			Expect(err).To(MatchError(want))
			Expect(eng).To(BeNil())
		},
		Entry("no bodies", nil, 100.0, nil, dynamo.ErrTooFewBodies),
		Entry("one body", marsPhobos()[:1], 100.0, nil, dynamo.ErrTooFewBodies),
		Entry("zero time step", marsPhobos(), 0.0, nil, dynamo.ErrInvalidTimeStep),
		Entry("negative time step", marsPhobos(), -1.0, nil, dynamo.ErrInvalidTimeStep),
		Entry("NaN time step", marsPhobos(), math.NaN(), nil, dynamo.ErrInvalidTimeStep),
		Entry("zero mass", []body.Body{{Name: "a", Mass: 1}, {Name: "b", Position: r2.Vec{X: 1}}}, 1.0, nil, dynamo.ErrInvalidMass),
		Entry("negative mass", []body.Body{{Name: "a", Mass: -1}, {Name: "b", Mass: 1, Position: r2.Vec{X: 1}}}, 1.0, nil, dynamo.ErrInvalidMass),
		Entry("duplicate names", []body.Body{{Name: "a", Mass: 1}, {Name: "a", Mass: 1, Position: r2.Vec{X: 1}}}, 1.0, nil, dynamo.ErrDuplicateName),
		Entry("empty name", []body.Body{{Name: "", Mass: 1}, {Name: "a", Mass: 1, Position: r2.Vec{X: 1}}}, 1.0, nil, dynamo.ErrDuplicateName),
		Entry("coincident bodies", []body.Body{{Name: "a", Mass: 1}, {Name: "b", Mass: 1}}, 1.0, nil, dynamo.ErrCoincidentBodies),
		Entry("unknown reference", marsPhobos(), 100.0, []physics.Option{physics.WithReference("Deimos")}, dynamo.ErrUnknownReference),
	)

	It("does not alias the caller's slice", func() {
		bodies := marsPhobos()
		eng, err := physics.New(bodies, 100)
		Expect(err).NotTo(HaveOccurred())

		bodies[1].Position.X = 0
		Expect(eng.Bodies()[1].Position.X).To(Equal(orbit))

		snap := eng.Bodies()
		snap[1].Mass = 1
		Expect(eng.Bodies()[1].Mass).To(Equal(phobosMass))
	})
})

var _ = Describe("Initial velocities", func() {
	It("matches the Mars/Phobos reference scenario", func() {
		eng, err := physics.New(marsPhobos(), 100)
		Expect(err).NotTo(HaveOccurred())

		bodies := eng.Bodies()
		Expect(bodies[0].Velocity).To(Equal(r2.Vec{}))

		want := math.Sqrt(physics.G * marsMass / orbit)
		Expect(bodies[1].Velocity.Y).To(BeNumerically("~", want, want*1e-12))
		Expect(math.Abs(bodies[1].Velocity.X)).To(BeZero())
	})

	It("is perpendicular to the radius and counter-clockwise", func() {
		bodies := []body.Body{
			{Name: "Sun", Mass: 2e30},
			{Name: "A", Mass: 6e24, Position: r2.Vec{X: 1.5e11, Y: 2e10}},
			{Name: "B", Mass: 6e23, Position: r2.Vec{X: -3e10, Y: -2.2e11}},
		}
		eng, err := physics.New(bodies, 3600)
		Expect(err).NotTo(HaveOccurred())

		for _, b := range eng.Bodies()[1:] {
			r := b.Position
			Expect(r2.Dot(r, b.Velocity) / (vecmath.Magnitude(r) * vecmath.Magnitude(b.Velocity))).To(BeNumerically("~", 0, 1e-12))
			Expect(r2.Cross(r, b.Velocity)).To(BeNumerically(">", 0))

			want := math.Sqrt(physics.G * 2e30 / vecmath.Magnitude(r))
			Expect(vecmath.Magnitude(b.Velocity)).To(BeNumerically("~", want, want*1e-12))
		}
	})

	It("uses an explicitly designated reference body", func() {
		bodies := []body.Body{
			{Name: "Moon", Mass: 7.3e22, Position: r2.Vec{X: 3.8e8}},
			{Name: "Earth", Mass: 6e24},
		}
		eng, err := physics.New(bodies, 60, physics.WithReference("Earth"))
		Expect(err).NotTo(HaveOccurred())

		Expect(eng.Reference().Name).To(Equal("Earth"))
		got := eng.Bodies()
		Expect(got[1].Velocity).To(Equal(r2.Vec{}))
		Expect(got[0].Velocity.Y).To(BeNumerically("~", math.Sqrt(physics.G*6e24/3.8e8), 1e-6))
	})
})

var _ = Describe("Accelerations", func() {
	It("are equal and opposite for two bodies once scaled by mass", func() {
		bodies := []body.Body{
			{Name: "A", Mass: 5e20, Position: r2.Vec{X: -1e6, Y: 3e5}},
			{Name: "B", Mass: 3e22, Position: r2.Vec{X: 1e8, Y: 2e7}},
		}
		eng, err := physics.New(bodies, 1)
		Expect(err).NotTo(HaveOccurred())

		got := eng.Bodies()
		fa := r2.Scale(got[0].Mass, got[0].Acceleration)
		fb := r2.Scale(got[1].Mass, got[1].Acceleration)
		Expect(relDiff(fa.X, -fb.X)).To(BeNumerically("<", 1e-12))
		Expect(relDiff(fa.Y, -fb.Y)).To(BeNumerically("<", 1e-12))
	})

	It("never include a body's own mass", func() {
		light := marsPhobos()
		heavy := marsPhobos()
		heavy[1].Mass *= 1000

		a, err := physics.New(light, 100)
		Expect(err).NotTo(HaveOccurred())
		b, err := physics.New(heavy, 100)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Bodies()[1].Acceleration).To(Equal(b.Bodies()[1].Acceleration))
	})

	It("replace rather than accumulate", func() {
		eng, err := physics.New(marsPhobos(), 100)
		Expect(err).NotTo(HaveOccurred())

		before := eng.Bodies()
		Expect(eng.ComputeAccelerations()).To(Succeed())
		Expect(eng.ComputeAccelerations()).To(Succeed())
		Expect(eng.Bodies()).To(Equal(before))
	})

	It("point toward the attracting body with inverse-square magnitude", func() {
		eng, err := physics.New(marsPhobos(), 100)
		Expect(err).NotTo(HaveOccurred())

		phobos := eng.Bodies()[1]
		want := physics.G * marsMass / (orbit * orbit)
		Expect(phobos.Acceleration.X).To(BeNumerically("~", -want, want*1e-12))
		Expect(phobos.Acceleration.Y).To(BeZero())
	})
})

var _ = Describe("Step", func() {
	It("advances Phobos along +y by v·Δt on the first tick", func() {
		eng, err := physics.New(marsPhobos(), 100)
		Expect(err).NotTo(HaveOccurred())
		v := eng.Bodies()[1].Velocity

		Expect(eng.Step()).To(Succeed())

		phobos := eng.Bodies()[1]
		Expect(phobos.Position.Y).To(BeNumerically("~", v.Y*100, v.Y*100*1e-12))
		Expect(phobos.Position.X).To(BeNumerically("~", orbit, orbit*1e-12))
		Expect(eng.Steps()).To(Equal(1))
		Expect(eng.Time()).To(Equal(100.0))
	})

	It("applies velocity before position and refreshes accelerations afterwards", func() {
		eng, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())
		before := eng.Bodies()

		Expect(eng.Step()).To(Succeed())
		after := eng.Bodies()

		for i, b := range before {
			v := r2.Add(b.Velocity, r2.Scale(10, b.Acceleration))
			p := r2.Add(b.Position, r2.Scale(10, v))
			Expect(after[i].Velocity).To(Equal(v))
			Expect(after[i].Position).To(Equal(p))
		}

		fresh := body.Clone(after)
		Expect(physics.NewDirect().Accelerations(fresh)).To(Succeed())
		Expect(after).To(Equal(fresh))
	})

	It("keeps kinetic energy of a circular orbit within a few percent", func() {
		eng, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())

		initial := eng.TotalKineticEnergy()
		for i := 0; i < 2000; i++ {
			Expect(eng.Step()).To(Succeed())
			if i%51 == 0 {
				Expect(relDiff(eng.TotalKineticEnergy(), initial)).To(BeNumerically("<", 0.05))
			}
		}
	})

	It("is deterministic from identical state", func() {
		a, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())
		b, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 500; i++ {
			Expect(a.Step()).To(Succeed())
			Expect(b.Step()).To(Succeed())
		}
		Expect(a.Bodies()).To(Equal(b.Bodies()))
	})

	It("replays identically from a restored checkpoint", func() {
		eng, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 100; i++ {
			Expect(eng.Step()).To(Succeed())
		}

		cp := eng.Checkpoint()
		for i := 0; i < 50; i++ {
			Expect(eng.Step()).To(Succeed())
		}
		first := eng.Bodies()

		Expect(eng.Restore(cp)).To(Succeed())
		Expect(eng.Steps()).To(Equal(100))
		for i := 0; i < 50; i++ {
			Expect(eng.Step()).To(Succeed())
		}
		Expect(eng.Bodies()).To(Equal(first))
	})

	It("rejects checkpoints for other bodies", func() {
		eng, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())

		Expect(eng.Restore(physics.Checkpoint{Bodies: marsPhobos()})).NotTo(Succeed())
		Expect(eng.Restore(physics.Checkpoint{Bodies: marsPhobos()[:1]})).NotTo(Succeed())
	})

	It("halts on coincident bodies", func() {
		eng, err := physics.New(marsPhobos(), 100)
		Expect(err).NotTo(HaveOccurred())

		cp := eng.Checkpoint()
		for i := range cp.Bodies {
			cp.Bodies[i].Position = r2.Vec{X: 5}
			cp.Bodies[i].Velocity = r2.Vec{}
			cp.Bodies[i].Acceleration = r2.Vec{}
		}
		Expect(eng.Restore(cp)).To(Succeed())

		err = eng.Step()
		Expect(err).To(MatchError(dynamo.ErrCoincidentBodies))
		Expect(err).To(MatchError(vecmath.ErrZeroVector))

		var simErr *dynamo.SimulationError
		Expect(err).To(BeAssignableToTypeOf(simErr))
		Expect(err.(*dynamo.SimulationError).Step).To(Equal(1))

		again := eng.Step()
		Expect(again).To(MatchError(dynamo.ErrEngineFailed))
		Expect(again).To(MatchError(err))
		Expect(eng.Err()).To(Equal(err))
		Expect(eng.Steps()).To(Equal(0))
	})

	It("keeps the last good tick when a step fails", func() {
		eng, err := physics.New([]body.Body{
			{Name: "c", Mass: 1, Position: r2.Vec{X: 100}},
			{Name: "a", Mass: 1},
			{Name: "b", Mass: 1, Position: r2.Vec{X: 10}},
		}, 1)
		Expect(err).NotTo(HaveOccurred())

		cp := eng.Checkpoint()
		for i := range cp.Bodies {
			cp.Bodies[i].Velocity = r2.Vec{}
			cp.Bodies[i].Acceleration = r2.Vec{}
		}
		cp.Bodies[2].Velocity = r2.Vec{X: -10}
		Expect(eng.Restore(cp)).To(Succeed())
		before := eng.Bodies()

		Expect(eng.Step()).To(MatchError(dynamo.ErrCoincidentBodies))
		Expect(eng.Bodies()).To(Equal(before))
		Expect(eng.Checkpoint().Bodies).To(Equal(before))
		Expect(eng.Steps()).To(Equal(0))
		Expect(eng.Time()).To(BeZero())
	})

	It("halts on non-finite state", func() {
		eng, err := physics.New(marsPhobos(), 100)
		Expect(err).NotTo(HaveOccurred())

		cp := eng.Checkpoint()
		cp.Bodies[1].Velocity.X = math.Inf(1)
		Expect(eng.Restore(cp)).To(Succeed())

		Expect(eng.Step()).To(MatchError(dynamo.ErrInvalidState))
	})

	It("conserves energy better with leapfrog", func() {
		euler, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())
		leap, err := physics.New(earthSatellite(), 10, physics.WithIntegrator(integrators.NewLeapfrog()))
		Expect(err).NotTo(HaveOccurred())
		Expect(leap.Integrator().Name()).To(Equal("leapfrog"))

		e0 := euler.TotalEnergy()
		var eulerWorst, leapWorst float64
		for i := 0; i < 1500; i++ {
			Expect(euler.Step()).To(Succeed())
			Expect(leap.Step()).To(Succeed())
			eulerWorst = math.Max(eulerWorst, relDiff(euler.TotalEnergy(), e0))
			leapWorst = math.Max(leapWorst, relDiff(leap.TotalEnergy(), e0))
		}
		Expect(leapWorst).To(BeNumerically("<", eulerWorst))
	})
})
