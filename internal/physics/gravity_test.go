package physics_test

import (
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// cluster places a heavy body at the origin and n-1 lighter ones on a spiral.
func cluster(n int) []body.Body {
	bodies := make([]body.Body, n)
	bodies[0] = body.Body{Name: "core", Mass: 1e25}
	for i := 1; i < n; i++ {
		angle := float64(i) * 0.7
		r := float64(i) * 1e7
		bodies[i] = body.Body{
			Name:     fmt.Sprintf("b%d", i),
			Mass:     1e20 * float64(i),
			Position: r2.Vec{X: r * math.Cos(angle), Y: r * math.Sin(angle)},
		}
	}
	return bodies
}

var _ = Describe("Solvers", func() {
	It("parallel matches direct bit for bit", func() {
		direct := cluster(64)
		parallel := body.Clone(direct)

		Expect(physics.NewDirect().Accelerations(direct)).To(Succeed())
		Expect(physics.NewParallel().Accelerations(parallel)).To(Succeed())
		Expect(parallel).To(Equal(direct))
	})

	It("barneshut with zero opening angle matches direct", func() {
		direct := cluster(40)
		approx := body.Clone(direct)

		Expect(physics.NewDirect().Accelerations(direct)).To(Succeed())
		Expect(physics.NewBarnesHut(0).Accelerations(approx)).To(Succeed())

		for i := range direct {
			want := direct[i].Acceleration
			got := approx[i].Acceleration
			scale := math.Hypot(want.X, want.Y)
			Expect(math.Hypot(got.X-want.X, got.Y-want.Y)).To(BeNumerically("<", scale*1e-9), "body %d", i)
		}
	})

	It("barneshut stays close to direct with the default opening angle", func() {
		direct := cluster(40)
		approx := body.Clone(direct)

		Expect(physics.NewDirect().Accelerations(direct)).To(Succeed())
		Expect(physics.NewBarnesHut(physics.DefaultTheta).Accelerations(approx)).To(Succeed())

		// The core's net pull is a near-cancelling sum over the spiral, so
		// only the orbiting bodies are compared.
		for i := 1; i < len(direct); i++ {
			want := direct[i].Acceleration
			got := approx[i].Acceleration
			scale := math.Hypot(want.X, want.Y)
			Expect(math.Hypot(got.X-want.X, got.Y-want.Y)).To(BeNumerically("<", scale*0.05), "body %d", i)
		}
	})

	DescribeTable("report coincident bodies",
		func(s physics.Solver) {
			bodies := cluster(20)
			bodies[7].Position = bodies[3].Position
			Expect(s.Accelerations(bodies)).To(MatchError(dynamo.ErrCoincidentBodies))
		},
		Entry("direct", physics.NewDirect()),
		Entry("parallel", &physics.Parallel{MinChunk: 4}),
		Entry("barneshut", physics.NewBarnesHut(physics.DefaultTheta)),
	)

	It("leaves accelerations untouched when a pair coincides", func() {
		bodies := []body.Body{
			{Name: "c", Mass: 1, Position: r2.Vec{X: 100}, Acceleration: r2.Vec{X: 7, Y: 7}},
			{Name: "a", Mass: 1, Acceleration: r2.Vec{X: 1}},
			{Name: "b", Mass: 1, Acceleration: r2.Vec{Y: 1}},
		}
		want := body.Clone(bodies)

		Expect(physics.NewDirect().Accelerations(bodies)).To(MatchError(dynamo.ErrCoincidentBodies))
		Expect(bodies).To(Equal(want))
	})

	It("plugs into the engine", func() {
		for _, name := range physics.SolverNames() {
			s, err := physics.SolverByName(name, physics.DefaultTheta)
			Expect(err).NotTo(HaveOccurred())

			eng, err := physics.New(earthSatellite(), 10, physics.WithSolver(s))
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Solver().Name()).To(Equal(name))
			Expect(eng.Step()).To(Succeed())
		}
	})

	It("rejects unknown solvers and negative theta", func() {
		_, err := physics.SolverByName("fmm", 0)
		Expect(err).To(HaveOccurred())
		_, err = physics.SolverByName("barneshut", -1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Energy", func() {
	It("computes pairwise potential energy", func() {
		bodies := []body.Body{
			{Name: "a", Mass: 2, Position: r2.Vec{}},
			{Name: "b", Mass: 3, Position: r2.Vec{X: 4}},
			{Name: "c", Mass: 5, Position: r2.Vec{Y: 3}},
		}
		want := -physics.G * (2*3/4.0 + 2*5/3.0 + 3*5/5.0)
		Expect(physics.PotentialEnergy(bodies)).To(BeNumerically("~", want, math.Abs(want)*1e-12))
	})

	It("conserves momentum to rounding for an isolated pair", func() {
		eng, err := physics.New(earthSatellite(), 10)
		Expect(err).NotTo(HaveOccurred())

		p0 := eng.Momentum()
		for i := 0; i < 100; i++ {
			Expect(eng.Step()).To(Succeed())
		}
		p := eng.Momentum()
		satMomentum := 1000 * math.Sqrt(physics.G*6e24/1e7)
		Expect(math.Hypot(p.X-p0.X, p.Y-p0.Y)).To(BeNumerically("<", satMomentum*1e-9))
	})
})
