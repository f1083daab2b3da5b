package gravity_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/gravsim/internal/gravity"
)

type bodySpec struct {
	pos, vel r3.Vec
	mass     float64
}

func buildSystem(dt float64, specs []bodySpec, opts ...gravity.Option) *gravity.System {
	bodies := make([]*gravity.Body, len(specs))
	for i, s := range specs {
		bodies[i] = mustBody(s.pos, s.vel, s.mass)
	}
	sys, err := gravity.NewSystem(bodies, dt, opts...)
	Expect(err).NotTo(HaveOccurred())
	return sys
}

func run(sys *gravity.System, steps int) {
	for i := 1; i <= steps; i++ {
		Expect(sys.Step(float64(i) * sys.Dt())).To(Succeed())
	}
}

var _ = Describe("System", func() {
	Describe("construction", func() {
		It("defaults to the SI gravitational constant", func() {
			sys := buildSystem(0.1, []bodySpec{{mass: 1}})
			Expect(sys.G()).To(Equal(gravity.G))
			Expect(sys.Dt()).To(Equal(0.1))
			Expect(sys.Len()).To(Equal(1))
		})

		It("accepts an injected constant", func() {
			sys := buildSystem(0.1, []bodySpec{{mass: 1}}, gravity.WithG(1))
			Expect(sys.G()).To(Equal(1.0))
		})

		DescribeTable("rejects bad time steps",
			func(dt float64) {
				b := mustBody(r3.Vec{}, r3.Vec{}, 1)
				_, err := gravity.NewSystem([]*gravity.Body{b}, dt)
				Expect(err).To(MatchError(gravity.ErrInvalidStep))
			},
			Entry("zero", 0.0),
			Entry("negative", -0.01),
			Entry("NaN", math.NaN()),
			Entry("+Inf", math.Inf(1)),
		)

		It("rejects a non-positive constant", func() {
			b := mustBody(r3.Vec{}, r3.Vec{}, 1)
			_, err := gravity.NewSystem([]*gravity.Body{b}, 0.1, gravity.WithG(0))
			Expect(err).To(MatchError(gravity.ErrInvalidConstant))
		})

		It("rejects an empty body set", func() {
			_, err := gravity.NewSystem(nil, 0.1)
			Expect(err).To(MatchError(gravity.ErrNoBodies))
		})

		It("rejects nil bodies", func() {
			_, err := gravity.NewSystem([]*gravity.Body{nil}, 0.1)
			Expect(err).To(MatchError(gravity.ErrInvalidBody))
		})

		It("rejects the same body twice even when another body has equal state", func() {
			a := mustBody(r3.Vec{}, r3.Vec{}, 1)
			twin := mustBody(r3.Vec{X: 1}, r3.Vec{}, 1)
			_, err := gravity.NewSystem([]*gravity.Body{a, twin, a}, 0.1)
			Expect(err).To(MatchError(gravity.ErrDuplicateBody))
		})

		It("rejects a body that already belongs to another system", func() {
			a := mustBody(r3.Vec{}, r3.Vec{}, 1)
			b := mustBody(r3.Vec{X: 1}, r3.Vec{}, 1)
			_, err := gravity.NewSystem([]*gravity.Body{a, b}, 0.1)
			Expect(err).NotTo(HaveOccurred())

			c := mustBody(r3.Vec{X: 2}, r3.Vec{}, 1)
			_, err = gravity.NewSystem([]*gravity.Body{c, b}, 0.1)
			Expect(err).To(MatchError(gravity.ErrBodyAttached))
		})

		It("does not claim bodies when construction fails", func() {
			a := mustBody(r3.Vec{}, r3.Vec{}, 1)
			_, err := gravity.NewSystem([]*gravity.Body{a}, 0)
			Expect(err).To(MatchError(gravity.ErrInvalidStep))

			_, err = gravity.NewSystem([]*gravity.Body{a}, 0.1)
			Expect(err).NotTo(HaveOccurred())
		})

		It("keeps its own copy of the body slice", func() {
			a := mustBody(r3.Vec{}, r3.Vec{}, 1)
			b := mustBody(r3.Vec{X: 1}, r3.Vec{}, 1)
			in := []*gravity.Body{a, b}
			sys, err := gravity.NewSystem(in, 0.1)
			Expect(err).NotTo(HaveOccurred())

			in[0] = b
			Expect(sys.Body(0)).To(BeIdenticalTo(a))
		})
	})

	Describe("Step", func() {
		It("applies the single-step velocity delta exactly", func() {
			dt := 0.005
			sys := buildSystem(dt, []bodySpec{
				{pos: r3.Vec{}, mass: 10},
				{pos: r3.Vec{X: 1}, mass: 10},
			})
			Expect(sys.Step(dt)).To(Succeed())

			want := gravity.G * 10 * dt
			a := sys.Body(0)
			Expect(a.Velocity().X).To(BeNumerically("~", want, want*1e-15))
			Expect(a.Velocity().Y).To(BeZero())
			Expect(sys.Body(1).Velocity().X).To(BeNumerically("~", -want, want*1e-15))
		})

		It("moves bodies with the velocity updated in the same step", func() {
			sys := buildSystem(0.5, []bodySpec{
				{pos: r3.Vec{}, mass: 1},
				{pos: r3.Vec{X: 1}, mass: 1},
			}, gravity.WithG(1))
			Expect(sys.Step(0.5)).To(Succeed())

			// v = 1 * 1 * 0.5 / 1 = 0.5, then p = 0 + 0.5 * 0.5
			Expect(sys.Body(0).Velocity()).To(Equal(r3.Vec{X: 0.5}))
			Expect(sys.Body(0).Position()).To(Equal(r3.Vec{X: 0.25}))
			Expect(sys.Body(1).Position()).To(Equal(r3.Vec{X: 0.75}))
		})

		It("grows every trajectory by one entry per step", func() {
			sys := buildSystem(0.01, []bodySpec{
				{pos: r3.Vec{}, mass: 1},
				{pos: r3.Vec{X: 1}, vel: r3.Vec{Y: 1}, mass: 1},
				{pos: r3.Vec{Y: 2}, vel: r3.Vec{X: -1}, mass: 2},
			}, gravity.WithG(1))

			const n = 25
			run(sys, n)

			for _, b := range sys.Bodies() {
				times, positions := b.Trajectory()
				Expect(times).To(HaveLen(n + 1))
				Expect(positions).To(HaveLen(n + 1))
				Expect(times[0]).To(Equal(0.0))
				Expect(times[n]).To(Equal(float64(n) * 0.01))
			}
		})

		It("never applies a body's pull to itself", func() {
			sys := buildSystem(0.1, []bodySpec{
				{pos: r3.Vec{X: 1}, vel: r3.Vec{Y: 2}, mass: 1e30},
			})
			run(sys, 10)

			b := sys.Body(0)
			Expect(b.Velocity()).To(Equal(r3.Vec{Y: 2}))
			Expect(b.Position().X).To(Equal(1.0))
			Expect(b.Position().Y).To(BeNumerically("~", 2.0, 1e-12))
		})

		It("sums exactly the pulls of the other bodies", func() {
			specs := []bodySpec{
				{pos: r3.Vec{}, mass: 1},
				{pos: r3.Vec{X: 1}, mass: 2},
				{pos: r3.Vec{Y: -3, Z: 1}, mass: 5},
			}
			sys := buildSystem(0.01, specs, gravity.WithG(1))
			a, b, c := sys.Body(0), sys.Body(1), sys.Body(2)

			fromB, err := a.VelocityDelta(b, 1, 0.01)
			Expect(err).NotTo(HaveOccurred())
			fromC, err := a.VelocityDelta(c, 1, 0.01)
			Expect(err).NotTo(HaveOccurred())

			Expect(sys.Step(0.01)).To(Succeed())
			Expect(a.Velocity()).To(Equal(r3.Add(r3.Add(r3.Vec{}, fromB), fromC)))

			// Dropping C leaves B's contribution to A unchanged.
			pair := buildSystem(0.01, specs[:2], gravity.WithG(1))
			Expect(pair.Step(0.01)).To(Succeed())
			Expect(pair.Body(0).Velocity()).To(Equal(r3.Add(r3.Vec{}, fromB)))
		})

		It("does not depend on body order for a pair", func() {
			a := bodySpec{pos: r3.Vec{X: -1}, vel: r3.Vec{Y: -0.3}, mass: 3}
			b := bodySpec{pos: r3.Vec{X: 2, Z: 0.5}, vel: r3.Vec{Y: 0.9}, mass: 1}

			forward := buildSystem(0.001, []bodySpec{a, b}, gravity.WithG(1))
			reverse := buildSystem(0.001, []bodySpec{b, a}, gravity.WithG(1))
			run(forward, 200)
			run(reverse, 200)

			_, fa := forward.Body(0).Trajectory()
			_, ra := reverse.Body(1).Trajectory()
			Expect(fa).To(Equal(ra))
		})

		It("conserves linear momentum for two bodies", func() {
			sys := buildSystem(0.001, []bodySpec{
				{pos: r3.Vec{X: -0.5}, vel: r3.Vec{Y: -0.25}, mass: 3},
				{pos: r3.Vec{X: 1.5}, vel: r3.Vec{Y: 0.75}, mass: 1},
			}, gravity.WithG(1))

			p0 := sys.Momentum()
			for i := 1; i <= 2000; i++ {
				Expect(sys.Step(float64(i) * sys.Dt())).To(Succeed())
				drift := r3.Norm(r3.Sub(sys.Momentum(), p0))
				Expect(drift).To(BeNumerically("<", 1e-10))
			}
		})

		It("is bit-for-bit reproducible", func() {
			specs := []bodySpec{
				{pos: r3.Vec{X: 0.05, Y: 0.01}, mass: 1e6},
				{pos: r3.Vec{}, vel: r3.Vec{X: 1}, mass: 1},
				{pos: r3.Vec{Z: 0.2}, vel: r3.Vec{Y: -0.1}, mass: 50},
			}
			first := buildSystem(0.001, specs)
			second := buildSystem(0.001, specs)
			run(first, 99)
			run(second, 99)

			for i := 0; i < first.Len(); i++ {
				t1, p1 := first.Body(i).Trajectory()
				t2, p2 := second.Body(i).Trajectory()
				Expect(t1).To(Equal(t2))
				Expect(p1).To(Equal(p2))
			}
		})

		Context("when two bodies coincide", func() {
			var sys *gravity.System

			BeforeEach(func() {
				sys = buildSystem(0.1, []bodySpec{
					{pos: r3.Vec{X: 5}, mass: 1},
					{pos: r3.Vec{X: 1, Y: 1}, vel: r3.Vec{X: 1}, mass: 1},
					{pos: r3.Vec{X: 1, Y: 1}, mass: 2},
				}, gravity.WithG(1))
			})

			It("returns a singularity error naming the pair", func() {
				err := sys.Step(0.1)
				Expect(err).To(MatchError(gravity.ErrSingularity))

				var serr *gravity.SingularityError
				Expect(errors.As(err, &serr)).To(BeTrue())
				Expect(serr.I).To(Equal(1))
				Expect(serr.J).To(Equal(2))
				Expect(serr.Time).To(Equal(0.1))
				Expect(err.Error()).To(ContainSubstring("bodies 1 and 2"))
			})

			It("leaves every body untouched", func() {
				Expect(sys.Step(0.1)).NotTo(Succeed())

				Expect(sys.Body(0).Velocity()).To(Equal(r3.Vec{}))
				Expect(sys.Body(1).Velocity()).To(Equal(r3.Vec{X: 1}))
				for _, b := range sys.Bodies() {
					Expect(b.Len()).To(Equal(1))
				}
			})
		})
	})

	Describe("Step with distinct but nearly coincident bodies", func() {
		It("reports a singularity instead of producing non-finite state", func() {
			sys := buildSystem(0.1, []bodySpec{
				{pos: r3.Vec{}, mass: 1},
				{pos: r3.Vec{X: 1e-120}, mass: 1},
			})

			var serr *gravity.SingularityError
			Expect(errors.As(sys.Step(0.1), &serr)).To(BeTrue())
			Expect(serr.I).To(Equal(0))
			Expect(serr.J).To(Equal(1))

			for _, b := range sys.Bodies() {
				Expect(b.Velocity()).To(Equal(r3.Vec{}))
				Expect(b.Len()).To(Equal(1))
			}
			Expect(sys.Body(1).Position()).To(Equal(r3.Vec{X: 1e-120}))
		})
	})

	Describe("diagnostics", func() {
		It("sums energy and momentum", func() {
			sys := buildSystem(0.1, []bodySpec{
				{pos: r3.Vec{}, vel: r3.Vec{X: 1}, mass: 2},
				{pos: r3.Vec{X: 2}, vel: r3.Vec{Y: 2}, mass: 3},
			}, gravity.WithG(1))

			Expect(sys.KineticEnergy()).To(Equal(1.0 + 6.0))
			Expect(sys.PotentialEnergy()).To(Equal(-3.0))
			Expect(sys.TotalEnergy()).To(Equal(4.0))
			Expect(sys.Momentum()).To(Equal(r3.Vec{X: 2, Y: 6}))
			Expect(sys.CenterOfMass()).To(Equal(r3.Vec{X: 1.2}))
		})

		It("finds the closest pair", func() {
			sys := buildSystem(0.1, []bodySpec{
				{pos: r3.Vec{}, mass: 1},
				{pos: r3.Vec{X: 10}, mass: 1},
				{pos: r3.Vec{X: 9}, mass: 1},
			})
			r, i, j := sys.MinSeparation()
			Expect(r).To(Equal(1.0))
			Expect([]int{i, j}).To(Equal([]int{1, 2}))
		})
	})
})
