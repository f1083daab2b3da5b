package gravity_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/gravsim/internal/gravity"
)

func mustBody(pos, vel r3.Vec, mass float64) *gravity.Body {
	b, err := gravity.NewBody(pos, vel, mass)
	Expect(err).NotTo(HaveOccurred())
	return b
}

var _ = Describe("Body", func() {
	DescribeTable("rejects masses that are not finite and positive",
		func(mass float64) {
			b, err := gravity.NewBody(r3.Vec{}, r3.Vec{}, mass)
			Expect(err).To(MatchError(gravity.ErrInvalidMass))
			Expect(b).To(BeNil())
		},
		Entry("zero", 0.0),
		Entry("negative", -1.0),
		Entry("NaN", math.NaN()),
		Entry("+Inf", math.Inf(1)),
	)

	It("starts with a single trajectory entry at t=0", func() {
		b := mustBody(r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: 4}, 5)

		times, positions := b.Trajectory()
		Expect(times).To(Equal([]float64{0}))
		Expect(positions).To(Equal([]r3.Vec{{X: 1, Y: 2, Z: 3}}))
		Expect(b.Len()).To(Equal(1))
		Expect(b.Mass()).To(Equal(5.0))
	})

	It("computes the Euclidean separation", func() {
		b := mustBody(r3.Vec{}, r3.Vec{}, 1)
		Expect(b.Separation(r3.Vec{X: 3, Y: 4})).To(Equal(5.0))
		Expect(b.Separation(r3.Vec{})).To(Equal(0.0))
	})

	It("points the direction vector from self toward other without normalizing", func() {
		b := mustBody(r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{}, 1)
		Expect(b.Direction(r3.Vec{X: 4, Y: 6, Z: 3})).To(Equal(r3.Vec{X: 3, Y: 4}))
	})

	It("computes the velocity delta for a unit separation", func() {
		a := mustBody(r3.Vec{}, r3.Vec{}, 10)
		b := mustBody(r3.Vec{X: 1}, r3.Vec{}, 10)

		delta, err := a.VelocityDelta(b, gravity.G, 0.005)
		Expect(err).NotTo(HaveOccurred())

		want := gravity.G * 10 * 0.005
		Expect(delta.X).To(BeNumerically("~", want, want*1e-15))
		Expect(delta.Y).To(BeZero())
		Expect(delta.Z).To(BeZero())
	})

	It("scales the velocity delta with the inverse square of distance", func() {
		a := mustBody(r3.Vec{}, r3.Vec{}, 1)
		b := mustBody(r3.Vec{Y: 2}, r3.Vec{}, 8)

		delta, err := a.VelocityDelta(b, 1, 0.5)
		Expect(err).NotTo(HaveOccurred())
		// 1 * 8 * 0.5 / 2³ * (0, 2, 0)
		Expect(delta).To(Equal(r3.Vec{Y: 1}))
	})

	It("reports a singularity for coincident positions", func() {
		a := mustBody(r3.Vec{X: 1}, r3.Vec{}, 1)
		b := mustBody(r3.Vec{X: 1}, r3.Vec{}, 1)

		_, err := a.VelocityDelta(b, 1, 0.1)
		Expect(err).To(MatchError(gravity.ErrSingularity))
	})

	It("reports a singularity when r³ underflows", func() {
		a := mustBody(r3.Vec{}, r3.Vec{}, 1)
		b := mustBody(r3.Vec{X: 1e-120}, r3.Vec{}, 1)
		Expect(a.Separation(b.Position())).To(BeNumerically(">", 0))

		_, err := a.VelocityDelta(b, 1, 0.1)
		Expect(err).To(MatchError(gravity.ErrSingularity))
	})

	It("commits the position with the current velocity", func() {
		b := mustBody(r3.Vec{X: 1}, r3.Vec{X: 2, Y: -4}, 1)
		b.ApplyVelocityDelta(r3.Vec{X: 2})
		b.CommitPosition(0.25, 0.5)

		Expect(b.Velocity()).To(Equal(r3.Vec{X: 4, Y: -4}))
		Expect(b.Position()).To(Equal(r3.Vec{X: 3, Y: -2}))

		times, positions := b.Trajectory()
		Expect(times).To(Equal([]float64{0, 0.25}))
		Expect(positions).To(Equal([]r3.Vec{{X: 1}, {X: 3, Y: -2}}))
	})

	It("hands out trajectory copies", func() {
		b := mustBody(r3.Vec{}, r3.Vec{X: 1}, 1)
		b.CommitPosition(1, 1)

		times, positions := b.Trajectory()
		times[0] = 99
		positions[1] = r3.Vec{Z: 99}

		times, positions = b.Trajectory()
		Expect(times[0]).To(Equal(0.0))
		Expect(positions[1]).To(Equal(r3.Vec{X: 1}))
	})

	It("uses the velocity magnitude for kinetic energy", func() {
		b := mustBody(r3.Vec{}, r3.Vec{X: 3, Y: 4}, 2)
		Expect(b.Speed()).To(Equal(5.0))
		Expect(b.KineticEnergy()).To(Equal(25.0))
		Expect(b.Momentum()).To(Equal(r3.Vec{X: 6, Y: 8}))
	})
})
