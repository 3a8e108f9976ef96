package physics

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/inertia/internal/sim"
)

func bound(v float64) *float64 { return &v }

func pregenerate(in *Inertia) *sim.Timeline {
	tl, err := sim.Pregenerate(context.Background(), in, sim.DefaultConfig())
	Expect(err).NotTo(HaveOccurred())
	return tl
}

func launch(velocity float64) InertiaConfig {
	return InertiaConfig{
		Keyframe:     100,
		Velocity:     velocity,
		Power:        1,
		TimeConstant: 500,
		RestDelta:    0.5,
	}
}

var _ = Describe("Inertia", func() {
	It("runs with default values", func() {
		tl := pregenerate(NewInertia(InertiaConfig{Keyframe: 0}))
		Expect(tl.Values).To(Equal([]float64{0, 0}))
	})

	It("fills defaults for unset parameters", func() {
		in := NewInertia(InertiaConfig{Keyframe: 10, Velocity: 100})
		params := in.GetParams()
		Expect(params["power"]).To(Equal(DefaultPower))
		Expect(params["time_constant"]).To(Equal(DefaultTimeConstant))
		Expect(params["rest_delta"]).To(Equal(DefaultRestDelta))
		Expect(in.Target()).To(BeNumerically("~", 90, 1e-12))
	})

	Describe("unbounded decay", func() {
		var tl *sim.Timeline

		BeforeEach(func() {
			tl = pregenerate(NewInertia(launch(200)))
		})

		It("settles after three seconds at the projected target", func() {
			Expect(tl.Seconds()).To(Equal(3.0))
			Expect(tl.Values[0]).To(Equal(100.0))
			Expect(tl.Final()).To(Equal(300.0))
			Expect(tl.Len()).To(Equal(301))
		})

		It("follows the exponential decay curve", func() {
			Expect(tl.Values[1]).To(BeNumerically("~", 103.96026533864895, 1e-9))
			Expect(tl.Values[35]).To(BeNumerically("~", 200.6829392417181, 1e-9))
			Expect(tl.Values[299]).To(BeNumerically("~", 299.4942347415541, 1e-9))
		})

		It("is monotone toward the target", func() {
			for i := 1; i < tl.Len(); i++ {
				Expect(tl.Values[i]).To(BeNumerically(">=", tl.Values[i-1]))
			}
		})
	})

	It("applies modifyTarget before computing amplitude", func() {
		cfg := launch(200)
		cfg.ModifyTarget = func(v float64) float64 { return v / 2 }
		tl := pregenerate(NewInertia(cfg))

		Expect(tl.Seconds()).To(Equal(2.31))
		Expect(tl.Values[0]).To(Equal(100.0))
		Expect(tl.Values[1]).To(BeNumerically("~", 100.99006633466223, 1e-9))
		Expect(tl.Final()).To(Equal(150.0))
	})

	It("mirrors negative velocity", func() {
		pos := pregenerate(NewInertia(InertiaConfig{Keyframe: 0, Velocity: 100}))
		neg := pregenerate(NewInertia(InertiaConfig{Keyframe: 0, Velocity: -100}))

		Expect(neg.Len()).To(Equal(pos.Len()))
		for i := range pos.Values {
			Expect(neg.Values[i]).To(Equal(-pos.Values[i]))
		}
	})

	DescribeTable("unreached bounds leave the trajectory untouched",
		func(velocity float64, min, max *float64) {
			plain := pregenerate(NewInertia(launch(velocity)))

			cfg := launch(velocity)
			cfg.Min, cfg.Max = min, max
			in := NewInertia(cfg)
			bounded := pregenerate(in)

			_, crossed := in.CrossingTime()
			Expect(crossed).To(BeFalse())
			Expect(bounded.Values).To(Equal(plain.Values))
			Expect(bounded.Seconds()).To(Equal(3.0))
		},
		Entry("min below a rising launch", 200.0, bound(0), nil),
		Entry("max above a falling launch", -200.0, nil, bound(200)),
		Entry("both bounds wide", 200.0, bound(-1000), bound(1000)),
	)

	DescribeTable("crossed bounds hand off to a spring",
		func(velocity float64, min, max *float64, rest float64) {
			cfg := launch(velocity)
			cfg.Min, cfg.Max = min, max
			in := NewInertia(cfg)
			plain := NewInertia(launch(velocity))
			tl := pregenerate(in)

			at, crossed := in.CrossingTime()
			Expect(crossed).To(BeTrue())
			Expect(at).To(BeNumerically("~", 500*math.Ln2, 1e-9))

			Expect(tl.Seconds()).To(Equal(1.42))
			Expect(tl.Values[0]).To(Equal(100.0))
			Expect(tl.Final()).To(Equal(rest))
			Expect(in.Target()).To(Equal(rest))

			// Before the crossing the decay curve is returned unmodified.
			for i, ts := range tl.Times {
				if ts < at {
					Expect(tl.Values[i]).To(Equal(plain.Next(ts).Value))
				}
			}

			// After it the trajectory diverges and overshoots, then settles.
			Expect(in.Next(350).Value).NotTo(Equal(plain.Next(350).Value))
			Expect(math.Abs(in.Next(400).Value - rest)).To(BeNumerically(">", 1))
			Expect(math.Abs(tl.Values[tl.Len()-2] - rest)).To(BeNumerically("<", 0.5))

			springRest := in.handoff.spring.Duration()
			Expect(in.Duration()).To(Equal(at + springRest))
		},
		Entry("min", -200.0, bound(0), nil, 0.0),
		Entry("max", 200.0, nil, bound(200), 200.0),
		Entry("min with a wide max", -200.0, bound(0), bound(1000), 0.0),
	)

	It("hands off to the bound even when the decay rests before reaching it", func() {
		// Target -0.3 sits within RestDelta of the bound at 0.
		cfg := launch(-200.6)
		cfg.Min = bound(0)
		in := NewInertia(cfg)
		plain := NewInertia(launch(-200.6))

		at, crossed := in.CrossingTime()
		Expect(crossed).To(BeTrue())
		Expect(at).To(BeNumerically(">", plain.Duration()))
		Expect(at).To(BeNumerically("~", 2906.1, 0.1))
		Expect(in.Duration()).To(BeNumerically("~", at, 1e-6))

		tl := pregenerate(in)
		Expect(tl.Done).To(BeTrue())
		Expect(tl.Final()).To(Equal(0.0))
		Expect(in.Target()).To(Equal(0.0))

		// Past the decay's own rest the value keeps easing toward the bound
		// instead of snapping to -0.3.
		s := in.Next(2700)
		Expect(s.Done).To(BeFalse())
		Expect(s.Value).To(BeNumerically(">", 0))
	})

	It("lands exactly on the bound at the crossing instant", func() {
		cfg := launch(-200)
		cfg.Min = bound(0)
		in := NewInertia(cfg)

		at, _ := in.CrossingTime()
		Expect(in.Next(at).Value).To(Equal(0.0))
		Expect(in.Next(at).Velocity).To(BeNumerically("~", -200, 1e-9))
		Expect(in.Phase(at)).To(Equal("spring"))
		Expect(in.Phase(math.Nextafter(at, 0))).To(Equal("decay"))
	})

	It("springs back immediately when launched outside the bounds", func() {
		cfg := launch(0)
		cfg.Keyframe = -20
		cfg.Min, cfg.Max = bound(0), bound(50)
		in := NewInertia(cfg)

		at, crossed := in.CrossingTime()
		Expect(crossed).To(BeTrue())
		Expect(at).To(Equal(0.0))

		tl := pregenerate(in)
		Expect(tl.Values[0]).To(Equal(-20.0))
		Expect(tl.Final()).To(Equal(0.0))
		Expect(tl.Done).To(BeTrue())
	})

	It("samples identically in any order", func() {
		cfg := launch(-200)
		cfg.Min = bound(0)

		forward := NewInertia(cfg)
		backward := NewInertia(cfg)

		times := []float64{0, 120, 346, 347, 500, 900, 1400, 2000}
		got := make([]float64, len(times))
		for i := len(times) - 1; i >= 0; i-- {
			got[i] = backward.Next(times[i]).Value
		}
		for i, ts := range times {
			Expect(forward.Next(ts).Value).To(Equal(got[i]))
			Expect(forward.Next(ts).Value).To(Equal(got[i]))
		}
	})

	It("agrees on rest between Next and Duration", func() {
		cfg := launch(200)
		cfg.Max = bound(200)
		in := NewInertia(cfg)
		d := in.Duration()

		Expect(in.Next(math.Nextafter(d, 0)).Done).To(BeFalse())
		Expect(in.Next(d).Done).To(BeTrue())
		Expect(in.AtRest(d)).To(BeTrue())
	})

	It("takes longer with a higher time constant", func() {
		long := launch(200)
		short := launch(200)
		short.TimeConstant = 0.1

		Expect(pregenerate(NewInertia(long)).Duration).
			To(BeNumerically(">", pregenerate(NewInertia(short)).Duration))
		Expect(NewInertia(long).Duration()).To(BeNumerically(">", NewInertia(short).Duration()))
	})

	It("projects further with higher power", func() {
		var longTarget, shortTarget float64
		long := launch(200)
		long.Power = 10
		long.ModifyTarget = func(v float64) float64 { longTarget = v; return v }
		short := launch(200)
		short.ModifyTarget = func(v float64) float64 { shortTarget = v; return v }

		pregenerate(NewInertia(long))
		pregenerate(NewInertia(short))
		Expect(longTarget).To(BeNumerically(">", shortTarget))
	})

	It("propagates a non-finite time constant as non-finite output", func() {
		cfg := launch(200)
		cfg.TimeConstant = math.NaN()
		Expect(cfg.Validate()).To(HaveOccurred())

		s := NewInertia(cfg).Next(10)
		Expect(math.IsNaN(s.Value)).To(BeTrue())
		Expect(s.Done).To(BeFalse())
	})

	It("rejects a negative time constant in Validate", func() {
		cfg := launch(200)
		cfg.TimeConstant = -1
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("time_constant")))
	})

	Describe("Validate", func() {
		It("accepts defaults", func() {
			Expect(DefaultInertiaConfig(0).Validate()).To(Succeed())
		})

		It("rejects min above max", func() {
			cfg := DefaultInertiaConfig(0)
			cfg.Min, cfg.Max = bound(10), bound(5)
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("min")))
		})

		It("rejects non-finite velocity", func() {
			cfg := DefaultInertiaConfig(0)
			cfg.Velocity = math.Inf(1)
			Expect(cfg.Validate()).To(HaveOccurred())
		})
	})
})
