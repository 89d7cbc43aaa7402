package mfdfa_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/mfdfa"
	"github.com/san-kum/hurstlab/internal/profile"
)

// referenceDFA computes classical DFA-1 F_2(s) with explicit closed-form
// line fits, independent of the detrend package.
func referenceDFA(x []float64, s int) float64 {
	n := len(x)
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)

	y := make([]float64, n)
	acc := 0.0
	for i, v := range x {
		acc += v - mean
		y[i] = acc
	}

	windowVar := func(start int) float64 {
		var sx, sy, sxx, sxy float64
		for i := 0; i < s; i++ {
			xi := float64(i)
			sx += xi
			sy += y[start+i]
			sxx += xi * xi
			sxy += xi * y[start+i]
		}
		fs := float64(s)
		slope := (fs*sxy - sx*sy) / (fs*sxx - sx*sx)
		icept := (sy - slope*sx) / fs
		sum := 0.0
		for i := 0; i < s; i++ {
			r := y[start+i] - (icept + slope*float64(i))
			sum += r * r
		}
		return sum / fs
	}

	count := n / s
	total := 0.0
	for k := 0; k < count; k++ {
		total += windowVar(k * s)
		total += windowVar(n - (k+1)*s)
	}
	return math.Sqrt(total / float64(2*count))
}

func ramp(n int) fractal.Series {
	x := make(fractal.Series, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}

var _ = Describe("Fluctuation", func() {
	Context("classical DFA (q=2, order 1)", func() {
		It("matches the hand-computed value for a linear ramp", func() {
			// The profile of 0..15 is (k+1)(k-15)/2, a parabola with
			// leading coefficient ½. A line fitted to ½k² over four
			// consecutive points leaves residuals ±½, so every window has
			// variance ¼ and F_2(4) = ½.
			p, err := profile.Build(ramp(16))
			Expect(err).NotTo(HaveOccurred())

			f, err := mfdfa.Fluctuation(p, 4, 2, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNumerically("~", 0.5, 1e-10))
		})

		It("agrees with an independent reference on a noisy ramp", func() {
			x := ramp(16)
			for i := range x {
				x[i] += 0.05 * math.Sin(1.7*float64(i)*float64(i))
			}
			p, err := profile.Build(x)
			Expect(err).NotTo(HaveOccurred())

			f, err := mfdfa.Fluctuation(p, 4, 2, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNumerically("~", referenceDFA(x, 4), 1e-10))
		})

		It("agrees with the reference when s does not divide N", func() {
			x := make(fractal.Series, 103)
			for i := range x {
				x[i] = math.Cos(0.37*float64(i)) + 0.01*float64(i%7)
			}
			p, err := profile.Build(x)
			Expect(err).NotTo(HaveOccurred())

			for _, s := range []int{3, 5, 10, 25} {
				f, err := mfdfa.Fluctuation(p, s, 2, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNumerically("~", referenceDFA(x, s), 1e-9), "scale %d", s)
			}
		})
	})

	Context("moment orders", func() {
		It("collapses to the common value when all segments agree", func() {
			p, err := profile.Build(ramp(16))
			Expect(err).NotTo(HaveOccurred())

			for _, q := range []float64{-4, -2, 0, 1, 2, 5} {
				f, err := mfdfa.Fluctuation(p, 4, q, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNumerically("~", 0.5, 1e-10), "q=%g", q)
			}
		})

		It("uses the geometric mean for q=0", func() {
			f, err := mfdfa.Aggregate([]float64{1, 4, 16}, 0)
			Expect(err).NotTo(HaveOccurred())
			// exp(mean(½ ln v)) = (1·2·4)^{1/3}
			Expect(f).To(BeNumerically("~", 2, 1e-12))
		})

		It("treats orders that round to zero as q=0", func() {
			for _, q := range []float64{1.1102230246251565e-16, -5.551115123125783e-17} {
				f, err := mfdfa.Aggregate([]float64{1, 4, 16}, q)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNumerically("~", 2, 1e-12), "q=%g", q)
			}
		})

		It("uses the power mean for q≠0", func() {
			f, err := mfdfa.Aggregate([]float64{1, 9}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNumerically("~", math.Sqrt(5), 1e-12))

			f, err = mfdfa.Aggregate([]float64{1, 9}, -2)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(BeNumerically("~", math.Sqrt(9.0/5), 1e-12))
		})

		It("is monotone non-decreasing in q", func() {
			vars := []float64{0.1, 0.5, 2, 3.3, 7}
			prev := 0.0
			for _, q := range []float64{-5, -2, -0.5, 0, 0.5, 2, 5} {
				f, err := mfdfa.Aggregate(vars, q)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(BeNumerically(">=", prev-1e-12))
				prev = f
			}
		})
	})

	Context("degenerate segments", func() {
		It("treats a zero-variance segment as a valid zero for q<=0", func() {
			vars := []float64{0, 1, 4}

			f0, err := mfdfa.Aggregate(vars, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(f0).To(Equal(0.0))

			fneg, err := mfdfa.Aggregate(vars, -2)
			Expect(err).NotTo(HaveOccurred())
			Expect(fneg).To(Equal(0.0))

			fpos, err := mfdfa.Aggregate(vars, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(fpos).To(BeNumerically("~", math.Sqrt(5.0/3), 1e-12))
		})

		It("returns exact zeros for a constant series", func() {
			x := make(fractal.Series, 32)
			for i := range x {
				x[i] = 2.5
			}
			p, err := profile.Build(x)
			Expect(err).NotTo(HaveOccurred())

			for _, q := range []float64{-2, 0, 2} {
				f, err := mfdfa.Fluctuation(p, 4, q, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(f).To(Equal(0.0))
			}
		})
	})

	Context("errors", func() {
		It("rejects invalid scales", func() {
			p, err := profile.Build(ramp(16))
			Expect(err).NotTo(HaveOccurred())

			_, err = mfdfa.Fluctuation(p, 5, 2, 1)
			Expect(err).To(MatchError(fractal.ErrInvalidScale))

			_, err = mfdfa.Fluctuation(p, 3, 2, 2)
			Expect(err).To(MatchError(fractal.ErrInvalidScale))
		})

		It("rejects non-finite moment orders", func() {
			_, err := mfdfa.Aggregate([]float64{1}, math.NaN())
			Expect(err).To(MatchError(fractal.ErrDomain))
		})

		It("reports overflow as numerical instability", func() {
			_, err := mfdfa.Aggregate([]float64{1e300}, 4)
			Expect(err).To(MatchError(fractal.ErrNumericalInstability))
		})

		It("rejects an empty variance set", func() {
			_, err := mfdfa.Aggregate(nil, 2)
			Expect(err).To(MatchError(fractal.ErrInsufficientData))
		})
	})
})
