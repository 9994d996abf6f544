package orbitprop

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SatState", func() {
	var epoch time.Time
	var state *SatState

	newGeoState := func() *SatState {
		v := math.Sqrt(MuEarth / GeoRadius)
		return NewSatState(epoch, []float64{GeoRadius, 0, 0}, []float64{0, v, 0})
	}

	BeforeEach(func() {
		epoch = time.Date(2015, 3, 20, 0, 0, 0, 0, time.UTC)
		state = newGeoState()
	})

	It("exposes position and velocity views", func() {
		Expect(state.Pos()[0]).To(Equal(GeoRadius))
		Expect(state.Vel()[1]).To(BeNumerically(">", 3000))
		Expect(state.Cov).To(BeNil())
	})

	Describe("plain propagation", func() {
		It("takes the covariance-free fast path", func() {
			s2, err := state.Propagate(epoch.Add(time.Hour), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s2.Time).To(Equal(epoch.Add(time.Hour)))
			Expect(s2.Cov).To(BeNil())
			// a geostationary orbit keeps its radius
			r := math.Hypot(math.Hypot(s2.Pos()[0], s2.Pos()[1]), s2.Pos()[2])
			Expect(r).To(BeNumerically("~", GeoRadius, 100))
		})

		It("round-trips through a backward propagation", func() {
			set := tightSet()
			s2, err := state.Propagate(epoch.Add(time.Hour), nil, set)
			Expect(err).NotTo(HaveOccurred())
			s0, err := s2.Propagate(epoch, nil, set)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 3; i++ {
				Expect(s0.PV.AtVec(i)).To(BeNumerically("~", state.PV.AtVec(i), 1e-2))
			}
		})

		It("returns the state unchanged on a zero-span propagation", func() {
			s2, err := state.Propagate(epoch, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 6; i++ {
				Expect(s2.PV.AtVec(i)).To(Equal(state.PV.AtVec(i)))
			}
		})
	})

	Describe("covariance propagation", func() {
		It("rotates LVLH uncertainty into the Cartesian frame", func() {
			// at [r 0 0] with velocity along +y: LVLH x is along-track (+y),
			// y is negative orbit normal (-z), z is nadir (-x)
			state.SetLVLHPosUncertainty([3]float64{1, 2, 3})
			Expect(state.Cov.At(0, 0)).To(BeNumerically("~", 9, 1e-9))
			Expect(state.Cov.At(1, 1)).To(BeNumerically("~", 1, 1e-9))
			Expect(state.Cov.At(2, 2)).To(BeNumerically("~", 4, 1e-9))
		})

		It("sets a diagonal GCRF position covariance", func() {
			state.SetGCRFPosUncertainty([3]float64{10, 20, 30})
			Expect(state.Cov.At(0, 0)).To(Equal(100.0))
			Expect(state.Cov.At(1, 1)).To(Equal(400.0))
			Expect(state.Cov.At(2, 2)).To(Equal(900.0))
			Expect(state.Cov.At(3, 3)).To(BeZero())
		})

		It("keeps the propagated covariance symmetric", func() {
			state.SetLVLHPosUncertainty([3]float64{1, 1, 1})
			s2, err := state.Propagate(epoch.Add(2*time.Hour), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s2.Cov).NotTo(BeNil())
			for i := 0; i < 6; i++ {
				for j := i + 1; j < 6; j++ {
					d := math.Abs(s2.Cov.At(i, j) - s2.Cov.At(j, i))
					scale := math.Max(math.Abs(s2.Cov.At(i, j)), 1e-12)
					Expect(d / scale).To(BeNumerically("<", 1e-9))
				}
			}
		})

		It("grows position uncertainty over time", func() {
			state.SetGCRFPosUncertainty([3]float64{1, 1, 1})
			s2, err := state.Propagate(epoch.Add(6*time.Hour), nil, nil)
			Expect(err).NotTo(HaveOccurred())
			trace0, trace2 := 0.0, 0.0
			for i := 0; i < 3; i++ {
				trace0 += state.Cov.At(i, i)
				trace2 += s2.Cov.At(i, i)
			}
			Expect(trace2).To(BeNumerically(">", trace0))
		})

		It("propagates covariance under a finite-difference gradient", func() {
			state.SetGCRFPosUncertainty([3]float64{1, 1, 1})
			s2, err := state.Propagate(epoch.Add(time.Hour), NewJ2Gravity(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s2.Cov).NotTo(BeNil())
			Expect(s2.Cov.At(0, 0)).To(BeNumerically(">", 0))
		})
	})

	It("renders a readable summary", func() {
		state.SetGCRFPosUncertainty([3]float64{1, 1, 1})
		str := state.String()
		Expect(str).To(ContainSubstring("Satellite State"))
		Expect(str).To(ContainSubstring("Position"))
		Expect(str).To(ContainSubstring("Covariance"))
	})
})
