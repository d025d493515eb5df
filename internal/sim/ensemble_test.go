package sim_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/liquidsim/internal/particle"
	"github.com/san-kum/liquidsim/internal/sim"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// column builds a simulator with n particles stacked above the origin.
func column(n int) *sim.Simulator {
	def := particle.DefaultDef()
	def.Radius = 0.1
	def.Logger = quiet
	sys := particle.New(def, nil)
	for i := 0; i < n; i++ {
		sys.CreateParticle(particle.ParticleDef{Position: particle.Vec{Y: float64(i) * 0.2}})
	}
	s := sim.New(sys, nil, nil)
	s.SetLogger(quiet)
	return s
}

type stepLog struct{ times []float64 }

func (o *stepLog) OnStep(_ *particle.System, t float64) { o.times = append(o.times, t) }

var _ = Describe("Ensemble", func() {
	cfg := sim.Config{Dt: 0.1, Duration: 0.5, SampleEvery: 1}

	It("runs one independent member per seed, in seed order", func() {
		var built atomic.Int32
		e := sim.NewEnsemble(func(seed int64) (*sim.Simulator, error) {
			built.Add(1)
			return column(int(seed)), nil
		}, 3, 1)
		e.SetLimit(2)

		results, err := e.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(built.Load()).To(BeEquivalentTo(3))
		Expect(results).To(HaveLen(3))
		for i, r := range results {
			Expect(r.StepsTaken).To(Equal(5))
			final, ok := r.Final()
			Expect(ok).To(BeTrue())
			Expect(final.Count).To(Equal(i + 1))
		}
	})

	It("fails when a member cannot be built", func() {
		boom := errors.New("boom")
		e := sim.NewEnsemble(func(seed int64) (*sim.Simulator, error) {
			if seed == 2 {
				return nil, boom
			}
			return column(1), nil
		}, 3, 0)

		_, err := e.Run(context.Background(), cfg)
		Expect(err).To(MatchError(boom))
	})
})

var _ = Describe("Simulator observers", func() {
	It("are notified after every step with the advanced time", func() {
		s := column(2)
		obs := &stepLog{}
		s.AddObserver(obs)

		_, err := s.Run(context.Background(), sim.Config{Dt: 0.25, Duration: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.times).To(HaveLen(4))
		Expect(obs.times[0]).To(BeNumerically("~", 0.25, 1e-9))
		Expect(obs.times[3]).To(BeNumerically("~", s.Time(), 1e-9))
	})
})
