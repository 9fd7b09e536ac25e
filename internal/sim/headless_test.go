package sim_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var _ = Describe("Headless", func() {
	var h sim.Headless

	BeforeEach(func() {
		cfg := config.DefaultConfig()
		cfg.Sim.ParticleCount = 25
		cfg.Sim.Gravity = 0.05
		cfg.Run.Ticks = 240
		cfg.Run.Seed = 4
		h = sim.Headless{Config: *cfg}
	})

	It("records one trace row per tick", func() {
		res, err := h.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ticks).To(Equal(240))
		Expect(res.Trace).To(HaveLen(240))
		Expect(res.Columns).To(ConsistOf("kinetic_energy", "mean_speed", "rest_fraction", "wall_contacts"))
		Expect(res.Final.Particles).To(HaveLen(25))
		Expect(res.Series("kinetic_energy")).To(HaveLen(240))
		Expect(res.Series("missing")).To(BeNil())
	})

	It("calls the hook before every tick", func() {
		var seen []int
		h.Config.Run.Ticks = 10
		h.Hook = func(tick int, now time.Time, c *sim.Controller) {
			seen = append(seen, tick)
			if tick == 5 {
				n := 3
				c.UpdateConfig(config.Partial{ParticleCount: &n})
			}
		}
		res, err := h.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(HaveLen(10))
		Expect(seen[9]).To(Equal(9))
		Expect(res.Final.Particles).To(HaveLen(3))
	})

	It("is deterministic for a seed", func() {
		a, err := h.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		b, err := h.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Final).To(Equal(b.Final))
	})

	It("turns idle after the threshold of synthetic time", func() {
		res, err := h.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final.Idle).To(BeTrue())

		h.Script = sim.HoldPointer(r2.Vec{X: 400, Y: 300}, 240)
		res, err = h.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final.Idle).To(BeFalse())
	})

	It("settles toward rest without gravity or pointer", func() {
		h.Config.Sim.Gravity = 0
		h.Config.Sim.Friction = 0.9
		h.Config.Run.Ticks = 400
		res, err := h.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics["rest_fraction"]).To(Equal(1.0))
	})

	It("rejects empty runs and bad geometry", func() {
		h.Config.Run.Ticks = 0
		_, err := h.Run(context.Background())
		Expect(err).To(MatchError(sim.ErrNoTicks))

		h.Config.Run.Ticks = 10
		h.Config.Run.Width = 0
		_, err = h.Run(context.Background())
		Expect(err).To(MatchError(config.ErrInvalidGeometry))
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := h.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Ticks).To(BeZero())
	})

	It("runs an ensemble with distinct seeds", func() {
		results, err := sim.NewEnsemble(h, 3, 100).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].Final).NotTo(Equal(results[1].Final))
	})

	It("treats a negative ensemble size as empty", func() {
		results, err := sim.NewEnsemble(h, -1, 100).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})
})
