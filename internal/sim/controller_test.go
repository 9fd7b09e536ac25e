package sim_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/metrics"
	"github.com/san-kum/driftfield/internal/particle"
	"github.com/san-kum/driftfield/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

var _ = Describe("Controller", func() {
	var (
		cfg  config.Sim
		ctrl *sim.Controller
		geom sim.Geometry
	)

	BeforeEach(func() {
		cfg = config.DefaultSim()
		cfg.ParticleCount = 40
		geom = sim.Geometry{Width: 640, Height: 480}
		ctrl = sim.New(cfg, sim.WithSeed(1), sim.WithStart(epoch))
	})

	It("seeds the configured number of particles", func() {
		Expect(ctrl.Len()).To(Equal(40))
		Expect(ctrl.Snapshot().Particles).To(HaveLen(40))
	})

	Describe("UpdateConfig", func() {
		It("reseeds when the particle count changes", func() {
			Expect(ctrl.UpdateConfig(config.Partial{ParticleCount: ptr(7)})).To(BeTrue())
			Expect(ctrl.Len()).To(Equal(7))
			Expect(ctrl.Config().ParticleCount).To(Equal(7))
		})

		It("keeps particle state for other fields", func() {
			before := ctrl.Particles()
			Expect(ctrl.UpdateConfig(config.Partial{Gravity: ptr(0.5), ParticleSize: ptr(8.0)})).To(BeFalse())
			Expect(ctrl.Particles()).To(Equal(before))
			Expect(ctrl.Config().Gravity).To(Equal(0.5))
		})

		It("clamps out-of-range values", func() {
			ctrl.UpdateConfig(config.Partial{Friction: ptr(7.0), BounceStrength: ptr(-2.0)})
			Expect(ctrl.Config().Friction).To(Equal(1.0))
			Expect(ctrl.Config().BounceStrength).To(Equal(0.0))
		})

		It("takes effect on the next tick", func() {
			ctrl.ReplaceParticles([]particle.Particle{
				particle.New(r2.Vec{X: 50, Y: 50}, r2.Vec{}, 1, 20, 0.1),
			})
			ctrl.CheckIdle(epoch.Add(3 * time.Second))
			ctrl.UpdateConfig(config.Partial{Gravity: ptr(1.0), Friction: ptr(1.0)})
			Expect(ctrl.Tick(geom)).To(BeTrue())
			Expect(ctrl.Particles()[0].Vel.Y).To(BeNumerically("~", 1.0, 1e-12))
		})
	})

	Describe("Tick", func() {
		It("skips degenerate geometry without mutating state", func() {
			before := ctrl.Particles()
			Expect(ctrl.Tick(sim.Geometry{})).To(BeFalse())
			Expect(ctrl.Tick(sim.Geometry{Width: 100})).To(BeFalse())
			Expect(ctrl.Particles()).To(Equal(before))
			Expect(ctrl.Ticks()).To(BeZero())
		})

		It("keeps every particle inside the container", func() {
			ctrl.UpdateConfig(config.Partial{Gravity: ptr(0.4), BounceStrength: ptr(1.0), Perturbation: ptr(0.05)})
			half := ctrl.Config().ParticleSize / 2
			for tick := 0; tick < 300; tick++ {
				ctrl.MovePointer(r2.Vec{X: float64(tick * 2 % 640), Y: 240}, epoch)
				Expect(ctrl.Tick(geom)).To(BeTrue())
				for _, p := range ctrl.Particles() {
					px := p.Pixel(geom.Extent())
					Expect(px.X).To(BeNumerically(">=", half-1e-9))
					Expect(px.X).To(BeNumerically("<=", geom.Width-half+1e-9))
					Expect(px.Y).To(BeNumerically(">=", half-1e-9))
					Expect(px.Y).To(BeNumerically("<=", geom.Height-half+1e-9))
				}
			}
		})

		It("falls under gravity from rest while the pointer is idle", func() {
			ctrl.UpdateConfig(config.Partial{Gravity: ptr(0.1), Friction: ptr(0.98)})
			ctrl.ReplaceParticles([]particle.Particle{
				particle.New(r2.Vec{X: 50, Y: 50}, r2.Vec{}, 1, 20, 0.1),
			})
			Expect(ctrl.CheckIdle(epoch.Add(2100 * time.Millisecond))).To(BeTrue())

			y := func() float64 { return ctrl.Particles()[0].Pixel(geom.Extent()).Y }
			y0 := y()
			ctrl.Tick(geom)
			Expect(y() - y0).To(BeNumerically("~", 0.1, 1e-9))
			y1 := y()
			ctrl.Tick(geom)
			Expect(y() - y1).To(BeNumerically("~", 0.198, 1e-9))
			Expect(ctrl.Particles()[0].Pos.X).To(BeNumerically("~", 50, 1e-9))
		})

		It("reports the wall contacts of the last tick", func() {
			ctrl.ReplaceParticles([]particle.Particle{
				particle.New(r2.Vec{X: 0.1, Y: 50}, r2.Vec{X: -5}, 1, 20, 0.1),
				particle.New(r2.Vec{X: 50, Y: 50}, r2.Vec{}, 1, 20, 0.1),
			})
			ctrl.CheckIdle(epoch.Add(3 * time.Second))
			Expect(ctrl.LastContacts()).To(BeZero())

			ctrl.Tick(geom)
			Expect(ctrl.LastContacts()).To(Equal(1))

			ctrl.ReplaceParticles([]particle.Particle{
				particle.New(r2.Vec{X: 50, Y: 50}, r2.Vec{}, 1, 20, 0.1),
			})
			ctrl.Tick(geom)
			Expect(ctrl.LastContacts()).To(BeZero())
		})

		It("keeps fractional positions across a resize", func() {
			before := ctrl.Snapshot()
			ctrl.UpdateConfig(config.Partial{Friction: ptr(1.0)})
			ctrl.ReplaceParticles([]particle.Particle{
				particle.New(r2.Vec{X: 25, Y: 75}, r2.Vec{}, 1, 20, 0.1),
			})
			ctrl.CheckIdle(epoch.Add(3 * time.Second))
			Expect(ctrl.Tick(sim.Geometry{Width: 1920, Height: 1080})).To(BeTrue())
			p := ctrl.Snapshot().Particles[0]
			Expect(p.X).To(BeNumerically("~", 25, 1e-9))
			Expect(p.Y).To(BeNumerically("~", 75, 1e-9))
			Expect(before.Particles).To(HaveLen(40))
		})

		It("feeds attached metrics", func() {
			ke := metrics.NewKineticEnergy()
			c := sim.New(cfg, sim.WithSeed(2), sim.WithStart(epoch), sim.WithMetrics(ke))
			c.Tick(geom)
			Expect(ke.Last()).To(BeNumerically(">", 0))
			Expect(c.Metrics()).To(HaveLen(1))
		})
	})

	Describe("pointer idle state", func() {
		It("goes idle after the threshold and wakes on movement", func() {
			Expect(ctrl.CheckIdle(epoch.Add(1900 * time.Millisecond))).To(BeFalse())
			Expect(ctrl.CheckIdle(epoch.Add(2001 * time.Millisecond))).To(BeTrue())
			Expect(ctrl.Snapshot().Idle).To(BeTrue())

			ctrl.MovePointer(r2.Vec{X: 10, Y: 10}, epoch.Add(5*time.Second))
			Expect(ctrl.Idle()).To(BeFalse())
			Expect(ctrl.Pointer()).To(Equal(r2.Vec{X: 10, Y: 10}))
		})

		It("honours a custom threshold", func() {
			c := sim.New(cfg, sim.WithSeed(3), sim.WithStart(epoch), sim.WithIdleThreshold(500*time.Millisecond))
			Expect(c.CheckIdle(epoch.Add(600 * time.Millisecond))).To(BeTrue())
		})

		It("applies no pointer force while idle", func() {
			ctrl.UpdateConfig(config.Partial{Friction: ptr(1.0)})
			ctrl.ReplaceParticles([]particle.Particle{
				particle.New(r2.Vec{X: 50, Y: 50}, r2.Vec{}, 1, 20, 0.1),
			})
			ctrl.MovePointer(r2.Vec{X: 330, Y: 240}, epoch)
			ctrl.CheckIdle(epoch.Add(3 * time.Second))
			ctrl.Tick(geom)
			Expect(ctrl.Particles()[0].Vel).To(Equal(r2.Vec{}))
		})

		It("pushes particles while active", func() {
			ctrl.UpdateConfig(config.Partial{Friction: ptr(1.0), MousePolarity: ptr(1.0)})
			ctrl.ReplaceParticles([]particle.Particle{
				particle.New(r2.Vec{X: 50, Y: 50}, r2.Vec{}, 1, 20, 0.1),
			})
			ctrl.MovePointer(r2.Vec{X: 330, Y: 240}, epoch)
			ctrl.Tick(geom)
			Expect(ctrl.Particles()[0].Vel.X).To(BeNumerically("<", 0))
		})
	})

	Describe("Snapshot", func() {
		It("reports size and opacity hints", func() {
			ctrl.UpdateConfig(config.Partial{ParticleSize: ptr(6.0)})
			f := ctrl.Snapshot()
			Expect(f.Particles[0].Size).To(Equal(6.0))

			Expect(sim.ParticleView{AtRest: true}.Opacity()).To(Equal(sim.RestOpacity))
			Expect(sim.ParticleView{}.Opacity()).To(Equal(sim.ActiveOpacity))
		})

		It("is a copy", func() {
			f := ctrl.Snapshot()
			f.Particles[0].X = -1
			Expect(ctrl.Snapshot().Particles[0].X).NotTo(Equal(-1.0))
		})
	})
})
