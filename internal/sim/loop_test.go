package sim_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

func next(frames chan sim.Frame) sim.Frame {
	var f sim.Frame
	Eventually(frames).Should(Receive(&f))
	return f
}

var _ = Describe("Loop", func() {
	var (
		ctrl   *sim.Controller
		run    config.Run
		frames chan sim.Frame
		loop   *sim.Loop
		errc   chan error
		cancel context.CancelFunc
	)

	start := func() {
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		ch := make(chan error, 1)
		errc = ch
		l := loop
		go func() { ch <- l.Run(ctx) }()
	}

	BeforeEach(func() {
		cfg := config.DefaultSim()
		cfg.ParticleCount = 10
		ctrl = sim.New(cfg, sim.WithSeed(9))

		run = config.DefaultRun()
		run.FPS = 500
		run.IdleCheck = 5 * time.Millisecond

		out := make(chan sim.Frame, 1024)
		frames = out
		loop = sim.NewLoop(ctrl, run, func(f sim.Frame) {
			select {
			case out <- f:
			default:
			}
		})
	})

	AfterEach(func() {
		loop.Stop()
		cancel()
		Eventually(loop.Done()).Should(BeClosed())
	})

	It("skips ticks until the container is measurable", func() {
		start()
		Consistently(frames, 50*time.Millisecond).ShouldNot(Receive())

		loop.Resize(sim.Geometry{Width: 320, Height: 240})
		Eventually(frames).Should(Receive())
	})

	It("publishes increasing tick numbers", func() {
		loop.Resize(sim.Geometry{Width: 320, Height: 240})
		start()

		var first, second sim.Frame
		Eventually(frames).Should(Receive(&first))
		Eventually(frames).Should(Receive(&second))
		Expect(second.Tick).To(BeNumerically(">", first.Tick))
		Expect(first.Particles).To(HaveLen(10))
	})

	It("applies configuration updates on its own goroutine", func() {
		loop.Resize(sim.Geometry{Width: 320, Height: 240})
		start()
		loop.Update(config.Partial{ParticleCount: ptr(3)})

		Eventually(func() int { return len(next(frames).Particles) }).Should(Equal(3))
	})

	It("routes pointer observations to the tracker", func() {
		loop.Resize(sim.Geometry{Width: 320, Height: 240})
		start()
		loop.Pointer(r2.Vec{X: 1, Y: 2})
		loop.Pointer(r2.Vec{X: 30, Y: 40})

		Eventually(func() sim.Point { return next(frames).Pointer }).Should(Equal(sim.Point{X: 30, Y: 40}))

		loop.Stop()
		Eventually(errc).Should(Receive(BeNil()))
		Expect(ctrl.Pointer()).To(Equal(r2.Vec{X: 30, Y: 40}))
	})

	It("marks the pointer idle from the periodic check", func() {
		c := sim.New(config.DefaultSim(), sim.WithSeed(1), sim.WithIdleThreshold(20*time.Millisecond))
		loop = sim.NewLoop(c, run, func(f sim.Frame) {
			select {
			case frames <- f:
			default:
			}
		})
		loop.Resize(sim.Geometry{Width: 100, Height: 100})
		start()

		Eventually(func() bool { return next(frames).Idle }).Should(BeTrue())
	})

	It("returns nil when stopped", func() {
		start()
		loop.Stop()
		loop.Stop()
		Eventually(errc).Should(Receive(BeNil()))
	})

	It("returns the context error when cancelled", func() {
		start()
		cancel()
		var err error
		Eventually(errc).Should(Receive(&err))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("refuses a second concurrent run", func() {
		loop.Resize(sim.Geometry{Width: 320, Height: 240})
		start()
		Eventually(frames).Should(Receive())
		Expect(loop.Run(context.Background())).To(MatchError(sim.ErrLoopRunning))
	})
})
