package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/san-kum/driftfield/internal/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var startTime = time.Now()

// Server exposes the simulation to browser renderers. Every websocket
// connection gets its own controller and frame loop.
type Server struct {
	cfg    config.Config
	engine *gin.Engine
}

func New(cfg config.Config) *Server {
	cfg.Sim = cfg.Sim.Normalize()
	cfg.Run = cfg.Run.Normalize()

	s := &Server{cfg: cfg, engine: gin.New()}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	api := s.engine.Group("/api")
	api.GET("/config", s.getConfig)
	api.GET("/presets", s.listPresets)
	s.engine.GET("/ws", s.handleWebSocket)
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errc := make(chan error, 1)
	go func() {
		log.Printf("driftfield listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "driftfield",
		"uptime":  time.Since(startTime).String(),
	})
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, toPartial(s.cfg.Sim))
}

func (s *Server) listPresets(c *gin.Context) {
	out := make(map[string]config.Partial, len(config.Presets))
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		out[name] = toPartial(p)
	}
	c.JSON(http.StatusOK, out)
}

// toPartial renders a full configuration with the camelCase wire names
// the websocket "config" message accepts.
func toPartial(s config.Sim) config.Partial {
	return config.Partial{
		ParticleCount:        &s.ParticleCount,
		Gravity:              &s.Gravity,
		Friction:             &s.Friction,
		MouseInfluenceRadius: &s.MouseInfluenceRadius,
		MousePolarity:        &s.MousePolarity,
		ParticleSize:         &s.ParticleSize,
		BounceStrength:       &s.BounceStrength,
		Perturbation:         &s.Perturbation,
	}
}
