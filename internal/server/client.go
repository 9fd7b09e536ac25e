package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/san-kum/driftfield/internal/config"
	"github.com/san-kum/driftfield/internal/sim"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 4
)

var ErrUnknownMessage = errors.New("server: unknown message type")

// Message is the envelope for both directions of the socket.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	MsgPointer = "pointer"
	MsgResize  = "resize"
	MsgConfig  = "config"
	MsgReseed  = "reseed"
	MsgFrame   = "frame"
	MsgError   = "error"
)

// Client is one websocket connection and the loop it drives.
type Client struct {
	id   string
	conn *websocket.Conn
	loop *sim.Loop
	send chan []byte
}

func (s *Server) handleWebSocket(c *gin.Context) {
	cfg := s.cfg
	if name := c.Query("preset"); name != "" {
		preset, err := config.GetPreset(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg.Sim = preset
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	opts := []sim.Option{sim.WithIdleThreshold(cfg.Run.IdleThreshold)}
	if cfg.Run.Seed != 0 {
		opts = append(opts, sim.WithSeed(cfg.Run.Seed))
	}

	client := &Client{
		id:   c.Request.RemoteAddr,
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	client.loop = sim.NewLoop(sim.New(cfg.Sim, opts...), cfg.Run, client.publish)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := client.loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("[WS] loop for %s ended: %v", client.id, err)
		}
	}()
	go client.writePump()

	log.Printf("[WS] client %s connected", client.id)
	client.readPump()
	cancel()
	<-client.loop.Done()
	close(client.send)
	log.Printf("[WS] client %s disconnected", client.id)
}

// publish runs on the loop goroutine. A slow reader drops frames rather
// than stalling the simulation.
func (c *Client) publish(f sim.Frame) {
	data, err := encode(MsgFrame, f)
	if err != nil {
		log.Printf("Error marshaling frame: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func encode(kind string, v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: kind, Data: raw})
}

func (c *Client) readPump() {
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for %s: %v", c.id, err)
			}
			return
		}
		if err := c.dispatch(msg); err != nil {
			c.sendError(err.Error())
		}
	}
}

func (c *Client) dispatch(msg Message) error {
	switch msg.Type {
	case MsgPointer:
		var p sim.Point
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return err
		}
		c.loop.Pointer(r2.Vec{X: p.X, Y: p.Y})
	case MsgResize:
		var g sim.Geometry
		if err := json.Unmarshal(msg.Data, &g); err != nil {
			return err
		}
		c.loop.Resize(g)
	case MsgConfig:
		var p config.Partial
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return err
		}
		c.loop.Update(p)
	case MsgReseed:
		c.loop.Reseed()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	return nil
}

// sendError sends an error message to the client
func (c *Client) sendError(message string) {
	data, err := encode(MsgError, map[string]string{"message": message})
	if err != nil {
		log.Printf("[WS] encode error for %s: %v", c.id, err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] dropped error for %s (buffer full)", c.id)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error for %s: %v", c.id, err)
				return
			}
		}
	}
}
