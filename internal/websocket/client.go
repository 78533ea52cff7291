package websocket

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// client is one websocket connection. Only writePump writes to conn.
type client struct {
	hub     *Hub
	id      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	// room is guarded by hub.mu.
	room string
}

func newClient(h *Hub, id string, conn *websocket.Conn, limiter *rate.Limiter) *client {
	return &client{
		hub:     h,
		id:      id,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		limiter: limiter,
	}
}

// enqueue never blocks. A lagging client drops the frame and catches up on
// the next snapshot. Callers hold hub.mu.
func (c *client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		log.Warn().Str("player", c.id).Msg("[SafeWriteJSON] send buffer full, dropping frame")
	}
}

func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("player", c.id).Msg("[handleMessages] read error")
			}
			return
		}
		if !c.limiter.Allow() {
			log.Debug().Str("player", c.id).Msg("[handleMessages] rate limited, dropping frame")
			continue
		}
		c.hub.handleMessage(c, raw)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					log.Debug().Err(err).Str("player", c.id).Msg("[writePump] write failed")
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
