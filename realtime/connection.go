package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Conn wraps a websocket and serializes outbound frames through a
// buffered channel so the syncer callbacks never write concurrently.
type Conn struct {
	UserID string

	ws   *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

func NewConn(userID string, ws *websocket.Conn) *Conn {
	return &Conn{
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
	}
}

// Start launches the write loop. Call exactly once.
func (c *Conn) Start() {
	go c.writeLoop()
}

// Send enqueues a frame. A full buffer means the client has stopped
// consuming; the connection is closed to keep backpressure bounded.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.done:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("send buffer full")
	}
}

func (c *Conn) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Conn) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
