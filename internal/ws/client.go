package ws

import (
	"encoding/json"
	"time"

	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/game"
	"pipeline_rescue/internal/logger"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 30 * time.Second
	pingPeriod   = 25 * time.Second
	tickInterval = time.Second
)

// Client is one live timer connection. It relays hub events as soon as they
// arrive and falls back to a 1-second tick so the countdown keeps moving
// between events. The connection closes itself after the first terminal
// frame (round completed or timer at zero).
type Client struct {
	conn  *websocket.Conn
	send  chan []byte
	state *game.State
	hub   *broadcast.Hub
	clock clockwork.Clock
	done  chan struct{}
}

func NewClient(conn *websocket.Conn, state *game.State, hub *broadcast.Hub, clock clockwork.Clock) *Client {
	return &Client{
		conn:  conn,
		send:  make(chan []byte, 32),
		state: state,
		hub:   hub,
		clock: clock,
		done:  make(chan struct{}),
	}
}

func (c *Client) Run() {
	go c.writePump()
	go c.readPump()

	sub := c.hub.Subscribe()
	defer c.hub.Unsubscribe(sub)
	defer close(c.send)

	ticker := c.clock.NewTicker(tickInterval)
	defer ticker.Stop()

	// initial frame so the client renders without waiting a tick
	if c.relay(broadcast.NewEvent(broadcast.EventTick, c.state.Snapshot(), c.clock.Now())) {
		return
	}

	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if c.relay(ev) {
				return
			}
		case <-ticker.Chan():
			ev := broadcast.NewEvent(broadcast.EventTick, c.state.Snapshot(), c.clock.Now())
			if c.relay(ev) {
				return
			}
		}
	}
}

// relay queues a frame for the writer and reports whether the connection is
// finished with it. A full outbound queue means the peer stopped reading.
func (c *Client) relay(ev broadcast.Event) (last bool) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws: marshal frame", "err", err)
		return true
	}
	select {
	case c.send <- msg:
		return ev.Terminal()
	default:
		return true
	}
}

// read side exists only to answer pongs and notice the disconnect
func (c *Client) readPump() {
	defer close(c.done)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
