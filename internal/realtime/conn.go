package realtime

import (
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	readLimit    = 64 * 1024
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

// clientFrame is what the browser sends over the socket: room management
// only. Chat mutations go over HTTP.
type clientFrame struct {
	Event  string `json:"event"`
	ChatID string `json:"chatId"`
}

// Conn adapts one websocket to a hub Subscriber. The read loop handles
// joinChat/leaveChat frames; the write loop drains the send buffer and
// keeps the connection alive with pings.
type Conn struct {
	id   string
	ws   *websocket.Conn
	hub  *Hub
	log  *zap.SugaredLogger
	send chan Event
	done chan struct{}
}

// ServeConn owns the websocket until it closes. It must be called from the
// fiber websocket handler goroutine.
func ServeConn(hub *Hub, log *zap.SugaredLogger, ws *websocket.Conn) {
	c := &Conn{
		id:   uuid.NewString(),
		ws:   ws,
		hub:  hub,
		log:  log,
		send: make(chan Event, sendBuffer),
		done: make(chan struct{}),
	}
	hub.Register(c.id, c)
	defer func() {
		hub.Unregister(c.id)
		close(c.done)
		_ = ws.Close()
	}()

	go c.writeLoop()
	c.readLoop()
}

// Deliver queues ev for the socket. Full buffer drops the event; the
// client recovers over the HTTP read path.
func (c *Conn) Deliver(ev Event) {
	select {
	case c.send <- ev:
	default:
		c.log.Warnw("dropping event, slow consumer", "conn", c.id, "event", ev.Name)
	}
}

func (c *Conn) readLoop() {
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.log.Debugw("bad client frame", "conn", c.id, "err", err)
			continue
		}
		switch frame.Event {
		case "joinChat":
			if frame.ChatID != "" {
				c.hub.Join(c.id, frame.ChatID)
			}
		case "leaveChat":
			if frame.ChatID != "" {
				c.hub.Leave(c.id, frame.ChatID)
			}
		}
	}
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
