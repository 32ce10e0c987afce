package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 64 << 10

	sendBuffer = 256
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
	ID   string

	hub       *Hub
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		ID:   id,
		hub:  hub,
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type MessageHandler func(c *Client, raw []byte)

// ReadPump blocks until the connection fails, then unregisters the client.
func (c *Client) ReadPump(onMessage MessageHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(PongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		onMessage(c, raw)
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.Send) })
}
