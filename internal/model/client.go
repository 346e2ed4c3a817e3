package model

import (
	"log"
	"sync"

	"github.com/benbeisheim/spartanchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
)

// clientBuffer is how many messages a client may fall behind before it is
// dropped.
const clientBuffer = 32

// Client is one websocket attached to a game. Every write to the connection
// goes through its queue and is performed by WritePump alone, in the order
// the messages were sent.
type Client struct {
	PlayerID string

	conn      *websocket.Conn
	send      chan ws.Message
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func NewClient(playerID string, conn *websocket.Conn) *Client {
	return &Client{
		PlayerID: playerID,
		conn:     conn,
		send:     make(chan ws.Message, clientBuffer),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Send queues msg without blocking. A client whose queue is full is closed.
// It reports whether the message was queued.
func (c *Client) Send(msg ws.Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		log.Printf("client %s: send queue full, dropping connection", c.PlayerID)
		c.Close()
		return false
	}
}

// WritePump writes queued messages until the client is closed or a write
// fails, then closes the connection so a blocked reader returns.
func (c *Client) WritePump() {
	defer close(c.stopped)
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("client %s: write error: %v", c.PlayerID, err)
				c.Close()
				return
			}
		}
	}
}

// Close stops the pump. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until WritePump has returned.
func (c *Client) Wait() {
	<-c.stopped
}
