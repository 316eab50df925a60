package ws

import (
	"sync"

	"github.com/google/uuid"
)

const sendBuffer = 64

// Client is one signaling connection. Send is drained by the write pump.
type Client struct {
	ID   string
	Send chan []byte

	hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub) *Client {
	return &Client{ID: uuid.NewString(), Send: make(chan []byte, sendBuffer), hub: hub}
}

// Close leaves every room and closes Send. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	if c.hub != nil {
		c.hub.LeaveAll(c)
	}
	c.mu.Lock()
	close(c.Send)
	c.mu.Unlock()
}

// enqueue drops the frame when the buffer is full or the client is closed.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}
