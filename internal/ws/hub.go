package ws

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
)

type member struct {
	doctor bool
}

// Hub tracks signaling rooms. A client may be in several rooms at once.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]member
	byConn map[*Client]map[string]struct{}
	log    logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[*Client]member),
		byConn: make(map[*Client]map[string]struct{}),
		log:    log,
	}
}

func (h *Hub) Join(c *Client, room string, doctor bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]member)
	}
	m := h.rooms[room][c]
	m.doctor = m.doctor || doctor
	h.rooms[room][c] = m
	if h.byConn[c] == nil {
		h.byConn[c] = make(map[string]struct{})
	}
	h.byConn[c][room] = struct{}{}
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, room)
}

func (h *Hub) LeaveAll(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.byConn[c] {
		h.leaveLocked(c, room)
	}
	delete(h.byConn, c)
}

func (h *Hub) leaveLocked(c *Client, room string) {
	if members := h.rooms[room]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms := h.byConn[c]; rooms != nil {
		delete(rooms, room)
	}
}

func (h *Hub) HasDoctor(room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, m := range h.rooms[room] {
		if m.doctor {
			return true
		}
	}
	return false
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// SendToOthers delivers an event to every member of room except sender and
// returns how many clients accepted it.
func (h *Hub) SendToOthers(room string, sender *Client, event string, data any) int {
	frame, err := encode(event, data)
	if err != nil {
		h.log.WithError(err).WithField("event", event).Warn("encode frame")
		return 0
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		if c != sender {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.enqueue(frame) {
			sent++
		} else {
			h.log.WithFields(logrus.Fields{"room": room, "client": c.ID}).Warn("signaling buffer full, frame dropped")
		}
	}
	return sent
}

// SendTo delivers an event to a single client.
func (h *Hub) SendTo(c *Client, event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		return
	}
	c.enqueue(frame)
}

func encode(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	switch d := data.(type) {
	case json.RawMessage:
		raw = d
	default:
		b, err := json.Marshal(d)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
