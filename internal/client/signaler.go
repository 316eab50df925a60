package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"healthoasis/internal/ws"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// EventDisconnect is raised locally when the socket drops without Close.
const EventDisconnect = "disconnect"

const signalingPath = "/ws/signaling"

var ErrSignalerClosed = errors.New("signaling channel closed")

// Signaler is the portal side of the signaling channel. Handlers run on the
// read goroutine in arrival order.
type Signaler struct {
	conn *websocket.Conn
	log  logrus.FieldLogger

	writeMu sync.Mutex

	mu       sync.RWMutex
	handlers map[string][]func(json.RawMessage)

	done      chan struct{}
	closeOnce sync.Once
}

// SignalingURL maps the resolved socket host onto the websocket endpoint.
func SignalingURL(socketURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(socketURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + signalingPath
	return u.String(), nil
}

func DialSignaling(ctx context.Context, socketURL string, log logrus.FieldLogger) (*Signaler, error) {
	target, err := SignalingURL(socketURL)
	if err != nil {
		return nil, err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, err
	}
	s := &Signaler{
		conn:     conn,
		log:      log,
		handlers: make(map[string][]func(json.RawMessage)),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// On registers fn for event. Registering after frames arrived does not
// replay them.
func (s *Signaler) On(event string, fn func(json.RawMessage)) {
	s.mu.Lock()
	s.handlers[event] = append(s.handlers[event], fn)
	s.mu.Unlock()
}

func (s *Signaler) Emit(event string, data any) error {
	select {
	case <-s.done:
		return ErrSignalerClosed
	default:
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(ws.Envelope{Event: event, Data: raw})
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// Close is safe to call more than once.
func (s *Signaler) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		s.writeMu.Unlock()
		err = s.conn.Close()
	})
	return err
}

func (s *Signaler) readLoop() {
	for {
		_, frame, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				s.log.WithError(err).Warn("signaling channel dropped")
				s.fire(EventDisconnect, nil)
			}
			return
		}
		var env ws.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			s.log.WithError(err).Debug("ignoring malformed signaling frame")
			continue
		}
		s.fire(env.Event, env.Data)
	}
}

func (s *Signaler) fire(event string, data json.RawMessage) {
	s.mu.RLock()
	hs := append([]func(json.RawMessage){}, s.handlers[event]...)
	s.mu.RUnlock()
	for _, h := range hs {
		h(data)
	}
}
