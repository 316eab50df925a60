package call

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HostedRoom is a hosted video service room. The service does the media
// negotiation; the engine only logs in, publishes, and mutes.
type HostedRoom interface {
	Login(ctx context.Context, roomID, userID string) error
	StartPublishing(ctx context.Context, streamID string, tracks []Track) error
	MuteAudio(streamID string, muted bool) error
	MuteVideo(streamID string, muted bool) error
	OnRemoteStream(fn func(added bool))
	OnDisconnected(fn func(err error))
	StopPublishing(streamID string) error
	Logout(roomID string) error
}

const DefaultRetryDelay = 3 * time.Second

// HostedEngine rejoins once after a room disconnection, then gives up.
type HostedEngine struct {
	room       HostedRoom
	roomID     string
	userID     string
	retryDelay time.Duration
	log        logrus.FieldLogger

	mu      sync.Mutex
	retried bool
	closed  bool
	timer   *time.Timer
}

func NewHostedEngine(room HostedRoom, roomID string, retryDelay time.Duration, log logrus.FieldLogger) *HostedEngine {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	return &HostedEngine{
		room:       room,
		roomID:     roomID,
		userID:     uuid.NewString(),
		retryDelay: retryDelay,
		log:        log.WithField("room_id", roomID),
	}
}

func (e *HostedEngine) Connect(ctx context.Context, tracks []Track, ev Events) error {
	e.room.OnRemoteStream(func(added bool) {
		if added {
			ev.Connected()
			return
		}
		e.log.Info("remote user has left the call")
	})
	e.room.OnDisconnected(func(err error) {
		e.log.WithError(err).Warn("hosted room disconnected")
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return
		}
		if e.retried {
			e.mu.Unlock()
			ev.Fail(MsgConnectionLost)
			return
		}
		e.retried = true
		e.timer = time.AfterFunc(e.retryDelay, func() {
			if err := e.join(context.Background(), tracks); err != nil {
				e.log.WithError(err).Warn("hosted room rejoin failed")
				ev.Fail(MsgConnectionLost)
			}
		})
		e.mu.Unlock()
	})
	return e.join(ctx, tracks)
}

func (e *HostedEngine) join(ctx context.Context, tracks []Track) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil
	}
	if err := e.room.Login(ctx, e.roomID, e.userID); err != nil {
		return err
	}
	return e.room.StartPublishing(ctx, e.userID, tracks)
}

func (e *HostedEngine) SetAudioMuted(muted bool) error { return e.room.MuteAudio(e.userID, muted) }

func (e *HostedEngine) SetVideoMuted(muted bool) error { return e.room.MuteVideo(e.userID, muted) }

// Hangup has nothing to signal; leaving the room is enough.
func (e *HostedEngine) Hangup() error { return nil }

func (e *HostedEngine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.mu.Unlock()

	if err := e.room.StopPublishing(e.userID); err != nil {
		e.log.WithError(err).Debug("stop publishing")
	}
	return e.room.Logout(e.roomID)
}
