// Package call drives one patient-side video call: local media, the engine
// that negotiates the connection, and the bookkeeping reports.
package call

import (
	"context"
	"errors"
	"sync"
	"time"

	"healthoasis/internal/client"

	"github.com/sirupsen/logrus"
)

type State string

const (
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateError      State = "error"
	StateEnded      State = "ended"
)

const (
	MsgMediaDenied       = "Failed to access camera or microphone. Please check your permissions."
	MsgInitiateFailed    = "Failed to initiate call."
	MsgConnectionLost    = "Connection lost. Please try again."
	MsgNegotiationFailed = "Failed to establish connection."
	MsgDoctorUnavailable = "Doctor is currently unavailable for video call."
	MsgEndedByDoctor     = "Call ended by doctor."
)

// HostedMaxDuration caps the clock shown for hosted-room calls.
const HostedMaxDuration = time.Hour

var (
	ErrSessionClosed  = errors.New("call session closed")
	ErrAlreadyStarted = errors.New("call session already started")
	ErrNoMedia        = errors.New("no local media")
)

type TrackKind string

const (
	TrackAudio TrackKind = "audio"
	TrackVideo TrackKind = "video"
)

// Track is one local capture track.
type Track interface {
	Kind() TrackKind
	Enabled() bool
	SetEnabled(bool)
	Stop()
}

type MediaSource interface {
	Acquire(ctx context.Context) ([]Track, error)
}

// Events is how an engine reports back to its session.
type Events interface {
	Connected()
	Fail(message string)
	RemoteEnded()
}

// Engine negotiates the media connection.
type Engine interface {
	Connect(ctx context.Context, tracks []Track, ev Events) error
	SetAudioMuted(muted bool) error
	SetVideoMuted(muted bool) error
	// Hangup tells the far side the user ended the call.
	Hangup() error
	Close() error
}

// Reporter receives the start and end bookkeeping calls. *client.Client
// satisfies it.
type Reporter interface {
	StartVideoCall(ctx context.Context, doctorID uint, roomID string, start time.Time) error
	EndVideoCall(ctx context.Context, end client.CallEnd) error
}

type Config struct {
	DoctorID uint
	RoomID   string
	// MaxDuration caps Duration when positive.
	MaxDuration time.Duration
}

type Status struct {
	State     State
	Error     string
	Muted     bool
	CameraOff bool
	Duration  time.Duration
}

type Session struct {
	cfg      Config
	media    MediaSource
	engine   Engine
	reporter Reporter
	log      logrus.FieldLogger

	now   func() time.Time
	async func(func())

	mu        sync.Mutex
	state     State
	errMsg    string
	started   time.Time
	endedAt   time.Time
	tracks    []Track
	muted     bool
	cameraOff bool
	running   bool
	closed    bool
	watchers  []func(Status)
	// startDone closes once the start report has returned; the end report
	// waits on it so the server never sees the end first.
	startDone chan struct{}

	closeOnce sync.Once
}

func NewSession(cfg Config, media MediaSource, engine Engine, reporter Reporter, log logrus.FieldLogger) *Session {
	return &Session{
		cfg:      cfg,
		media:    media,
		engine:   engine,
		reporter: reporter,
		log:      log.WithFields(logrus.Fields{"doctor_id": cfg.DoctorID, "room_id": cfg.RoomID}),
		now:      time.Now,
		async:    func(f func()) { go f() },
		state:    StateConnecting,
	}
}

// Watch calls fn on every status change.
func (s *Session) Watch(fn func(Status)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	return Status{
		State:     s.state,
		Error:     s.errMsg,
		Muted:     s.muted,
		CameraOff: s.cameraOff,
		Duration:  s.durationLocked(),
	}
}

func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.durationLocked()
}

func (s *Session) durationLocked() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	end := s.endedAt
	if end.IsZero() {
		end = s.now()
	}
	d := end.Sub(s.started)
	if s.cfg.MaxDuration > 0 && d > s.cfg.MaxDuration {
		d = s.cfg.MaxDuration
	}
	return d
}

// Start acquires media and hands it to the engine. The session stays in
// connecting until the engine reports a connection; there is no timeout.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.running = true
	s.mu.Unlock()

	tracks, err := s.media.Acquire(ctx)
	if err != nil {
		s.log.WithError(err).Warn("media acquisition failed")
		s.Fail(MsgMediaDenied)
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stopAll(tracks)
		return ErrSessionClosed
	}
	s.tracks = tracks
	s.started = s.now()
	start := s.started
	done := make(chan struct{})
	s.startDone = done
	s.mu.Unlock()

	s.async(func() {
		defer close(done)
		if err := s.reporter.StartVideoCall(context.Background(), s.cfg.DoctorID, s.cfg.RoomID, start.UTC()); err != nil {
			s.log.WithError(err).Warn("report call start")
		}
	})

	if err := s.engine.Connect(ctx, tracks, s); err != nil {
		s.log.WithError(err).Warn("engine connect failed")
		s.Fail(MsgInitiateFailed)
		return err
	}
	return nil
}

// ToggleMute flips the audio tracks and returns the new muted flag.
func (s *Session) ToggleMute() (bool, error) {
	return s.toggle(TrackAudio, &s.muted, s.engine.SetAudioMuted)
}

// ToggleCamera flips the video tracks and returns the new camera-off flag.
func (s *Session) ToggleCamera() (bool, error) {
	return s.toggle(TrackVideo, &s.cameraOff, s.engine.SetVideoMuted)
}

func (s *Session) toggle(kind TrackKind, flag *bool, delegate func(bool) error) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}
	var matched []Track
	for _, t := range s.tracks {
		if t.Kind() == kind {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		s.mu.Unlock()
		return false, ErrNoMedia
	}
	*flag = !*flag
	off := *flag
	for _, t := range matched {
		t.SetEnabled(!off)
	}
	st, watchers := s.statusLocked(), s.watchers
	s.mu.Unlock()

	notify(watchers, st)
	return off, delegate(off)
}

// End is the user hanging up.
func (s *Session) End() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	err := s.engine.Hangup()
	if err != nil {
		s.log.WithError(err).Warn("hangup signal failed")
	}
	s.transition(StateEnded, "", StateConnecting, StateConnected, StateError)
	s.Close()
	return err
}

// Close releases the session. Every caller after the first is a no-op.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		tracks := s.tracks
		s.tracks = nil
		started := !s.started.IsZero()
		startDone := s.startDone
		if started {
			s.endedAt = s.now()
		}
		end := client.CallEnd{
			DoctorID: s.cfg.DoctorID,
			RoomID:   s.cfg.RoomID,
			EndTime:  s.endedAt.UTC(),
			Duration: int(s.durationLocked() / time.Second),
		}
		s.mu.Unlock()

		stopAll(tracks)
		if err := s.engine.Close(); err != nil {
			s.log.WithError(err).Warn("engine close")
		}
		if !started {
			return
		}
		s.async(func() {
			<-startDone
			if err := s.reporter.EndVideoCall(context.Background(), end); err != nil {
				s.log.WithError(err).Warn("report call end")
			}
		})
	})
}

func (s *Session) Connected() {
	s.transition(StateConnected, "", StateConnecting)
}

func (s *Session) Fail(message string) {
	s.transition(StateError, message, StateConnecting, StateConnected)
}

// RemoteEnded handles the doctor hanging up.
func (s *Session) RemoteEnded() {
	if s.transition(StateEnded, MsgEndedByDoctor, StateConnecting, StateConnected, StateError) {
		s.Close()
	}
}

func (s *Session) transition(to State, message string, from ...State) bool {
	s.mu.Lock()
	if s.closed || !stateIn(s.state, from) {
		s.mu.Unlock()
		return false
	}
	s.state = to
	s.errMsg = message
	st, watchers := s.statusLocked(), s.watchers
	s.mu.Unlock()

	s.log.WithField("state", to).Debug("call state changed")
	notify(watchers, st)
	return true
}

func stateIn(s State, set []State) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}

func notify(watchers []func(Status), st Status) {
	for _, fn := range watchers {
		fn(st)
	}
}

func stopAll(tracks []Track) {
	for _, t := range tracks {
		t.Stop()
	}
}
