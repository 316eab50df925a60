package call

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"healthoasis/internal/client"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeTrack struct {
	kind    TrackKind
	enabled atomic.Bool
	stops   atomic.Int32
}

func newTrack(kind TrackKind) *fakeTrack {
	t := &fakeTrack{kind: kind}
	t.enabled.Store(true)
	return t
}

func (t *fakeTrack) Kind() TrackKind   { return t.kind }
func (t *fakeTrack) Enabled() bool     { return t.enabled.Load() }
func (t *fakeTrack) SetEnabled(b bool) { t.enabled.Store(b) }
func (t *fakeTrack) Stop()             { t.stops.Add(1) }

type fakeMedia struct {
	tracks []Track
	err    error
}

func (m fakeMedia) Acquire(context.Context) ([]Track, error) { return m.tracks, m.err }

type fakeEngine struct {
	mu         sync.Mutex
	ev         Events
	connectErr error
	hangups    int
	closes     int
	audio      []bool
	video      []bool
}

func (e *fakeEngine) Connect(_ context.Context, _ []Track, ev Events) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ev = ev
	return e.connectErr
}

func (e *fakeEngine) SetAudioMuted(m bool) error {
	e.mu.Lock()
	e.audio = append(e.audio, m)
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) SetVideoMuted(m bool) error {
	e.mu.Lock()
	e.video = append(e.video, m)
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) Hangup() error {
	e.mu.Lock()
	e.hangups++
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	e.closes++
	e.mu.Unlock()
	return nil
}

func (e *fakeEngine) counts() (hangups, closes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hangups, e.closes
}

type fakeReporter struct {
	mu     sync.Mutex
	starts []time.Time
	ends   []client.CallEnd
}

func (r *fakeReporter) StartVideoCall(_ context.Context, _ uint, _ string, start time.Time) error {
	r.mu.Lock()
	r.starts = append(r.starts, start)
	r.mu.Unlock()
	return nil
}

func (r *fakeReporter) EndVideoCall(_ context.Context, end client.CallEnd) error {
	r.mu.Lock()
	r.ends = append(r.ends, end)
	r.mu.Unlock()
	return nil
}

func (r *fakeReporter) endReports() []client.CallEnd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]client.CallEnd{}, r.ends...)
}

// orderedReporter records report calls in arrival order; the start report is
// slowed to let a short call's end report overtake it.
type orderedReporter struct {
	startDelay time.Duration
	mu         sync.Mutex
	calls      []string
	ended      chan struct{}
}

func (r *orderedReporter) StartVideoCall(context.Context, uint, string, time.Time) error {
	time.Sleep(r.startDelay)
	r.mu.Lock()
	r.calls = append(r.calls, "start")
	r.mu.Unlock()
	return nil
}

func (r *orderedReporter) EndVideoCall(context.Context, client.CallEnd) error {
	r.mu.Lock()
	r.calls = append(r.calls, "end")
	r.mu.Unlock()
	close(r.ended)
	return nil
}

func (r *orderedReporter) order() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

type emitted struct {
	event string
	data  json.RawMessage
}

type fakeSignaler struct {
	mu       sync.Mutex
	handlers map[string][]func(json.RawMessage)
	sent     []emitted
	closes   int
}

func newFakeSignaler() *fakeSignaler {
	return &fakeSignaler{handlers: make(map[string][]func(json.RawMessage))}
}

func (s *fakeSignaler) Emit(event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, emitted{event: event, data: b})
	s.mu.Unlock()
	return nil
}

func (s *fakeSignaler) On(event string, fn func(json.RawMessage)) {
	s.mu.Lock()
	s.handlers[event] = append(s.handlers[event], fn)
	s.mu.Unlock()
}

func (s *fakeSignaler) Close() error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	return nil
}

func (s *fakeSignaler) deliver(event, data string) {
	s.mu.Lock()
	hs := append([]func(json.RawMessage){}, s.handlers[event]...)
	s.mu.Unlock()
	for _, h := range hs {
		h(json.RawMessage(data))
	}
}

func (s *fakeSignaler) events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, e := range s.sent {
		out[i] = e.event
	}
	return out
}

func (s *fakeSignaler) last(event string) json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sent) - 1; i >= 0; i-- {
		if s.sent[i].event == event {
			return s.sent[i].data
		}
	}
	return nil
}

type fakePeer struct {
	mu          sync.Mutex
	added       int
	answers     []SessionDescription
	candidates  int
	closes      int
	onCandidate func(json.RawMessage)
	onState     func(PeerState)
	onTrack     func()
}

func (p *fakePeer) AddTrack(Track) error {
	p.added++
	return nil
}

func (p *fakePeer) CreateOffer(context.Context) (SessionDescription, error) {
	return SessionDescription{Type: "offer", SDP: "v=0 offer"}, nil
}

func (p *fakePeer) CreateAnswer(ctx context.Context, offer SessionDescription) (SessionDescription, error) {
	if err := ctx.Err(); err != nil {
		return SessionDescription{}, err
	}
	return SessionDescription{Type: "answer", SDP: "answer to " + offer.SDP}, nil
}

func (p *fakePeer) SetRemoteAnswer(a SessionDescription) error {
	p.mu.Lock()
	p.answers = append(p.answers, a)
	p.mu.Unlock()
	return nil
}

func (p *fakePeer) AddICECandidate(json.RawMessage) error {
	p.mu.Lock()
	p.candidates++
	p.mu.Unlock()
	return nil
}

func (p *fakePeer) OnICECandidate(fn func(json.RawMessage))    { p.onCandidate = fn }
func (p *fakePeer) OnConnectionStateChange(fn func(PeerState)) { p.onState = fn }
func (p *fakePeer) OnTrack(fn func())                          { p.onTrack = fn }

func (p *fakePeer) Close() error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	return nil
}

type fakeRoom struct {
	mu           sync.Mutex
	logins       int
	loginErrs    []error
	publishes    int
	mutedAudio   []bool
	stops        int
	logouts      int
	onRemote     func(bool)
	onDisconnect func(error)
}

func (r *fakeRoom) Login(context.Context, string, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins++
	if len(r.loginErrs) >= r.logins {
		return r.loginErrs[r.logins-1]
	}
	return nil
}

func (r *fakeRoom) StartPublishing(context.Context, string, []Track) error {
	r.mu.Lock()
	r.publishes++
	r.mu.Unlock()
	return nil
}

func (r *fakeRoom) MuteAudio(_ string, muted bool) error {
	r.mu.Lock()
	r.mutedAudio = append(r.mutedAudio, muted)
	r.mu.Unlock()
	return nil
}

func (r *fakeRoom) MuteVideo(string, bool) error       { return nil }
func (r *fakeRoom) OnRemoteStream(fn func(added bool)) { r.onRemote = fn }
func (r *fakeRoom) OnDisconnected(fn func(err error))  { r.onDisconnect = fn }

func (r *fakeRoom) StopPublishing(string) error {
	r.mu.Lock()
	r.stops++
	r.mu.Unlock()
	return nil
}

func (r *fakeRoom) Logout(string) error {
	r.mu.Lock()
	r.logouts++
	r.mu.Unlock()
	return nil
}

func (r *fakeRoom) loginCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logins
}
