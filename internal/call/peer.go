package call

import (
	"context"
	"encoding/json"
	"sync"

	"healthoasis/internal/client"
	"healthoasis/internal/ws"

	"github.com/sirupsen/logrus"
)

type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

type PeerState string

const (
	PeerNew          PeerState = "new"
	PeerConnecting   PeerState = "connecting"
	PeerConnected    PeerState = "connected"
	PeerDisconnected PeerState = "disconnected"
	PeerFailed       PeerState = "failed"
	PeerClosed       PeerState = "closed"
)

// PeerConnection is the media stack's peer connection. CreateOffer and
// CreateAnswer also apply the local description.
type PeerConnection interface {
	AddTrack(t Track) error
	CreateOffer(ctx context.Context) (SessionDescription, error)
	CreateAnswer(ctx context.Context, offer SessionDescription) (SessionDescription, error)
	SetRemoteAnswer(answer SessionDescription) error
	AddICECandidate(candidate json.RawMessage) error
	OnICECandidate(fn func(candidate json.RawMessage))
	OnConnectionStateChange(fn func(PeerState))
	OnTrack(fn func())
	Close() error
}

// Signaler is the signaling channel; *client.Signaler satisfies it.
type Signaler interface {
	Emit(event string, data any) error
	On(event string, fn func(json.RawMessage))
	Close() error
}

// PeerEngine negotiates directly with the doctor's endpoint through the
// doctor's signaling room.
type PeerEngine struct {
	signaler Signaler
	pc       PeerConnection
	doctorID uint
	log      logrus.FieldLogger

	// ctx spans the engine's life; remote offers are answered under it.
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

func NewPeerEngine(signaler Signaler, pc PeerConnection, doctorID uint, log logrus.FieldLogger) *PeerEngine {
	ctx, cancel := context.WithCancel(context.Background())
	return &PeerEngine{signaler: signaler, pc: pc, doctorID: doctorID, log: log, ctx: ctx, cancel: cancel}
}

type offerPayload struct {
	Offer    SessionDescription `json:"offer"`
	DoctorID uint               `json:"doctorId"`
}

type answerPayload struct {
	Answer   SessionDescription `json:"answer"`
	DoctorID uint               `json:"doctorId"`
}

type candidatePayload struct {
	Candidate json.RawMessage `json:"candidate"`
	DoctorID  uint            `json:"doctorId"`
}

func (e *PeerEngine) Connect(ctx context.Context, tracks []Track, ev Events) error {
	for _, t := range tracks {
		if err := e.pc.AddTrack(t); err != nil {
			return err
		}
	}

	e.pc.OnICECandidate(func(c json.RawMessage) {
		if err := e.signaler.Emit(ws.EventICECandidate, candidatePayload{Candidate: c, DoctorID: e.doctorID}); err != nil {
			e.log.WithError(err).Debug("send ice candidate")
		}
	})
	e.pc.OnConnectionStateChange(func(st PeerState) {
		switch st {
		case PeerConnected:
			ev.Connected()
		case PeerFailed, PeerDisconnected, PeerClosed:
			ev.Fail(MsgConnectionLost)
		}
	})
	e.pc.OnTrack(ev.Connected)

	e.signaler.On(ws.EventCallOffer, func(data json.RawMessage) {
		var p offerPayload
		if err := json.Unmarshal(data, &p); err != nil {
			ev.Fail(MsgNegotiationFailed)
			return
		}
		answer, err := e.pc.CreateAnswer(e.ctx, p.Offer)
		if err == nil {
			err = e.signaler.Emit(ws.EventCallAnswer, answerPayload{Answer: answer, DoctorID: e.doctorID})
		}
		if err != nil {
			e.log.WithError(err).Warn("answer remote offer")
			ev.Fail(MsgNegotiationFailed)
		}
	})
	e.signaler.On(ws.EventCallAnswer, func(data json.RawMessage) {
		var p answerPayload
		err := json.Unmarshal(data, &p)
		if err == nil {
			err = e.pc.SetRemoteAnswer(p.Answer)
		}
		if err != nil {
			e.log.WithError(err).Warn("apply remote answer")
			ev.Fail(MsgNegotiationFailed)
		}
	})
	e.signaler.On(ws.EventICECandidate, func(data json.RawMessage) {
		var p candidatePayload
		err := json.Unmarshal(data, &p)
		if err == nil {
			err = e.pc.AddICECandidate(p.Candidate)
		}
		if err != nil {
			e.log.WithError(err).Debug("add ice candidate")
		}
	})
	e.signaler.On(ws.EventDoctorUnavailable, func(json.RawMessage) { ev.Fail(MsgDoctorUnavailable) })
	e.signaler.On(ws.EventCallEnded, func(json.RawMessage) { ev.RemoteEnded() })
	e.signaler.On(client.EventDisconnect, func(json.RawMessage) { ev.Fail(MsgConnectionLost) })

	if err := e.signaler.Emit(ws.EventJoinDoctorRoom, map[string]uint{"doctorId": e.doctorID}); err != nil {
		return err
	}
	offer, err := e.pc.CreateOffer(ctx)
	if err != nil {
		return err
	}
	return e.signaler.Emit(ws.EventCallOffer, offerPayload{Offer: offer, DoctorID: e.doctorID})
}

// Mute is local only: the track enabled-state already carries it.
func (e *PeerEngine) SetAudioMuted(bool) error { return nil }

func (e *PeerEngine) SetVideoMuted(bool) error { return nil }

func (e *PeerEngine) Hangup() error {
	return e.signaler.Emit(ws.EventEndCall, map[string]uint{"doctorId": e.doctorID})
}

func (e *PeerEngine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.cancel()
		if perr := e.pc.Close(); perr != nil {
			err = perr
		}
		if serr := e.signaler.Close(); serr != nil && err == nil {
			err = serr
		}
	})
	return err
}
