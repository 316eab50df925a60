package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"healthoasis/internal/call"
	"healthoasis/internal/client"
	"healthoasis/internal/ws"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultOfferSDP = "v=0\r\no=- 0 0 IN IP4 127.0.0.1\r\ns=healthoasis-portal\r\nt=0 0\r\n"

// logPeer is a peer connection without media. It offers a fixed SDP, logs
// what the doctor sends back and counts the doctor's answer as connected.
type logPeer struct {
	sdp string
	log logrus.FieldLogger

	mu      sync.Mutex
	onState func(call.PeerState)
}

func (p *logPeer) AddTrack(call.Track) error { return nil }

func (p *logPeer) CreateOffer(context.Context) (call.SessionDescription, error) {
	return call.SessionDescription{Type: "offer", SDP: p.sdp}, nil
}

func (p *logPeer) CreateAnswer(_ context.Context, offer call.SessionDescription) (call.SessionDescription, error) {
	p.log.WithField("sdp", offer.SDP).Info("remote offer")
	return call.SessionDescription{Type: "answer", SDP: p.sdp}, nil
}

func (p *logPeer) SetRemoteAnswer(answer call.SessionDescription) error {
	p.log.WithField("sdp", answer.SDP).Info("doctor answered")
	p.setState(call.PeerConnected)
	return nil
}

func (p *logPeer) AddICECandidate(candidate json.RawMessage) error {
	p.log.WithField("candidate", string(candidate)).Debug("remote candidate")
	return nil
}

func (p *logPeer) OnICECandidate(func(json.RawMessage)) {}
func (p *logPeer) OnTrack(func())                       {}

func (p *logPeer) OnConnectionStateChange(fn func(call.PeerState)) {
	p.mu.Lock()
	p.onState = fn
	p.mu.Unlock()
}

func (p *logPeer) Close() error {
	p.setState(call.PeerClosed)
	return nil
}

func (p *logPeer) setState(st call.PeerState) {
	p.mu.Lock()
	fn := p.onState
	p.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

type noMedia struct{}

func (noMedia) Acquire(context.Context) ([]call.Track, error) { return nil, nil }

// callCmd places a signaling-only call to a doctor: it joins the doctor's
// room, sends an offer, and reports the call to the API like the portal does.
func callCmd(a *app) *cobra.Command {
	var sdpFile string
	cmd := &cobra.Command{
		Use:   "call <doctor-id>",
		Short: "Call a doctor over the signaling channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			sdp := defaultOfferSDP
			if sdpFile != "" {
				raw, err := os.ReadFile(sdpFile)
				if err != nil {
					return fmt.Errorf("read offer: %w", err)
				}
				sdp = string(raw)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sig, err := client.DialSignaling(ctx, a.cfg.Portal.SocketURL, a.log)
			if err != nil {
				return err
			}
			log := a.log.WithField("doctor_id", id)
			engine := call.NewPeerEngine(sig, &logPeer{sdp: sdp, log: log}, id, log)
			session := call.NewSession(call.Config{DoctorID: id, RoomID: ws.DoctorRoom(id)}, noMedia{}, engine, a.api, a.log)

			done := make(chan call.Status, 1)
			session.Watch(func(st call.Status) {
				log.WithField("state", st.State).Info("call status")
				if st.State == call.StateError || st.State == call.StateEnded {
					select {
					case done <- st:
					default:
					}
				}
			})

			if err := session.Start(ctx); err != nil {
				session.Close()
				return err
			}
			log.Info("calling, press Ctrl+C to hang up")

			select {
			case <-ctx.Done():
				return session.End()
			case st := <-done:
				session.Close()
				if st.State == call.StateError {
					return fmt.Errorf("call failed: %s", st.Error)
				}
				fmt.Println(st.Error)
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&sdpFile, "offer-sdp", "", "File holding the SDP to offer")
	return cmd
}
