package ws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

const (
	EventJoinDoctorRoom    = "join-doctor-room"
	EventJoinRoom          = "join-room"
	EventCallOffer         = "call-offer"
	EventCallAnswer        = "call-answer"
	EventICECandidate      = "ice-candidate"
	EventEndCall           = "end-call"
	EventCallEnded         = "call-ended"
	EventDoctorUnavailable = "doctor-unavailable"
	EventSignal            = "signal"
	EventUserJoined        = "user-joined"
	EventError             = "error"
)

// DoctorRoom is the room a doctor endpoint listens on.
func DoctorRoom(doctorID uint) string { return fmt.Sprintf("doctor-%d", doctorID) }

// doctorRef accepts a doctor id sent as a number or a string.
type doctorRef uint

func (d *doctorRef) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid doctorId %q", b)
	}
	*d = doctorRef(n)
	return nil
}

type doctorPayload struct {
	DoctorID doctorRef `json:"doctorId"`
	Role     string    `json:"role,omitempty"`
}

type roomPayload struct {
	RoomID   string          `json:"roomId"`
	UserInfo json.RawMessage `json:"userInfo,omitempty"`
}

// Dispatch handles one inbound frame from c.
func (h *Hub) Dispatch(c *Client, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil || env.Event == "" {
		h.SendTo(c, EventError, map[string]string{"message": "malformed frame"})
		return
	}
	entry := h.log.WithFields(logrus.Fields{"client": c.ID, "event": env.Event})

	switch env.Event {
	case EventJoinDoctorRoom:
		var p doctorPayload
		if !h.decode(c, env, &p) || p.DoctorID == 0 {
			return
		}
		h.Join(c, DoctorRoom(uint(p.DoctorID)), p.Role == "doctor")
		entry.WithField("role", p.Role).Debug("joined doctor room")

	case EventJoinRoom:
		var p roomPayload
		if !h.decode(c, env, &p) || p.RoomID == "" {
			return
		}
		h.Join(c, p.RoomID, false)
		info := p.UserInfo
		if len(info) == 0 {
			info = json.RawMessage("{}")
		}
		h.SendToOthers(p.RoomID, c, EventUserJoined, map[string]json.RawMessage{"userInfo": info})

	case EventCallOffer:
		var p doctorPayload
		if !h.decode(c, env, &p) || p.DoctorID == 0 {
			return
		}
		room := DoctorRoom(uint(p.DoctorID))
		if !h.HasDoctor(room) {
			h.SendTo(c, EventDoctorUnavailable, map[string]uint{"doctorId": uint(p.DoctorID)})
			entry.WithField("room", room).Info("offer to offline doctor")
			return
		}
		h.SendToOthers(room, c, EventCallOffer, env.Data)

	case EventCallAnswer, EventICECandidate:
		var p doctorPayload
		if !h.decode(c, env, &p) || p.DoctorID == 0 {
			return
		}
		h.SendToOthers(DoctorRoom(uint(p.DoctorID)), c, env.Event, env.Data)

	case EventEndCall:
		var p doctorPayload
		if !h.decode(c, env, &p) || p.DoctorID == 0 {
			return
		}
		h.SendToOthers(DoctorRoom(uint(p.DoctorID)), c, EventCallEnded, map[string]uint{"doctorId": uint(p.DoctorID)})

	case EventSignal:
		var p roomPayload
		if !h.decode(c, env, &p) || p.RoomID == "" {
			return
		}
		h.SendToOthers(p.RoomID, c, EventSignal, env.Data)

	default:
		entry.Debug("unknown event ignored")
	}
}

func (h *Hub) decode(c *Client, env Envelope, dest any) bool {
	if err := json.Unmarshal(env.Data, dest); err != nil {
		h.SendTo(c, EventError, map[string]string{"message": "invalid " + env.Event + " payload"})
		return false
	}
	return true
}
