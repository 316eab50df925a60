package ws

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewHub(l)
}

func emit(t *testing.T, h *Hub, c *Client, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	require.NoError(t, err)
	h.Dispatch(c, frame)
}

func next(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case frame := <-c.Send:
		var env Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return Envelope{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case frame := <-c.Send:
		t.Fatalf("unexpected frame %s", frame)
	default:
	}
}

func TestOfferRelayedToDoctor(t *testing.T) {
	h := testHub()
	doctor, patient := NewClient(h), NewClient(h)
	emit(t, h, doctor, EventJoinDoctorRoom, map[string]any{"doctorId": 7, "role": "doctor"})
	emit(t, h, patient, EventJoinDoctorRoom, map[string]any{"doctorId": "7"})

	offer := map[string]any{"offer": map[string]string{"type": "offer", "sdp": "v=0"}, "doctorId": 7}
	emit(t, h, patient, EventCallOffer, offer)

	env := next(t, doctor)
	assert.Equal(t, EventCallOffer, env.Event)
	assert.JSONEq(t, `{"offer":{"type":"offer","sdp":"v=0"},"doctorId":7}`, string(env.Data))
	assertSilent(t, patient)
}

func TestOfferWithoutDoctorIsRejected(t *testing.T) {
	h := testHub()
	patient := NewClient(h)
	emit(t, h, patient, EventJoinDoctorRoom, map[string]any{"doctorId": 3})
	emit(t, h, patient, EventCallOffer, map[string]any{"offer": map[string]string{}, "doctorId": 3})

	env := next(t, patient)
	assert.Equal(t, EventDoctorUnavailable, env.Event)
	assert.JSONEq(t, `{"doctorId":3}`, string(env.Data))
}

func TestAnswerAndCandidatesRelayBothWays(t *testing.T) {
	h := testHub()
	doctor, patient := NewClient(h), NewClient(h)
	emit(t, h, doctor, EventJoinDoctorRoom, map[string]any{"doctorId": 1, "role": "doctor"})
	emit(t, h, patient, EventJoinDoctorRoom, map[string]any{"doctorId": 1})

	emit(t, h, doctor, EventCallAnswer, map[string]any{"answer": map[string]string{"type": "answer"}, "doctorId": 1})
	assert.Equal(t, EventCallAnswer, next(t, patient).Event)

	emit(t, h, patient, EventICECandidate, map[string]any{"candidate": map[string]string{"candidate": "c1"}, "doctorId": 1})
	env := next(t, doctor)
	assert.Equal(t, EventICECandidate, env.Event)
	assert.Contains(t, string(env.Data), "c1")
}

func TestEndCallNotifiesOthers(t *testing.T) {
	h := testHub()
	doctor, patient := NewClient(h), NewClient(h)
	emit(t, h, doctor, EventJoinDoctorRoom, map[string]any{"doctorId": 2, "role": "doctor"})
	emit(t, h, patient, EventJoinDoctorRoom, map[string]any{"doctorId": 2})

	emit(t, h, doctor, EventEndCall, map[string]any{"doctorId": 2})
	env := next(t, patient)
	assert.Equal(t, EventCallEnded, env.Event)
	assertSilent(t, doctor)
}

func TestJoinRoomAndSignal(t *testing.T) {
	h := testHub()
	a, b := NewClient(h), NewClient(h)
	emit(t, h, a, EventJoinRoom, map[string]any{"roomId": "r1", "userInfo": map[string]string{"name": "You"}})
	assertSilent(t, a)

	emit(t, h, b, EventJoinRoom, map[string]any{"roomId": "r1", "userInfo": map[string]string{"name": "Doc"}})
	env := next(t, a)
	assert.Equal(t, EventUserJoined, env.Event)
	assert.JSONEq(t, `{"userInfo":{"name":"Doc"}}`, string(env.Data))

	emit(t, h, a, EventSignal, map[string]any{"roomId": "r1", "data": map[string]int{"x": 1}})
	env = next(t, b)
	assert.Equal(t, EventSignal, env.Event)
	assert.JSONEq(t, `{"roomId":"r1","data":{"x":1}}`, string(env.Data))
}

func TestMalformedFrame(t *testing.T) {
	h := testHub()
	c := NewClient(h)
	h.Dispatch(c, []byte("not json"))
	assert.Equal(t, EventError, next(t, c).Event)

	emit(t, h, c, EventCallOffer, "a string, not an object")
	assert.Equal(t, EventError, next(t, c).Event)
}

func TestCloseLeavesRoomsOnce(t *testing.T) {
	h := testHub()
	doctor, patient := NewClient(h), NewClient(h)
	emit(t, h, doctor, EventJoinDoctorRoom, map[string]any{"doctorId": 5, "role": "doctor"})
	emit(t, h, patient, EventJoinDoctorRoom, map[string]any{"doctorId": 5})
	require.Equal(t, 2, h.RoomSize(DoctorRoom(5)))

	doctor.Close()
	doctor.Close()
	assert.Equal(t, 1, h.RoomSize(DoctorRoom(5)))
	assert.False(t, h.HasDoctor(DoctorRoom(5)))

	_, open := <-doctor.Send
	assert.False(t, open)

	// frames to a closed client are dropped, not panics
	assert.Equal(t, 0, h.SendToOthers(DoctorRoom(5), patient, EventCallEnded, nil))
}

func TestServeSignaling_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := testHub()
	r := gin.New()
	r.GET("/ws/signaling", ServeSignaling(h))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/signaling"
	dial := func() *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		return conn
	}
	doctor, patient := dial(), dial()
	defer doctor.Close()
	defer patient.Close()

	require.NoError(t, doctor.WriteJSON(map[string]any{"event": EventJoinDoctorRoom, "data": map[string]any{"doctorId": 9, "role": "doctor"}}))
	require.Eventually(t, func() bool { return h.HasDoctor(DoctorRoom(9)) }, time.Second, 10*time.Millisecond)

	require.NoError(t, patient.WriteJSON(map[string]any{"event": EventJoinDoctorRoom, "data": map[string]any{"doctorId": 9}}))
	require.Eventually(t, func() bool { return h.RoomSize(DoctorRoom(9)) == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, patient.WriteJSON(map[string]any{"event": EventCallOffer, "data": map[string]any{"doctorId": 9, "offer": map[string]string{"sdp": "x"}}}))

	_ = doctor.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	require.NoError(t, doctor.ReadJSON(&env))
	assert.Equal(t, EventCallOffer, env.Event)
}
