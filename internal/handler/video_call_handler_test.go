package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"healthoasis/internal/models"
	"healthoasis/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCalls struct{ mock.Mock }

func (m *MockCalls) Create(c *models.VideoCall) error {
	args := m.Called(c)
	c.ID = 11
	return args.Error(0)
}

func (m *MockCalls) EndLatest(roomID string, doctorID uint, endTime time.Time, durationSec int) (*models.VideoCall, error) {
	args := m.Called(roomID, doctorID, endTime, durationSec)
	c, _ := args.Get(0).(*models.VideoCall)
	return c, args.Error(1)
}

func (m *MockCalls) ListByDoctor(doctorID uint, limit, offset int) ([]models.VideoCall, error) {
	args := m.Called(doctorID, limit, offset)
	list, _ := args.Get(0).([]models.VideoCall)
	return list, args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyPatientWaiting(doctorID uint, patientName, roomID string) error {
	return m.Called(doctorID, patientName, roomID).Error(0)
}

func (m *MockNotifier) InviteDoctor(doctorEmail, patientName, patientID string) (string, error) {
	args := m.Called(doctorEmail, patientName, patientID)
	return args.String(0), args.Error(1)
}

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func videoRouter(calls *MockCalls, n *MockNotifier) *gin.Engine {
	h := NewVideoCallHandler(calls, n, quietLogger())
	h.now = func() time.Time { return fixedNow }
	r := gin.New()
	r.POST("/api/video-calls", h.Start)
	r.POST("/api/video-calls/end", h.End)
	r.POST("/api/video-call/invite", h.Invite)
	r.POST("/api/notify-doctor", h.NotifyDoctor)
	r.GET("/api/doctors/:id/video-calls", h.ListForDoctor)
	return r
}

func TestStartVideoCall_StringDoctorID(t *testing.T) {
	calls := new(MockCalls)
	calls.On("Create", mock.MatchedBy(func(c *models.VideoCall) bool {
		return c.DoctorID == 3 && c.RoomID == "doctor-3" && c.Status == models.VideoCallActive && c.StartTime.Equal(fixedNow)
	})).Return(nil)

	w := doJSON(videoRouter(calls, new(MockNotifier)), http.MethodPost, "/api/video-calls", `{"doctorId":"3"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out models.VideoCall
	decode(t, w, &out)
	assert.Equal(t, uint(11), out.ID)
}

func TestStartVideoCall_MissingDoctor(t *testing.T) {
	w := doJSON(videoRouter(new(MockCalls), new(MockNotifier)), http.MethodPost, "/api/video-calls", `{"startTime":"2025-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEndVideoCall_RepeatIsAccepted(t *testing.T) {
	end := time.Date(2025, 1, 1, 12, 5, 0, 0, time.UTC)
	calls := new(MockCalls)
	calls.On("EndLatest", "", uint(3), end, 300).Return(&models.VideoCall{ID: 11, Status: models.VideoCallEnded}, nil).Once()
	calls.On("EndLatest", "", uint(3), end, 300).Return(nil, nil).Once()
	r := videoRouter(calls, new(MockNotifier))

	body := `{"doctorId":3,"endTime":"2025-01-01T12:05:00Z","duration":300}`
	w := doJSON(r, http.MethodPost, "/api/video-calls/end", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/video-calls/end", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"no active call"}`, w.Body.String())
	calls.AssertExpectations(t)
}

func TestEndVideoCall_NeedsTarget(t *testing.T) {
	w := doJSON(videoRouter(new(MockCalls), new(MockNotifier)), http.MethodPost, "/api/video-calls/end", `{"duration":5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInviteDoctor(t *testing.T) {
	n := new(MockNotifier)
	n.On("InviteDoctor", "doc@x.org", "Asha", "p-1").Return("consult-1", nil)

	w := doJSON(videoRouter(new(MockCalls), n), http.MethodPost, "/api/video-call/invite", `{"doctorEmail":"doc@x.org","patientName":"Asha","patientId":"p-1"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"message":"Invitation sent","roomId":"consult-1"}`, w.Body.String())
}

func TestInviteDoctor_Unknown(t *testing.T) {
	n := new(MockNotifier)
	n.On("InviteDoctor", mock.Anything, mock.Anything, mock.Anything).Return("", service.ErrDoctorNotFound)

	w := doJSON(videoRouter(new(MockCalls), n), http.MethodPost, "/api/video-call/invite", `{"doctorEmail":"who@x.org","patientName":"Asha"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotifyDoctor_DefaultsPatientName(t *testing.T) {
	n := new(MockNotifier)
	n.On("NotifyPatientWaiting", uint(2), "A patient", "doctor-2").Return(nil)

	w := doJSON(videoRouter(new(MockCalls), n), http.MethodPost, "/api/notify-doctor", `{"doctorId":2,"roomId":"doctor-2"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	n.AssertExpectations(t)
}

func TestNotifyDoctor_Failure(t *testing.T) {
	n := new(MockNotifier)
	n.On("NotifyPatientWaiting", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down"))

	w := doJSON(videoRouter(new(MockCalls), n), http.MethodPost, "/api/notify-doctor", `{"doctorId":2}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListForDoctor_ClampsLimit(t *testing.T) {
	calls := new(MockCalls)
	calls.On("ListByDoctor", uint(2), 100, 5).Return(nil, nil)

	w := doJSON(videoRouter(calls, new(MockNotifier)), http.MethodGet, "/api/doctors/2/video-calls?limit=500&offset=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestFlexID(t *testing.T) {
	for in, want := range map[string]flexID{`7`: 7, `"7"`: 7, `7.0`: 7, `null`: 0, `""`: 0} {
		var f flexID
		require.NoError(t, f.UnmarshalJSON([]byte(in)), in)
		assert.Equal(t, want, f, in)
	}
	var f flexID
	assert.Error(t, f.UnmarshalJSON([]byte(`"abc"`)))
	assert.Error(t, f.UnmarshalJSON([]byte(`-1`)))
}
