package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"healthoasis/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockDoctors struct{ mock.Mock }

func (m *MockDoctors) GetByID(id uint) (*models.Doctor, error) {
	args := m.Called(id)
	doc, _ := args.Get(0).(*models.Doctor)
	return doc, args.Error(1)
}

func (m *MockDoctors) GetByEmail(email string) (*models.Doctor, error) {
	args := m.Called(email)
	doc, _ := args.Get(0).(*models.Doctor)
	return doc, args.Error(1)
}

type MockStore struct{ mock.Mock }

func (m *MockStore) Create(n *models.Notification) error {
	return m.Called(n).Error(0)
}

type MockPusher struct{ mock.Mock }

func (m *MockPusher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	return m.Called(token, title, body, data).Error(0)
}

type MockMailer struct{ mock.Mock }

func (m *MockMailer) Send(recipient, templateName string, data any) error {
	return m.Called(recipient, templateName, data).Error(0)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(d *MockDoctors, s *MockStore, p *MockPusher, m *MockMailer) *NotificationService {
	svc := NewNotificationService(d, s, p, m, "https://portal.test", quietLogger())
	svc.async = func(f func()) { f() }
	return svc
}

func TestNotifyPatientWaiting_StoresAndPushes(t *testing.T) {
	doctors, store, push := new(MockDoctors), new(MockStore), new(MockPusher)
	doctors.On("GetByID", uint(4)).Return(&models.Doctor{ID: 4, Name: "Dr. Rao", FCMToken: "tok"}, nil)
	store.On("Create", mock.MatchedBy(func(n *models.Notification) bool {
		return n.DoctorID == 4 && n.Type == models.NotificationPatientWaiting && strings.Contains(n.Body, "Asha")
	})).Return(nil)
	push.On("Send", "tok", "Patient waiting", mock.Anything, mock.MatchedBy(func(d map[string]string) bool {
		return d["room_id"] == "doctor-4"
	})).Return(nil)

	svc := newTestService(doctors, store, push, nil)
	require.NoError(t, svc.NotifyPatientWaiting(4, "Asha", ""))

	store.AssertExpectations(t)
	push.AssertExpectations(t)
}

func TestNotifyPatientWaiting_NoTokenSkipsPush(t *testing.T) {
	doctors, store, push := new(MockDoctors), new(MockStore), new(MockPusher)
	doctors.On("GetByID", uint(4)).Return(&models.Doctor{ID: 4}, nil)
	store.On("Create", mock.Anything).Return(nil)

	svc := newTestService(doctors, store, push, nil)
	require.NoError(t, svc.NotifyPatientWaiting(4, "Asha", "room-1"))
	push.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifyPatientWaiting_UnknownDoctor(t *testing.T) {
	doctors := new(MockDoctors)
	doctors.On("GetByID", uint(9)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(doctors, new(MockStore), nil, nil)
	err := svc.NotifyPatientWaiting(9, "Asha", "")
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestInviteDoctor_SendsEmailWithJoinLink(t *testing.T) {
	doctors, store, mailer := new(MockDoctors), new(MockStore), new(MockMailer)
	doctors.On("GetByEmail", "doc@x.org").Return(&models.Doctor{ID: 2, Name: "Dr. Iyer", Email: "doc@x.org"}, nil)
	store.On("Create", mock.Anything).Return(nil)
	mailer.On("Send", "doc@x.org", "doctor_invite", mock.MatchedBy(func(d map[string]string) bool {
		return strings.HasPrefix(d["JoinURL"], "https://portal.test/video-call?") && d["PatientName"] == "Asha"
	})).Return(nil)

	svc := newTestService(doctors, store, nil, mailer)
	room, err := svc.InviteDoctor("doc@x.org", "Asha", "p-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(room, "consult-"))
	mailer.AssertExpectations(t)
}

func TestInviteDoctor_StoreFailure(t *testing.T) {
	doctors, store := new(MockDoctors), new(MockStore)
	doctors.On("GetByEmail", "doc@x.org").Return(&models.Doctor{ID: 2}, nil)
	store.On("Create", mock.Anything).Return(errors.New("db down"))

	svc := newTestService(doctors, store, nil, nil)
	_, err := svc.InviteDoctor("doc@x.org", "Asha", "p-1")
	assert.EqualError(t, err, "db down")
}
