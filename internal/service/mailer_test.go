package service

import (
	"errors"
	"testing"

	"healthoasis/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type MockMailClient struct{ mock.Mock }

func (m *MockMailClient) DialAndSend(msgs ...*mail.Msg) error {
	return m.Called(msgs).Error(0)
}

func TestSMTPMailer_RetriesThenSucceeds(t *testing.T) {
	client := new(MockMailClient)
	client.On("DialAndSend", mock.Anything).Return(errors.New("conn reset")).Once()
	client.On("DialAndSend", mock.Anything).Return(nil).Once()

	m := &SMTPMailer{client: client, from: "no-reply@healthoasis.local", log: quietLogger()}
	err := m.Send("doc@x.org", "doctor_invite", map[string]string{
		"DoctorName": "Dr. Iyer", "PatientName": "Asha", "PatientID": "p-1", "JoinURL": "https://x",
	})
	require.NoError(t, err)
	client.AssertNumberOfCalls(t, "DialAndSend", 2)
}

func TestSMTPMailer_GivesUpAfterThreeAttempts(t *testing.T) {
	client := new(MockMailClient)
	client.On("DialAndSend", mock.Anything).Return(errors.New("refused"))

	m := &SMTPMailer{client: client, from: "no-reply@healthoasis.local", log: quietLogger()}
	err := m.Send("doc@x.org", "doctor_invite", map[string]string{})
	assert.EqualError(t, err, "refused")
	client.AssertNumberOfCalls(t, "DialAndSend", mailAttempts)
}

func TestSMTPMailer_UnknownTemplate(t *testing.T) {
	m := &SMTPMailer{client: new(MockMailClient), from: "a@b.c", log: quietLogger()}
	assert.Error(t, m.Send("doc@x.org", "missing", nil))
}

func TestNewSMTPMailer_Disabled(t *testing.T) {
	m, err := NewSMTPMailer(smtpDisabled(), quietLogger())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func smtpDisabled() config.SMTPConfig { return config.SMTPConfig{} }
