package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"healthoasis/internal/models"
	"healthoasis/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticCatalog struct {
	departments []models.Department
	hours       []models.WorkingHour
}

func (s staticCatalog) Departments(context.Context) ([]models.Department, error) {
	return s.departments, nil
}

func (s staticCatalog) WorkingHours(context.Context) ([]models.WorkingHour, error) {
	return s.hours, nil
}

type MockFormStore struct{ mock.Mock }

func (m *MockFormStore) CreateAppointment(a *models.Appointment) error {
	return m.Called(a).Error(0)
}

func (m *MockFormStore) CreateMessage(msg *models.Message) error {
	return m.Called(msg).Error(0)
}

func hospitalCatalog() staticCatalog {
	return staticCatalog{
		departments: []models.Department{{Name: "Cardiology", Slug: "cardiology"}},
		hours: []models.WorkingHour{
			{Weekday: 0, Day: "Sunday", IsClosed: true},
			{Weekday: 1, Day: "Monday", OpenTime: "08:00:00", CloseTime: "20:00:00"},
			{Weekday: 6, Day: "Saturday", OpenTime: "09:00:00", CloseTime: "17:00:00"},
		},
	}
}

func newFormService(store FormStore) *FormService {
	cat := hospitalCatalog()
	svc := NewFormService(cat, cat, store)
	// Wednesday 1 Jan 2025
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 10, 0, 0, 0, time.Local) }
	return svc
}

func validAppointment() AppointmentInput {
	return AppointmentInput{
		AppointmentDate: "2025-01-06", // Monday
		AppointmentTime: "10:30:00",
		FullName:        "Asha Rao",
		Email:           "asha@example.org",
		Phone:           "9876543210",
		Department:      "Cardiology",
	}
}

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var v validator.Validator
	require.True(t, errors.As(err, &v), "expected validation error, got %v", err)
	return v.Errors
}

func TestBookAppointment_Stores(t *testing.T) {
	store := new(MockFormStore)
	store.On("CreateAppointment", mock.Anything).Return(nil)

	a, err := newFormService(store).BookAppointment(context.Background(), validAppointment())
	require.NoError(t, err)
	assert.Equal(t, "BOOKED", a.Status)
	store.AssertExpectations(t)
}

func TestBookAppointment_SundayClosed(t *testing.T) {
	in := validAppointment()
	in.AppointmentDate = "2025-01-05"

	_, err := newFormService(new(MockFormStore)).BookAppointment(context.Background(), in)
	assert.Contains(t, validationMessages(t, err), "the hospital is closed on Sunday")
}

func TestBookAppointment_OutsideSaturdayHours(t *testing.T) {
	in := validAppointment()
	in.AppointmentDate = "2025-01-04"
	in.AppointmentTime = "17:00:00"

	_, err := newFormService(new(MockFormStore)).BookAppointment(context.Background(), in)
	assert.Contains(t, validationMessages(t, err), "appointment_time must be between 09:00 and 17:00 on Saturday")
}

func TestBookAppointment_Invalid(t *testing.T) {
	in := AppointmentInput{
		AppointmentDate: "2024-12-31",
		AppointmentTime: "25:00",
		FullName:        "A",
		Email:           "nope",
		Phone:           "123",
		Department:      "Astrology",
	}
	_, err := newFormService(new(MockFormStore)).BookAppointment(context.Background(), in)
	msgs := validationMessages(t, err)
	assert.Contains(t, msgs, "fullname must be at least 2 characters")
	assert.Contains(t, msgs, "email must be a valid email address")
	assert.Contains(t, msgs, "phone must be at least 6 characters")
	assert.Contains(t, msgs, "department is not recognised")
	assert.Contains(t, msgs, "appointment_time must be HH:MM:SS")
	assert.Contains(t, msgs, "appointment_date cannot be in the past")
}

func TestSendMessage(t *testing.T) {
	store := new(MockFormStore)
	store.On("CreateMessage", mock.Anything).Return(nil)
	svc := newFormService(store)

	_, err := svc.SendMessage(MessageInput{FullName: "Asha", EmailAddress: "asha@example.org", Subject: "Hi", MessageText: "too short"})
	assert.Contains(t, validationMessages(t, err), "message_text must be at least 10 characters")

	m, err := svc.SendMessage(MessageInput{FullName: "Asha", EmailAddress: "asha@example.org", Subject: "Hi", MessageText: "Please call me back."})
	require.NoError(t, err)
	assert.Equal(t, "Please call me back.", m.MessageText)
	store.AssertNumberOfCalls(t, "CreateMessage", 1)
}
