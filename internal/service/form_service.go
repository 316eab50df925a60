package service

import (
	"context"
	"strings"
	"time"

	"healthoasis/internal/models"
	"healthoasis/internal/validator"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type DepartmentSource interface {
	Departments(ctx context.Context) ([]models.Department, error)
}

type HoursSource interface {
	WorkingHours(ctx context.Context) ([]models.WorkingHour, error)
}

type FormStore interface {
	CreateAppointment(a *models.Appointment) error
	CreateMessage(m *models.Message) error
}

type AppointmentInput struct {
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	FullName        string `json:"fullname"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Message         string `json:"message"`
	Department      string `json:"department"`
}

type MessageInput struct {
	FullName     string `json:"full_name"`
	EmailAddress string `json:"email_address"`
	Subject      string `json:"subject"`
	MessageText  string `json:"message_text"`
}

// FormService validates and stores the public form submissions. Validation
// failures are returned as validator.Validator values.
type FormService struct {
	departments DepartmentSource
	hours       HoursSource
	store       FormStore
	now         func() time.Time
}

func NewFormService(departments DepartmentSource, hours HoursSource, store FormStore) *FormService {
	return &FormService{departments: departments, hours: hours, store: store, now: time.Now}
}

func (s *FormService) BookAppointment(ctx context.Context, in AppointmentInput) (*models.Appointment, error) {
	var v validator.Validator
	v.Check(validator.MinRunes(in.FullName, 2), "fullname must be at least 2 characters")
	v.Check(validator.IsEmail(strings.TrimSpace(in.Email)), "email must be a valid email address")
	v.Check(validator.MinRunes(in.Phone, 6), "phone must be at least 6 characters")

	if !validator.NotBlank(in.Department) {
		v.AddError("department is required")
	} else {
		known, err := s.knownDepartment(ctx, in.Department)
		if err != nil {
			return nil, err
		}
		v.Check(known, "department is not recognised")
	}

	date, dateErr := time.ParseInLocation(dateLayout, in.AppointmentDate, time.Local)
	clock, timeErr := time.Parse(timeLayout, in.AppointmentTime)
	v.Check(dateErr == nil, "appointment_date must be YYYY-MM-DD")
	v.Check(timeErr == nil, "appointment_time must be HH:MM:SS")
	if dateErr == nil {
		y, m, d := s.now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
		v.Check(!date.Before(today), "appointment_date cannot be in the past")
	}
	if dateErr == nil && timeErr == nil {
		msg, err := s.checkHours(ctx, date.Weekday(), clock)
		if err != nil {
			return nil, err
		}
		if msg != "" {
			v.AddError(msg)
		}
	}
	if v.HasErrors() {
		return nil, v
	}

	a := &models.Appointment{
		AppointmentDate: in.AppointmentDate,
		AppointmentTime: in.AppointmentTime,
		FullName:        strings.TrimSpace(in.FullName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		Message:         in.Message,
		Department:      strings.TrimSpace(in.Department),
		Status:          "BOOKED",
	}
	if err := s.store.CreateAppointment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *FormService) SendMessage(in MessageInput) (*models.Message, error) {
	var v validator.Validator
	v.Check(validator.NotBlank(in.FullName), "full_name is required")
	v.Check(validator.IsEmail(strings.TrimSpace(in.EmailAddress)), "email_address must be a valid email address")
	v.Check(validator.NotBlank(in.Subject), "subject is required")
	v.Check(validator.MinRunes(in.MessageText, 10), "message_text must be at least 10 characters")
	if v.HasErrors() {
		return nil, v
	}

	m := &models.Message{
		FullName:     strings.TrimSpace(in.FullName),
		EmailAddress: strings.TrimSpace(in.EmailAddress),
		Subject:      strings.TrimSpace(in.Subject),
		MessageText:  strings.TrimSpace(in.MessageText),
	}
	if err := s.store.CreateMessage(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *FormService) knownDepartment(ctx context.Context, name string) (bool, error) {
	list, err := s.departments.Departments(ctx)
	if err != nil {
		return false, err
	}
	name = strings.TrimSpace(name)
	for _, d := range list {
		if strings.EqualFold(d.Name, name) || strings.EqualFold(d.Slug, name) {
			return true, nil
		}
	}
	return false, nil
}

// checkHours returns a user-facing message when the slot is outside opening
// hours, or "" when it is bookable.
func (s *FormService) checkHours(ctx context.Context, day time.Weekday, clock time.Time) (string, error) {
	hours, err := s.hours.WorkingHours(ctx)
	if err != nil {
		return "", err
	}
	for _, h := range hours {
		if h.Weekday != int(day) {
			continue
		}
		if h.IsClosed {
			return "the hospital is closed on " + h.Day, nil
		}
		open, err1 := time.Parse(timeLayout, h.OpenTime)
		closing, err2 := time.Parse(timeLayout, h.CloseTime)
		if err1 != nil || err2 != nil {
			return "", nil
		}
		if clock.Before(open) || !clock.Before(closing) {
			return "appointment_time must be between " + h.OpenTime[:5] + " and " + h.CloseTime[:5] + " on " + h.Day, nil
		}
		return "", nil
	}
	return "no working hours are defined for that day", nil
}
