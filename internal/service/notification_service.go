package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"healthoasis/internal/models"
	"healthoasis/internal/ws"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrDoctorNotFound = errors.New("doctor not found")

const deliveryTimeout = 30 * time.Second

type DoctorLookup interface {
	GetByID(id uint) (*models.Doctor, error)
	GetByEmail(email string) (*models.Doctor, error)
}

type NotificationStore interface {
	Create(n *models.Notification) error
}

// NotificationService tells doctors about waiting patients. Lookups and
// persistence happen inline; push and email delivery run in the background.
type NotificationService struct {
	doctors   DoctorLookup
	store     NotificationStore
	push      Pusher
	mail      Mailer
	publicURL string
	log       logrus.FieldLogger
	async     func(func())
}

func NewNotificationService(doctors DoctorLookup, store NotificationStore, push Pusher, mail Mailer, publicURL string, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{
		doctors:   doctors,
		store:     store,
		push:      push,
		mail:      mail,
		publicURL: publicURL,
		log:       log,
		async:     func(f func()) { go f() },
	}
}

// NotifyPatientWaiting records a notification for the doctor and pushes it.
func (s *NotificationService) NotifyPatientWaiting(doctorID uint, patientName, roomID string) error {
	doc, err := s.lookup(s.doctors.GetByID(doctorID))
	if err != nil {
		return err
	}
	if roomID == "" {
		roomID = ws.DoctorRoom(doc.ID)
	}
	title := "Patient waiting"
	body := patientName + " is waiting for you in a video call"
	data := map[string]string{
		"type":      models.NotificationPatientWaiting,
		"room_id":   roomID,
		"doctor_id": strconv.FormatUint(uint64(doc.ID), 10),
	}
	raw, _ := json.Marshal(data)
	if err := s.store.Create(&models.Notification{
		DoctorID: doc.ID,
		Type:     models.NotificationPatientWaiting,
		Title:    title,
		Body:     body,
		Data:     string(raw),
	}); err != nil {
		return err
	}
	s.deliverPush(doc, title, body, data)
	return nil
}

// InviteDoctor emails the doctor a join link and pushes when a token is known.
// It returns the room the patient should join.
func (s *NotificationService) InviteDoctor(doctorEmail, patientName, patientID string) (string, error) {
	doc, err := s.lookup(s.doctors.GetByEmail(doctorEmail))
	if err != nil {
		return "", err
	}
	roomID := "consult-" + uuid.NewString()
	joinURL := s.joinURL(roomID, doc.ID)

	raw, _ := json.Marshal(map[string]string{"room_id": roomID, "patient_id": patientID})
	if err := s.store.Create(&models.Notification{
		DoctorID: doc.ID,
		Type:     models.NotificationCallInvite,
		Title:    "Video call invite",
		Body:     patientName + " invited you to a video call",
		Data:     string(raw),
	}); err != nil {
		return "", err
	}

	s.deliverPush(doc, "Video call invite", patientName+" invited you to a video call", map[string]string{
		"type":     models.NotificationCallInvite,
		"room_id":  roomID,
		"join_url": joinURL,
	})
	if s.mail != nil {
		s.async(func() {
			err := s.mail.Send(doc.Email, "doctor_invite", map[string]string{
				"DoctorName":  doc.Name,
				"PatientName": patientName,
				"PatientID":   patientID,
				"JoinURL":     joinURL,
			})
			if err != nil {
				s.log.WithError(err).WithField("doctor_id", doc.ID).Error("invite email failed")
			}
		})
	}
	return roomID, nil
}

func (s *NotificationService) lookup(doc *models.Doctor, err error) (*models.Doctor, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *NotificationService) deliverPush(doc *models.Doctor, title, body string, data map[string]string) {
	if s.push == nil || doc.FCMToken == "" {
		return
	}
	token := doc.FCMToken
	s.async(func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		if err := s.push.Send(ctx, token, title, body, data); err != nil {
			s.log.WithError(err).WithField("doctor_id", doc.ID).Warn("push failed")
		}
	})
}

func (s *NotificationService) joinURL(roomID string, doctorID uint) string {
	q := url.Values{}
	q.Set("room", roomID)
	q.Set("doctorId", strconv.FormatUint(uint64(doctorID), 10))
	return s.publicURL + "/video-call?" + q.Encode()
}
