package service

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// Pusher delivers a push notification to one device token.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

type messagingClient interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client messagingClient
	log    logrus.FieldLogger
}

// NewFCMService returns nil if Firebase is not configured or fails to start.
func NewFCMService(ctx context.Context, serviceAccountPath string, log logrus.FieldLogger) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.WithError(err).Error("firebase app init failed")
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.WithError(err).Error("firebase messaging init failed")
		return nil
	}
	return &FCMService{client: client, log: log}
}

// Send is a no-op on a nil service or an empty token.
func (s *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Token:        token,
		Android: &messaging.AndroidConfig{
			Priority:     "high",
			Notification: &messaging.AndroidNotification{Sound: "default"},
		},
		Webpush: &messaging.WebpushConfig{
			Headers: map[string]string{"Urgency": "high"},
		},
	}
	id, err := s.client.Send(ctx, msg)
	if err != nil {
		s.log.WithError(err).Warn("fcm send failed")
		return err
	}
	s.log.WithField("message_id", id).Debug("fcm sent")
	return nil
}
