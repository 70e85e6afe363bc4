package service

import (
	"context"
	"fmt"
	"strconv"

	"meetmap/internal/domain"
	"meetmap/internal/logging"
	"meetmap/internal/models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// messageSender is the part of *messaging.Client the service uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService sends push notifications via Firebase Cloud Messaging.
type FCMService struct {
	client messageSender
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(ctx context.Context, serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	log := logging.Component("fcm")
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Error("init firebase app", "err", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Error("init messaging client", "err", err)
		return nil
	}
	return &FCMService{client: client}
}

// Send sends a push notification to the given FCM token.
func (s *FCMService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if s == nil || token == "" {
		return nil
	}
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: token,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

// NotifyFavorited tells target that by added them to their favorites.
func (s *FCMService) NotifyFavorited(ctx context.Context, target, by *models.User) error {
	if s == nil || target == nil || by == nil {
		return nil
	}
	name := by.Name
	if name == "" {
		name = "Alguém"
	}
	data := map[string]string{
		"type":    domain.NotificationFavorited,
		"user_id": strconv.FormatUint(uint64(by.ID), 10),
	}
	return s.Send(ctx, target.FCMToken, "Novo favorito", name+" adicionou você aos favoritos", data)
}
