package services

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// messageSender is the part of the FCM client PushService uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushService sends push notifications via Firebase Cloud Messaging.
// A PushService without a sender is a no-op.
type PushService struct {
	db     *gorm.DB
	sender messageSender
}

// NewPushService never fails: without a usable service account push is
// disabled and the server keeps running.
func NewPushService(ctx context.Context, gdb *gorm.DB, serviceAccountPath string) *PushService {
	if serviceAccountPath == "" {
		log.Println("FCM: No service account configured, push notifications disabled")
		return &PushService{db: gdb}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		log.Printf("FCM: Failed to initialize Firebase app: %v", err)
		return &PushService{db: gdb}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("FCM: Failed to get messaging client: %v", err)
		return &PushService{db: gdb}
	}

	log.Println("FCM: Push notifications enabled")
	return &PushService{db: gdb, sender: client}
}

func (p *PushService) Enabled() bool {
	return p != nil && p.sender != nil
}

// SendToUser pushes to the device registered by userID, if any.
func (p *PushService) SendToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string) {
	if !p.Enabled() {
		return
	}

	var user models.User
	if err := p.db.WithContext(ctx).Select("fcm_token").First(&user, "id = ?", userID).Error; err != nil {
		return
	}
	if user.FCMToken == "" {
		return
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := p.sender.Send(ctx, msg); err != nil {
		log.Printf("FCM: Failed to send to user %s: %v", userID, err)
	}
}
