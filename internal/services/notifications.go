package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/arnold/habits-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const NotificationGoalCompleted = "goal_completed"

// NotificationService stores in-app notifications and mirrors them to push.
type NotificationService struct {
	db   *gorm.DB
	push *PushService
}

func NewNotificationService(gdb *gorm.DB, push *PushService) *NotificationService {
	return &NotificationService{db: gdb, push: push}
}

// GoalCompleted implements GoalNotifier.
func (s *NotificationService) GoalCompleted(ctx context.Context, goal *models.Goal, stats models.GoalStats) {
	metadata := map[string]any{
		"goalId":       goal.ID.String(),
		"currentValue": stats.CurrentValue,
		"targetValue":  goal.TargetValue,
	}
	body := fmt.Sprintf("You reached %g of %g on \"%s\".", stats.CurrentValue, goal.TargetValue, goal.Title)
	if err := s.Create(ctx, goal.UserID, NotificationGoalCompleted, "Goal completed", body, metadata); err != nil {
		log.Printf("Failed to store goal completion notification for %s: %v", goal.ID, err)
	}
}

// Create stores a notification and pushes it in the background.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, notifType, title, body string, metadata map[string]any) error {
	notif := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}

	var pushData map[string]string
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("encode notification metadata: %w", err)
		}
		notif.Metadata = datatypes.JSON(raw)

		pushData = make(map[string]string, len(metadata)+1)
		for k, v := range metadata {
			pushData[k] = fmt.Sprintf("%v", v)
		}
		pushData["type"] = notifType
	}

	if err := s.db.WithContext(ctx).Create(&notif).Error; err != nil {
		return storageError("create notification", err)
	}

	if s.push.Enabled() {
		// The request context ends with the response; the push outlives it.
		go s.push.SendToUser(context.WithoutCancel(ctx), userID, title, body, pushData)
	}
	return nil
}

type NotificationPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Unread        int64                 `json:"unread"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

// List pages through the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, limit int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	result := &NotificationPage{Page: page, Limit: limit}
	db := s.db.WithContext(ctx)

	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&result.Notifications).Error; err != nil {
		return nil, storageError("list notifications", err)
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Count(&result.Total).Error; err != nil {
		return nil, storageError("count notifications", err)
	}
	if err := db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&result.Unread).Error; err != nil {
		return nil, storageError("count unread notifications", err)
	}
	return result, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notifID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notifID, userID).
		Update("read", true)
	if result.Error != nil {
		return storageError("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("notification")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error; err != nil {
		return storageError("mark notifications read", err)
	}
	return nil
}

// RegisterDeviceToken stores the FCM token push notifications are sent to.
func (s *NotificationService) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("fcm_token", token)
	if result.Error != nil {
		return storageError("register device token", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("user")
	}
	return nil
}
