package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-marketplace-be/internal/model"
	"ai-marketplace-be/internal/pkg/logger"
	"ai-marketplace-be/internal/repository/contract"
	"ai-marketplace-be/pkg/events"
	pktNats "ai-marketplace-be/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification model.Notification)
	Broadcast(notification model.Notification)
}

// notificationRule maps an event type to a rendered notification.
// Broadcast rules are push-only: nothing is persisted per user.
type notificationRule struct {
	Title     string
	Template  string
	Broadcast bool
}

var notificationRules = map[string]notificationRule{
	events.TypeRecommendationCreated: {
		Title:    "New recommendations ready",
		Template: "Your advisor picked {product_count} products for your project.",
	},
	events.TypeProductUpdated: {
		Title:     "Catalog updated",
		Template:  "A product in {category} was updated.",
		Broadcast: true,
	},
}

type NotificationService struct {
	repo       contract.NotificationRepository
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(repo contract.NotificationRepository, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	rule, ok := notificationRules[typeCode]
	if !ok {
		s.logger.Debug("NotificationService", fmt.Sprintf("No rule for event '%s', skipping", typeCode), nil)
		return nil
	}

	if rule.Broadcast {
		// Push only, no per-user inbox rows for system-wide updates.
		notif := s.buildNotification(uuid.Nil, typeCode, rule, event)
		if s.delivery != nil {
			s.delivery.Broadcast(notif)
		}
		return nil
	}

	uidStr, ok := event.Payload()["user_id"].(string)
	if !ok {
		s.logger.Warn("NotificationService", fmt.Sprintf("No user_id in payload for event %s", typeCode), nil)
		return nil
	}
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Malformed user_id in event payload", map[string]interface{}{"value": uidStr})
		return nil
	}

	notif := s.buildNotification(userID, typeCode, rule, event)

	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", fmt.Sprintf("Error saving notification for user %s", userID), map[string]interface{}{"error": err})
		return err // NATS will retry
	}

	if s.delivery != nil {
		s.delivery.Send(userID, notif)
	}
	return nil
}

func (s *NotificationService) buildNotification(userID uuid.UUID, typeCode string, rule notificationRule, event events.Event) model.Notification {
	payload := event.Payload()

	msg := rule.Template
	for k, v := range payload {
		placeholder := fmt.Sprintf("{%s}", k)
		msg = strings.ReplaceAll(msg, placeholder, fmt.Sprintf("%v", v))
	}

	entityType := ""
	var entityID *uuid.UUID
	if tidStr, ok := payload["thread_id"].(string); ok {
		if tid, err := uuid.Parse(tidStr); err == nil {
			entityType = "recommendation"
			entityID = &tid
		}
	} else if pidStr, ok := payload["product_id"].(string); ok {
		if pid, err := uuid.Parse(pidStr); err == nil {
			entityType = "product"
			entityID = &pid
		}
	}

	metaMap := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		metaMap[k] = v
	}
	if entityType != "" && entityID != nil {
		metaMap["action_url"] = fmt.Sprintf("/%ss/%s", entityType, entityID.String())
	}
	metaJSON, _ := json.Marshal(metaMap)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   typeCode,
		Title:      rule.Title,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
		IsRead:     false,
	}
}

// GetNotifications fetches notifications for a user.
func (s *NotificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	return s.repo.GetNotificationsByUserID(ctx, userID, limit, offset)
}

// GetUnreadCount fetches unread count.
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks a notification as read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
