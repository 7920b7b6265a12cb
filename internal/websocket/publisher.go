package websocket

import (
	"context"
	"fmt"
	"log/slog"

	"servespot/internal/cache"
	"servespot/internal/http-api/models"
	"servespot/internal/http-api/repository"
)

// Publisher stores a notification and then pushes it to every live
// transport of its recipient. Storage always happens first: offline
// recipients have no live transport and catch up from history later.
type Publisher struct {
	registry         *Registry
	notificationRepo repository.NotificationRepository
	unreadCache      *cache.UnreadCache
}

func NewPublisher(
	registry *Registry,
	notificationRepo repository.NotificationRepository,
	unreadCache *cache.UnreadCache,
) *Publisher {
	return &Publisher{
		registry:         registry,
		notificationRepo: notificationRepo,
		unreadCache:      unreadCache,
	}
}

// Notify persists the notification, invalidates the unread-count cache,
// and fans the event out to the recipient's live transports.
func (p *Publisher) Notify(ctx context.Context, notification *models.Notification) error {
	if err := p.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if err := p.unreadCache.Invalidate(ctx, notification.RecipientRole, notification.RecipientID); err != nil {
		slog.Warn("failed to invalidate unread cache", "error", err)
	}

	ev, err := NewNotificationEvent(notification)
	if err != nil {
		return fmt.Errorf("failed to build notification event: %w", err)
	}
	data, err := ev.ToJSON()
	if err != nil {
		return err
	}

	delivered := p.registry.Publish(notification.RecipientRole, notification.RecipientID, data)
	slog.Info("notification published",
		"notification_id", notification.ID,
		"role", notification.RecipientRole.String(),
		"recipient_id", notification.RecipientID,
		"live_transports", delivered)
	return nil
}
