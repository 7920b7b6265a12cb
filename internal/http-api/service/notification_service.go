package service

import (
	"context"
	"errors"
	"log/slog"

	"servespot/internal/cache"
	"servespot/internal/http-api/models"
	"servespot/internal/http-api/repository"
	"servespot/internal/shared"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService interface {
	GetHistory(ctx context.Context, role shared.Role, recipientID string) ([]models.Notification, error)
	UnreadCount(ctx context.Context, role shared.Role, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, role shared.Role, recipientID, notificationID string) error
	MarkAllAsRead(ctx context.Context, role shared.Role, recipientID string) error
}

type notificationService struct {
	repo        repository.NotificationRepository
	unreadCache *cache.UnreadCache
}

func NewNotificationService(repo repository.NotificationRepository, unreadCache *cache.UnreadCache) NotificationService {
	return &notificationService{repo: repo, unreadCache: unreadCache}
}

func (s *notificationService) GetHistory(ctx context.Context, role shared.Role, recipientID string) ([]models.Notification, error) {
	return s.repo.GetByRecipient(ctx, role, recipientID)
}

// UnreadCount serves from Redis when possible and repopulates on a miss.
func (s *notificationService) UnreadCount(ctx context.Context, role shared.Role, recipientID string) (int64, error) {
	if count, hit, err := s.unreadCache.Get(ctx, role, recipientID); err == nil && hit {
		return count, nil
	} else if err != nil {
		slog.Warn("unread cache read failed", "error", err)
	}

	count, err := s.repo.CountUnread(ctx, role, recipientID)
	if err != nil {
		return 0, err
	}
	if err := s.unreadCache.Set(ctx, role, recipientID, count); err != nil {
		slog.Warn("unread cache write failed", "error", err)
	}
	return count, nil
}

// MarkAsRead flips a single notification after checking it belongs to the
// caller. Marking an already-read notification is a no-op, not an error:
// read state only ever moves from unread to read.
func (s *notificationService) MarkAsRead(ctx context.Context, role shared.Role, recipientID, notificationID string) error {
	notification, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientRole != role || notification.RecipientID != recipientID {
		return ErrNotificationNotFound
	}
	if notification.Read {
		return nil
	}

	if err := s.repo.MarkAsRead(ctx, notificationID); err != nil {
		return err
	}
	if err := s.unreadCache.Invalidate(ctx, role, recipientID); err != nil {
		slog.Warn("unread cache invalidation failed", "error", err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, role shared.Role, recipientID string) error {
	if err := s.repo.MarkAllAsRead(ctx, role, recipientID); err != nil {
		return err
	}
	if err := s.unreadCache.Invalidate(ctx, role, recipientID); err != nil {
		slog.Warn("unread cache invalidation failed", "error", err)
	}
	return nil
}
