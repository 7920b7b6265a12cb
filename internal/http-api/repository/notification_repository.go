package repository

import (
	"context"

	"gorm.io/gorm"

	"servespot/internal/http-api/models"
	"servespot/internal/shared"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByRecipient(ctx context.Context, role shared.Role, recipientID string) ([]models.Notification, error)
	GetByID(ctx context.Context, notificationID string) (*models.Notification, error)
	CountUnread(ctx context.Context, role shared.Role, recipientID string) (int64, error)
	MarkAsRead(ctx context.Context, notificationID string) error
	MarkAllAsRead(ctx context.Context, role shared.Role, recipientID string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// GetByRecipient returns the full history, read and unread, newest first.
func (r *notificationRepository) GetByRecipient(ctx context.Context, role shared.Role, recipientID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_role = ? AND recipient_id = ?", role, recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) GetByID(ctx context.Context, notificationID string) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", notificationID).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, role shared.Role, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_role = ? AND recipient_id = ? AND read = false", role, recipientID).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, notificationID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("read", true).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, role shared.Role, recipientID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_role = ? AND recipient_id = ?", role, recipientID).
		Update("read", true).Error
}
