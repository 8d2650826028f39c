package service

import (
	"context"

	"campuscomplaint/internal/backend/repository"
	pkgerrors "campuscomplaint/pkg/errors"
)

// NotificationService lists and acknowledges notifications.
type NotificationService struct {
	notifications repository.NotificationRepository
}

func NewNotificationService(notifications repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

func (s *NotificationService) Unread(ctx context.Context, userID int64, page repository.PageRequest) ([]repository.Notification, int64, error) {
	items, total, err := s.notifications.Unread(ctx, userID, page)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	return items, total, nil
}

// MarkRead acknowledges the caller's notifications. Ids of other users are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID int64, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.ValidationError(pkgerrors.RequiredFieldEmpty, "notificationIds")
	}
	changed, err := s.notifications.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.StorageError)
	}
	return changed, nil
}
