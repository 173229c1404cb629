package service

import (
	"context"

	"github.com/vbonduro/lostfound/internal/domain"
)

// notificationRepository is the subset of store.NotificationRepository that
// NotificationService requires.
type notificationRepository interface {
	ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// NotificationService is the per-user notification feed.
type NotificationService struct {
	repo notificationRepository
}

func NewNotificationService(repo notificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the user's notifications newest first.
func (s *NotificationService) List(ctx context.Context, userID string) ([]*domain.Notification, error) {
	list, err := s.repo.ListNotifications(ctx, userID)
	if err != nil {
		return nil, repoErr("list notifications", err)
	}
	return list, nil
}

func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, repoErr("count unread notifications", err)
	}
	return n, nil
}

// MarkRead marks one of the user's notifications read. Repeating it is not an
// error.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if id == "" {
		return &domain.ValidationError{Field: "notificationId", Message: "is required"}
	}
	if err := s.repo.MarkNotificationRead(ctx, id, userID); err != nil {
		return repoErr("mark notification read", err)
	}
	return nil
}
