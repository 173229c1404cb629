package sqlite

import (
	"context"
	"fmt"

	"github.com/vbonduro/lostfound/internal/domain"
)

const notificationColumns = `id, user_id, title, body, link, read, created_at`

func scanNotification(sc scanner) (*domain.Notification, error) {
	n := &domain.Notification{}
	if err := sc.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Link, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}

func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	c := *n
	s.stamp(&c.ID, &c.CreatedAt)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Title, c.Body, c.Link, c.Read, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &c, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	notifications, err := collect(rows, scanNotification)
	if err != nil {
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return notifications, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	err := execOne(ctx, s.db, domain.NotFound("notification", id), `
		UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read = 0
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}
