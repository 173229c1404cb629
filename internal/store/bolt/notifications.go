package bolt

import (
	"context"
	"slices"

	bolt "go.etcd.io/bbolt"

	"github.com/vbonduro/lostfound/internal/domain"
)

func (s *Store) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	c := *n
	s.stamp(&c.ID, &c.CreatedAt)

	err := s.update(ctx, func(tx *bolt.Tx) error {
		return insert(tx.Bucket(bucketNotifications), c.ID, &c)
	})
	if err != nil {
		return nil, wrap("create notification", err)
	}
	return &c, nil
}

func (s *Store) userNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	var out []*domain.Notification
	err := s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		out, err = scan(tx.Bucket(bucketNotifications), func(n *domain.Notification) bool {
			return n.UserID == userID
		})
		return err
	})
	return out, err
}

func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	out, err := s.userNotifications(ctx, userID)
	if err != nil {
		return nil, wrap("list notifications", err)
	}
	// Newest first; ties keep the most recently inserted first.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b *domain.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotifications)
		rec, ok, err := get[domain.Notification](b, id)
		if err != nil {
			return err
		}
		if !ok || rec.Value.UserID != userID {
			return domain.NotFound("notification", id)
		}
		rec.Value.Read = true
		return put(b, id, rec.Seq, &rec.Value)
	})
	return wrap("mark notification read", err)
}

func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	out, err := s.userNotifications(ctx, userID)
	if err != nil {
		return 0, wrap("count notifications", err)
	}
	count := 0
	for _, n := range out {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
