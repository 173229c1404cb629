package bolt

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

func (s *Store) CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if !item.Kind.Valid() {
		return nil, fmt.Errorf("failed to create item: unknown kind %q", item.Kind)
	}
	c := *item
	s.stamp(&c.ID, &c.CreatedAt)
	if c.Status == "" {
		c.Status = domain.ItemPending
	}
	c.Date = c.Date.UTC()

	err := s.update(ctx, func(tx *bolt.Tx) error {
		return insert(tx.Bucket(bucketItems), c.ID, &c)
	})
	if err != nil {
		return nil, wrap("create item", err)
	}
	return &c, nil
}

func (s *Store) GetItem(ctx context.Context, kind domain.Kind, id string) (*domain.Item, error) {
	var item *domain.Item
	err := s.view(ctx, func(tx *bolt.Tx) error {
		rec, ok, err := get[domain.Item](tx.Bucket(bucketItems), id)
		if err != nil {
			return err
		}
		if !ok || rec.Value.Kind != kind {
			return domain.NotFound(string(kind)+" item", id)
		}
		item = &rec.Value
		return nil
	})
	if err != nil {
		return nil, wrap("get item", err)
	}
	return item, nil
}

func (s *Store) listItems(ctx context.Context, keep func(*domain.Item) bool) ([]*domain.Item, error) {
	var items []*domain.Item
	err := s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		items, err = scan(tx.Bucket(bucketItems), keep)
		return err
	})
	if err != nil {
		return nil, wrap("list items", err)
	}
	return items, nil
}

func (s *Store) ListItems(ctx context.Context, kind domain.Kind, filter domain.ItemFilter) ([]*domain.Item, error) {
	return s.listItems(ctx, func(i *domain.Item) bool {
		return i.Kind == kind && store.MatchesFilter(i, filter)
	})
}

func (s *Store) ListItemsByOwner(ctx context.Context, kind domain.Kind, ownerID string) ([]*domain.Item, error) {
	return s.listItems(ctx, func(i *domain.Item) bool {
		return i.Kind == kind && i.OwnerID == ownerID
	})
}

func (s *Store) UpdateItemStatus(ctx context.Context, kind domain.Kind, id string, status domain.ItemStatus) error {
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		rec, ok, err := get[domain.Item](b, id)
		if err != nil {
			return err
		}
		if !ok || rec.Value.Kind != kind {
			return domain.NotFound(string(kind)+" item", id)
		}
		rec.Value.Status = status
		return put(b, id, rec.Seq, &rec.Value)
	})
	return wrap("update item status", err)
}

func (s *Store) DeleteItem(ctx context.Context, kind domain.Kind, id string) error {
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketItems)
		rec, ok, err := get[domain.Item](b, id)
		if err != nil {
			return err
		}
		if !ok || rec.Value.Kind != kind {
			return domain.NotFound(string(kind)+" item", id)
		}
		return b.Delete([]byte(id))
	})
	return wrap("delete item", err)
}
