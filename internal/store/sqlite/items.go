package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

const itemColumns = `id, kind, owner_id, title, category, description, location, date, image_key, status, created_at`

func scanItem(sc scanner) (*domain.Item, error) {
	item := &domain.Item{}
	err := sc.Scan(&item.ID, &item.Kind, &item.OwnerID, &item.Title, &item.Category,
		&item.Description, &item.Location, &item.Date, &item.ImageKey, &item.Status, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	item.Date = item.Date.UTC()
	item.CreatedAt = item.CreatedAt.UTC()
	return item, nil
}

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

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Kind, c.OwnerID, c.Title, c.Category, c.Description, c.Location, c.Date, c.ImageKey, c.Status, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return s.GetItem(ctx, c.Kind, c.ID)
}

func (s *Store) GetItem(ctx context.Context, kind domain.Kind, id string) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = ? AND kind = ?
	`, id, kind))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(string(kind)+" item", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (s *Store) ListItems(ctx context.Context, kind domain.Kind, filter domain.ItemFilter) ([]*domain.Item, error) {
	filter = store.Normalize(filter)

	where := []string{"kind = ?"}
	args := []any{kind}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Location != "" {
		where = append(where, "location = ?")
		args = append(args, filter.Location)
	}
	if filter.Search != "" {
		// instr avoids LIKE wildcard handling of user input.
		where = append(where, "(instr(LOWER(title), ?) > 0 OR instr(LOWER(description), ?) > 0)")
		q := strings.ToLower(filter.Search)
		args = append(args, q, q)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at ASC, rowid ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	return items, nil
}

func (s *Store) ListItemsByOwner(ctx context.Context, kind domain.Kind, ownerID string) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE kind = ? AND owner_id = ?
		ORDER BY created_at ASC, rowid ASC
	`, kind, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	items, err := collect(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	return items, nil
}

func (s *Store) UpdateItemStatus(ctx context.Context, kind domain.Kind, id string, status domain.ItemStatus) error {
	err := execOne(ctx, s.db, domain.NotFound(string(kind)+" item", id), `
		UPDATE items SET status = ? WHERE id = ? AND kind = ?
	`, status, id, kind)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, kind domain.Kind, id string) error {
	err := execOne(ctx, s.db, domain.NotFound(string(kind)+" item", id), `
		DELETE FROM items WHERE id = ? AND kind = ?
	`, id, kind)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}
