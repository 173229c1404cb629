package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/imagestore"
	"github.com/vbonduro/lostfound/internal/imaging"
	"github.com/vbonduro/lostfound/internal/store"
)

// itemRepository is the subset of store.ItemRepository that ItemService requires.
type itemRepository interface {
	CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetItem(ctx context.Context, kind domain.Kind, id string) (*domain.Item, error)
	ListItems(ctx context.Context, kind domain.Kind, filter domain.ItemFilter) ([]*domain.Item, error)
	ListItemsByOwner(ctx context.Context, kind domain.Kind, ownerID string) ([]*domain.Item, error)
	UpdateItemStatus(ctx context.Context, kind domain.Kind, id string, status domain.ItemStatus) error
	DeleteItem(ctx context.Context, kind domain.Kind, id string) error
}

// matcher proposes matches for a newly reported item.
type matcher interface {
	MatchItem(ctx context.Context, item *domain.Item) ([]*domain.MatchProposal, error)
}

type ItemService struct {
	items   itemRepository
	matcher matcher
	images  imagestore.ImageStore
	logger  *slog.Logger
}

func NewItemService(items itemRepository, matcher matcher, images imagestore.ImageStore, logger *slog.Logger) *ItemService {
	return &ItemService{items: items, matcher: matcher, images: images, logger: logger}
}

// Report stores a new pending item owned by ownerID and runs matching for it.
// image may be nil. The item is returned even when matching fails; that
// failure is only logged.
func (s *ItemService) Report(ctx context.Context, kind domain.Kind, ownerID string, n domain.NewItem, image []byte) (*domain.Item, error) {
	if !kind.Valid() {
		return nil, &domain.ValidationError{Field: "kind", Message: "must be lost or found"}
	}
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return nil, err
	}

	if len(image) > 0 {
		key, err := s.saveImage(ctx, kind, image)
		if err != nil {
			return nil, err
		}
		n.ImageKey = key
	}

	item, err := s.items.CreateItem(ctx, &domain.Item{
		Kind:        kind,
		OwnerID:     ownerID,
		Title:       n.Title,
		Category:    n.Category,
		Description: n.Description,
		Location:    n.Location,
		Date:        n.Date,
		ImageKey:    n.ImageKey,
		Status:      domain.ItemPending,
	})
	if err != nil {
		if len(image) > 0 {
			s.removeImage(ctx, n.ImageKey)
		}
		return nil, repoErr("create item", err)
	}
	s.logger.Info("item reported", "item_id", item.ID, "kind", kind, "user_id", ownerID, "has_image", item.HasImage())

	proposals, err := s.matcher.MatchItem(ctx, item)
	if err != nil {
		s.logger.Error("matching failed for reported item", "item_id", item.ID, "kind", kind, "proposed", len(proposals), "error", err)
	}
	return item, nil
}

func (s *ItemService) saveImage(ctx context.Context, kind domain.Kind, data []byte) (string, error) {
	if s.images == nil {
		return "", &domain.ValidationError{Field: "image", Message: "image uploads are disabled"}
	}
	img, err := imaging.Process(data)
	if err != nil {
		return "", &domain.ValidationError{Field: "image", Message: err.Error()}
	}
	key, err := s.images.Save(ctx, string(kind), img.MIME, bytes.NewReader(img.Data))
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	s.logger.Debug("image saved", "storage_key", key, "mime_type", img.MIME, "bytes", len(img.Data))
	return key, nil
}

func (s *ItemService) removeImage(ctx context.Context, key string) {
	if s.images == nil || key == "" {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete image", "storage_key", key, "error", err)
	}
}

// Image opens a stored item image.
func (s *ItemService) Image(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if s.images == nil {
		return nil, "", domain.NotFound("image", key)
	}
	return s.images.Get(ctx, key)
}

func (s *ItemService) List(ctx context.Context, kind domain.Kind, filter domain.ItemFilter) ([]*domain.Item, error) {
	items, err := s.items.ListItems(ctx, kind, store.Normalize(filter))
	if err != nil {
		return nil, repoErr("list items", err)
	}
	return items, nil
}

func (s *ItemService) ListMine(ctx context.Context, kind domain.Kind, ownerID string) ([]*domain.Item, error) {
	items, err := s.items.ListItemsByOwner(ctx, kind, ownerID)
	if err != nil {
		return nil, repoErr("list own items", err)
	}
	return items, nil
}

func (s *ItemService) Get(ctx context.Context, kind domain.Kind, id string) (*domain.Item, error) {
	item, err := s.items.GetItem(ctx, kind, id)
	if err != nil {
		return nil, repoErr("get item", err)
	}
	return item, nil
}

// Delete removes a pending item on behalf of its owner.
func (s *ItemService) Delete(ctx context.Context, kind domain.Kind, id, userID string) error {
	item, err := s.owned(ctx, kind, id, userID)
	if err != nil {
		return err
	}
	if item.Status != domain.ItemPending {
		return &domain.TransitionError{Entity: string(kind) + " item", From: string(item.Status), To: "deleted"}
	}
	if err := s.items.DeleteItem(ctx, kind, id); err != nil {
		return repoErr("delete item", err)
	}
	s.removeImage(ctx, item.ImageKey)
	s.logger.Info("item deleted", "item_id", id, "kind", kind, "user_id", userID)
	return nil
}

// MarkReturned records that a matched item is back with its owner.
func (s *ItemService) MarkReturned(ctx context.Context, kind domain.Kind, id, userID string) (*domain.Item, error) {
	return s.transition(ctx, kind, id, userID, domain.ItemReturned)
}

// Close retires an item from the board.
func (s *ItemService) Close(ctx context.Context, kind domain.Kind, id, userID string) (*domain.Item, error) {
	return s.transition(ctx, kind, id, userID, domain.ItemClosed)
}

func (s *ItemService) transition(ctx context.Context, kind domain.Kind, id, userID string, to domain.ItemStatus) (*domain.Item, error) {
	item, err := s.owned(ctx, kind, id, userID)
	if err != nil {
		return nil, err
	}
	if !item.Status.CanTransition(to) {
		return nil, &domain.TransitionError{Entity: string(kind) + " item", From: string(item.Status), To: string(to)}
	}
	if err := s.items.UpdateItemStatus(ctx, kind, id, to); err != nil {
		return nil, repoErr("update item status", err)
	}
	s.logger.Info("item status changed", "item_id", id, "kind", kind, "from", item.Status, "to", to)
	item.Status = to
	return item, nil
}

func (s *ItemService) owned(ctx context.Context, kind domain.Kind, id, userID string) (*domain.Item, error) {
	item, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		return nil, fmt.Errorf("%s item %s belongs to another user: %w", kind, id, domain.ErrForbidden)
	}
	return item, nil
}
