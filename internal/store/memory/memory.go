// Package memory is a map-backed store.Repository used by tests and as a
// development fallback. Records are copied on the way in and out so callers
// never share state with the store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

var _ store.Repository = (*Store)(nil)

type Store struct {
	mu            sync.RWMutex
	items         map[string]*domain.Item
	itemOrder     []string
	proposals     map[string]*domain.MatchProposal
	proposalOrder []string
	notifications map[string]*domain.Notification
	notifyOrder   []string
	users         map[string]*domain.User
	userOrder     []string
	now           func() time.Time
}

func New() *Store {
	return &Store{
		items:         make(map[string]*domain.Item),
		proposals:     make(map[string]*domain.MatchProposal),
		notifications: make(map[string]*domain.Notification),
		users:         make(map[string]*domain.User),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if at.IsZero() {
		*at = s.now()
	}
}

func (s *Store) CreateItem(_ context.Context, item *domain.Item) (*domain.Item, error) {
	if !item.Kind.Valid() {
		return nil, fmt.Errorf("failed to create item: unknown kind %q", item.Kind)
	}
	c := *item
	s.stamp(&c.ID, &c.CreatedAt)
	if c.Status == "" {
		c.Status = domain.ItemPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[c.ID]; exists {
		return nil, fmt.Errorf("failed to create item: %w", domain.ErrConflict)
	}
	s.items[c.ID] = &c
	s.itemOrder = append(s.itemOrder, c.ID)
	out := c
	return &out, nil
}

func (s *Store) GetItem(_ context.Context, kind domain.Kind, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok || item.Kind != kind {
		return nil, domain.NotFound(string(kind)+" item", id)
	}
	c := *item
	return &c, nil
}

func (s *Store) listItems(match func(*domain.Item) bool) []*domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Item
	for _, id := range s.itemOrder {
		item := s.items[id]
		if match(item) {
			c := *item
			out = append(out, &c)
		}
	}
	return out
}

func (s *Store) ListItems(_ context.Context, kind domain.Kind, filter domain.ItemFilter) ([]*domain.Item, error) {
	return s.listItems(func(i *domain.Item) bool {
		return i.Kind == kind && store.MatchesFilter(i, filter)
	}), nil
}

func (s *Store) ListItemsByOwner(_ context.Context, kind domain.Kind, ownerID string) ([]*domain.Item, error) {
	return s.listItems(func(i *domain.Item) bool {
		return i.Kind == kind && i.OwnerID == ownerID
	}), nil
}

func (s *Store) UpdateItemStatus(_ context.Context, kind domain.Kind, id string, status domain.ItemStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.Kind != kind {
		return domain.NotFound(string(kind)+" item", id)
	}
	item.Status = status
	return nil
}

func (s *Store) DeleteItem(_ context.Context, kind domain.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.Kind != kind {
		return domain.NotFound(string(kind)+" item", id)
	}
	delete(s.items, id)
	s.itemOrder = slices.DeleteFunc(s.itemOrder, func(v string) bool { return v == id })
	return nil
}

func (s *Store) CreateProposal(_ context.Context, p *domain.MatchProposal) (*domain.MatchProposal, error) {
	c := *p
	s.stamp(&c.ID, &c.CreatedAt)
	if c.Status == "" {
		c.Status = domain.MatchPending
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.proposals[c.ID]; exists {
		return nil, fmt.Errorf("failed to create proposal: %w", domain.ErrConflict)
	}
	s.proposals[c.ID] = &c
	s.proposalOrder = append(s.proposalOrder, c.ID)
	out := c
	return &out, nil
}

func (s *Store) GetProposal(_ context.Context, id string) (*domain.MatchProposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.proposals[id]
	if !ok {
		return nil, domain.NotFound("match", id)
	}
	c := *p
	return &c, nil
}

func (s *Store) listProposals(match func(*domain.MatchProposal) bool) []*domain.MatchProposal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.MatchProposal
	for _, id := range s.proposalOrder {
		p := s.proposals[id]
		if match(p) {
			c := *p
			out = append(out, &c)
		}
	}
	return out
}

func (s *Store) ListProposals(_ context.Context) ([]*domain.MatchProposal, error) {
	return s.listProposals(func(*domain.MatchProposal) bool { return true }), nil
}

func (s *Store) ListPendingProposals(_ context.Context) ([]*domain.MatchProposal, error) {
	return s.listProposals(func(p *domain.MatchProposal) bool { return p.Status == domain.MatchPending }), nil
}

func (s *Store) ListProposalsByOwner(_ context.Context, ownerID string) ([]*domain.MatchProposal, error) {
	return s.listProposals(func(p *domain.MatchProposal) bool {
		return s.ownedBy(p.LostID, ownerID) || s.ownedBy(p.FoundID, ownerID)
	}), nil
}

// ownedBy expects s.mu to be held.
func (s *Store) ownedBy(itemID, ownerID string) bool {
	item, ok := s.items[itemID]
	return ok && item.OwnerID == ownerID
}

func (s *Store) UpdateProposalStatus(_ context.Context, id string, status domain.MatchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return domain.NotFound("match", id)
	}
	p.Status = status
	return nil
}

func (s *Store) ApplyApproval(_ context.Context, proposalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[proposalID]
	if !ok {
		return domain.NotFound("match", proposalID)
	}
	lost, ok := s.items[p.LostID]
	if !ok {
		return &domain.ReferentialIntegrityError{ProposalID: p.ID, ItemID: p.LostID}
	}
	found, ok := s.items[p.FoundID]
	if !ok {
		return &domain.ReferentialIntegrityError{ProposalID: p.ID, ItemID: p.FoundID}
	}
	p.Status = domain.MatchApproved
	lost.Status = domain.ItemMatched
	found.Status = domain.ItemMatched
	return nil
}

func (s *Store) CreateNotification(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	c := *n
	s.stamp(&c.ID, &c.CreatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.notifications[c.ID]; exists {
		return nil, fmt.Errorf("failed to create notification: %w", domain.ErrConflict)
	}
	s.notifications[c.ID] = &c
	s.notifyOrder = append(s.notifyOrder, c.ID)
	out := c
	return &out, nil
}

func (s *Store) ListNotifications(_ context.Context, userID string) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Notification
	for _, id := range s.notifyOrder {
		if n := s.notifications[id]; n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	// Ties on CreatedAt keep the most recently inserted first.
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b *domain.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return domain.NotFound("notification", id)
	}
	n.Read = true
	return nil
}

func (s *Store) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateUser(_ context.Context, u *domain.User) (*domain.User, error) {
	c := *u
	s.stamp(&c.ID, &c.CreatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[c.ID]; exists {
		return nil, fmt.Errorf("failed to create user: %w", domain.ErrConflict)
	}
	for _, existing := range s.users {
		if existing.Email == c.Email {
			return nil, fmt.Errorf("failed to create user: email %s: %w", c.Email, domain.ErrConflict)
		}
	}
	s.users[c.ID] = &c
	s.userOrder = append(s.userOrder, c.ID)
	out := c
	return &out, nil
}

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	c := *u
	return &c, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.NotFound("user", email)
}

func (s *Store) listUsers(match func(*domain.User) bool) []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.User
	for _, id := range s.userOrder {
		if u := s.users[id]; match(u) {
			c := *u
			out = append(out, &c)
		}
	}
	return out
}

func (s *Store) ListUsers(_ context.Context) ([]*domain.User, error) {
	return s.listUsers(func(*domain.User) bool { return true }), nil
}

func (s *Store) ListPendingUsers(_ context.Context) ([]*domain.User, error) {
	return s.listUsers(func(u *domain.User) bool { return !u.Verified }), nil
}

func (s *Store) VerifyUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.NotFound("user", id)
	}
	u.Verified = true
	return nil
}
