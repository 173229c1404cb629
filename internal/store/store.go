// Package store defines the persistence contract shared by every storage
// backend. Implementations live in the memory, sqlite and bolt subpackages and
// are verified against the same suite in storetest.
//
// Lookups of a single record return an error wrapping domain.ErrNotFound when
// the record does not exist. List methods return an empty result, never an
// error, when nothing matches.
package store

import (
	"context"
	"strings"

	"github.com/vbonduro/lostfound/internal/domain"
)

type ItemRepository interface {
	// CreateItem persists item, assigning ID and CreatedAt when they are empty.
	CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	GetItem(ctx context.Context, kind domain.Kind, id string) (*domain.Item, error)
	// ListItems returns items of kind in creation order.
	ListItems(ctx context.Context, kind domain.Kind, filter domain.ItemFilter) ([]*domain.Item, error)
	ListItemsByOwner(ctx context.Context, kind domain.Kind, ownerID string) ([]*domain.Item, error)
	UpdateItemStatus(ctx context.Context, kind domain.Kind, id string, status domain.ItemStatus) error
	DeleteItem(ctx context.Context, kind domain.Kind, id string) error
}

type ProposalRepository interface {
	CreateProposal(ctx context.Context, p *domain.MatchProposal) (*domain.MatchProposal, error)
	GetProposal(ctx context.Context, id string) (*domain.MatchProposal, error)
	// ListProposals returns every proposal in creation order.
	ListProposals(ctx context.Context) ([]*domain.MatchProposal, error)
	ListPendingProposals(ctx context.Context) ([]*domain.MatchProposal, error)
	// ListProposalsByOwner returns proposals where ownerID owns the lost or the
	// found item.
	ListProposalsByOwner(ctx context.Context, ownerID string) ([]*domain.MatchProposal, error)
	UpdateProposalStatus(ctx context.Context, id string, status domain.MatchStatus) error
	// ApplyApproval marks the proposal approved and both of its items matched
	// as a single unit of work.
	ApplyApproval(ctx context.Context, proposalID string) error
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	// ListNotifications returns the user's notifications newest first.
	ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error)
	// MarkNotificationRead is idempotent. It returns domain.ErrNotFound when the
	// notification does not exist or belongs to another user.
	MarkNotificationRead(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

type UserRepository interface {
	// CreateUser fails with domain.ErrConflict when the e-mail is taken.
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListPendingUsers(ctx context.Context) ([]*domain.User, error)
	VerifyUser(ctx context.Context, id string) error
}

// Repository is the full storage contract. A process selects one backend at
// start-up and uses it for its whole lifetime.
type Repository interface {
	ItemRepository
	ProposalRepository
	NotificationRepository
	UserRepository
	Close() error
}

// Sentinel filter values sent by clients meaning "no filter".
const (
	AllCategories = "All Categories"
	AllLocations  = "All Locations"
)

// Normalize clears sentinel and blank filter values.
func Normalize(f domain.ItemFilter) domain.ItemFilter {
	f.Category = strings.TrimSpace(f.Category)
	f.Location = strings.TrimSpace(f.Location)
	f.Search = strings.TrimSpace(f.Search)
	if f.Category == AllCategories {
		f.Category = ""
	}
	if f.Location == AllLocations {
		f.Location = ""
	}
	return f
}

// MatchesFilter applies f to item in memory. Category and location match
// exactly; search is a case-insensitive substring of title or description.
func MatchesFilter(item *domain.Item, f domain.ItemFilter) bool {
	f = Normalize(f)
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.Location != "" && item.Location != f.Location {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(item.Title), q) &&
			!strings.Contains(strings.ToLower(item.Description), q) {
			return false
		}
	}
	return true
}
