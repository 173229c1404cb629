// Package notify creates user notifications for matching and account events.
//
// Event methods return as soon as the work is scheduled. Delivery runs on its
// own goroutine, detached from the caller's cancellation, and failures are
// logged rather than returned: a notification problem never fails the action
// that triggered it.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/mailer"
)

// repository is the subset of store.Repository that Dispatcher requires.
type repository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

type Dispatcher struct {
	repo      repository
	mailer    mailer.Mailer
	publicURL string
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// New builds a Dispatcher. Every persisted notification is also sent through
// m; pass mailer.Nop{} to keep notifications in-app only. publicURL prefixes
// links in mailed notifications.
func New(repo repository, m mailer.Mailer, publicURL string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		mailer:    m,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Notify persists one notification for userID and mirrors it by e-mail when a
// mailer is configured. It is synchronous and returns the persistence error.
func (d *Dispatcher) Notify(ctx context.Context, userID string, msg Message) error {
	_, err := d.repo.CreateNotification(ctx, &domain.Notification{
		UserID: userID,
		Title:  msg.Title,
		Body:   msg.Body,
		Link:   msg.Link,
	})
	if err != nil {
		return &domain.NotificationDispatchError{UserID: userID, Title: msg.Title, Err: err}
	}
	d.mirror(ctx, userID, msg)
	return nil
}

// ProposalCreated tells both item owners and every administrator about a new
// proposal.
func (d *Dispatcher) ProposalCreated(ctx context.Context, p *domain.MatchProposal, lost, found *domain.Item) {
	d.dispatch(ctx, func(ctx context.Context) {
		d.deliver(ctx, lost.OwnerID, proposalForOwner(lost, p.Score))
		d.deliver(ctx, found.OwnerID, proposalForOwner(found, p.Score))

		admins, err := d.admins(ctx)
		if err != nil {
			d.logger.Error("failed to list admins for match notification", "match_id", p.ID, "error", err)
			return
		}
		msg := proposalForAdmin(p, lost, found)
		for _, admin := range admins {
			d.deliver(ctx, admin.ID, msg)
		}
	})
}

// MatchApproved tells both item owners their match was approved.
func (d *Dispatcher) MatchApproved(ctx context.Context, lost, found *domain.Item) {
	d.dispatch(ctx, func(ctx context.Context) {
		d.deliver(ctx, lost.OwnerID, approvedForOwner(lost))
		d.deliver(ctx, found.OwnerID, approvedForOwner(found))
	})
}

// AccountVerified tells a user an administrator verified their account.
func (d *Dispatcher) AccountVerified(ctx context.Context, user *domain.User) {
	d.dispatch(ctx, func(ctx context.Context) {
		d.deliver(ctx, user.ID, accountVerified())
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn(ctx)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, userID string, msg Message) {
	if err := d.Notify(ctx, userID, msg); err != nil {
		d.logger.Error("notification dispatch failed", "user_id", userID, "title", msg.Title, "error", err)
	}
}

func (d *Dispatcher) admins(ctx context.Context) ([]*domain.User, error) {
	users, err := d.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	var admins []*domain.User
	for _, u := range users {
		if u.IsAdmin() {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

func (d *Dispatcher) mirror(ctx context.Context, userID string, msg Message) {
	user, err := d.repo.GetUser(ctx, userID)
	if err != nil {
		d.logger.Warn("failed to look up notification recipient for mail", "user_id", userID, "error", err)
		return
	}
	body := msg.Body
	if msg.Link != "" {
		body += "\n\n" + d.publicURL + msg.Link
	}
	if err := d.mailer.Send(ctx, user.Email, msg.Title, body); err != nil {
		d.logger.Warn("failed to mail notification", "user_id", userID, "error", err)
	}
}
