// Package service holds the lost-and-found use cases: reporting items,
// proposing and reviewing matches, the notification feed and user accounts.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vbonduro/lostfound/internal/domain"
)

// notifier is the subset of notify.Dispatcher the services require. Its
// methods schedule delivery and never report failure to the caller.
type notifier interface {
	ProposalCreated(ctx context.Context, p *domain.MatchProposal, lost, found *domain.Item)
	MatchApproved(ctx context.Context, lost, found *domain.Item)
	AccountVerified(ctx context.Context, user *domain.User)
}

// repoErr keeps domain errors recognisable and marks anything else as a
// storage failure.
func repoErr(op string, err error) error {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrValidation,
		domain.ErrConflict,
		domain.ErrReferentialIntegrity,
		domain.ErrInvalidTransition,
	} {
		if errors.Is(err, target) {
			return fmt.Errorf("failed to %s: %w", op, err)
		}
	}
	return &domain.RepositoryError{Op: op, Err: err}
}
