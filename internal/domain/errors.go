package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrForbidden            = errors.New("forbidden")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrConflict             = errors.New("conflict")
)

// ValidationError reports a malformed or missing field supplied by a caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError names the missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ReferentialIntegrityError marks a proposal whose lost or found item is gone.
type ReferentialIntegrityError struct {
	ProposalID string
	ItemID     string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("match %s references missing item %s", e.ProposalID, e.ItemID)
}

func (e *ReferentialIntegrityError) Is(target error) bool {
	return target == ErrReferentialIntegrity
}

// TransitionError reports a status change the state machine does not allow.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// RepositoryError wraps a storage failure with the operation that hit it.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// NotificationDispatchError is logged by the dispatcher and never returned to
// the caller that triggered the notification.
type NotificationDispatchError struct {
	UserID string
	Title  string
	Err    error
}

func (e *NotificationDispatchError) Error() string {
	return fmt.Sprintf("notify user %s (%q): %v", e.UserID, e.Title, e.Err)
}

func (e *NotificationDispatchError) Unwrap() error {
	return e.Err
}
