package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKindOpposite(t *testing.T) {
	assert.Equal(t, KindFound, KindLost.Opposite())
	assert.Equal(t, KindLost, KindFound.Opposite())
	assert.False(t, Kind("misplaced").Valid())
}

func TestScoreBreakdownTotal(t *testing.T) {
	b := ScoreBreakdown{Category: 40, Location: 20, Date: 14, Keywords: 7, Images: 5}
	assert.Equal(t, 86, b.Total())
	assert.Zero(t, ScoreBreakdown{}.Total())
}

func TestItemStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ItemStatus
		want     bool
	}{
		{ItemPending, ItemClosed, true},
		{ItemPending, ItemReturned, false},
		{ItemPending, ItemMatched, false},
		{ItemMatched, ItemReturned, true},
		{ItemMatched, ItemClosed, true},
		{ItemMatched, ItemPending, false},
		{ItemReturned, ItemClosed, true},
		{ItemReturned, ItemMatched, false},
		{ItemClosed, ItemPending, false},
		{ItemClosed, ItemReturned, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestItemStatusCanApprove(t *testing.T) {
	assert.True(t, ItemPending.CanApprove())
	assert.True(t, ItemMatched.CanApprove())
	assert.False(t, ItemReturned.CanApprove())
	assert.False(t, ItemClosed.CanApprove())
}

func TestMatchStatusTransitions(t *testing.T) {
	assert.True(t, MatchPending.CanTransition(MatchApproved))
	assert.True(t, MatchPending.CanTransition(MatchRejected))
	assert.False(t, MatchPending.CanTransition(MatchPending))

	// Re-applying the same terminal status is allowed.
	assert.True(t, MatchApproved.CanTransition(MatchApproved))
	assert.True(t, MatchRejected.CanTransition(MatchRejected))

	assert.False(t, MatchApproved.CanTransition(MatchRejected))
	assert.False(t, MatchRejected.CanTransition(MatchApproved))
	assert.False(t, MatchApproved.CanTransition(MatchPending))
}

func TestNewItemValidate(t *testing.T) {
	valid := NewItem{
		Title:       "iPhone 13 Pro",
		Category:    "Electronics",
		Description: "Black iPhone with blue case",
		Location:    "Main Library",
		Date:        time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC),
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(*NewItem)
		field string
	}{
		{"missing title", func(n *NewItem) { n.Title = "" }, "title"},
		{"missing category", func(n *NewItem) { n.Category = "" }, "category"},
		{"missing description", func(n *NewItem) { n.Description = "" }, "description"},
		{"missing location", func(n *NewItem) { n.Location = "" }, "location"},
		{"missing date", func(n *NewItem) { n.Date = time.Time{} }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := valid
			tt.mut(&n)
			err := n.Validate()
			assert.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			if assert.True(t, errors.As(err, &verr)) {
				assert.Equal(t, tt.field, verr.Field)
			}
		})
	}
}

func TestNewItemNormalize(t *testing.T) {
	n := NewItem{Title: "  Keys ", Category: " Keys & Cards", Location: "Cafeteria  "}.Normalize()
	assert.Equal(t, "Keys", n.Title)
	assert.Equal(t, "Keys & Cards", n.Category)
	assert.Equal(t, "Cafeteria", n.Location)
}

func TestNewUserValidate(t *testing.T) {
	u := NewUser{Name: "Ali Smith", Email: " Ali@University.Test ", UniversityID: "U2025-001", Password: "Student@123"}.Normalize()
	assert.Equal(t, "ali@university.test", u.Email)
	assert.NoError(t, u.Validate())

	short := u
	short.Password = "short"
	assert.ErrorIs(t, short.Validate(), ErrValidation)

	noEmail := u
	noEmail.Email = "not-an-email"
	assert.ErrorIs(t, noEmail.Validate(), ErrValidation)
}

func TestErrorTaxonomy(t *testing.T) {
	nf := fmt.Errorf("failed to get item: %w", NotFound("item", "abc"))
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.EqualError(t, nf, "failed to get item: item abc not found")

	tr := &TransitionError{Entity: "match", From: "approved", To: "rejected"}
	assert.ErrorIs(t, tr, ErrInvalidTransition)

	ri := &ReferentialIntegrityError{ProposalID: "m1", ItemID: "i1"}
	assert.ErrorIs(t, ri, ErrReferentialIntegrity)

	cause := errors.New("disk full")
	re := &RepositoryError{Op: "create proposal", Err: cause}
	assert.ErrorIs(t, re, cause)

	de := &NotificationDispatchError{UserID: "u1", Title: "Match Approved!", Err: cause}
	assert.ErrorIs(t, de, cause)
}
