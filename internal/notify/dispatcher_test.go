package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/mailer"
	"github.com/vbonduro/lostfound/internal/store/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingRepo rejects notifications for the users in failFor.
type failingRepo struct {
	*memory.Store
	failFor map[string]bool
}

func (r *failingRepo) CreateNotification(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if r.failFor[n.UserID] {
		return nil, errors.New("disk full")
	}
	return r.Store.CreateNotification(ctx, n)
}

type sentMail struct {
	to, subject, body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fixture struct {
	repo  *memory.Store
	lost  *domain.Item
	found *domain.Item
	match *domain.MatchProposal
	admin *domain.User
}

func newFixture(t *testing.T, admins int) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.New()

	f := &fixture{repo: repo}
	for i := 0; i < admins; i++ {
		a, err := repo.CreateUser(ctx, &domain.User{
			Name: "Admin", Email: string(rune('a'+i)) + "-admin@university.test", Role: domain.RoleAdmin, Verified: true,
		})
		require.NoError(t, err)
		f.admin = a
	}
	ali, err := repo.CreateUser(ctx, &domain.User{Name: "Ali Smith", Email: "ali@university.test", Role: domain.RoleStudent})
	require.NoError(t, err)
	sara, err := repo.CreateUser(ctx, &domain.User{Name: "Sara Martinez", Email: "sara@university.test", Role: domain.RoleStudent})
	require.NoError(t, err)

	f.lost = &domain.Item{ID: "lost-1", Kind: domain.KindLost, OwnerID: ali.ID, Title: "iPhone 13 Pro"}
	f.found = &domain.Item{ID: "found-1", Kind: domain.KindFound, OwnerID: sara.ID, Title: "Black iPhone"}
	f.match = &domain.MatchProposal{ID: "match-1", LostID: f.lost.ID, FoundID: f.found.ID, Score: 87}
	return f
}

func (f *fixture) notifications(t *testing.T, userID string) []*domain.Notification {
	t.Helper()
	list, err := f.repo.ListNotifications(context.Background(), userID)
	require.NoError(t, err)
	return list
}

func TestProposalCreatedNotifiesOwnersAndAdmins(t *testing.T) {
	f := newFixture(t, 2)
	d := New(f.repo, mailer.Nop{}, "", discardLogger())

	d.ProposalCreated(context.Background(), f.match, f.lost, f.found)
	d.Wait()

	lostNotes := f.notifications(t, f.lost.OwnerID)
	require.Len(t, lostNotes, 1)
	assert.Equal(t, "Potential Match Found!", lostNotes[0].Title)
	assert.Equal(t, `Your lost item "iPhone 13 Pro" might match a found item. Score: 87%`, lostNotes[0].Body)
	assert.Equal(t, "/dashboard?tab=matches", lostNotes[0].Link)
	assert.False(t, lostNotes[0].Read)

	foundNotes := f.notifications(t, f.found.OwnerID)
	require.Len(t, foundNotes, 1)
	assert.Equal(t, `Your found item "Black iPhone" might match a lost item. Score: 87%`, foundNotes[0].Body)

	adminNotes := f.notifications(t, f.admin.ID)
	require.Len(t, adminNotes, 1)
	assert.Equal(t, "New Match Request", adminNotes[0].Title)
	assert.Equal(t, `Match between "iPhone 13 Pro" and "Black iPhone" requires review (Score: 87%)`, adminNotes[0].Body)
	assert.Equal(t, "/admin/matches/match-1", adminNotes[0].Link)

	users, err := f.repo.ListUsers(context.Background())
	require.NoError(t, err)
	total := 0
	for _, u := range users {
		total += len(f.notifications(t, u.ID))
	}
	assert.Equal(t, 4, total, "two owners plus two admins")
}

func TestProposalCreatedWithoutAdmins(t *testing.T) {
	f := newFixture(t, 0)
	d := New(f.repo, mailer.Nop{}, "", discardLogger())

	d.ProposalCreated(context.Background(), f.match, f.lost, f.found)
	d.Wait()

	assert.Len(t, f.notifications(t, f.lost.OwnerID), 1)
	assert.Len(t, f.notifications(t, f.found.OwnerID), 1)
}

func TestMatchApprovedNotifiesBothOwners(t *testing.T) {
	f := newFixture(t, 1)
	d := New(f.repo, mailer.Nop{}, "", discardLogger())

	d.MatchApproved(context.Background(), f.lost, f.found)
	d.Wait()

	lostNotes := f.notifications(t, f.lost.OwnerID)
	require.Len(t, lostNotes, 1)
	assert.Equal(t, "Match Approved!", lostNotes[0].Title)
	assert.Equal(t, `Your match for "iPhone 13 Pro" has been approved. You can now coordinate with the finder.`, lostNotes[0].Body)

	foundNotes := f.notifications(t, f.found.OwnerID)
	require.Len(t, foundNotes, 1)
	assert.Equal(t, `Your match for "Black iPhone" has been approved. You can now coordinate with the owner.`, foundNotes[0].Body)

	assert.Empty(t, f.notifications(t, f.admin.ID))
}

func TestAccountVerified(t *testing.T) {
	f := newFixture(t, 0)
	d := New(f.repo, mailer.Nop{}, "", discardLogger())
	user := &domain.User{ID: f.lost.OwnerID}

	d.AccountVerified(context.Background(), user)
	d.Wait()

	notes := f.notifications(t, user.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, "Account Verified!", notes[0].Title)
	assert.Equal(t, "/dashboard", notes[0].Link)
}

func TestDispatchFailureIsLoggedAndOthersStillDelivered(t *testing.T) {
	f := newFixture(t, 1)
	repo := &failingRepo{Store: f.repo, failFor: map[string]bool{f.lost.OwnerID: true}}
	var logs bytes.Buffer
	d := New(repo, mailer.Nop{}, "", slog.New(slog.NewTextHandler(&logs, nil)))

	d.ProposalCreated(context.Background(), f.match, f.lost, f.found)
	d.Wait()

	assert.Empty(t, f.notifications(t, f.lost.OwnerID))
	assert.Len(t, f.notifications(t, f.found.OwnerID), 1)
	assert.Len(t, f.notifications(t, f.admin.ID), 1)
	assert.Contains(t, logs.String(), "notification dispatch failed")
	assert.Contains(t, logs.String(), "disk full")
}

func TestNotifyReturnsDispatchError(t *testing.T) {
	f := newFixture(t, 0)
	repo := &failingRepo{Store: f.repo, failFor: map[string]bool{"u1": true}}
	d := New(repo, mailer.Nop{}, "", discardLogger())

	err := d.Notify(context.Background(), "u1", accountVerified())
	var derr *domain.NotificationDispatchError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "u1", derr.UserID)
}

func TestDispatchSurvivesCallerCancellation(t *testing.T) {
	f := newFixture(t, 0)
	d := New(f.repo, mailer.Nop{}, "", discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	d.MatchApproved(ctx, f.lost, f.found)
	cancel()
	d.Wait()

	assert.Len(t, f.notifications(t, f.lost.OwnerID), 1)
	assert.Len(t, f.notifications(t, f.found.OwnerID), 1)
}

func TestEmailMirror(t *testing.T) {
	f := newFixture(t, 0)
	m := &recordingMailer{}
	d := New(f.repo, m, "https://lostfound.university.test/", discardLogger())

	d.MatchApproved(context.Background(), f.lost, f.found)
	d.Wait()

	require.Len(t, m.sent, 2)
	byRecipient := map[string]sentMail{}
	for _, s := range m.sent {
		byRecipient[s.to] = s
	}
	ali := byRecipient["ali@university.test"]
	assert.Equal(t, "Match Approved!", ali.subject)
	assert.Contains(t, ali.body, "coordinate with the finder.")
	assert.Contains(t, ali.body, "https://lostfound.university.test/dashboard?tab=matches")
}

func TestEmailFailureDoesNotAffectNotification(t *testing.T) {
	f := newFixture(t, 0)
	m := &recordingMailer{err: errors.New("smtp down")}
	d := New(f.repo, m, "", discardLogger())

	require.NoError(t, d.Notify(context.Background(), f.lost.OwnerID, accountVerified()))
	assert.Len(t, f.notifications(t, f.lost.OwnerID), 1)
}

func TestWaitWithNothingScheduled(t *testing.T) {
	d := New(memory.New(), mailer.Nop{}, "", discardLogger())
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with no deliveries scheduled")
	}
}

func TestNopMailerKeepsNotificationsInApp(t *testing.T) {
	f := newFixture(t, 0)
	var logs bytes.Buffer
	d := New(f.repo, mailer.Nop{}, "", slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))

	d.MatchApproved(context.Background(), f.lost, f.found)
	d.Wait()

	assert.Len(t, f.notifications(t, f.lost.OwnerID), 1)
	assert.Len(t, f.notifications(t, f.found.OwnerID), 1)
	assert.Empty(t, logs.String())
}
