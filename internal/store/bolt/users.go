package bolt

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/vbonduro/lostfound/internal/domain"
)

// userRecord persists the password hash, which domain.User hides from JSON.
type userRecord struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

func toRecord(u *domain.User) *userRecord {
	return &userRecord{User: *u, PasswordHash: u.PasswordHash}
}

func (r *userRecord) user() *domain.User {
	u := r.User
	u.PasswordHash = r.PasswordHash
	return &u
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	c := *u
	s.stamp(&c.ID, &c.CreatedAt)
	if c.Role == "" {
		c.Role = domain.RoleStudent
	}

	err := s.update(ctx, func(tx *bolt.Tx) error {
		emails := tx.Bucket(bucketEmails)
		if emails.Get([]byte(c.Email)) != nil {
			return fmt.Errorf("email %s: %w", c.Email, domain.ErrConflict)
		}
		if err := insert(tx.Bucket(bucketUsers), c.ID, toRecord(&c)); err != nil {
			return err
		}
		return emails.Put([]byte(c.Email), []byte(c.ID))
	})
	if err != nil {
		return nil, wrap("create user", err)
	}
	return &c, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var u *domain.User
	err := s.view(ctx, func(tx *bolt.Tx) error {
		rec, ok, err := get[userRecord](tx.Bucket(bucketUsers), id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("user", id)
		}
		u = rec.Value.user()
		return nil
	})
	if err != nil {
		return nil, wrap("get user", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u *domain.User
	err := s.view(ctx, func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketEmails).Get([]byte(email))
		if id == nil {
			return domain.NotFound("user", email)
		}
		rec, ok, err := get[userRecord](tx.Bucket(bucketUsers), string(id))
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("user", email)
		}
		u = rec.Value.user()
		return nil
	})
	if err != nil {
		return nil, wrap("get user", err)
	}
	return u, nil
}

func (s *Store) listUsers(ctx context.Context, keep func(*domain.User) bool) ([]*domain.User, error) {
	var recs []*userRecord
	err := s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		recs, err = scan(tx.Bucket(bucketUsers), func(r *userRecord) bool { return keep(&r.User) })
		return err
	})
	if err != nil {
		return nil, wrap("list users", err)
	}
	users := make([]*domain.User, 0, len(recs))
	for _, r := range recs {
		users = append(users, r.user())
	}
	return users, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsers(ctx, func(*domain.User) bool { return true })
}

func (s *Store) ListPendingUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsers(ctx, func(u *domain.User) bool { return !u.Verified })
}

func (s *Store) VerifyUser(ctx context.Context, id string) error {
	err := s.update(ctx, func(tx *bolt.Tx) error {
		return update(tx.Bucket(bucketUsers), id, domain.NotFound("user", id), func(r *userRecord) {
			r.Verified = true
		})
	})
	return wrap("verify user", err)
}
