package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/lostfound/internal/domain"
)

const userColumns = `id, name, email, university_id, password_hash, role, verified, created_at`

func scanUser(sc scanner) (*domain.User, error) {
	u := &domain.User{}
	err := sc.Scan(&u.ID, &u.Name, &u.Email, &u.UniversityID, &u.PasswordHash, &u.Role, &u.Verified, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *domain.User) (_ *domain.User, err error) {
	c := *u
	s.stamp(&c.ID, &c.CreatedAt)
	if c.Role == "" {
		c.Role = domain.RoleStudent
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin user insert: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w (also failed to rollback: %v)", err, rerr)
			}
		}
	}()

	var taken int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, c.Email).Scan(&taken); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken > 0 {
		return nil, fmt.Errorf("failed to create user: email %s: %w", c.Email, domain.ErrConflict)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Email, c.UniversityID, c.PasswordHash, c.Role, c.Verified, c.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user: %w", err)
	}
	return &c, nil
}

func (s *Store) getUser(ctx context.Context, key, where string, arg any) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE `+where+` = ?
	`, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, id, "id", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, email, "email", email)
}

func (s *Store) listUsers(ctx context.Context, where string) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE `+where+` ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return users, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsers(ctx, "1 = 1")
}

func (s *Store) ListPendingUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsers(ctx, "verified = 0")
}

func (s *Store) VerifyUser(ctx context.Context, id string) error {
	err := execOne(ctx, s.db, domain.NotFound("user", id), `
		UPDATE users SET verified = 1 WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	return nil
}
