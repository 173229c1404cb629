package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/lostfound/internal/domain"
)

const proposalColumns = `id, lost_id, found_id, score,
	category_points, location_points, date_points, keyword_points, image_points,
	status, created_at`

func scanProposal(sc scanner) (*domain.MatchProposal, error) {
	p := &domain.MatchProposal{}
	b := &p.Breakdown
	err := sc.Scan(&p.ID, &p.LostID, &p.FoundID, &p.Score,
		&b.Category, &b.Location, &b.Date, &b.Keywords, &b.Images,
		&p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

func (s *Store) CreateProposal(ctx context.Context, p *domain.MatchProposal) (*domain.MatchProposal, error) {
	c := *p
	s.stamp(&c.ID, &c.CreatedAt)
	if c.Status == "" {
		c.Status = domain.MatchPending
	}
	b := c.Breakdown

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO match_proposals (`+proposalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.LostID, c.FoundID, c.Score,
		b.Category, b.Location, b.Date, b.Keywords, b.Images,
		c.Status, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	return s.GetProposal(ctx, c.ID)
}

func (s *Store) GetProposal(ctx context.Context, id string) (*domain.MatchProposal, error) {
	p, err := scanProposal(s.db.QueryRowContext(ctx, `
		SELECT `+proposalColumns+` FROM match_proposals WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound("match", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return p, nil
}

func (s *Store) listProposals(ctx context.Context, where string, args ...any) ([]*domain.MatchProposal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+proposalColumns+` FROM match_proposals p
		WHERE `+where+`
		ORDER BY created_at ASC, rowid ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	proposals, err := collect(rows, scanProposal)
	if err != nil {
		return nil, fmt.Errorf("failed to scan proposal: %w", err)
	}
	return proposals, nil
}

func (s *Store) ListProposals(ctx context.Context) ([]*domain.MatchProposal, error) {
	return s.listProposals(ctx, "1 = 1")
}

func (s *Store) ListPendingProposals(ctx context.Context) ([]*domain.MatchProposal, error) {
	return s.listProposals(ctx, "status = ?", domain.MatchPending)
}

func (s *Store) ListProposalsByOwner(ctx context.Context, ownerID string) ([]*domain.MatchProposal, error) {
	return s.listProposals(ctx, `EXISTS (
		SELECT 1 FROM items i
		WHERE i.owner_id = ? AND (i.id = p.lost_id OR i.id = p.found_id)
	)`, ownerID)
}

func (s *Store) UpdateProposalStatus(ctx context.Context, id string, status domain.MatchStatus) error {
	err := execOne(ctx, s.db, domain.NotFound("match", id), `
		UPDATE match_proposals SET status = ? WHERE id = ?
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update proposal status: %w", err)
	}
	return nil
}

func (s *Store) ApplyApproval(ctx context.Context, proposalID string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin approval: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				err = fmt.Errorf("%w (also failed to rollback: %v)", err, rerr)
			}
		}
	}()

	var lostID, foundID string
	err = tx.QueryRowContext(ctx, `
		SELECT lost_id, found_id FROM match_proposals WHERE id = ?
	`, proposalID).Scan(&lostID, &foundID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("match", proposalID)
	}
	if err != nil {
		return fmt.Errorf("failed to get proposal: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE match_proposals SET status = ? WHERE id = ?
	`, domain.MatchApproved, proposalID); err != nil {
		return fmt.Errorf("failed to approve proposal: %w", err)
	}

	for _, itemID := range []string{lostID, foundID} {
		missing := &domain.ReferentialIntegrityError{ProposalID: proposalID, ItemID: itemID}
		if err = execOne(ctx, tx, missing, `
			UPDATE items SET status = ? WHERE id = ?
		`, domain.ItemMatched, itemID); err != nil {
			return fmt.Errorf("failed to mark item matched: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit approval: %w", err)
	}
	return nil
}
