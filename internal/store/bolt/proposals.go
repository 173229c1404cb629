package bolt

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/vbonduro/lostfound/internal/domain"
)

func (s *Store) CreateProposal(ctx context.Context, p *domain.MatchProposal) (*domain.MatchProposal, error) {
	c := *p
	s.stamp(&c.ID, &c.CreatedAt)
	if c.Status == "" {
		c.Status = domain.MatchPending
	}

	err := s.update(ctx, func(tx *bolt.Tx) error {
		return insert(tx.Bucket(bucketProposals), c.ID, &c)
	})
	if err != nil {
		return nil, wrap("create proposal", err)
	}
	return &c, nil
}

func (s *Store) GetProposal(ctx context.Context, id string) (*domain.MatchProposal, error) {
	var p *domain.MatchProposal
	err := s.view(ctx, func(tx *bolt.Tx) error {
		rec, ok, err := get[domain.MatchProposal](tx.Bucket(bucketProposals), id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("match", id)
		}
		p = &rec.Value
		return nil
	})
	if err != nil {
		return nil, wrap("get proposal", err)
	}
	return p, nil
}

func (s *Store) listProposals(ctx context.Context, keep func(tx *bolt.Tx, p *domain.MatchProposal) bool) ([]*domain.MatchProposal, error) {
	var proposals []*domain.MatchProposal
	err := s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		proposals, err = scan(tx.Bucket(bucketProposals), func(p *domain.MatchProposal) bool {
			return keep(tx, p)
		})
		return err
	})
	if err != nil {
		return nil, wrap("list proposals", err)
	}
	return proposals, nil
}

func (s *Store) ListProposals(ctx context.Context) ([]*domain.MatchProposal, error) {
	return s.listProposals(ctx, func(*bolt.Tx, *domain.MatchProposal) bool { return true })
}

func (s *Store) ListPendingProposals(ctx context.Context) ([]*domain.MatchProposal, error) {
	return s.listProposals(ctx, func(_ *bolt.Tx, p *domain.MatchProposal) bool {
		return p.Status == domain.MatchPending
	})
}

func (s *Store) ListProposalsByOwner(ctx context.Context, ownerID string) ([]*domain.MatchProposal, error) {
	return s.listProposals(ctx, func(tx *bolt.Tx, p *domain.MatchProposal) bool {
		items := tx.Bucket(bucketItems)
		for _, id := range []string{p.LostID, p.FoundID} {
			rec, ok, err := get[domain.Item](items, id)
			if err == nil && ok && rec.Value.OwnerID == ownerID {
				return true
			}
		}
		return false
	})
}

func (s *Store) UpdateProposalStatus(ctx context.Context, id string, status domain.MatchStatus) error {
	err := s.update(ctx, func(tx *bolt.Tx) error {
		return update(tx.Bucket(bucketProposals), id, domain.NotFound("match", id), func(p *domain.MatchProposal) {
			p.Status = status
		})
	})
	return wrap("update proposal status", err)
}

// ApplyApproval runs in one bbolt write transaction, so a failure leaves
// the proposal and both items untouched.
func (s *Store) ApplyApproval(ctx context.Context, proposalID string) error {
	err := s.update(ctx, func(tx *bolt.Tx) error {
		proposals := tx.Bucket(bucketProposals)
		rec, ok, err := get[domain.MatchProposal](proposals, proposalID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("match", proposalID)
		}
		rec.Value.Status = domain.MatchApproved
		if err := put(proposals, proposalID, rec.Seq, &rec.Value); err != nil {
			return err
		}

		items := tx.Bucket(bucketItems)
		for _, itemID := range []string{rec.Value.LostID, rec.Value.FoundID} {
			missing := &domain.ReferentialIntegrityError{ProposalID: proposalID, ItemID: itemID}
			if err := update(items, itemID, missing, func(i *domain.Item) {
				i.Status = domain.ItemMatched
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return wrap("apply approval", err)
}
