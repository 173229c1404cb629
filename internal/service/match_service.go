package service

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/matching"
)

// matchRepository is the subset of store.Repository that MatchService requires.
type matchRepository interface {
	GetItem(ctx context.Context, kind domain.Kind, id string) (*domain.Item, error)
	ListItems(ctx context.Context, kind domain.Kind, filter domain.ItemFilter) ([]*domain.Item, error)
	CreateProposal(ctx context.Context, p *domain.MatchProposal) (*domain.MatchProposal, error)
	GetProposal(ctx context.Context, id string) (*domain.MatchProposal, error)
	ListProposals(ctx context.Context) ([]*domain.MatchProposal, error)
	ListPendingProposals(ctx context.Context) ([]*domain.MatchProposal, error)
	ListProposalsByOwner(ctx context.Context, ownerID string) ([]*domain.MatchProposal, error)
	UpdateProposalStatus(ctx context.Context, id string, status domain.MatchStatus) error
	ApplyApproval(ctx context.Context, proposalID string) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

type MatchService struct {
	repo     matchRepository
	notifier notifier
	logger   *slog.Logger
}

func NewMatchService(repo matchRepository, notifier notifier, logger *slog.Logger) *MatchService {
	return &MatchService{repo: repo, notifier: notifier, logger: logger}
}

type candidate struct {
	lost, found *domain.Item
	breakdown   domain.ScoreBreakdown
}

// MatchItem scores item against every item of the opposite kind and creates a
// pending proposal for each pair at or above the threshold. Candidates owned
// by the same user or no longer pending are skipped.
//
// The first storage failure stops the scan. Proposals created before it stay
// and are returned together with the error.
func (s *MatchService) MatchItem(ctx context.Context, item *domain.Item) ([]*domain.MatchProposal, error) {
	others, err := s.repo.ListItems(ctx, item.Kind.Opposite(), domain.ItemFilter{})
	if err != nil {
		return nil, repoErr("list candidate items", err)
	}

	var pairs []candidate
	for _, other := range others {
		if other.OwnerID == item.OwnerID || other.Status != domain.ItemPending {
			continue
		}
		lost, found := item, other
		if item.Kind == domain.KindFound {
			lost, found = other, item
		}
		b := matching.Score(lost, found)
		if !matching.Qualifies(b) {
			continue
		}
		pairs = append(pairs, candidate{lost: lost, found: found, breakdown: b})
	}

	created := make([]*domain.MatchProposal, 0, len(pairs))
	for _, c := range pairs {
		p, err := s.repo.CreateProposal(ctx, &domain.MatchProposal{
			LostID:    c.lost.ID,
			FoundID:   c.found.ID,
			Score:     c.breakdown.Total(),
			Breakdown: c.breakdown,
			Status:    domain.MatchPending,
		})
		if err != nil {
			return created, repoErr("create match proposal", err)
		}
		s.logger.Info("match proposed", "match_id", p.ID, "lost_id", p.LostID, "found_id", p.FoundID, "score", p.Score)
		s.notifier.ProposalCreated(ctx, p, c.lost, c.found)
		created = append(created, p)
	}

	s.logger.Debug("match scan complete", "item_id", item.ID, "kind", item.Kind, "candidates", len(others), "proposed", len(created))
	return created, nil
}

// GenerateResult summarises a batch reconciliation.
type GenerateResult struct {
	Processed int `json:"processed"`
	Proposed  int `json:"proposed"`
}

// GenerateAll re-runs MatchItem for every pending lost item. Pairs that were
// proposed before are proposed again.
func (s *MatchService) GenerateAll(ctx context.Context) (GenerateResult, error) {
	var res GenerateResult
	lost, err := s.repo.ListItems(ctx, domain.KindLost, domain.ItemFilter{})
	if err != nil {
		return res, repoErr("list lost items", err)
	}
	for _, item := range lost {
		if item.Status != domain.ItemPending {
			continue
		}
		proposals, err := s.MatchItem(ctx, item)
		res.Proposed += len(proposals)
		if err != nil {
			return res, err
		}
		res.Processed++
	}
	s.logger.Info("match generation complete", "processed", res.Processed, "proposed", res.Proposed)
	return res, nil
}

func (s *MatchService) Approve(ctx context.Context, proposalID string) (*domain.MatchProposal, error) {
	return s.Review(ctx, proposalID, domain.MatchApproved)
}

func (s *MatchService) Reject(ctx context.Context, proposalID string) (*domain.MatchProposal, error) {
	return s.Review(ctx, proposalID, domain.MatchRejected)
}

// Review moves a proposal to approved or rejected. Approval also marks both
// items matched and notifies their owners; approving an approved proposal
// applies and notifies again. Rejection leaves the items untouched.
func (s *MatchService) Review(ctx context.Context, proposalID string, status domain.MatchStatus) (*domain.MatchProposal, error) {
	if status != domain.MatchApproved && status != domain.MatchRejected {
		return nil, &domain.ValidationError{Field: "status", Message: "must be approved or rejected"}
	}

	p, err := s.repo.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, repoErr("get match proposal", err)
	}
	if !p.Status.CanTransition(status) {
		return nil, &domain.TransitionError{Entity: "match", From: string(p.Status), To: string(status)}
	}

	if status == domain.MatchRejected {
		if err := s.repo.UpdateProposalStatus(ctx, p.ID, status); err != nil {
			return nil, repoErr("reject match proposal", err)
		}
		p.Status = status
		s.logger.Info("match rejected", "match_id", p.ID)
		return p, nil
	}

	lost, found, err := s.items(ctx, p)
	if err != nil {
		return nil, err
	}
	for _, item := range []*domain.Item{lost, found} {
		if !item.Status.CanApprove() {
			return nil, &domain.TransitionError{Entity: string(item.Kind) + " item " + item.ID, From: string(item.Status), To: string(domain.ItemMatched)}
		}
	}
	if err := s.repo.ApplyApproval(ctx, p.ID); err != nil {
		return nil, repoErr("approve match proposal", err)
	}
	p.Status = status
	lost.Status = domain.ItemMatched
	found.Status = domain.ItemMatched
	s.logger.Info("match approved", "match_id", p.ID, "lost_id", lost.ID, "found_id", found.ID)

	s.notifier.MatchApproved(ctx, lost, found)
	return p, nil
}

// items fetches both sides of p, reporting a missing side as a referential
// integrity error.
func (s *MatchService) items(ctx context.Context, p *domain.MatchProposal) (*domain.Item, *domain.Item, error) {
	lost, err := s.repo.GetItem(ctx, domain.KindLost, p.LostID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, &domain.ReferentialIntegrityError{ProposalID: p.ID, ItemID: p.LostID}
	}
	if err != nil {
		return nil, nil, repoErr("get lost item", err)
	}
	found, err := s.repo.GetItem(ctx, domain.KindFound, p.FoundID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil, &domain.ReferentialIntegrityError{ProposalID: p.ID, ItemID: p.FoundID}
	}
	if err != nil {
		return nil, nil, repoErr("get found item", err)
	}
	return lost, found, nil
}

// OwnerSummary is the public part of an item owner's account.
type OwnerSummary struct {
	Name         string `json:"name"`
	UniversityID string `json:"university_id"`
}

// MatchDetail is a proposal together with both items and their owners.
type MatchDetail struct {
	*domain.MatchProposal
	Lost       *domain.Item  `json:"lost_item"`
	Found      *domain.Item  `json:"found_item"`
	LostOwner  *OwnerSummary `json:"lost_owner,omitempty"`
	FoundOwner *OwnerSummary `json:"found_owner,omitempty"`
}

// ListPending returns pending proposals for review, oldest first.
func (s *MatchService) ListPending(ctx context.Context) ([]*MatchDetail, error) {
	proposals, err := s.repo.ListPendingProposals(ctx)
	if err != nil {
		return nil, repoErr("list pending match proposals", err)
	}
	return s.enrich(ctx, proposals)
}

// ListForUser returns every proposal involving an item owned by userID.
func (s *MatchService) ListForUser(ctx context.Context, userID string) ([]*MatchDetail, error) {
	proposals, err := s.repo.ListProposalsByOwner(ctx, userID)
	if err != nil {
		return nil, repoErr("list match proposals", err)
	}
	return s.enrich(ctx, proposals)
}

// enrich attaches items and owners. Proposals whose items are gone are logged
// and left out.
func (s *MatchService) enrich(ctx context.Context, proposals []*domain.MatchProposal) ([]*MatchDetail, error) {
	details := make([]*MatchDetail, 0, len(proposals))
	for _, p := range proposals {
		lost, found, err := s.items(ctx, p)
		if errors.Is(err, domain.ErrReferentialIntegrity) {
			s.logger.Error("skipping inconsistent match proposal", "match_id", p.ID, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		details = append(details, &MatchDetail{
			MatchProposal: p,
			Lost:          lost,
			Found:         found,
			LostOwner:     s.owner(ctx, lost.OwnerID),
			FoundOwner:    s.owner(ctx, found.OwnerID),
		})
	}
	return details, nil
}

func (s *MatchService) owner(ctx context.Context, userID string) *OwnerSummary {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load item owner", "user_id", userID, "error", err)
		return nil
	}
	return &OwnerSummary{Name: u.Name, UniversityID: u.UniversityID}
}

// Stats is the administrator dashboard summary.
type Stats struct {
	TotalLost        int `json:"totalLost"`
	TotalFound       int `json:"totalFound"`
	PendingProposals int `json:"pendingMatches"`
	SuccessRate      int `json:"successRate"`
}

// Stats counts items and proposals. SuccessRate is the share of all proposals
// that were approved, as a whole percentage.
func (s *MatchService) Stats(ctx context.Context) (*Stats, error) {
	lost, err := s.repo.ListItems(ctx, domain.KindLost, domain.ItemFilter{})
	if err != nil {
		return nil, repoErr("list lost items", err)
	}
	found, err := s.repo.ListItems(ctx, domain.KindFound, domain.ItemFilter{})
	if err != nil {
		return nil, repoErr("list found items", err)
	}
	proposals, err := s.repo.ListProposals(ctx)
	if err != nil {
		return nil, repoErr("list match proposals", err)
	}

	st := &Stats{TotalLost: len(lost), TotalFound: len(found)}
	approved := 0
	for _, p := range proposals {
		switch p.Status {
		case domain.MatchPending:
			st.PendingProposals++
		case domain.MatchApproved:
			approved++
		}
	}
	if len(proposals) > 0 {
		st.SuccessRate = int(math.Round(float64(approved) / float64(len(proposals)) * 100))
	}
	return st, nil
}
