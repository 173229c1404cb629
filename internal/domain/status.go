package domain

// itemTransitions lists the moves allowed out of each item status.
// pending -> matched is reserved for match approval; see ItemStatus.CanApprove.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemPending:  {ItemClosed},
	ItemMatched:  {ItemReturned, ItemClosed},
	ItemReturned: {ItemClosed},
	ItemClosed:   nil,
}

// CanTransition reports whether an owner-driven status change is legal.
func (s ItemStatus) CanTransition(to ItemStatus) bool {
	for _, next := range itemTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// CanApprove reports whether a match approval may set this item to matched.
// Re-approving leaves an already matched item matched.
func (s ItemStatus) CanApprove() bool {
	return s == ItemPending || s == ItemMatched
}

func (s ItemStatus) Valid() bool {
	_, ok := itemTransitions[s]
	return ok
}

// CanTransition reports whether a proposal may move to the given status.
// Approved and rejected are terminal. Repeating the current terminal status
// is allowed: approving twice re-applies the approval and re-notifies.
func (s MatchStatus) CanTransition(to MatchStatus) bool {
	switch s {
	case MatchPending:
		return to == MatchApproved || to == MatchRejected
	case MatchApproved, MatchRejected:
		return to == s
	}
	return false
}

func (s MatchStatus) Valid() bool {
	return s == MatchPending || s == MatchApproved || s == MatchRejected
}
