package notify

import (
	"fmt"

	"github.com/vbonduro/lostfound/internal/domain"
)

// Message is the user-facing content of one notification.
type Message struct {
	Title string
	Body  string
	Link  string
}

const matchesLink = "/dashboard?tab=matches"

func proposalForOwner(item *domain.Item, score int) Message {
	return Message{
		Title: "Potential Match Found!",
		Body: fmt.Sprintf("Your %s item \"%s\" might match a %s item. Score: %d%%",
			item.Kind, item.Title, item.Kind.Opposite(), score),
		Link: matchesLink,
	}
}

func proposalForAdmin(p *domain.MatchProposal, lost, found *domain.Item) Message {
	return Message{
		Title: "New Match Request",
		Body: fmt.Sprintf("Match between \"%s\" and \"%s\" requires review (Score: %d%%)",
			lost.Title, found.Title, p.Score),
		Link: "/admin/matches/" + p.ID,
	}
}

func approvedForOwner(item *domain.Item) Message {
	counterpart := "finder"
	if item.Kind == domain.KindFound {
		counterpart = "owner"
	}
	return Message{
		Title: "Match Approved!",
		Body: fmt.Sprintf("Your match for \"%s\" has been approved. You can now coordinate with the %s.",
			item.Title, counterpart),
		Link: matchesLink,
	}
}

func accountVerified() Message {
	return Message{
		Title: "Account Verified!",
		Body:  "Your account has been verified by an administrator. You can now access all features.",
		Link:  "/dashboard",
	}
}
