package domain

import "time"

// Kind distinguishes the two sides of the lost-and-found board.
type Kind string

const (
	KindLost  Kind = "lost"
	KindFound Kind = "found"
)

// Kinds lists both item kinds in a stable order.
var Kinds = []Kind{KindLost, KindFound}

func (k Kind) Valid() bool {
	return k == KindLost || k == KindFound
}

// Opposite returns the kind an item of kind k is matched against.
func (k Kind) Opposite() Kind {
	if k == KindLost {
		return KindFound
	}
	return KindLost
}

type ItemStatus string

const (
	ItemPending  ItemStatus = "pending"
	ItemMatched  ItemStatus = "matched"
	ItemReturned ItemStatus = "returned"
	ItemClosed   ItemStatus = "closed"
)

// Item is a lost or found report. Date is the date lost for KindLost and the
// date found for KindFound. ImageKey is empty when no image was attached.
type Item struct {
	ID          string     `json:"id"`
	Kind        Kind       `json:"kind"`
	OwnerID     string     `json:"user_id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	Date        time.Time  `json:"date"`
	ImageKey    string     `json:"image_key,omitempty"`
	Status      ItemStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (i *Item) HasImage() bool {
	return i.ImageKey != ""
}

// ItemFilter narrows item listings. Zero values mean no filtering.
type ItemFilter struct {
	Category string
	Location string
	Search   string
}

type MatchStatus string

const (
	MatchPending  MatchStatus = "pending"
	MatchApproved MatchStatus = "approved"
	MatchRejected MatchStatus = "rejected"
)

// ScoreBreakdown holds the points awarded by each matching signal.
type ScoreBreakdown struct {
	Category int `json:"category"`
	Location int `json:"location"`
	Date     int `json:"date"`
	Keywords int `json:"keywords"`
	Images   int `json:"images"`
}

// Total is the composite score; it is always the plain sum of the signals.
func (b ScoreBreakdown) Total() int {
	return b.Category + b.Location + b.Date + b.Keywords + b.Images
}

// MatchProposal pairs one lost item with one found item.
type MatchProposal struct {
	ID        string         `json:"id"`
	LostID    string         `json:"lost_id"`
	FoundID   string         `json:"found_id"`
	Score     int            `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
	Status    MatchStatus    `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	UniversityID string    `json:"university_id"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
