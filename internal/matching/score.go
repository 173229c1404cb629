package matching

import (
	"math"
	"strings"
	"time"

	"github.com/vbonduro/lostfound/internal/domain"
)

// Threshold is the minimum total score for a pair to become a proposal.
const Threshold = 60

// Signal weights. They sum to 100.
const (
	CategoryPoints = 40
	LocationPoints = 20
	DatePoints     = 15
	KeywordPoints  = 20
	ImagePoints    = 5
)

// dateTiers maps a maximum day gap to the percentage of DatePoints awarded.
// A gap of exactly zero earns the full weight.
var dateTiers = []struct {
	maxDays float64
	percent int
}{
	{1, 90},
	{3, 70},
	{7, 50},
	{30, 20},
}

// Score compares one lost item against one found item.
func Score(lost, found *domain.Item) domain.ScoreBreakdown {
	var b domain.ScoreBreakdown

	if strings.EqualFold(lost.Category, found.Category) {
		b.Category = CategoryPoints
	}
	if strings.EqualFold(lost.Location, found.Location) {
		b.Location = LocationPoints
	}
	b.Date = DateScore(lost.Date, found.Date)
	b.Keywords = KeywordScore(
		lost.Title+" "+lost.Description,
		found.Title+" "+found.Description,
	)
	if lost.HasImage() && found.HasImage() {
		b.Images = ImagePoints
	}
	return b
}

// Qualifies reports whether a breakdown clears the proposal threshold.
func Qualifies(b domain.ScoreBreakdown) bool {
	return b.Total() >= Threshold
}

// DateScore awards points for how close the lost and found dates are. The gap
// is measured in fractional days, so a gap of 25 hours falls in the 3-day tier.
func DateScore(lost, found time.Time) int {
	days := math.Abs(lost.Sub(found).Hours() / 24)
	if days == 0 {
		return DatePoints
	}
	for _, tier := range dateTiers {
		if days <= tier.maxDays {
			return roundHalfUp(float64(DatePoints*tier.percent) / 100)
		}
	}
	return 0
}

// KeywordScore scales the Jaccard similarity of the two texts' keyword sets to
// KeywordPoints.
func KeywordScore(lostText, foundText string) int {
	return roundHalfUp(Jaccard(ExtractKeywords(lostText), ExtractKeywords(foundText)) * KeywordPoints)
}

// roundHalfUp rounds x to the nearest integer, halves away from zero. All
// inputs are non-negative so this matches half-up rounding.
func roundHalfUp(x float64) int {
	return int(math.Round(x))
}
