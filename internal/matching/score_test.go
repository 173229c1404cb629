package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vbonduro/lostfound/internal/domain"
)

var day0 = time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)

func item(kind domain.Kind, category, location string, date time.Time, title, desc, image string) *domain.Item {
	return &domain.Item{
		Kind:        kind,
		Title:       title,
		Category:    category,
		Description: desc,
		Location:    location,
		Date:        date,
		ImageKey:    image,
		Status:      domain.ItemPending,
	}
}

func TestScoreCategoryIgnoresCase(t *testing.T) {
	lost := item(domain.KindLost, "Electronics", "Gym", day0, "x", "", "")
	found := item(domain.KindFound, "electronics", "Library", day0.AddDate(0, 0, -60), "y", "", "")
	assert.Equal(t, CategoryPoints, Score(lost, found).Category)

	found.Category = "ELECTRONICS"
	assert.Equal(t, CategoryPoints, Score(lost, found).Category)
}

func TestScoreLocationIgnoresCase(t *testing.T) {
	lost := item(domain.KindLost, "A", "Main Library", day0, "", "", "")
	found := item(domain.KindFound, "B", "main library", day0, "", "", "")
	assert.Equal(t, LocationPoints, Score(lost, found).Location)
}

func TestScoreIdenticalItemsIsPerfect(t *testing.T) {
	lost := item(domain.KindLost, "Electronics", "Main Library", day0, "Black iPhone", "blue case near entrance", "lost.jpg")
	found := item(domain.KindFound, "Electronics", "Main Library", day0, "Black iPhone", "blue case near entrance", "found.jpg")

	b := Score(lost, found)
	assert.Equal(t, domain.ScoreBreakdown{Category: 40, Location: 20, Date: 15, Keywords: 20, Images: 5}, b)
	assert.Equal(t, 100, b.Total())
	assert.True(t, Qualifies(b))
}

func TestScoreDisjointItemsIsZero(t *testing.T) {
	lost := item(domain.KindLost, "Clothing", "Cafeteria", day0, "Denim jacket", "light blue size", "")
	found := item(domain.KindFound, "Electronics", "Gym", day0.AddDate(0, 0, 45), "Charger", "white cable", "")

	b := Score(lost, found)
	assert.Equal(t, domain.ScoreBreakdown{}, b)
	assert.Zero(t, b.Total())
	assert.False(t, Qualifies(b))
}

func TestDateScoreTiers(t *testing.T) {
	tests := []struct {
		gapDays int
		want    int
	}{
		{0, 15},
		{1, 14},
		{2, 11},
		{3, 11},
		{4, 8},
		{7, 8},
		{8, 3},
		{30, 3},
		{31, 0},
		{365, 0},
	}
	for _, tt := range tests {
		found := day0.AddDate(0, 0, tt.gapDays)
		assert.Equal(t, tt.want, DateScore(day0, found), "gap %d days", tt.gapDays)
		// Order of the dates does not matter.
		assert.Equal(t, tt.want, DateScore(found, day0), "gap -%d days", tt.gapDays)
	}
}

func TestDateScoreFractionalDays(t *testing.T) {
	assert.Equal(t, 14, DateScore(day0, day0.Add(12*time.Hour)))
	assert.Equal(t, 11, DateScore(day0, day0.Add(25*time.Hour)))
}

func TestDateScoreIsMonotonic(t *testing.T) {
	prev := DateScore(day0, day0)
	for gap := 1; gap <= 40; gap++ {
		s := DateScore(day0, day0.AddDate(0, 0, gap))
		assert.LessOrEqual(t, s, prev, "gap %d", gap)
		prev = s
	}
}

func TestKeywordScoreRounding(t *testing.T) {
	// 1 shared keyword out of 8 distinct: 20/8 = 2.5 rounds up to 3.
	lost := "alpha bravo charlie delta echo"
	found := "alpha foxtrot golf hotel"
	assert.Equal(t, 3, KeywordScore(lost, found))

	assert.Zero(t, KeywordScore("", "alpha bravo"))
	assert.Zero(t, KeywordScore("the a an", "alpha"))
}

func TestScoreImageBonusNeedsBoth(t *testing.T) {
	lost := item(domain.KindLost, "A", "B", day0, "", "", "lost.jpg")
	found := item(domain.KindFound, "A", "B", day0, "", "", "")
	assert.Zero(t, Score(lost, found).Images)

	found.ImageKey = "found.jpg"
	assert.Equal(t, ImagePoints, Score(lost, found).Images)
}

func TestScoreIPhoneScenario(t *testing.T) {
	lost := item(domain.KindLost, "Electronics", "Main Library", day0, "", "black iphone blue case", "lost.jpg")
	found := item(domain.KindFound, "Electronics", "Main Library", day0, "", "black iphone blue case found", "found.jpg")

	b := Score(lost, found)
	assert.Equal(t, 40, b.Category)
	assert.Equal(t, 20, b.Location)
	assert.Equal(t, 15, b.Date)
	assert.Equal(t, 5, b.Images)
	// 4 shared of 5 distinct keywords: 16 points.
	assert.Equal(t, 16, b.Keywords)
	assert.Equal(t, 96, b.Total())
	assert.True(t, Qualifies(b))
}

func TestScoreSeedIPhonePair(t *testing.T) {
	lost := item(domain.KindLost, "Electronics", "Main Library", day0,
		"iPhone 13 Pro", "Black iPhone with blue case, lost near library", "")
	found := item(domain.KindFound, "Electronics", "Main Library", day0,
		"Black iPhone", "Found near library entrance, has blue case", "")

	b := Score(lost, found)
	// lost: iphone pro black blue case lost near library (8)
	// found: black iphone found near library entrance blue case (8)
	// shared: iphone black blue case near library (6), union 10
	assert.Equal(t, 12, b.Keywords)
	assert.Equal(t, 87, b.Total())
}
