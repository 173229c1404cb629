package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"only stop words and short tokens", "it is on the go", nil},
		{"punctuation is whitespace", "Black iPhone, blue-case!", []string{"black", "iphone", "blue", "case"}},
		{"dedup keeps first occurrence", "Keys keys KEYS ring keys", []string{"keys", "ring"}},
		{"digits and underscores are word characters", "room_101 id 2024", []string{"room_101", "2024"}},
		{"stop words removed", "Nike backpack with laptop inside", []string{"nike", "backpack", "laptop", "inside"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.text))
		})
	}
}

func TestJaccard(t *testing.T) {
	assert.Zero(t, Jaccard(nil, []string{"a"}))
	assert.Zero(t, Jaccard([]string{"a"}, nil))
	assert.InDelta(t, 1.0, Jaccard([]string{"black", "iphone"}, []string{"iphone", "black"}), 1e-9)
	assert.InDelta(t, 0.25, Jaccard([]string{"black", "iphone"}, []string{"black", "case", "found"}), 1e-9)
	assert.Zero(t, Jaccard([]string{"denim"}, []string{"iphone"}))
}
