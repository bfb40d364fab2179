package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0, levenshtein([]rune("same"), []rune("same")))
	assert.Equal(t, 4, levenshtein([]rune(""), []rune("four")))
	assert.Equal(t, 1, levenshtein([]rune("čaj"), []rune("caj")))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1-1.0/7, Similarity("tomato", "tomatoe"), 1e-9)
	assert.Equal(t, 1.0, Similarity("tomato paste", "paste tomato"), "token overlap ignores order")
	assert.Equal(t, 1.0, Similarity("rice", "rice"))
	assert.Equal(t, 0.0, Similarity("", "rice"))
	assert.Less(t, Similarity("tomato", "basmati rice"), partialFloor)
}

func TestNameScoreBands(t *testing.T) {
	tests := []struct {
		sim    float64
		score  float64
		signal string
	}{
		{1.0, 0.85, "name_similar"},
		{0.85, 0.60, "name_similar"},
		{0.925, 0.725, "name_similar"},
		{0.84999, 0.60, "name_partial"},
		{0.675, 0.425, "name_partial"},
		{0.5, 0.25, "name_partial"},
		{0.49, 0, ""},
		{0, 0, ""},
	}
	for _, tt := range tests {
		score, signal := nameScore(tt.sim)
		assert.InDelta(t, tt.score, score, 1e-3, "sim %v", tt.sim)
		assert.Equal(t, tt.signal, signal, "sim %v", tt.sim)
	}
}
