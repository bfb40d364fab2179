package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tomato", "tomato"},
		{"  Crème   Fraîche!! ", "creme fraiche"},
		{"Jalapeño-Peppers", "jalapeno peppers"},
		{"Olive oil (extra virgin), 1L", "olive oil extra virgin 1l"},
		{"ŠUMSKE jagode", "sumske jagode"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}
