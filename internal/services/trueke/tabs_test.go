package trueke

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/truekeo/truekeo-api/internal/models"
)

func truekesWith(counts map[models.TruekeStatus]int) []models.Trueke {
	var out []models.Trueke
	for status, n := range counts {
		for i := 0; i < n; i++ {
			out = append(out, models.Trueke{Status: status})
		}
	}
	return out
}

func TestDefaultTab(t *testing.T) {
	tests := []struct {
		name   string
		counts map[models.TruekeStatus]int
		want   models.TruekeStatus
	}{
		{
			name:   "reserved wins",
			counts: map[models.TruekeStatus]int{models.TruekeReserved: 2},
			want:   models.TruekeReserved,
		},
		{
			name:   "open when nothing reserved",
			counts: map[models.TruekeStatus]int{models.TruekeOpen: 3, models.TruekeCompleted: 1},
			want:   models.TruekeOpen,
		},
		{
			name:   "completed as last resort",
			counts: map[models.TruekeStatus]int{models.TruekeCompleted: 5},
			want:   models.TruekeCompleted,
		},
		{
			name:   "empty list defaults to reserved",
			counts: nil,
			want:   models.TruekeReserved,
		},
		{
			name: "reserved beats everything",
			counts: map[models.TruekeStatus]int{
				models.TruekeReserved:  1,
				models.TruekeOpen:      10,
				models.TruekeCompleted: 10,
			},
			want: models.TruekeReserved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultTab(truekesWith(tt.counts)))
		})
	}
}
