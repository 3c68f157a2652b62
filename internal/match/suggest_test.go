package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	known := []string{"ID", "id", "CreatedAt", "created_at", "CustomerID", "customer_id", "TotalCents"}

	tests := []struct {
		name  string
		input string
		limit int
		want  []string
	}{
		{
			name:  "transposed letters",
			input: "craeted_at",
			limit: 1,
			want:  []string{"CreatedAt"},
		},
		{
			name:  "all spellings of a field",
			input: "cutsomer_id",
			limit: 0,
			want:  []string{"CustomerID", "customer_id"},
		},
		{
			name:  "nothing close",
			input: "shipping_address",
			limit: 3,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.input, known, DefaultSuggestThreshold, tt.limit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSuggestSkipsExactAndDuplicates(t *testing.T) {
	got := Suggest("id", []string{"id", "ids", "ids"}, 0.5, 0)
	assert.Equal(t, []string{"ids"}, got)
}
