package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityFromPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    int
		wantErr bool
	}{
		{"canonical key", map[string]any{"quantity": float64(5)}, 5, false},
		{"french alias", map[string]any{"quantite": float64(3)}, 3, false},
		{"accented alias", map[string]any{"quantité": float64(7)}, 7, false},
		{"mojibake alias", map[string]any{"quantiteAc": float64(2)}, 2, false},
		{"string value", map[string]any{"quantity": "4"}, 4, false},
		{"fractional truncates", map[string]any{"quantity": 2.9}, 2, false},
		{"canonical wins over alias", map[string]any{"quantity": float64(5), "quantite": float64(9)}, 5, false},
		{"absent yields zero", map[string]any{"reason": "restock"}, 0, false},
		{"unparseable string", map[string]any{"quantity": "lots"}, 0, true},
		{"wrong type", map[string]any{"quantity": true}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := QuantityFromPayload(tt.payload)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
