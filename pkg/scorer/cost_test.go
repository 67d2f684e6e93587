package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name        string
		bytes       int64
		pricePerTiB float64
		want        float64
	}{
		{"one TiB at list price", 1 << 40, 5.0, 5.0},
		{"two TiB doubles", 2 << 40, 5.0, 10.0},
		{"zero bytes is free", 0, 5.0, 0},
		{"negative bytes is free", -1024, 5.0, 0},
		{"hundred GiB", 107374182400, 5.0, 0.488281},
		{"small scan rounds to six places", 1, 5.0, 0},
		{"one TiB at custom price", 1 << 40, 6.25, 6.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateCost(tt.bytes, tt.pricePerTiB))
		})
	}
}

func TestEstimateCostBankersRounding(t *testing.T) {
	// Half-even: exact halves round to the even neighbor.
	assert.Equal(t, 0.0, EstimateCost(1<<40, 0.0000005))
	assert.Equal(t, 0.000002, EstimateCost(1<<40, 0.0000015))
}
