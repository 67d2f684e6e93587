package scorer

import (
	"github.com/shopspring/decimal"
)

// bytesPerTiB is 2^40, the unit BigQuery on-demand pricing is quoted in.
var bytesPerTiB = decimal.NewFromInt(1 << 40)

// EstimateCost converts a scanned byte count into a USD estimate at the
// given price per TiB, rounded to 6 decimal places with banker's
// rounding. A zero byte count is free.
func EstimateCost(bytesScanned int64, pricePerTiB float64) float64 {
	if bytesScanned <= 0 {
		return 0
	}
	cost := decimal.NewFromInt(bytesScanned).
		Div(bytesPerTiB).
		Mul(decimal.NewFromFloat(pricePerTiB)).
		RoundBank(6)
	f, _ := cost.Float64()
	return f
}
