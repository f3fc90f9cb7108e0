// Package quant converts desired order prices and sizes into
// exchange-legal ones. Hyperliquid spot markets constrain size to a
// multiple of 10^-szDecimals, price to at most 8-szDecimals fractional
// digits, and notional to a minimum of ~10 USDC.
package quant

import (
	"github.com/shopspring/decimal"
)

// MinNotional is the spot minimum order value in quote-currency units.
const MinNotional = 10

// minPriceFloor guards the notional step computation against a
// non-positive price. Such a quote is never sent for real; the floor
// only keeps the division defined.
var minPriceFloor = decimal.New(1, -9) // 1e-9

// PriceDecimals returns the maximum number of fractional price digits
// for a market with the given size decimals, clamped to [0, 8].
func PriceDecimals(szDecimals int) int {
	d := 8 - szDecimals
	if d < 0 {
		return 0
	}
	if d > 8 {
		return 8
	}
	return d
}

// Quantize adjusts a raw (size, price) pair to the market grid:
//
//  1. size is truncated down to a multiple of 10^-szDecimals, with a
//     floor of one step so a positive input never quantizes to zero
//  2. price is truncated (toward zero, never rounded up) to
//     PriceDecimals(szDecimals) fractional digits
//  3. if price*size falls below MinNotional, size is raised to the
//     smallest step multiple that clears it at the truncated price
//  4. the final size is clamped to 8 fractional digits
func Quantize(szDecimals int, size, price float64) (qSize, qPrice float64) {
	step := decimal.New(1, int32(-szDecimals))

	sz := decimal.NewFromFloat(size)
	sz = sz.Div(step).Floor().Mul(step)
	if sz.LessThan(step) {
		sz = step
	}

	px := decimal.NewFromFloat(price).Truncate(int32(PriceDecimals(szDecimals)))

	if px.Mul(sz).LessThan(decimal.NewFromInt(MinNotional)) {
		denom := px
		if denom.LessThanOrEqual(decimal.Zero) {
			denom = minPriceFloor
		}
		needed := decimal.NewFromInt(MinNotional).Div(denom)
		sz = needed.Div(step).Ceil().Mul(step)
	}

	sz = sz.Truncate(8)

	return sz.InexactFloat64(), px.InexactFloat64()
}
