// Package pricing computes order totals and formats money for display.
package pricing

import "github.com/shopspring/decimal"

// DiscountRate is the fixed partner discount applied to every order.
var DiscountRate = decimal.RequireFromString("0.05")

// Summary is the derived price breakdown of an order. All amounts are
// integer minor units of the settlement currency.
type Summary struct {
	PackageUnitPrice int64 `json:"packageUnitPrice"`
	CustomerCount    int   `json:"customerCount"`
	PackageTotal     int64 `json:"packageTotal"`
	PartnerDiscount  int64 `json:"partnerDiscount"`
	PartnerProfit    int64 `json:"partnerProfit"`
	TotalPayment     int64 `json:"totalPayment"`
}

// EffectiveCount clamps a logical recipient count to at least one so an
// empty group selection never prices to zero.
func EffectiveCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Calculate prices unitPrice for count recipients. count is clamped with
// EffectiveCount. PartnerProfit mirrors PartnerDiscount.
func Calculate(unitPrice int64, count int) Summary {
	count = EffectiveCount(count)
	total := unitPrice * int64(count)
	discount := Discount(total)

	return Summary{
		PackageUnitPrice: unitPrice,
		CustomerCount:    count,
		PackageTotal:     total,
		PartnerDiscount:  discount,
		PartnerProfit:    discount,
		TotalPayment:     total - discount,
	}
}

// Discount returns round(total × DiscountRate), rounding half away from zero.
func Discount(total int64) int64 {
	return decimal.NewFromInt(total).Mul(DiscountRate).Round(0).IntPart()
}
