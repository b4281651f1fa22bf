package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice int64
		count     int
		want      Summary
	}{
		{
			name:      "single recipient",
			unitPrice: 100000,
			count:     1,
			want: Summary{
				PackageUnitPrice: 100000,
				CustomerCount:    1,
				PackageTotal:     100000,
				PartnerDiscount:  5000,
				PartnerProfit:    5000,
				TotalPayment:     95000,
			},
		},
		{
			name:      "several recipients",
			unitPrice: 64000,
			count:     3,
			want: Summary{
				PackageUnitPrice: 64000,
				CustomerCount:    3,
				PackageTotal:     192000,
				PartnerDiscount:  9600,
				PartnerProfit:    9600,
				TotalPayment:     182400,
			},
		},
		{
			name:      "discount rounds half up",
			unitPrice: 10,
			count:     1,
			want: Summary{
				PackageUnitPrice: 10,
				CustomerCount:    1,
				PackageTotal:     10,
				PartnerDiscount:  1,
				PartnerProfit:    1,
				TotalPayment:     9,
			},
		},
		{
			name:      "empty group is priced as one",
			unitPrice: 50000,
			count:     0,
			want: Summary{
				PackageUnitPrice: 50000,
				CustomerCount:    1,
				PackageTotal:     50000,
				PartnerDiscount:  2500,
				PartnerProfit:    2500,
				TotalPayment:     47500,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.unitPrice, tt.count))
		})
	}
}

func TestCalculate_Invariants(t *testing.T) {
	rate := decimal.RequireFromString("0.05")
	for u := int64(0); u <= 2000; u += 37 {
		for c := 1; c <= 12; c++ {
			s := Calculate(u, c)
			assert.Equal(t, u*int64(c), s.PackageTotal)
			assert.Equal(t, s.PackageTotal-s.PartnerDiscount, s.TotalPayment)
			want := decimal.NewFromInt(s.PackageTotal).Mul(rate).Round(0).IntPart()
			assert.Equal(t, want, s.PartnerDiscount)
		}
	}
}

func TestEffectiveCount(t *testing.T) {
	assert.Equal(t, 1, EffectiveCount(-3))
	assert.Equal(t, 1, EffectiveCount(0))
	assert.Equal(t, 1, EffectiveCount(1))
	assert.Equal(t, 7, EffectiveCount(7))
}
