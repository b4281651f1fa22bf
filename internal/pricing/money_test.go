package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/GTDGit/reseller_portal/internal/models"
)

func TestFormatMoneyFromUSD(t *testing.T) {
	rate := decimal.NewFromInt(12800)

	tests := []struct {
		name     string
		usd      string
		currency models.Currency
		want     string
	}{
		{"usd whole", "10", models.CurrencyUSD, "$10.00"},
		{"usd fraction", "4.5", models.CurrencyUSD, "$4.50"},
		{"uzs converted", "10", models.CurrencyUZS, "128 000 UZS"},
		{"uzs millions", "100", models.CurrencyUZS, "1 280 000 UZS"},
		{"uzs rounded", "0.99", models.CurrencyUZS, "12 672 UZS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMoneyFromUSD(decimal.RequireFromString(tt.usd), tt.currency, rate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMoney(t *testing.T) {
	rate := decimal.NewFromInt(12800)

	assert.Equal(t, "128 000 UZS", FormatMoney(128000, models.CurrencyUZS, rate))
	assert.Equal(t, "$10.00", FormatMoney(128000, models.CurrencyUSD, rate))
	assert.Equal(t, "950 UZS", FormatMoney(950, models.CurrencyUZS, rate))
	assert.Equal(t, "-12 500 UZS", FormatMoney(-12500, models.CurrencyUZS, rate))
	assert.Equal(t, "128 000 UZS", FormatMoney(128000, models.CurrencyUSD, decimal.Zero))
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0, " "))
	assert.Equal(t, "999", groupThousands(999, " "))
	assert.Equal(t, "1 000", groupThousands(1000, " "))
	assert.Equal(t, "12 345 678", groupThousands(12345678, " "))
	assert.Equal(t, "-1,000", groupThousands(-1000, ","))
}

func TestParseCurrency(t *testing.T) {
	c, ok := ParseCurrency(" usd ")
	assert.True(t, ok)
	assert.Equal(t, models.CurrencyUSD, c)

	_, ok = ParseCurrency("EUR")
	assert.False(t, ok)
}

func TestConvertUSD(t *testing.T) {
	assert.Equal(t, int64(64000), ConvertUSD(decimal.RequireFromString("5"), decimal.NewFromInt(12800)))
	assert.Equal(t, int64(12673), ConvertUSD(decimal.RequireFromString("0.99"), decimal.RequireFromString("12801.5")))
}
