package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// BaseCurrency is the settlement currency of every order amount.
const BaseCurrency = models.CurrencyUZS

// ParseCurrency maps a user supplied code onto a supported currency.
func ParseCurrency(code string) (models.Currency, bool) {
	switch models.Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case models.CurrencyUZS:
		return models.CurrencyUZS, true
	case models.CurrencyUSD:
		return models.CurrencyUSD, true
	default:
		return "", false
	}
}

// ConvertUSD turns a USD amount into whole base-currency units at rate.
func ConvertUSD(usd, rate decimal.Decimal) int64 {
	return usd.Mul(rate).Round(0).IntPart()
}

// FormatMoney renders amount, given in base-currency units, in currency.
// USD is derived by dividing by rate; a non-positive rate keeps the base currency.
func FormatMoney(amount int64, currency models.Currency, rate decimal.Decimal) string {
	if currency == models.CurrencyUSD && rate.Sign() > 0 {
		return formatUSD(decimal.NewFromInt(amount).Div(rate))
	}
	return formatBase(amount)
}

// FormatMoneyFromUSD renders a USD amount in currency, converting at rate
// when the base currency is requested.
func FormatMoneyFromUSD(usd decimal.Decimal, currency models.Currency, rate decimal.Decimal) string {
	if currency == models.CurrencyUSD {
		return formatUSD(usd)
	}
	return formatBase(ConvertUSD(usd, rate))
}

func formatUSD(v decimal.Decimal) string {
	if v.Sign() < 0 {
		return "-$" + v.Neg().StringFixed(2)
	}
	return "$" + v.StringFixed(2)
}

func formatBase(amount int64) string {
	return groupThousands(amount, " ") + " " + string(BaseCurrency)
}

// groupThousands inserts sep between every group of three digits.
func groupThousands(n int64, sep string) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
