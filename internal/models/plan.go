package models

import "github.com/shopspring/decimal"

// Plan is a purchasable data package offered by the supplier catalog.
// A DataGB of 0 or -1 marks an unlimited package.
type Plan struct {
	ID               string          `json:"id"`
	Destination      string          `json:"destination"`
	CountryCode      string          `json:"countryCode"`
	Slug             string          `json:"slug"`
	DataGB           float64         `json:"dataGb"`
	ValidityDays     int             `json:"validityDays"`
	ResellerPriceUSD decimal.Decimal `json:"resellerPriceUsd"`
	OriginalPriceUSD decimal.Decimal `json:"originalPriceUsd"`
	LocationType     string          `json:"locationType"`
	DataType         string          `json:"dataType"`
	PackageCode      string          `json:"packageCode"`
}

// IsUnlimited reports whether the plan has no data cap.
func (p *Plan) IsUnlimited() bool {
	return p.DataGB <= 0
}
