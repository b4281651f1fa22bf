package esimaccess

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// priceScale is the exponent of supplier price units (1/10000 USD).
const priceScale = -4

// Envelope is the common wrapper around every supplier response.
type Envelope[T any] struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode"`
	ErrorMsg  string `json:"errorMsg"`
	Obj       T      `json:"obj"`
}

// Error is a failed supplier call.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("esimaccess: %s: %s", e.Code, e.Message)
}

// Package is a supplier catalog entry.
type Package struct {
	PackageCode  string `json:"packageCode"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	RetailPrice  int64  `json:"retailPrice"`
	CurrencyCode string `json:"currencyCode"`
	Volume       int64  `json:"volume"`
	Duration     int    `json:"duration"`
	DurationUnit string `json:"durationUnit"`
	Location     string `json:"location"`
	LocationName string `json:"locationName"`
	DataType     int    `json:"dataType"`
}

// PackageList is the obj of a package list call.
type PackageList struct {
	PackageList []Package `json:"packageList"`
}

// OrderResult is the obj of an order call.
type OrderResult struct {
	OrderNo       string `json:"orderNo"`
	TransactionID string `json:"transactionId"`
}

// Profile is an allocated eSIM.
type Profile struct {
	ICCID       string `json:"iccid"`
	AC          string `json:"ac"`
	QRCodeURL   string `json:"qrCodeUrl"`
	ESIMStatus  string `json:"esimStatus"`
	SMDPStatus  string `json:"smdpStatus"`
	OrderUsage  int64  `json:"orderUsage"`
	ExpiredTime string `json:"expiredTime"`
}

// ProfileList is the obj of a query call.
type ProfileList struct {
	ESIMList []Profile `json:"esimList"`
}

const bytesPerGB = 1 << 30

// ToPlan maps a supplier package onto the portal plan shape.
func (p *Package) ToPlan() models.Plan {
	plan := models.Plan{
		ID:               p.PackageCode,
		Destination:      p.LocationName,
		CountryCode:      p.Location,
		Slug:             p.Slug,
		ValidityDays:     p.Duration,
		ResellerPriceUSD: decimal.New(p.Price, priceScale),
		OriginalPriceUSD: decimal.New(p.RetailPrice, priceScale),
		PackageCode:      p.PackageCode,
		LocationType:     "single",
		DataType:         "fixed",
	}
	if plan.Destination == "" {
		plan.Destination = p.Name
	}
	if strings.Contains(p.Location, ",") {
		plan.LocationType = "regional"
	}
	if p.DataType == 2 {
		plan.DataType = "daily"
	}
	if p.Volume > 0 {
		plan.DataGB = decimal.NewFromInt(p.Volume).Div(decimal.NewFromInt(bytesPerGB)).Round(2).InexactFloat64()
	} else {
		plan.DataGB = -1
	}
	return plan
}
