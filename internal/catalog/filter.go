// Package catalog filters, sorts and pages the supplier plan list.
package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// All disables a filter predicate.
const All = "all"

// DataBucket is a data-allowance range a plan can be filtered by.
type DataBucket string

const (
	DataAll       DataBucket = All
	DataUpTo1     DataBucket = "upto1"
	Data1To5      DataBucket = "1to5"
	Data5To10     DataBucket = "5to10"
	Data10To20    DataBucket = "10to20"
	Data20Plus    DataBucket = "20plus"
	DataUnlimited DataBucket = "unlimited"
)

// Buckets lists every selectable data bucket in display order.
var Buckets = []DataBucket{DataAll, DataUpTo1, Data1To5, Data5To10, Data10To20, Data20Plus, DataUnlimited}

// ParseDataBucket validates a bucket tag; empty means DataAll.
func ParseDataBucket(s string) (DataBucket, bool) {
	if s == "" {
		return DataAll, true
	}
	for _, b := range Buckets {
		if string(b) == s {
			return b, true
		}
	}
	return "", false
}

// Contains reports whether a plan with dataGB falls inside the bucket.
// Unlimited plans (dataGB <= 0) only match DataUnlimited and DataAll.
func (b DataBucket) Contains(dataGB float64) bool {
	if b == DataAll || b == "" {
		return true
	}
	if dataGB <= 0 {
		return b == DataUnlimited
	}
	switch b {
	case DataUpTo1:
		return dataGB <= 1
	case Data1To5:
		return dataGB > 1 && dataGB <= 5
	case Data5To10:
		return dataGB > 5 && dataGB <= 10
	case Data10To20:
		return dataGB > 10 && dataGB <= 20
	case Data20Plus:
		return dataGB >= 20
	default:
		return false
	}
}

// Filter is the set of catalog predicates. Empty or All values are ignored.
type Filter struct {
	Destination string     `form:"destination"`
	Data        DataBucket `form:"data"`
	Days        string     `form:"days"`
	Search      string     `form:"search"`
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

// Apply returns the plans matching f, sorted with Sort. The input slice is
// not modified.
func Apply(plans []models.Plan, f Filter) []models.Plan {
	days := -1
	if !isAll(f.Days) {
		n, err := strconv.Atoi(f.Days)
		if err != nil {
			return []models.Plan{}
		}
		days = n
	}
	query := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]models.Plan, 0, len(plans))
	for i := range plans {
		p := &plans[i]
		if !isAll(f.Destination) &&
			!strings.EqualFold(p.Destination, f.Destination) &&
			!strings.EqualFold(p.CountryCode, f.Destination) {
			continue
		}
		if !f.Data.Contains(p.DataGB) {
			continue
		}
		if days >= 0 && p.ValidityDays != days {
			continue
		}
		if query != "" && !matchesSearch(p, query) {
			continue
		}
		out = append(out, *p)
	}

	Sort(out)
	return out
}

// matchesSearch expects query to be lower-cased already.
func matchesSearch(p *models.Plan, query string) bool {
	for _, field := range []string{p.Destination, p.CountryCode, p.PackageCode, p.Slug} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// Sort orders plans in place by destination, then validity days, then data
// size. Unlimited plans come after every finite size. The sort is stable.
func Sort(plans []models.Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		a, b := &plans[i], &plans[j]
		if a.Destination != b.Destination {
			return a.Destination < b.Destination
		}
		if a.ValidityDays != b.ValidityDays {
			return a.ValidityDays < b.ValidityDays
		}
		return dataKey(a) < dataKey(b)
	})
}

func dataKey(p *models.Plan) float64 {
	if p.IsUnlimited() {
		return 1 << 30
	}
	return p.DataGB
}
