package catalog

import (
	"sort"
	"strconv"

	"github.com/GTDGit/reseller_portal/internal/models"
)

const (
	DefaultLimit = 24
	MaxLimit     = 100
	// MaxPage is the highest page number the API accepts.
	MaxPage = 10000
)

// Page is one slice of an already filtered and sorted plan list.
type Page struct {
	Plans      []models.Plan
	Page       int
	Limit      int
	TotalItems int
}

// Paginate returns the requested page of plans. Page starts at 1; out of
// range pages are empty.
func Paginate(plans []models.Plan, page, limit int) Page {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	// Compare before multiplying so huge page numbers cannot overflow.
	start := len(plans)
	if page-1 <= len(plans)/limit {
		start = min((page-1)*limit, len(plans))
	}
	end := start + min(limit, len(plans)-start)

	return Page{
		Plans:      plans[start:end],
		Page:       page,
		Limit:      limit,
		TotalItems: len(plans),
	}
}

// Destination is a selectable destination in the filter picker.
type Destination struct {
	Name        string `json:"name"`
	CountryCode string `json:"countryCode"`
	PlanCount   int    `json:"planCount"`
}

// FilterOptions holds the values the catalog filter pickers offer.
type FilterOptions struct {
	Destinations []Destination `json:"destinations"`
	Days         []string      `json:"days"`
	Data         []DataBucket  `json:"data"`
}

// Options collects distinct destinations and validity tags from plans.
func Options(plans []models.Plan) FilterOptions {
	byName := make(map[string]*Destination)
	daySet := make(map[int]struct{})

	for i := range plans {
		p := &plans[i]
		d, ok := byName[p.Destination]
		if !ok {
			d = &Destination{Name: p.Destination, CountryCode: p.CountryCode}
			byName[p.Destination] = d
		}
		d.PlanCount++
		daySet[p.ValidityDays] = struct{}{}
	}

	dests := make([]Destination, 0, len(byName))
	for _, d := range byName {
		dests = append(dests, *d)
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i].Name < dests[j].Name })

	dayNums := make([]int, 0, len(daySet))
	for d := range daySet {
		dayNums = append(dayNums, d)
	}
	sort.Ints(dayNums)
	days := make([]string, 0, len(dayNums)+1)
	days = append(days, All)
	for _, d := range dayNums {
		days = append(days, strconv.Itoa(d))
	}

	return FilterOptions{Destinations: dests, Days: days, Data: Buckets}
}
