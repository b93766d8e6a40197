package transaction

import (
	"slices"
	"sort"
	"strings"
)

// Filter narrows a transaction collection for list display. Zero values
// mean "not set": empty Category matches every category, zero Month/Year
// skip the date match, empty Search matches everything.
type Filter struct {
	Category      string
	Month         int
	Year          int
	Search        string
	DateAscending bool
}

// Apply returns the matching subsequence sorted by date. The sort is
// stable: transactions with equal dates keep their prior relative order.
func Apply(items []Transaction, f Filter) []Transaction {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	out := make([]Transaction, 0, len(items))
	for _, t := range items {
		if f.Category != "" && t.ResolvedCategory() != f.Category {
			continue
		}
		if f.Month != 0 && int(t.Date.Month()) != f.Month {
			continue
		}
		if f.Year != 0 && t.Date.Year() != f.Year {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if f.DateAscending {
			return out[i].Date.Before(out[j].Date)
		}
		return out[j].Date.Before(out[i].Date)
	})
	return out
}

// AvailableYears lists the distinct years present in the collection,
// ascending, for populating the filter controls.
func AvailableYears(items []Transaction) []int {
	seen := map[int]struct{}{}
	var years []int
	for _, t := range items {
		if _, ok := seen[t.Date.Year()]; !ok {
			seen[t.Date.Year()] = struct{}{}
			years = append(years, t.Date.Year())
		}
	}
	slices.Sort(years)
	return years
}
