// Package dashboard derives the visible tree list from the store: search,
// sort, pagination and selection, plus the bulk actions that act on it.
package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// SortKey names a sortable tree column.
type SortKey string

// Sort keys.
const (
	SortID          SortKey = "id"
	SortStrain      SortKey = "strain"
	SortNickname    SortKey = "nickname"
	SortVariety     SortKey = "variety"
	SortLocation    SortKey = "location"
	SortStatus      SortKey = "status"
	SortSex         SortKey = "sex"
	SortPlantDate   SortKey = "plant_date"
	SortYieldAmount SortKey = "yield_amount"
	SortSeedCount   SortKey = "seed_count"
	SortCreatedAt   SortKey = "created_at"
)

// SortKeys lists every key in the order the browser cycles through them.
var SortKeys = []SortKey{
	SortID, SortStrain, SortNickname, SortVariety, SortLocation, SortStatus,
	SortSex, SortPlantDate, SortYieldAmount, SortSeedCount, SortCreatedAt,
}

// ParseSortKey validates s as a sort key.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", types.ErrInvalidSortKey, s)
}

// Direction is a sort order.
type Direction int

const (
	Desc Direction = iota
	Asc
)

func (d Direction) String() string {
	if d == Asc {
		return "asc"
	}
	return "desc"
}

// Matches reports whether t contains query, case-insensitively, in its
// strain name, nickname, location or batch code. The query is not trimmed,
// so surrounding spaces must match too. An empty query matches.
func Matches(t types.Tree, query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	for _, s := range []string{t.StrainName(), t.Nickname, t.Location, t.BatchCode()} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

// Filter returns the trees matching query, in their original order.
func Filter(trees []types.Tree, query string) []types.Tree {
	out := make([]types.Tree, 0, len(trees))
	for _, t := range trees {
		if Matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// sortValue is either a string or a number; nil numbers sort lowest.
type sortValue struct {
	str   string
	num   float64
	isNum bool
}

func textValue(s string) sortValue { return sortValue{str: strings.ToLower(s)} }

func numValue(f float64) sortValue { return sortValue{num: f, isNum: true} }

func valueOf(t types.Tree, key SortKey) sortValue {
	switch key {
	case SortID:
		return numValue(float64(t.ID))
	case SortStrain:
		return textValue(t.StrainName())
	case SortNickname:
		return textValue(t.Nickname)
	case SortVariety:
		return textValue(t.Variety)
	case SortLocation:
		return textValue(t.Location)
	case SortStatus:
		return textValue(t.Status)
	case SortSex:
		return textValue(t.Sex)
	case SortPlantDate:
		return dateValue(t.PlantDate)
	case SortCreatedAt:
		return dateValue(t.CreatedAt)
	case SortYieldAmount:
		if t.YieldAmount == nil {
			return numValue(-1)
		}
		return numValue(float64(*t.YieldAmount))
	case SortSeedCount:
		if t.SeedCount == nil {
			return numValue(-1)
		}
		return numValue(float64(*t.SeedCount))
	}
	return sortValue{}
}

// dateValue orders dates by time; unparsable or empty dates sort first.
func dateValue(s string) sortValue {
	tm, ok := ParseDate(s)
	if !ok {
		return numValue(0)
	}
	return numValue(float64(tm.Unix()))
}

func compare(a, b sortValue) int {
	if a.isNum {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.str, b.str)
}

// Sort orders trees in place by key and direction. Equal elements keep
// their relative order.
func Sort(trees []types.Tree, key SortKey, dir Direction) {
	sort.SliceStable(trees, func(i, j int) bool {
		c := compare(valueOf(trees[i], key), valueOf(trees[j], key))
		if dir == Asc {
			return c < 0
		}
		return c > 0
	})
}

// Paginate returns page n (1-based, clamped) of items and the page count.
// A non-positive perPage returns everything as one page.
func Paginate[T any](items []T, n, perPage int) ([]T, int, int) {
	if perPage <= 0 || len(items) == 0 {
		return items, 1, 1
	}
	pages := (len(items) + perPage - 1) / perPage
	if n < 1 {
		n = 1
	}
	if n > pages {
		n = pages
	}
	start := (n - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], n, pages
}
