package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// Stats are the headline counts shown above the tree list.
type Stats struct {
	Total      int
	Active     int
	Vegetative int
	Flowering  int
	Harvested  int
}

// ComputeStats counts trees by status and stage. Vegetative and flowering
// only count trees still growing.
func ComputeStats(trees []types.Tree) Stats {
	s := Stats{Total: len(trees)}
	for _, t := range trees {
		if types.IsActive(t.Status) {
			s.Active++
		}
		if t.Status == types.StatusGrowing {
			if types.IsVegetative(t.GrowthStage) {
				s.Vegetative++
			}
			if types.IsFlowering(t.GrowthStage) {
				s.Flowering++
			}
		}
		if types.IsHarvested(t.Status) {
			s.Harvested++
		}
	}
	return s
}

// YieldStats summarizes yield over finished trees.
type YieldStats struct {
	HarvestedCount int
	TotalYield     float64
	AverageYield   float64
	BestStrain     string
}

// ComputeYield sums yield over trees that are dead or in the Harvested
// stage. The best strain has the highest average yield; "-" when none has
// a positive average.
func ComputeYield(trees []types.Tree) YieldStats {
	type acc struct {
		total float64
		count int
	}
	var (
		out    = YieldStats{BestStrain: "-"}
		order  []string
		byName = make(map[string]*acc)
	)
	for _, t := range trees {
		if t.Status != types.StatusDead && t.GrowthStage != types.StageHarvested {
			continue
		}
		y := 0.0
		if t.YieldAmount != nil {
			y = float64(*t.YieldAmount)
		}
		out.HarvestedCount++
		out.TotalYield += y

		name := t.StrainName()
		if name == "" {
			name = "Unknown"
		}
		a, ok := byName[name]
		if !ok {
			a = &acc{}
			byName[name] = a
			order = append(order, name)
		}
		a.total += y
		a.count++
	}
	if out.HarvestedCount > 0 {
		out.AverageYield = out.TotalYield / float64(out.HarvestedCount)
	}
	best := 0.0
	for _, name := range order {
		a := byName[name]
		if avg := a.total / float64(a.count); avg > best {
			best = avg
			out.BestStrain = name
		}
	}
	return out
}

// AgeUnit selects how ages are reported.
type AgeUnit string

const (
	AgeDays   AgeUnit = "day"
	AgeMonths AgeUnit = "month"
	AgeYears  AgeUnit = "year"
)

// ParseAgeUnit validates s as an age unit.
func ParseAgeUnit(s string) (AgeUnit, error) {
	switch u := AgeUnit(strings.ToLower(s)); u {
	case AgeDays, AgeMonths, AgeYears:
		return u, nil
	}
	return "", fmt.Errorf("unknown age unit %q (want day, month or year)", s)
}

// ParseDate accepts a YYYY-MM-DD date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Age returns how long t has been planted in whole units. Dead trees stop
// ageing at their last update. The result is "-" without a usable plant
// date or when the plant date lies in the future.
func Age(t types.Tree, unit AgeUnit, now time.Time) string {
	planted, ok := ParseDate(t.PlantDate)
	if !ok {
		return "-"
	}
	end := now
	if t.Status == types.StatusDead {
		if updated, ok := ParseDate(t.UpdatedAt); ok {
			end = updated
		}
	}
	if planted.After(end) {
		return "-"
	}
	days := int(end.Sub(planted).Hours() / 24)
	switch unit {
	case AgeMonths:
		days /= 30
	case AgeYears:
		days /= 365
	}
	return strconv.Itoa(days)
}
