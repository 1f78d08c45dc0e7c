package recommend

import (
	"regexp"
	"strings"
	"time"

	"github.com/sells-group/comps-cli/internal/model"
)

// The filter pipeline narrows the candidate pool one stage at a time, in a
// fixed order: region, usage scope, same-facility, time window, same
// building, numeric tolerances, radius. Stages operate on row indices into
// the enriched pool so the records themselves are never copied or mutated.

// NormalizeProvince normalizes a big-region label for comparison: spaces
// are dropped and the long-form "특별자치도" suffix collapses to "도", so
// 강원특별자치도 and 강원도 compare equal.
func NormalizeProvince(v string) string {
	s := strings.Join(strings.Fields(v), "")
	if strings.HasSuffix(s, "특별자치도") {
		s = strings.TrimSuffix(s, "특별자치도") + "도"
	}
	return s
}

func filterRegion(pool []model.PropertyRecord, rows []int, subj model.PropertyRecord, scope model.RegionScope) []int {
	sbig := NormalizeProvince(subj.RegionBig)
	if sbig != "" {
		rows = keep(rows, func(i int) bool {
			return NormalizeProvince(pool[i].RegionBig) == sbig
		})
	}
	if scope == model.RegionScopeMid {
		smid := strings.TrimSpace(subj.RegionMid)
		if smid == "" {
			// no mid-region on the subject means no defensible match
			return rows[:0]
		}
		rows = keep(rows, func(i int) bool {
			return strings.TrimSpace(pool[i].RegionMid) == smid
		})
	}
	return rows
}

func filterUsage(pool []model.PropertyRecord, rows []int, allowed []string) []int {
	if len(allowed) == 0 {
		return rows
	}
	set := make(map[string]bool, len(allowed))
	for _, u := range allowed {
		set[u] = true
	}
	return keep(rows, func(i int) bool {
		return set[strings.TrimSpace(pool[i].Usage)]
	})
}

func filterSameFacility(pool []model.PropertyRecord, rows []int, usage string) []int {
	u := strings.TrimSpace(usage)
	if u == "" {
		return rows
	}
	return keep(rows, func(i int) bool {
		return strings.TrimSpace(pool[i].Usage) == u
	})
}

// filterTimeWindow keeps candidates auctioned within days before the
// subject's reference date, inclusive on both ends. The reference is the
// subject's own auction date when known, else today. Candidates without an
// auction date are excluded.
func filterTimeWindow(pool []model.PropertyRecord, rows []int, subj model.PropertyRecord, days int) []int {
	if days <= 0 {
		return rows
	}
	ref := referenceDays(subj)
	lo, hi := ref-days, ref
	return keep(rows, func(i int) bool {
		d := pool[i].AuctionDays
		return d != nil && *d >= lo && *d <= hi
	})
}

func referenceDays(subj model.PropertyRecord) int {
	if subj.AuctionDays != nil {
		return *subj.AuctionDays
	}
	if d := model.DaysFromEpochPtr(subj.AuctionDate); d != nil {
		return *d
	}
	return model.DaysFromEpoch(time.Now())
}

var lotNumberRe = regexp.MustCompile(`\d{1,6}(-\d{1,6})?`)

// PrefixUpToLot reduces an address to the portion up through its first lot
// number (e.g. "서울 강남구 역삼동 724-1 XX빌딩 3층" → "서울 강남구 역삼동
// 724-1"), which identifies the building while ignoring floor and unit
// suffixes. Whitespace runs are collapsed first. Addresses without a lot
// number are returned whole.
func PrefixUpToLot(addr string) string {
	s := strings.Join(strings.Fields(addr), " ")
	if loc := lotNumberRe.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[:loc[1]])
	}
	return s
}

func filterSameBuilding(pool []model.PropertyRecord, rows []int, subj model.PropertyRecord) []int {
	base := PrefixUpToLot(subj.Address)
	if base == "" {
		return rows[:0]
	}
	return keep(rows, func(i int) bool {
		return PrefixUpToLot(pool[i].Address) == base
	})
}

// withinPct reports whether value lies in [center*(1-pct), center*(1+pct)],
// inclusive on both bounds.
func withinPct(center, value, pct float64) bool {
	lo, hi := center*(1-pct), center*(1+pct)
	return value >= lo && value <= hi
}

// featureValues resolves the subject center and candidate accessor for one
// filter feature. Areas compare in pyeong, preferring the pyeong columns of
// the source sheets over converted m² values. The total-appraisal feature
// compares the subject's derived total against the candidate pool's
// appraisal_price column.
func featureValues(key FeatureKey, subj model.PropertyRecord) (center *float64, candidate func(model.PropertyRecord) *float64) {
	switch key {
	case FeatureBuildingAreaPct:
		return areaPyeong(subj.AreaBuilding, subj.BuildingArea), func(c model.PropertyRecord) *float64 {
			return areaPyeong(c.AreaBuilding, c.BuildingArea)
		}
	case FeatureLandAreaPct:
		return areaPyeong(subj.AreaLand, subj.LandArea), func(c model.PropertyRecord) *float64 {
			return areaPyeong(c.AreaLand, c.LandArea)
		}
	case FeatureBuildingUnitPct:
		return subj.BuildingUnitPrice, func(c model.PropertyRecord) *float64 {
			return c.BuildingUnitPrice
		}
	case FeatureTotalAppraisalPct:
		return subj.TotalAppraisalPrice, func(c model.PropertyRecord) *float64 {
			return c.AppraisalPrice
		}
	}
	return nil, nil
}

func areaPyeong(pyeong, m2 *float64) *float64 {
	if model.Present(pyeong) {
		return pyeong
	}
	return toPyeong(m2)
}

// filterValueRanges applies every numeric tolerance in the rule. A missing
// subject center empties the result outright: the rule cannot be evaluated
// without the data it keys on, and a silently skipped filter would admit
// wildly dissimilar candidates.
func filterValueRanges(pool []model.PropertyRecord, rows []int, subj model.PropertyRecord, filters map[FeatureKey]float64, missing func(FeatureKey)) []int {
	for _, key := range orderedFilterKeys(filters) {
		pct := filters[key]
		center, candValue := featureValues(key, subj)
		if candValue == nil {
			continue
		}
		if !model.Present(center) {
			if missing != nil {
				missing(key)
			}
			return rows[:0]
		}
		rows = keep(rows, func(i int) bool {
			v := candValue(pool[i])
			return v != nil && withinPct(*center, *v, pct)
		})
	}
	return rows
}

// orderedFilterKeys fixes the application order of tolerance filters so a
// missing-center empty result is attributed deterministically.
func orderedFilterKeys(filters map[FeatureKey]float64) []FeatureKey {
	order := []FeatureKey{
		FeatureBuildingAreaPct,
		FeatureBuildingUnitPct,
		FeatureTotalAppraisalPct,
		FeatureLandAreaPct,
	}
	out := order[:0:0]
	for _, k := range order {
		if _, ok := filters[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// filterRadius keeps candidates within radiusM meters of the subject. When
// either side lacks coordinates the haversine test is impossible, so the
// subject-side miss degrades to a text approximation on the candidate
// address, tiered by radius magnitude; a candidate-side miss excludes that
// candidate.
func filterRadius(pool []model.PropertyRecord, rows []int, subj model.PropertyRecord, radiusM float64) []int {
	if radiusM <= 0 {
		return rows
	}
	if subj.Lat == nil || subj.Lon == nil {
		return textRadiusApprox(pool, rows, subj, radiusM)
	}
	return keep(rows, func(i int) bool {
		d := DistanceM(subj, pool[i])
		return d != nil && *d <= radiusM
	})
}

// textRadiusApprox approximates a radius by requiring progressively fewer
// administrative components of the subject's region to appear in the
// candidate address: town+district+city inside ~1.2km, district+city inside
// ~12km, city alone beyond that.
func textRadiusApprox(pool []model.PropertyRecord, rows []int, subj model.PropertyRecord, radiusM float64) []int {
	city := strings.TrimSpace(subj.RegionBig)
	district := strings.TrimSpace(subj.RegionMid)
	town := strings.TrimSpace(subj.RegionSmall)

	var parts []string
	switch {
	case radiusM <= 1200 && city != "" && district != "" && town != "":
		parts = []string{city, district, town}
	case radiusM <= 12000 && city != "" && district != "":
		parts = []string{city, district}
	case city != "":
		parts = []string{city}
	default:
		return rows
	}
	return keep(rows, func(i int) bool {
		addr := pool[i].Address
		for _, p := range parts {
			if !strings.Contains(addr, p) {
				return false
			}
		}
		return true
	})
}

// keep filters rows in place order, returning a fresh slice.
func keep(rows []int, pred func(i int) bool) []int {
	out := rows[:0:0]
	for _, i := range rows {
		if pred(i) {
			out = append(out, i)
		}
	}
	return out
}
