package recommend

import (
	"strings"

	"github.com/sells-group/comps-cli/internal/model"
)

// PyeongM2 is the size of one pyeong in square meters. Unit prices are
// quoted per pyeong throughout, so raw m² areas are divided by this constant
// before any ratio is formed.
const PyeongM2 = 3.305785

// aptLikeKeywords mark usages whose building unit price may be backfilled
// from the total appraisal when no building appraisal exists (e.g. a KB
// market-price substitute on the bank sheet).
var aptLikeKeywords = []string{"아파트", "오피스텔", "다세대"}

// DeriveFields computes the per-pyeong unit prices and the total appraisal
// on a copy of rec, leaving the input untouched.
//
// Invariants:
//   - a unit price is nil whenever its numerator or denominator is missing
//     or zero, never zero-divided and never defaulted to zero;
//   - an explicit TotalAppraisalPrice on the record (bank-sheet total or KB
//     substitute) is trusted over the building+land sum.
func DeriveFields(rec model.PropertyRecord) model.PropertyRecord {
	out := rec

	bAreaPy := toPyeong(rec.BuildingArea)
	lAreaPy := toPyeong(rec.LandArea)
	bApp := rec.BuildingAppraisalPrice
	lApp := rec.LandAppraisalPrice

	switch {
	case model.Present(rec.TotalAppraisalPrice):
		// keep the supplied total
	case model.Present(bApp) && model.Present(lApp):
		out.TotalAppraisalPrice = model.Float64(*bApp + *lApp)
	default:
		out.TotalAppraisalPrice = nil
	}

	out.BuildingUnitPrice = ratio(bApp, bAreaPy)
	out.LandUnitPrice = ratio(lApp, lAreaPy)

	if out.BuildingUnitPrice == nil && isAptLike(rec.Usage) {
		out.BuildingUnitPrice = aptUnitPriceFallback(rec, out.TotalAppraisalPrice, bAreaPy)
	}

	return out
}

// aptUnitPriceFallback derives a building unit price for apartment-like
// usages: prefer the precomputed price-per-area field, else total appraisal
// over building area in pyeong (bank-sheet pyeong column first, then the
// converted m² area).
func aptUnitPriceFallback(rec model.PropertyRecord, total, bAreaPy *float64) *float64 {
	if model.Present(rec.TotalAppraisalPriceByArea) {
		v := *rec.TotalAppraisalPriceByArea
		return &v
	}
	denom := rec.AreaBuilding
	if !model.Present(denom) {
		denom = bAreaPy
	}
	return ratio(total, denom)
}

func isAptLike(usage string) bool {
	for _, k := range aptLikeKeywords {
		if strings.Contains(usage, k) {
			return true
		}
	}
	return false
}

// toPyeong converts a m² area to pyeong, nil in and nil/zero out.
func toPyeong(m2 *float64) *float64 {
	if !model.Present(m2) {
		return nil
	}
	return model.Float64(*m2 / PyeongM2)
}

// ratio returns num/den, or nil when either side is missing or zero.
func ratio(num, den *float64) *float64 {
	if !model.Present(num) || !model.Present(den) {
		return nil
	}
	return model.Float64(*num / *den)
}

// EnrichSubject derives fields and backfills AuctionDays on a subject before
// filtering. Candidates get the same treatment in EnrichPool.
func EnrichSubject(rec model.PropertyRecord) model.PropertyRecord {
	out := DeriveFields(rec)
	if out.AuctionDays == nil {
		out.AuctionDays = model.DaysFromEpochPtr(out.AuctionDate)
	}
	return out
}

// EnrichPool derives fields and auction days for every candidate, returning
// a fresh slice; the input pool is never mutated.
func EnrichPool(pool []model.PropertyRecord) []model.PropertyRecord {
	out := make([]model.PropertyRecord, len(pool))
	for i, rec := range pool {
		out[i] = EnrichSubject(rec)
	}
	return out
}
