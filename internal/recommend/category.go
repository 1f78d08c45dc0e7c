// Package recommend implements the rule-based comparable-sale engine:
// category classification, per-category rule sequences, the progressive
// candidate filter pipeline, and recency/distance ranking.
package recommend

import (
	"strings"

	"github.com/sells-group/comps-cli/internal/model"
)

// Keyword tables for classification. These are ordered pattern-match tables:
// earlier entries win, and "아파트형공장" must be checked before the plain
// 아파트/공장 keywords because it is a compound term. Reordering changes
// behavior, so the priority below is a contract, not a style choice.
var (
	retailOfficeKeywords = []string{
		"근린상가", "상가", "사무실",
		"숙박시설", "숙박(콘도등)", "교육시설", "종교시설", "의료시설",
		"목욕탕", "노유자시설", "문화및집회시설",
	}

	industrialKeywords = []string{
		"공장", "창고", "농가관련시설", "주유소(위험물)", "분뇨", "쓰레기", "자동차관련시설",
	}

	// Residential/community usages that similar-land mode reroutes to the
	// catch-all category: when comparing against bare land, an improved
	// structure of these types is never a comparable.
	residentialCommunityKeywords = []string{
		"주택", "다가구", "근린주택", "근린시설", "숙박시설", "숙박(콘도등)",
		"교육시설", "종교시설", "의료시설", "목욕탕", "노유자시설",
		"장례관련시설", "문화및집회시설",
	}
)

// Classify maps a free-text usage label to one of the five categories. It is
// total (every input maps to exactly one category) and pure: same text and
// mode always yield the same category.
func Classify(usage string, similarLand bool) model.Category {
	u := strings.TrimSpace(usage)

	if similarLand && containsAny(u, residentialCommunityKeywords) {
		return model.CategoryOtherBig
	}

	switch {
	case strings.Contains(u, "아파트형공장"):
		return model.CategoryRetailOfficeAptFactory
	case strings.Contains(u, "아파트"), strings.Contains(u, "오피스텔"):
		return model.CategoryAptOfficetel
	case strings.Contains(u, "연립"), strings.Contains(u, "다세대"):
		return model.CategoryRowhouseMulti
	case containsAny(u, retailOfficeKeywords):
		return model.CategoryRetailOfficeAptFactory
	case containsAny(u, industrialKeywords):
		return model.CategoryPlantWarehouseEtc
	default:
		return model.CategoryOtherBig
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
