package recommend

import "strings"

// usageExceptionMap widens the allowed comparison set for a handful of
// usages that are interchangeable in practice. Matching is exact, not
// substring. Keys and values are the normalized usage labels of the
// candidate pool.
var usageExceptionMap = map[string][]string{
	"사무실":    {"사무실", "근린상가"},
	"공장":     {"공장", "창고"},
	"창고":     {"공장", "창고"},
	"농가관련시설": {"농가관련시설", "창고"},
	"대지":     {"대지", "잡종지"},
	"잡종지":    {"잡종지", "대지"},
	"목장용지":   {"목장용지", "과수원", "농지"},
	"공장용지":   {"공장용지", "창고용지", "잡종지"},
	"학교용지":   {"학교용지", "잡종지"},
	"창고용지":   {"창고용지", "잡종지"},
	"체육용지":   {"체육용지", "잡종지"},
	"종교용지":   {"종교용지", "잡종지"},
	"기타용지":   {"기타용지", "잡종지"},
}

// Similar-land mode compares improved structures against bare land, so the
// allowed set is redirected entirely to land-parcel labels.
var similarLandIndustrial = []string{
	"공장", "창고", "농장", "농가관련시설", "주유소(위험물)", "분뇨쓰레기처리", "자동차관련시설",
}

var similarLandResidential = []string{
	"주택", "단독주택", "다가구", "근린주택", "근린시설", "숙박시설", "숙박(콘도등)",
	"교육시설", "종교시설", "의료시설", "목욕탕", "노유자시설", "장례관련시설", "문화및집회시설",
}

// AllowedUsages computes the usage labels a candidate may carry to be
// comparable with the subject. The default is the subject's own usage; the
// exception map widens it, and similar-land mode overrides industrial and
// residential/community usages with land-parcel labels.
func AllowedUsages(usage string, similarLand bool) []string {
	u := strings.TrimSpace(usage)
	if u == "" {
		return nil
	}
	allow := []string{u}
	if mapped, ok := usageExceptionMap[u]; ok {
		allow = mapped
	}
	if similarLand {
		if containsExact(similarLandIndustrial, u) {
			allow = []string{"공장용지", "창고용지"}
		}
		if containsExact(similarLandResidential, u) {
			allow = []string{"대지", "잡종지"}
		}
	}
	return allow
}

func containsExact(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
