package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/comps-cli/internal/model"
)

func TestNormalizeProvince(t *testing.T) {
	assert.Equal(t, "강원도", NormalizeProvince("강원특별자치도"))
	assert.Equal(t, "강원도", NormalizeProvince("강원도"))
	assert.Equal(t, "서울특별시", NormalizeProvince("서울 특별시"))
	assert.Equal(t, "", NormalizeProvince("  "))
}

func TestFilterRegion_BigNormalization(t *testing.T) {
	pool := []model.PropertyRecord{
		{RegionBig: "강원도"},
		{RegionBig: "강원특별자치도"},
		{RegionBig: "경기도"},
	}
	subj := model.PropertyRecord{RegionBig: "강원특별자치도"}

	got := filterRegion(pool, allRows(3), subj, model.RegionScopeBig)
	assert.Equal(t, []int{0, 1}, got)
}

func TestFilterRegion_MidScopeNeedsSubjectMid(t *testing.T) {
	pool := []model.PropertyRecord{{RegionBig: "서울특별시", RegionMid: "강남구"}}
	subj := model.PropertyRecord{RegionBig: "서울특별시"}

	got := filterRegion(pool, allRows(1), subj, model.RegionScopeMid)
	assert.Empty(t, got)
}

func TestFilterRegion_MidScope(t *testing.T) {
	pool := []model.PropertyRecord{
		{RegionBig: "서울특별시", RegionMid: "강남구"},
		{RegionBig: "서울특별시", RegionMid: "서초구"},
	}
	subj := model.PropertyRecord{RegionBig: "서울특별시", RegionMid: "강남구"}

	got := filterRegion(pool, allRows(2), subj, model.RegionScopeMid)
	assert.Equal(t, []int{0}, got)
}

func TestAllowedUsages_Default(t *testing.T) {
	assert.Equal(t, []string{"아파트"}, AllowedUsages("아파트", false))
	assert.Nil(t, AllowedUsages("  ", false))
}

func TestAllowedUsages_ExceptionMap(t *testing.T) {
	assert.ElementsMatch(t, []string{"사무실", "근린상가"}, AllowedUsages("사무실", false))
	assert.ElementsMatch(t, []string{"공장", "창고"}, AllowedUsages("공장", false))
	assert.ElementsMatch(t, []string{"공장", "창고"}, AllowedUsages("창고", false))
	assert.ElementsMatch(t, []string{"목장용지", "과수원", "농지"}, AllowedUsages("목장용지", false))
}

func TestAllowedUsages_SimilarLandRedirects(t *testing.T) {
	// Industrial structures compare only against industrial land lots.
	assert.Equal(t, []string{"공장용지", "창고용지"}, AllowedUsages("공장", true))
	assert.Equal(t, []string{"공장용지", "창고용지"}, AllowedUsages("주유소(위험물)", true))
	// Residential and community structures compare only against bare land.
	assert.Equal(t, []string{"대지", "잡종지"}, AllowedUsages("단독주택", true))
	assert.Equal(t, []string{"대지", "잡종지"}, AllowedUsages("의료시설", true))
	// Land usages keep their exception mapping in either mode.
	assert.ElementsMatch(t, []string{"공장용지", "창고용지", "잡종지"}, AllowedUsages("공장용지", true))
}

func TestFilterTimeWindow_InclusiveBounds(t *testing.T) {
	ref := timePtr(2024, 6, 1)
	pool := []model.PropertyRecord{
		{AuctionDate: timePtr(2024, 6, 1)},  // day 0, kept
		{AuctionDate: timePtr(2024, 3, 3)},  // exactly 90 days back, kept
		{AuctionDate: timePtr(2024, 3, 2)},  // 91 days back, dropped
		{AuctionDate: timePtr(2024, 6, 2)},  // future, dropped
		{},                                  // no date, dropped
	}
	pool = EnrichPool(pool)
	subj := EnrichSubject(model.PropertyRecord{AuctionDate: ref})

	got := filterTimeWindow(pool, allRows(len(pool)), subj, 90)
	assert.Equal(t, []int{0, 1}, got)
}

func TestPrefixUpToLot(t *testing.T) {
	cases := []struct{ in, want string }{
		{"서울특별시 강남구 역삼동 724-1 가나빌딩 3층 301호", "서울특별시 강남구 역삼동 724-1"},
		{"서울특별시  강남구  역삼동  724", "서울특별시 강남구 역삼동 724"},
		{"경기도 이천시 마장면 어느리", "경기도 이천시 마장면 어느리"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PrefixUpToLot(tc.in), "addr %q", tc.in)
	}
}

func TestFilterSameBuilding(t *testing.T) {
	pool := []model.PropertyRecord{
		{Address: "서울 강남구 역삼동 724-1 가나빌딩 101호"},
		{Address: "서울 강남구 역삼동 724-1 가나빌딩 902호"},
		{Address: "서울 강남구 역삼동 725 다라빌딩"},
	}
	subj := model.PropertyRecord{Address: "서울 강남구 역삼동 724-1"}

	got := filterSameBuilding(pool, allRows(3), subj)
	assert.Equal(t, []int{0, 1}, got)

	// A subject without an address cannot assert building identity.
	got = filterSameBuilding(pool, allRows(3), model.PropertyRecord{})
	assert.Empty(t, got)
}

func TestWithinPct_InclusiveBoundary(t *testing.T) {
	assert.True(t, withinPct(1000, 1200, 0.2))
	assert.True(t, withinPct(1000, 800, 0.2))
	assert.False(t, withinPct(1000, 1200.0001, 0.2))
	assert.False(t, withinPct(1000, 799.9999, 0.2))
}

func TestFilterValueRanges_MissingCenterEmptiesResult(t *testing.T) {
	pool := EnrichPool([]model.PropertyRecord{
		{AppraisalPrice: model.Float64(1_000_000_000)},
	})
	subj := EnrichSubject(model.PropertyRecord{}) // no appraisal data at all

	var missed []FeatureKey
	got := filterValueRanges(pool, allRows(1), subj,
		map[FeatureKey]float64{FeatureTotalAppraisalPct: 0.2},
		func(k FeatureKey) { missed = append(missed, k) })

	assert.Empty(t, got)
	assert.Equal(t, []FeatureKey{FeatureTotalAppraisalPct}, missed)
}

func TestFilterValueRanges_TotalAppraisalAgainstCandidateAppraisal(t *testing.T) {
	pool := EnrichPool([]model.PropertyRecord{
		{CaseNo: "A", AppraisalPrice: model.Float64(1_250_000_000)},
		{CaseNo: "B", AppraisalPrice: model.Float64(1_200_000_000)},
		{CaseNo: "C", AppraisalPrice: model.Float64(900_000_000)},
	})
	subj := EnrichSubject(model.PropertyRecord{TotalAppraisalPrice: model.Float64(1_000_000_000)})

	got := filterValueRanges(pool, allRows(3), subj,
		map[FeatureKey]float64{FeatureTotalAppraisalPct: 0.2}, nil)

	// A is above 1.2B and excluded; B sits exactly on the inclusive
	// boundary; C is inside.
	assert.Equal(t, []int{1, 2}, got)
}

func TestFilterValueRanges_AreasCompareInPyeong(t *testing.T) {
	pool := EnrichPool([]model.PropertyRecord{
		{BuildingArea: model.Float64(330.5785)}, // 100 pyeong
		{BuildingArea: model.Float64(1000)},     // ~302 pyeong
	})
	subj := EnrichSubject(model.PropertyRecord{AreaBuilding: model.Float64(100)})

	got := filterValueRanges(pool, allRows(2), subj,
		map[FeatureKey]float64{FeatureBuildingAreaPct: 0.3}, nil)
	assert.Equal(t, []int{0}, got)
}

func TestFilterRadius_Haversine(t *testing.T) {
	subj := model.PropertyRecord{Lat: model.Float64(0), Lon: model.Float64(0)}
	pool := []model.PropertyRecord{
		{Lat: model.Float64(0.01), Lon: model.Float64(0)}, // ~1113m
		{Lat: model.Float64(0.10), Lon: model.Float64(0)}, // ~11km
		{}, // no coordinates, excluded when subject has them
	}

	got := filterRadius(pool, allRows(3), subj, 2000)
	assert.Equal(t, []int{0}, got)
}

func TestFilterRadius_TextFallbackTiers(t *testing.T) {
	subj := model.PropertyRecord{
		RegionBig:   "서울특별시",
		RegionMid:   "강남구",
		RegionSmall: "역삼동",
	}
	pool := []model.PropertyRecord{
		{Address: "서울특별시 강남구 역삼동 724-1"},
		{Address: "서울특별시 강남구 대치동 12"},
		{Address: "서울특별시 서초구 방배동 3"},
		{Address: "부산광역시 해운대구 우동 5"},
	}
	rows := allRows(4)

	// Tight radius: town, district, and city must all appear.
	assert.Equal(t, []int{0}, filterRadius(pool, rows, subj, 1000))
	// Mid radius: district and city.
	assert.Equal(t, []int{0, 1}, filterRadius(pool, rows, subj, 10000))
	// Wide radius: city only.
	assert.Equal(t, []int{0, 1, 2}, filterRadius(pool, rows, subj, 50000))
}
