package recommend

import (
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/comps-cli/internal/model"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	rs, err := ParseRules([]byte(testRulesYAML))
	require.NoError(t, err)
	return NewEngine(rs)
}

func TestRecommend_TimeWindowScenario(t *testing.T) {
	// 5 apartments in Seoul inside a 1095-day window, 3 outside; the rule
	// must return exactly the in-window rows, most recent first.
	ref := timePtr(2024, 6, 1)
	var pool []model.PropertyRecord
	inWindow := []*time.Time{
		timePtr(2024, 5, 1), timePtr(2023, 1, 15), timePtr(2022, 8, 1),
		timePtr(2024, 2, 2), timePtr(2021, 7, 1),
	}
	for i, d := range inWindow {
		pool = append(pool, seoulApt(string(rune('1'+i))+"00", d))
	}
	pool = append(pool,
		seoulApt("900", timePtr(2019, 1, 1)),
		seoulApt("901", timePtr(2018, 6, 1)),
		seoulApt("902", nil),
	)

	subj := model.PropertyRecord{
		CaseNo:      "subject",
		Usage:       "아파트",
		RegionBig:   "서울특별시",
		Address:     "서울특별시 강남구 역삼동 1", // shares no lot with candidates
		AuctionDate: ref,
	}

	rs, err := ParseRules([]byte(`
categories:
  APT_OFFICETEL:
    - name: window-only
      time_window_days: 1095
`))
	require.NoError(t, err)
	e := NewEngine(rs)

	got, err := e.Recommend(subj, pool, Options{RuleIndex: 1, TopK: 10})
	require.NoError(t, err)
	require.Len(t, got, 5)

	// Most recent first.
	var prev *int
	for _, r := range got {
		require.NotNil(t, r.Candidate.AuctionDays)
		if prev != nil {
			assert.GreaterOrEqual(t, *prev, *r.Candidate.AuctionDays)
		}
		prev = r.Candidate.AuctionDays
	}
	assert.Equal(t, "100", got[0].Candidate.CaseNo)
}

func TestRecommend_Provenance(t *testing.T) {
	pool := []model.PropertyRecord{seoulApt("100", timePtr(2024, 1, 1))}
	subj := seoulApt("subj", timePtr(2024, 6, 1))
	subj.Address = "서울특별시 강남구 역삼동 100 101호"

	e := testEngine(t)
	got, err := e.Recommend(subj, pool, Options{RuleIndex: 1, TopK: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, "subj", r.SubjectCaseNo)
	assert.Equal(t, "same-complex-3y", r.RuleName)
	assert.Equal(t, 1, r.RuleIndex)
	assert.Equal(t, model.CategoryAptOfficetel, r.Category)
	assert.Equal(t, "100", r.Candidate.CaseNo)
}

func TestRecommend_EmptyPool(t *testing.T) {
	e := testEngine(t)
	got, err := e.Recommend(seoulApt("s", timePtr(2024, 1, 1)), nil, Options{RuleIndex: 1, TopK: 10})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecommend_Deterministic(t *testing.T) {
	pool := []model.PropertyRecord{
		seoulApt("100", timePtr(2024, 1, 1)),
		seoulApt("200", timePtr(2024, 1, 1)),
		seoulApt("300", timePtr(2023, 12, 1)),
	}
	subj := seoulApt("subj", timePtr(2024, 6, 1))
	subj.Address = "서울특별시 강남구 역삼동 999"

	rs, err := ParseRules([]byte("categories:\n  APT_OFFICETEL:\n    - name: w\n      time_window_days: 1095\n"))
	require.NoError(t, err)
	e := NewEngine(rs)

	first, err := e.Recommend(subj, pool, Options{RuleIndex: 1, TopK: 10})
	require.NoError(t, err)
	second, err := e.Recommend(subj, pool, Options{RuleIndex: 1, TopK: 10})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Exact ties on date with no coordinates keep pool order.
	assert.Equal(t, "100", first[0].Candidate.CaseNo)
	assert.Equal(t, "200", first[1].Candidate.CaseNo)
	assert.Equal(t, "300", first[2].Candidate.CaseNo)
}

func TestRecommend_SimilarLandHouse(t *testing.T) {
	// A house in similar-land mode lands in the catch-all category and
	// compares only against bare-land candidates.
	pool := []model.PropertyRecord{
		{CaseNo: "land-1", Usage: "대지", RegionBig: "경기도", AuctionDate: timePtr(2024, 1, 1)},
		{CaseNo: "misc-1", Usage: "잡종지", RegionBig: "경기도", AuctionDate: timePtr(2024, 2, 1)},
		{CaseNo: "house-1", Usage: "주택", RegionBig: "경기도", AuctionDate: timePtr(2024, 3, 1)},
	}
	subj := model.PropertyRecord{
		CaseNo:      "subj",
		Usage:       "주택",
		RegionBig:   "경기도",
		AuctionDate: timePtr(2024, 6, 1),
	}

	rs, err := ParseRules([]byte(`
categories:
  OTHER_BIG:
    default:
      - name: default
        time_window_days: 1095
    land_like:
      - name: land
        time_window_days: 1095
`))
	require.NoError(t, err)
	e := NewEngine(rs)

	got, err := e.Recommend(subj, pool, Options{RuleIndex: 1, SimilarLand: true, TopK: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.CategoryOtherBig, got[0].Category)
	assert.Equal(t, "land", got[0].RuleName)
	for _, r := range got {
		assert.NotEqual(t, "house-1", r.Candidate.CaseNo)
	}
}

func TestRecommend_OptionValidation(t *testing.T) {
	e := testEngine(t)
	subj := seoulApt("s", timePtr(2024, 1, 1))

	_, err := e.Recommend(subj, nil, Options{RuleIndex: 1, TopK: 0})
	assert.Error(t, err)

	_, err = e.Recommend(subj, nil, Options{RuleIndex: 1, TopK: 10, CategoryOverride: "BOGUS"})
	assert.Error(t, err)

	_, err = e.Recommend(subj, nil, Options{RuleIndex: 1, TopK: 10, RegionScope: "tiny"})
	assert.Error(t, err)
}

func TestRecommend_NoRulesDefined(t *testing.T) {
	e := testEngine(t)
	subj := model.PropertyRecord{Usage: "연립", RegionBig: "서울특별시"}

	_, err := e.Recommend(subj, nil, Options{RuleIndex: 1, TopK: 10})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoRulesDefined))
}

func TestRecommend_CategoryOverride(t *testing.T) {
	pool := []model.PropertyRecord{
		{CaseNo: "f-1", Usage: "아파트", RegionBig: "서울특별시", AuctionDate: timePtr(2024, 1, 1)},
	}
	subj := model.PropertyRecord{CaseNo: "s", Usage: "아파트", RegionBig: "서울특별시", AuctionDate: timePtr(2024, 6, 1)}

	rs, err := ParseRules([]byte(`
categories:
  PLANT_WAREHOUSE_ETC:
    default:
      - name: via-override
        time_window_days: 1095
`))
	require.NoError(t, err)
	e := NewEngine(rs)

	got, err := e.Recommend(subj, pool, Options{
		RuleIndex:        1,
		TopK:             10,
		CategoryOverride: model.CategoryPlantWarehouseEtc,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.CategoryPlantWarehouseEtc, got[0].Category)
}

func TestRecommend_TopKTruncation(t *testing.T) {
	var pool []model.PropertyRecord
	for i := 0; i < 20; i++ {
		pool = append(pool, seoulApt("c", timePtr(2024, 1, 1+i%27)))
	}
	subj := seoulApt("s", timePtr(2024, 6, 1))

	rs, err := ParseRules([]byte("categories:\n  APT_OFFICETEL:\n    - name: w\n      time_window_days: 1095\n"))
	require.NoError(t, err)
	e := NewEngine(rs)

	got, err := e.Recommend(subj, pool, Options{RuleIndex: 1, TopK: 7})
	require.NoError(t, err)
	assert.Len(t, got, 7)
}

func TestRecommendAll_AllRanks(t *testing.T) {
	cand := seoulApt("100", timePtr(2024, 1, 1))
	cand.AreaBuilding = model.Float64(25)
	pool := []model.PropertyRecord{cand}

	subj := seoulApt("subj", timePtr(2024, 6, 1))
	subj.Address = "서울특별시 강남구 역삼동 100"
	subj.AreaBuilding = model.Float64(25)

	e := testEngine(t)
	got, err := e.RecommendAll(subj, pool, Options{TopK: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Rank 1 requires same apartment; the lone candidate shares the lot.
	require.Len(t, got[1], 1)
	assert.Equal(t, "same-complex-3y", got[1][0].RuleName)
	assert.Equal(t, "same-district", got[2][0].RuleName)
}

func TestExpandRings_SparsePool(t *testing.T) {
	// Two in-region candidates is below the minimum; the ring expansion
	// pulls in the near out-of-region candidate but not the far one.
	subj := model.PropertyRecord{
		Lat: model.Float64(37.0), Lon: model.Float64(127.0),
	}
	pool := []model.PropertyRecord{
		{CaseNo: "in-1"},
		{CaseNo: "in-2"},
		{CaseNo: "near", Lat: model.Float64(37.001), Lon: model.Float64(127.0)},  // ~111m
		{CaseNo: "far", Lat: model.Float64(37.5), Lon: model.Float64(127.0)},     // ~55km
	}
	fb := FallbackConfig{MinCandidates: 3, DistanceStepsM: []float64{500, 1000}}

	got := expandRings(pool, []int{0, 1}, allRows(4), subj, fb)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestExpandRings_NoCoordinatesNoOp(t *testing.T) {
	pool := []model.PropertyRecord{{CaseNo: "a"}, {CaseNo: "b"}}
	fb := FallbackConfig{MinCandidates: 5, DistanceStepsM: []float64{500}}

	got := expandRings(pool, []int{0}, allRows(2), model.PropertyRecord{}, fb)
	assert.Equal(t, []int{0}, got)
}

func TestExpandRings_AlreadyEnough(t *testing.T) {
	pool := []model.PropertyRecord{{CaseNo: "a"}, {CaseNo: "b"}}
	fb := FallbackConfig{MinCandidates: 1, DistanceStepsM: []float64{500}}

	got := expandRings(pool, []int{0}, allRows(2), model.PropertyRecord{}, fb)
	assert.Equal(t, []int{0}, got)
}
