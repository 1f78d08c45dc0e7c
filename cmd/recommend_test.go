package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectFromFlags(t *testing.T) {
	recSubjectAddress = "서울특별시 강남구 역삼동 123-4"
	recSubjectUsage = "아파트"
	recSubjectCaseNo = "2024타경1"
	recSubjectBuildingArea = "84.9"
	recSubjectTotalApp = "1,200,000,000"
	recSubjectDate = "2024-03-05"
	recSubjectLat = "37.5"
	recSubjectLon = "127.03"
	t.Cleanup(func() {
		recSubjectAddress, recSubjectUsage, recSubjectCaseNo = "", "", ""
		recSubjectBuildingArea, recSubjectTotalApp, recSubjectDate = "", "", ""
		recSubjectLat, recSubjectLon = "", ""
	})

	s := subjectFromFlags()

	assert.Equal(t, "2024타경1", s.CaseNo)
	assert.Equal(t, "아파트", s.Usage)
	require.NotNil(t, s.BuildingArea)
	assert.InDelta(t, 84.9, *s.BuildingArea, 1e-9)
	require.NotNil(t, s.TotalAppraisalPrice)
	assert.InDelta(t, 1.2e9, *s.TotalAppraisalPrice, 1)
	require.NotNil(t, s.AuctionDate)
	require.NotNil(t, s.Lat)
	assert.InDelta(t, 37.5, *s.Lat, 1e-9)

	assert.Equal(t, "서울특별시", s.RegionBig)
	assert.Equal(t, "강남구", s.RegionMid)
	assert.Equal(t, "역삼동", s.RegionSmall)
}

func TestSubjectFromFlags_DirtyNumbersDegradeToNil(t *testing.T) {
	recSubjectAddress = "부산광역시 해운대구 우동 1-1"
	recSubjectUsage = "근린상가"
	recSubjectLandArea = "n/a"
	t.Cleanup(func() {
		recSubjectAddress, recSubjectUsage, recSubjectLandArea = "", "", ""
	})

	s := subjectFromFlags()
	assert.Nil(t, s.LandArea)
	assert.Nil(t, s.AuctionDate)
	assert.Equal(t, "부산광역시", s.RegionBig)
	assert.Equal(t, "해운대구", s.RegionMid)
}
