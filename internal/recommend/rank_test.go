package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/comps-cli/internal/model"
)

func TestRankRows_RecencyThenDistance(t *testing.T) {
	subj := model.PropertyRecord{Lat: model.Float64(37.5), Lon: model.Float64(127.0)}
	pool := []model.PropertyRecord{
		{CaseNo: "old", AuctionDays: model.Int(100)},
		{CaseNo: "recent-far", AuctionDays: model.Int(200), Lat: model.Float64(37.6), Lon: model.Float64(127.0)},
		{CaseNo: "recent-near", AuctionDays: model.Int(200), Lat: model.Float64(37.5), Lon: model.Float64(127.0)},
		{CaseNo: "undated"},
	}

	got := rankRows(pool, allRows(4), subj)
	assert.Equal(t, []int{2, 1, 0, 3}, got)
}

func TestRankRows_TiesKeepPoolOrder(t *testing.T) {
	// Same auction date, no coordinates on either side: both sort keys tie
	// and the pool order must survive the sort.
	subj := model.PropertyRecord{}
	pool := []model.PropertyRecord{
		{CaseNo: "first", AuctionDays: model.Int(150)},
		{CaseNo: "second", AuctionDays: model.Int(150)},
		{CaseNo: "third", AuctionDays: model.Int(150)},
	}

	got := rankRows(pool, allRows(3), subj)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestTruncate(t *testing.T) {
	rows := []int{0, 1, 2, 3}
	assert.Equal(t, []int{0, 1}, truncate(rows, 2))
	assert.Equal(t, rows, truncate(rows, 10))
	assert.Equal(t, rows, truncate(rows, 0))
}
