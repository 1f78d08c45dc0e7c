package recommend

import (
	"time"

	"github.com/sells-group/comps-cli/internal/model"
)

func timePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// seoulApt builds a minimal apartment candidate in Seoul for pipeline tests.
func seoulApt(caseNo string, auctionDate *time.Time) model.PropertyRecord {
	return model.PropertyRecord{
		CaseNo:      caseNo,
		Usage:       "아파트",
		RegionBig:   "서울특별시",
		RegionMid:   "강남구",
		Address:     "서울특별시 강남구 역삼동 " + caseNo,
		AuctionDate: auctionDate,
	}
}
