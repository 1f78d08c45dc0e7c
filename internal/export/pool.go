package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/comps-cli/internal/model"
)

// poolHeader uses the same snake_case columns the pool loader reads, so a
// written pool round-trips through a later run.
var poolHeader = []string{
	"case_no",
	"address",
	"usage",
	"region_big",
	"region_mid",
	"region_small",
	"lat",
	"lon",
	"building_area",
	"land_area",
	"area_building",
	"area_land",
	"appraisal_price",
	"building_appraisal_price",
	"land_appraisal_price",
	"winning_price",
	"auction_date",
	"popup_url",
	"new_build_date",
	"valuation_base_date",
	"big_round",
	"second_big_price",
}

// WritePoolCSV writes pool records as UTF-8 CSV with a BOM.
func WritePoolCSV(w io.Writer, pool []model.PropertyRecord) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return eris.Wrap(err, "export: write bom")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(poolHeader); err != nil {
		return eris.Wrap(err, "export: write pool header")
	}
	for i := range pool {
		r := &pool[i]
		row := []string{
			r.CaseNo,
			r.Address,
			r.Usage,
			r.RegionBig,
			r.RegionMid,
			r.RegionSmall,
			formatFloat(r.Lat),
			formatFloat(r.Lon),
			formatFloat(r.BuildingArea),
			formatFloat(r.LandArea),
			formatFloat(r.AreaBuilding),
			formatFloat(r.AreaLand),
			formatPrice(r.AppraisalPrice),
			formatPrice(r.BuildingAppraisalPrice),
			formatPrice(r.LandAppraisalPrice),
			formatPrice(r.WinningPrice),
			formatDate(r.AuctionDate),
			r.PopupURL,
			r.NewBuildDate,
			r.ValuationBaseDate,
			r.BigRound,
			formatPrice(r.SecondBigPrice),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write pool row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush pool")
}

// WritePoolCSVFile writes pool records to path.
func WritePoolCSVFile(path string, pool []model.PropertyRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()
	if err := WritePoolCSV(f, pool); err != nil {
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
