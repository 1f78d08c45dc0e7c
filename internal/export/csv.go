package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/comps-cli/internal/model"
)

// csvHeader is the review-sheet column order. Areas are reported in pyeong.
var csvHeader = []string{
	"rule",
	"category",
	"case_no",
	"auction_date",
	"usage",
	"address",
	"land_area",
	"building_area",
	"new_build_date",
	"appraisal_price",
	"land_appraisal_price",
	"building_appraisal_price",
	"valuation_base_date",
	"winning_price",
	"big_round",
	"second_big_price",
	"popup_url",
}

// WriteCSV writes recommendations as UTF-8 CSV with a BOM so Excel detects
// the encoding of the Korean text.
func WriteCSV(w io.Writer, recs []model.Recommendation) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return eris.Wrap(err, "export: write bom")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "export: write header")
	}
	for _, r := range recs {
		c := r.Candidate
		row := []string{
			ruleLabel(r),
			string(r.Category),
			c.CaseNo,
			formatDate(c.AuctionDate),
			c.Usage,
			c.Address,
			formatFloat(pyeongOf(c.AreaLand, c.LandArea)),
			formatFloat(pyeongOf(c.AreaBuilding, c.BuildingArea)),
			c.NewBuildDate,
			formatPrice(c.AppraisalPrice),
			formatPrice(c.LandAppraisalPrice),
			formatPrice(c.BuildingAppraisalPrice),
			c.ValuationBaseDate,
			formatPrice(c.WinningPrice),
			c.BigRound,
			formatPrice(c.SecondBigPrice),
			c.PopupURL,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// WriteCSVFile writes recommendations to path. Parent directories must
// already exist.
func WriteCSVFile(path string, recs []model.Recommendation) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()
	if err := WriteCSV(f, recs); err != nil {
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

const pyeongM2 = 3.305785

// pyeongOf prefers the pyeong column and falls back to converting m².
func pyeongOf(pyeong, m2 *float64) *float64 {
	if model.Present(pyeong) {
		return pyeong
	}
	if !model.Present(m2) {
		return nil
	}
	return model.Float64(*m2 / pyeongM2)
}
