package fetcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/comps-cli/internal/model"
)

// poolSetters maps a normalized pool column header to the field it fills.
// The constructed auction pool uses snake_case English headers; a few
// aliases cover older exports.
var poolSetters = map[string]func(*model.PropertyRecord, string){
	"case_no":  func(r *model.PropertyRecord, v string) { r.CaseNo = strings.TrimSpace(v) },
	"address":  func(r *model.PropertyRecord, v string) { r.Address = strings.TrimSpace(v) },
	"usage":    func(r *model.PropertyRecord, v string) { r.Usage = strings.TrimSpace(v) },
	"region_big": func(r *model.PropertyRecord, v string) { r.RegionBig = strings.TrimSpace(v) },
	"region_mid": func(r *model.PropertyRecord, v string) { r.RegionMid = strings.TrimSpace(v) },
	"region_small": func(r *model.PropertyRecord, v string) { r.RegionSmall = strings.TrimSpace(v) },
	"lat":       func(r *model.PropertyRecord, v string) { r.Lat = model.ParseFloat(v) },
	"latitude":  func(r *model.PropertyRecord, v string) { r.Lat = model.ParseFloat(v) },
	"lon":       func(r *model.PropertyRecord, v string) { r.Lon = model.ParseFloat(v) },
	"longitude": func(r *model.PropertyRecord, v string) { r.Lon = model.ParseFloat(v) },
	"building_area": func(r *model.PropertyRecord, v string) { r.BuildingArea = model.ParseFloat(v) },
	"land_area":     func(r *model.PropertyRecord, v string) { r.LandArea = model.ParseFloat(v) },
	"area_building": func(r *model.PropertyRecord, v string) { r.AreaBuilding = model.ParseFloat(v) },
	"area_land":     func(r *model.PropertyRecord, v string) { r.AreaLand = model.ParseFloat(v) },
	"appraisal_price":          func(r *model.PropertyRecord, v string) { r.AppraisalPrice = model.ParseFloat(v) },
	"building_appraisal_price": func(r *model.PropertyRecord, v string) { r.BuildingAppraisalPrice = model.ParseFloat(v) },
	"land_appraisal_price":     func(r *model.PropertyRecord, v string) { r.LandAppraisalPrice = model.ParseFloat(v) },
	"total_appraisal_price":    func(r *model.PropertyRecord, v string) { r.TotalAppraisalPrice = model.ParseFloat(v) },
	"total_appraisal_price_by_area": func(r *model.PropertyRecord, v string) {
		r.TotalAppraisalPriceByArea = model.ParseFloat(v)
	},
	"winning_price":       func(r *model.PropertyRecord, v string) { r.WinningPrice = model.ParseFloat(v) },
	"auction_date":        func(r *model.PropertyRecord, v string) { r.AuctionDate = model.ParseDate(v) },
	"popup_url":           func(r *model.PropertyRecord, v string) { r.PopupURL = strings.TrimSpace(v) },
	"new_build_date":      func(r *model.PropertyRecord, v string) { r.NewBuildDate = strings.TrimSpace(v) },
	"valuation_base_date": func(r *model.PropertyRecord, v string) { r.ValuationBaseDate = strings.TrimSpace(v) },
	"big_round":           func(r *model.PropertyRecord, v string) { r.BigRound = strings.TrimSpace(v) },
	"second_big_price":    func(r *model.PropertyRecord, v string) { r.SecondBigPrice = model.ParseFloat(v) },
}

// LoadPool reads the historical auction pool from an XLSX or CSV file and
// maps its columns onto PropertyRecords. Unknown columns are ignored; rows
// without a case number are dropped.
func LoadPool(path, sheet string) ([]model.PropertyRecord, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, ferr := os.Open(path)
		if ferr != nil {
			return nil, eris.Wrapf(ferr, "pool: open %s", path)
		}
		defer f.Close()
		rows, err = ReadCSV(f, CSVOptions{TrimSpace: true})
	default:
		rows, err = ReadXLSX(path, XLSXOptions{SheetName: sheet})
	}
	if err != nil {
		return nil, eris.Wrap(err, "pool: read")
	}
	return RowsToPool(rows, path)
}

// RowsToPool converts raw rows (header first) into PropertyRecords.
func RowsToPool(rows [][]string, source string) ([]model.PropertyRecord, error) {
	if len(rows) == 0 {
		return nil, eris.New("pool: no rows")
	}

	header := rows[0]
	setters := make([]func(*model.PropertyRecord, string), len(header))
	known := 0
	for i, h := range header {
		if s, ok := poolSetters[normalizeHeader(h)]; ok {
			setters[i] = s
			known++
		}
	}
	if known == 0 {
		return nil, eris.Errorf("pool: no recognized columns in %s", source)
	}

	out := make([]model.PropertyRecord, 0, len(rows)-1)
	dropped := 0
	for _, row := range rows[1:] {
		var rec model.PropertyRecord
		rec.SourceFile = source
		for i, v := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&rec, v)
			}
		}
		if rec.CaseNo == "" {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	if dropped > 0 {
		zap.L().Warn("pool: dropped rows without case_no",
			zap.Int("dropped", dropped), zap.String("source", source))
	}
	return out, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), ""))
}
