package fetcher

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/comps-cli/internal/model"
	"github.com/sells-group/comps-cli/internal/recommend"
)

// Bank collateral sheets vary in header wording across institutions, so
// columns are located by pattern over normalized header text instead of by
// exact name.
type bankColumns struct {
	addr           [4]int
	usage          int
	borrowerSerial int
	propertySerial int
	buildingAreaM2 int
	landAreaM2     int
	buildingApp    int
	landApp        int
	totalApp       int
	evalGroup      int
	kbPrice        int
}

var headerNormRe = regexp.MustCompile(`[^0-9a-z가-힣]`)

func normalizeBankHeader(h string) string {
	return headerNormRe.ReplaceAllString(strings.ToLower(h), "")
}

func findColumn(headers []string, patterns ...string) int {
	for _, pat := range patterns {
		re := regexp.MustCompile(pat)
		for i, h := range headers {
			if re.MatchString(h) {
				return i
			}
		}
	}
	return -1
}

func locateBankColumns(header []string) bankColumns {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeBankHeader(h)
	}
	cols := bankColumns{
		usage:          findColumn(norm, `propertytype`, `용도`),
		borrowerSerial: findColumn(norm, `차주일련번호`, `borrower.*(serial|no)`),
		propertySerial: findColumn(norm, `property일련번호`, `프로퍼티일련번호`, `property.*(serial|no)`),
		buildingAreaM2: findColumn(norm, `property.*건물면적`, `건물면적`),
		landAreaM2:     findColumn(norm, `property.*대지면적`, `대지면적`),
		buildingApp:    findColumn(norm, `건물감정평가액.*property`, `건물감정평가액`),
		landApp:        findColumn(norm, `토지감정평가액.*property`, `토지감정평가액`),
		totalApp:       findColumn(norm, `감정평가액합계.*property`, `감정평가액합계`),
		evalGroup:      findColumn(norm, `감정평가구분.*property`, `감정평가구분`),
		kbPrice:        findColumn(norm, `kb.*아파트.*시세`, `kb.*시세`),
	}
	for i := 0; i < 4; i++ {
		n := string(rune('1' + i))
		cols.addr[i] = findColumn(norm, `담보소재지?`+n, `소재지`+n)
	}
	return cols
}

// normalizeBankUsage maps bank-sheet property types onto the usage labels
// of the auction pool.
func normalizeBankUsage(v string) string {
	s := strings.TrimSpace(v)
	switch {
	case s == "전" || s == "답":
		return "농지"
	case s == "단독주택":
		return "주택"
	case s == "다세대":
		return "다세대(빌라)"
	case s == "주상복합(주거)":
		return "아파트"
	case s == "오피스텔(주거)",
		strings.Contains(s, "오피스텔") && strings.Contains(s, "주거"):
		return "오피스텔"
	}
	return s
}

// ExtractSubjects reads subject properties from a bank collateral XLSX
// sheet. Rows with neither an address nor any appraisal value are skipped.
func ExtractSubjects(path, sheet string) ([]model.PropertyRecord, error) {
	rows, err := ReadXLSX(path, XLSXOptions{SheetName: sheet})
	if err != nil {
		return nil, eris.Wrap(err, "subjects: read")
	}
	if len(rows) < 2 {
		return nil, eris.Errorf("subjects: %s has no data rows", path)
	}

	cols := locateBankColumns(rows[0])
	if cols.usage < 0 && cols.addr[0] < 0 {
		return nil, eris.Errorf("subjects: %s: no usage or address columns found", path)
	}

	out := make([]model.PropertyRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := subjectFromRow(row, cols)
		rec.SourceFile = path
		if rec.Address == "" &&
			rec.BuildingAppraisalPrice == nil && rec.LandAppraisalPrice == nil && rec.TotalAppraisalPrice == nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func subjectFromRow(row []string, cols bankColumns) model.PropertyRecord {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var parts []string
	for _, i := range cols.addr {
		if p := cell(i); p != "" {
			parts = append(parts, p)
		}
	}

	rec := model.PropertyRecord{
		Address:                strings.Join(strings.Fields(strings.Join(parts, " ")), " "),
		Usage:                  normalizeBankUsage(cell(cols.usage)),
		BorrowerSerialNo:       cell(cols.borrowerSerial),
		PropertySerialNo:       cell(cols.propertySerial),
		BuildingArea:           model.ParseFloat(cell(cols.buildingAreaM2)),
		LandArea:               model.ParseFloat(cell(cols.landAreaM2)),
		BuildingAppraisalPrice: model.ParseFloat(cell(cols.buildingApp)),
		LandAppraisalPrice:     model.ParseFloat(cell(cols.landApp)),
		TotalAppraisalPrice:    model.ParseFloat(cell(cols.totalApp)),
	}

	rec.RegionBig, rec.RegionMid, rec.RegionSmall = model.ParseRegions(rec.Address)

	if b := rec.BuildingArea; model.Present(b) {
		rec.AreaBuilding = model.Float64(*b / recommend.PyeongM2)
	}
	if l := rec.LandArea; model.Present(l) {
		rec.AreaLand = model.Float64(*l / recommend.PyeongM2)
	}

	if rec.TotalAppraisalPrice == nil &&
		(rec.BuildingAppraisalPrice != nil || rec.LandAppraisalPrice != nil) {
		sum := model.Value(rec.BuildingAppraisalPrice) + model.Value(rec.LandAppraisalPrice)
		if sum != 0 {
			rec.TotalAppraisalPrice = model.Float64(sum)
		}
	}

	// An appraisal classified as a KB market quote replaces the total.
	if strings.Contains(cell(cols.evalGroup), "KB시세") {
		if kb := model.ParseFloat(cell(cols.kbPrice)); kb != nil {
			rec.TotalAppraisalPrice = kb
		}
	}

	rec.TotalAppraisalPriceByArea = priceByArea(rec)
	return rec
}

// priceByArea precomputes total appraisal per pyeong, over building area for
// apartment-like usages and land area otherwise.
func priceByArea(rec model.PropertyRecord) *float64 {
	price := rec.TotalAppraisalPrice
	if !model.Present(price) {
		return nil
	}
	denom := rec.AreaLand
	for _, k := range []string{"아파트", "오피스텔", "다세대"} {
		if strings.Contains(rec.Usage, k) {
			denom = rec.AreaBuilding
			break
		}
	}
	if !model.Present(denom) {
		return nil
	}
	return model.Float64(*price / *denom)
}
