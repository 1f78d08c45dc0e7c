package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/comps-cli/internal/model"
)

var xlsxHeader = []string{
	"subject_case_no",
	"case_no",
	"usage",
	"address",
	"auction_date",
	"winning_price",
	"popup_url",
	"rule",
	"category",
}

// WriteXLSX writes recommendations to an XLSX workbook at path, one row per
// comparable in rank order.
func WriteXLSX(path string, recs []model.Recommendation) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("recommend")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range xlsxHeader {
		hr.AddCell().SetString(h)
	}

	for _, r := range recs {
		c := r.Candidate
		row := sheet.AddRow()
		row.AddCell().SetString(r.SubjectCaseNo)
		row.AddCell().SetString(c.CaseNo)
		row.AddCell().SetString(c.Usage)
		row.AddCell().SetString(c.Address)
		row.AddCell().SetString(formatDate(c.AuctionDate))
		setPrice(row.AddCell(), c.WinningPrice)
		row.AddCell().SetString(c.PopupURL)
		row.AddCell().SetString(ruleLabel(r))
		row.AddCell().SetString(string(r.Category))
	}

	return eris.Wrapf(f.Save(path), "export: save %s", path)
}

func setPrice(cell *xlsx.Cell, p *float64) {
	if p == nil {
		cell.SetString("")
		return
	}
	cell.SetFloat(*p)
}
