// Package export writes recommendation results to the XLSX and CSV layouts
// consumed by the valuation team.
package export

import (
	"strconv"
	"time"

	"github.com/sells-group/comps-cli/internal/model"
)

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 0, 64)
}

func ruleLabel(r model.Recommendation) string {
	return strconv.Itoa(r.RuleIndex) + ":" + r.RuleName
}
