package main

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/comps-cli/internal/model"
)

var ruleMapShorthandRe = regexp.MustCompile(`^\s*(\d+)\s*[,\s]\s*(\d+)\s*[,\s]\s*(\d+)\s*[,\s]\s*(\d+)\s*[,\s]\s*(\d+)\s*$`)

// parseRuleMap parses a per-category rule-index map from its CLI form.
// Two notations are accepted:
//
//	"APT_OFFICETEL=1,OTHER_BIG=2"  (also ':' as separator, ';' between pairs)
//	"1,2,3,2,1"                    (five numbers in canonical category order)
func parseRuleMap(s string) (map[model.Category]int, error) {
	out := make(map[model.Category]int)
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}

	if m := ruleMapShorthandRe.FindStringSubmatch(s); m != nil {
		for i, cat := range model.Categories {
			n, err := strconv.Atoi(m[i+1])
			if err != nil {
				return nil, eris.Wrapf(err, "rule map: bad index %q", m[i+1])
			}
			out[cat] = n
		}
		return out, nil
	}

	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var k, v string
		switch {
		case strings.Contains(part, "="):
			k, v, _ = strings.Cut(part, "=")
		case strings.Contains(part, ":"):
			k, v, _ = strings.Cut(part, ":")
		default:
			return nil, eris.Errorf("rule map: entry %q has no '=' or ':'", part)
		}
		cat := model.Category(strings.TrimSpace(k))
		if !cat.Valid() {
			return nil, eris.Errorf("rule map: unknown category %q", k)
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, eris.Wrapf(err, "rule map: bad index for %s", cat)
		}
		out[cat] = n
	}
	return out, nil
}
