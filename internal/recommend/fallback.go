package recommend

import (
	"sort"

	"github.com/sells-group/comps-cli/internal/model"
)

// expandRings widens a sparse candidate set by unioning in progressively
// larger distance rings around the subject, drawn from the base set (the
// pool already narrowed by usage and the time window but not by region).
// Expansion stops at the first step that reaches fb.MinCandidates; without
// subject coordinates no ring can be drawn and the set is returned as is.
// Pool order is preserved in the result.
func expandRings(pool []model.PropertyRecord, rows, base []int, subj model.PropertyRecord, fb FallbackConfig) []int {
	if len(rows) >= fb.MinCandidates {
		return rows
	}
	if subj.Lat == nil || subj.Lon == nil {
		return rows
	}

	member := make(map[int]bool, len(rows))
	for _, i := range rows {
		member[i] = true
	}

	for _, radius := range fb.DistanceStepsM {
		for _, i := range base {
			if member[i] {
				continue
			}
			d := DistanceM(subj, pool[i])
			if d != nil && *d <= radius {
				member[i] = true
			}
		}
		if len(member) >= fb.MinCandidates {
			break
		}
	}

	out := make([]int, 0, len(member))
	for i := range member {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
