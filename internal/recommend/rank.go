package recommend

import (
	"math"
	"sort"

	"github.com/sells-group/comps-cli/internal/model"
)

// rankRows orders candidates most-recent first, breaking ties by distance
// from the subject, nearest first. Missing auction dates sort as oldest and
// missing distance as infinitely far. The sort is stable, so exact ties keep
// their pool order.
func rankRows(pool []model.PropertyRecord, rows []int, subj model.PropertyRecord) []int {
	type ranked struct {
		idx  int
		days int
		dist float64
	}
	rs := make([]ranked, len(rows))
	for n, i := range rows {
		r := ranked{idx: i, days: math.MinInt32, dist: math.Inf(1)}
		if d := pool[i].AuctionDays; d != nil {
			r.days = *d
		}
		if d := DistanceM(subj, pool[i]); d != nil {
			r.dist = *d
		}
		rs[n] = r
	}
	sort.SliceStable(rs, func(a, b int) bool {
		if rs[a].days != rs[b].days {
			return rs[a].days > rs[b].days
		}
		return rs[a].dist < rs[b].dist
	})
	out := make([]int, len(rs))
	for n, r := range rs {
		out[n] = r.idx
	}
	return out
}

func truncate(rows []int, topk int) []int {
	if topk > 0 && len(rows) > topk {
		return rows[:topk]
	}
	return rows
}
