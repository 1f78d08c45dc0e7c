package recommend

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/comps-cli/internal/model"
)

// Options control one recommendation pass for a subject.
type Options struct {
	// RuleIndex is 1-based; out-of-range values clamp to the nearest end
	// of the category's ladder.
	RuleIndex int
	// SimilarLand switches to land-comparison mode: land-like rule ladders
	// where they exist, and land-parcel usage substitution.
	SimilarLand bool
	// CategoryOverride skips classification when set.
	CategoryOverride model.Category
	// RegionScope defaults to province-level matching.
	RegionScope model.RegionScope
	// TopK caps the result length and must be positive.
	TopK int
}

func (o *Options) validate() error {
	if o.TopK <= 0 {
		return eris.Errorf("recommend: topk must be positive, got %d", o.TopK)
	}
	if o.CategoryOverride != "" && !o.CategoryOverride.Valid() {
		return eris.Errorf("recommend: unknown category override %q", o.CategoryOverride)
	}
	switch o.RegionScope {
	case "", model.RegionScopeBig, model.RegionScopeMid:
	default:
		return eris.Errorf("recommend: unknown region scope %q", o.RegionScope)
	}
	return nil
}

// Engine runs rule-based comparable recommendations against an in-memory
// candidate pool. It holds no mutable state, so one Engine may serve many
// subjects concurrently as long as each call treats its pool as read-only.
type Engine struct {
	rules *RuleSet
}

func NewEngine(rules *RuleSet) *Engine {
	return &Engine{rules: rules}
}

// ResolveCategory returns the category a pass will use: the override when
// supplied, else the classifier's verdict on the subject usage.
func (e *Engine) ResolveCategory(subject model.PropertyRecord, opts Options) model.Category {
	if opts.CategoryOverride != "" {
		return opts.CategoryOverride
	}
	return Classify(subject.Usage, opts.SimilarLand)
}

// Recommend runs the full pipeline for one (subject, rule-index) pair and
// returns the ranked comparables with provenance. An empty result is a
// normal outcome; the only errors are invalid options and an empty rule
// ladder for the resolved category.
func (e *Engine) Recommend(subject model.PropertyRecord, pool []model.PropertyRecord, opts Options) ([]model.Recommendation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	subj := EnrichSubject(subject)
	cat := e.ResolveCategory(subj, opts)
	rule, idx, err := e.rules.RuleAt(cat, opts.SimilarLand, opts.RuleIndex)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("subject", subj.SerialKey()),
		zap.String("category", string(cat)),
		zap.String("rule", rule.Name),
		zap.Int("rule_index", idx+1),
	)

	cands := EnrichPool(pool)
	rows := allRows(len(cands))

	rows = filterRegion(cands, rows, subj, opts.RegionScope)
	log.Debug("after region filter", zap.Int("remaining", len(rows)))

	allowed := AllowedUsages(subj.Usage, opts.SimilarLand)
	rows = filterUsage(cands, rows, allowed)
	if rule.SameFacility {
		rows = filterSameFacility(cands, rows, subj.Usage)
	}
	log.Debug("after usage filter", zap.Int("remaining", len(rows)))

	rows = filterTimeWindow(cands, rows, subj, rule.TimeWindowDays)
	log.Debug("after time window", zap.Int("remaining", len(rows)))

	// Sparse-region fallback: widen geographically past the region border
	// while keeping usage comparability and the time window.
	if len(rows) < e.rules.Fallback.MinCandidates {
		base := filterUsage(cands, allRows(len(cands)), allowed)
		base = filterTimeWindow(cands, base, subj, rule.TimeWindowDays)
		rows = expandRings(cands, rows, base, subj, e.rules.Fallback)
		log.Debug("after pool fallback", zap.Int("remaining", len(rows)))
	}

	if rule.RequireSameApartment || rule.RequireSameBuilding {
		rows = filterSameBuilding(cands, rows, subj)
		log.Debug("after same building", zap.Int("remaining", len(rows)))
	}

	rows = filterValueRanges(cands, rows, subj, rule.Filters, func(key FeatureKey) {
		log.Debug("subject missing filter feature, no comparables", zap.String("feature", string(key)))
	})
	log.Debug("after value filters", zap.Int("remaining", len(rows)))

	rows = filterRadius(cands, rows, subj, rule.RadiusM)
	log.Debug("after radius filter", zap.Int("remaining", len(rows)))

	rows = truncate(rankRows(cands, rows, subj), opts.TopK)

	out := make([]model.Recommendation, 0, len(rows))
	for _, i := range rows {
		out = append(out, model.Recommendation{
			SubjectCaseNo: subj.SerialKey(),
			RuleName:      rule.Name,
			RuleIndex:     idx + 1,
			Category:      cat,
			DistanceM:     DistanceM(subj, cands[i]),
			Candidate:     cands[i],
		})
	}
	return out, nil
}

// RecommendAll runs every rule of the subject's category in ladder order and
// returns the per-index results, keyed by 1-based rule index.
func (e *Engine) RecommendAll(subject model.PropertyRecord, pool []model.PropertyRecord, opts Options) (map[int][]model.Recommendation, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cat := e.ResolveCategory(EnrichSubject(subject), opts)
	n := e.rules.Len(cat, opts.SimilarLand)
	if n == 0 {
		return nil, eris.Wrapf(ErrNoRulesDefined, "rules: category %s", cat)
	}

	out := make(map[int][]model.Recommendation, n)
	for i := 1; i <= n; i++ {
		o := opts
		o.RuleIndex = i
		res, err := e.Recommend(subject, pool, o)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
