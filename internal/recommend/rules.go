package recommend

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/comps-cli/internal/model"
)

// FeatureKey names a numeric feature a rule may constrain. Rules reference
// features by key; unknown keys are rejected at load time, not at filter
// time.
type FeatureKey string

const (
	FeatureBuildingAreaPct   FeatureKey = "building_area_pct"
	FeatureBuildingUnitPct   FeatureKey = "building_unit_price_pct"
	FeatureTotalAppraisalPct FeatureKey = "total_appraisal_price_pct"
	FeatureLandAreaPct       FeatureKey = "land_area_pct"
)

var validFilterKeys = map[FeatureKey]bool{
	FeatureBuildingAreaPct:   true,
	FeatureBuildingUnitPct:   true,
	FeatureTotalAppraisalPct: true,
	FeatureLandAreaPct:       true,
}

// ErrNoRulesDefined is returned when a category/mode combination has an
// empty rule list.
var ErrNoRulesDefined = eris.New("rules: no rules defined for category")

// Rule is one rung of a category's relaxation ladder.
type Rule struct {
	Name string `yaml:"name"`

	TimeWindowDays       int  `yaml:"time_window_days"`
	RequireSameApartment bool `yaml:"require_same_apartment"`
	RequireSameBuilding  bool `yaml:"require_same_building"`
	SameFacility         bool `yaml:"same_facility"`

	// Filters maps a feature key to a tolerance fraction, 0.30 meaning
	// the candidate must fall within ±30% of the subject's value.
	Filters map[FeatureKey]float64 `yaml:"filters"`

	RadiusM float64 `yaml:"radius_m"`
}

// CategoryRules holds a category's rule lists. Most categories carry only
// the default ladder; the industrial and catch-all categories additionally
// carry a land-like ladder used in similar-land mode.
type CategoryRules struct {
	Default  []Rule
	LandLike []Rule
}

// UnmarshalYAML accepts either a bare rule sequence (default list only) or
// a {default, land_like} mapping.
func (cr *CategoryRules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		return node.Decode(&cr.Default)
	}
	var dual struct {
		Default  []Rule `yaml:"default"`
		LandLike []Rule `yaml:"land_like"`
	}
	if err := node.Decode(&dual); err != nil {
		return err
	}
	cr.Default = dual.Default
	cr.LandLike = dual.LandLike
	return nil
}

// FallbackConfig governs the candidate-pool ring expansion for sparse
// regions.
type FallbackConfig struct {
	MinCandidates  int       `yaml:"min_candidates"`
	DistanceStepsM []float64 `yaml:"distance_steps_m"`
}

// RuleSet is the full rule table loaded from configuration: an ordered
// relaxation ladder per category plus the shared fallback settings.
type RuleSet struct {
	Categories map[model.Category]CategoryRules `yaml:"categories"`
	Fallback   FallbackConfig                   `yaml:"fallback"`
}

// LoadRules reads and validates a rule table from a YAML file.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read %s", path)
	}
	rs, err := ParseRules(data)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: load %s", path)
	}
	return rs, nil
}

// ParseRules parses a rule table from YAML bytes and validates category
// names and filter feature keys.
func ParseRules(data []byte) (*RuleSet, error) {
	var raw struct {
		Categories map[string]CategoryRules `yaml:"categories"`
		Fallback   FallbackConfig           `yaml:"fallback"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrap(err, "rules: parse")
	}

	rs := &RuleSet{
		Categories: make(map[model.Category]CategoryRules, len(raw.Categories)),
		Fallback:   raw.Fallback,
	}
	for name, cr := range raw.Categories {
		cat := model.Category(name)
		if !cat.Valid() {
			return nil, eris.Errorf("rules: unknown category %q", name)
		}
		if err := validateRules(name, cr.Default); err != nil {
			return nil, err
		}
		if err := validateRules(name, cr.LandLike); err != nil {
			return nil, err
		}
		rs.Categories[cat] = cr
	}

	if rs.Fallback.MinCandidates <= 0 {
		rs.Fallback.MinCandidates = 200
	}
	if len(rs.Fallback.DistanceStepsM) == 0 {
		rs.Fallback.DistanceStepsM = []float64{500, 1000, 3000, 5000, 10000}
	}

	return rs, nil
}

func validateRules(category string, rules []Rule) error {
	for i, r := range rules {
		for key, tol := range r.Filters {
			if !validFilterKeys[key] {
				return eris.Errorf("rules: %s rule %d (%s): unknown filter key %q", category, i+1, r.Name, key)
			}
			if tol <= 0 {
				return eris.Errorf("rules: %s rule %d (%s): filter %s tolerance must be positive, got %v", category, i+1, r.Name, key, tol)
			}
		}
	}
	return nil
}

// RulesFor returns the ordered rule ladder for a category. Similar-land mode
// selects the land-like ladder where one exists and otherwise falls back to
// the default list.
func (rs *RuleSet) RulesFor(cat model.Category, similarLand bool) []Rule {
	cr := rs.Categories[cat]
	if similarLand && len(cr.LandLike) > 0 {
		return cr.LandLike
	}
	return cr.Default
}

// RuleAt resolves a 1-based rank within a category's ladder. Out-of-range
// ranks clamp to the nearest end so callers can always ask for "one looser"
// without bounds checks; an empty ladder is ErrNoRulesDefined. The returned
// index is the 0-based position of the chosen rule.
func (rs *RuleSet) RuleAt(cat model.Category, similarLand bool, rank int) (Rule, int, error) {
	rules := rs.RulesFor(cat, similarLand)
	if len(rules) == 0 {
		return Rule{}, 0, eris.Wrapf(ErrNoRulesDefined, "rules: category %s", cat)
	}
	idx := rank - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(rules) {
		idx = len(rules) - 1
	}
	return rules[idx], idx, nil
}

// Len returns the ladder length for a category/mode.
func (rs *RuleSet) Len(cat model.Category, similarLand bool) int {
	return len(rs.RulesFor(cat, similarLand))
}
