package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/comps-cli/internal/model"
	"github.com/sells-group/comps-cli/internal/recommend"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the configured rule ladders",
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := recommend.LoadRules(cfg.Rules.Path)
		if err != nil {
			return err
		}
		printRules(cmd.OutOrStdout(), rs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func printRules(w io.Writer, rs *recommend.RuleSet) {
	for _, cat := range model.Categories {
		cr, ok := rs.Categories[cat]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\n", cat)
		printLadder(w, "  ", cr.Default)
		if len(cr.LandLike) > 0 {
			fmt.Fprintf(w, "  land_like:\n")
			printLadder(w, "    ", cr.LandLike)
		}
	}
	fmt.Fprintf(w, "fallback: min_candidates=%d steps_m=%v\n",
		rs.Fallback.MinCandidates, rs.Fallback.DistanceStepsM)
}

func printLadder(w io.Writer, indent string, rules []recommend.Rule) {
	for i, r := range rules {
		fmt.Fprintf(w, "%s%d: %s", indent, i+1, r.Name)
		if r.TimeWindowDays > 0 {
			fmt.Fprintf(w, " window=%dd", r.TimeWindowDays)
		}
		if r.RadiusM > 0 {
			fmt.Fprintf(w, " radius=%.0fm", r.RadiusM)
		}
		if r.RequireSameApartment {
			fmt.Fprint(w, " same-apartment")
		}
		if r.RequireSameBuilding {
			fmt.Fprint(w, " same-building")
		}
		if r.SameFacility {
			fmt.Fprint(w, " same-facility")
		}
		for _, k := range sortedFilterKeys(r.Filters) {
			fmt.Fprintf(w, " %s=±%.0f%%", k, r.Filters[k]*100)
		}
		fmt.Fprintln(w)
	}
}

func sortedFilterKeys(filters map[recommend.FeatureKey]float64) []recommend.FeatureKey {
	keys := make([]recommend.FeatureKey, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
