package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/comps-cli/internal/fetcher"
	"github.com/sells-group/comps-cli/internal/model"
	"github.com/sells-group/comps-cli/internal/recommend"
)

var (
	recSubjectAddress      string
	recSubjectUsage        string
	recSubjectCaseNo       string
	recSubjectBuildingArea string
	recSubjectLandArea     string
	recSubjectBuildingApp  string
	recSubjectLandApp      string
	recSubjectTotalApp     string
	recSubjectDate         string
	recSubjectLat          string
	recSubjectLon          string

	recRuleIndex   int
	recAllRanks    bool
	recSimilarLand bool
	recCategory    string
	recScope       string
	recTopK        int

	recPoolPath  string
	recPoolSheet string
	recOut       string
	recFormat    string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend comparable auction cases for one subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := subjectFromFlags()

		pool, rules, err := loadPoolAndRules(recPoolPath, recPoolSheet)
		if err != nil {
			return err
		}

		engine := recommend.NewEngine(rules)
		opts := recommend.Options{
			RuleIndex:        recRuleIndex,
			SimilarLand:      recSimilarLand,
			CategoryOverride: model.Category(recCategory),
			RegionScope:      model.RegionScope(recScope),
			TopK:             recTopK,
		}

		format := outputFormat(recFormat)

		if recAllRanks {
			byRank, err := engine.RecommendAll(subject, pool, opts)
			if err != nil {
				return err
			}
			if recOut == "" {
				var flat []model.Recommendation
				for rank := 1; rank <= len(byRank); rank++ {
					flat = append(flat, byRank[rank]...)
				}
				return writeResults(cmd.OutOrStdout(), "", format, flat)
			}
			for rank, recs := range byRank {
				path := resultPath(recOut, subject.SerialKey(), rank, format)
				if err := writeResults(cmd.OutOrStdout(), path, format, recs); err != nil {
					return err
				}
			}
			return nil
		}

		recs, err := engine.Recommend(subject, pool, opts)
		if err != nil {
			return err
		}
		zap.L().Info("recommendation complete",
			zap.String("subject", subject.SerialKey()),
			zap.Int("matches", len(recs)),
		)
		return writeResults(cmd.OutOrStdout(), recOut, format, recs)
	},
}

func init() {
	f := recommendCmd.Flags()

	f.StringVar(&recSubjectAddress, "address", "", "subject address (required)")
	f.StringVar(&recSubjectUsage, "usage", "", "subject usage label, e.g. 아파트 (required)")
	f.StringVar(&recSubjectCaseNo, "case-no", "", "subject case number")
	f.StringVar(&recSubjectBuildingArea, "building-area", "", "building area in m2")
	f.StringVar(&recSubjectLandArea, "land-area", "", "land area in m2")
	f.StringVar(&recSubjectBuildingApp, "building-appraisal", "", "building appraisal price in KRW")
	f.StringVar(&recSubjectLandApp, "land-appraisal", "", "land appraisal price in KRW")
	f.StringVar(&recSubjectTotalApp, "total-appraisal", "", "total appraisal price in KRW")
	f.StringVar(&recSubjectDate, "date", "", "reference date (YYYY-MM-DD), defaults to today")
	f.StringVar(&recSubjectLat, "lat", "", "subject latitude")
	f.StringVar(&recSubjectLon, "lon", "", "subject longitude")

	f.IntVar(&recRuleIndex, "rule", 1, "1-based rule index within the category ladder")
	f.BoolVar(&recAllRanks, "all-ranks", false, "run every rule in the ladder")
	f.BoolVar(&recSimilarLand, "similar-land", false, "compare against land parcels instead of improved property")
	f.StringVar(&recCategory, "category", "", "category override (skips classification)")
	f.StringVar(&recScope, "scope", "", "region scope: big (default) or mid")
	f.IntVar(&recTopK, "topk", 10, "max results")

	f.StringVar(&recPoolPath, "pool", "", "auction pool file (xlsx or csv), defaults to config")
	f.StringVar(&recPoolSheet, "pool-sheet", "", "pool sheet name, defaults to config")
	f.StringVar(&recOut, "out", "", "output file (recommend) or directory (--all-ranks); empty prints JSON")
	f.StringVar(&recFormat, "format", "", "output format: csv or xlsx, defaults to config")

	_ = recommendCmd.MarkFlagRequired("address")
	_ = recommendCmd.MarkFlagRequired("usage")

	rootCmd.AddCommand(recommendCmd)
}

// subjectFromFlags assembles the subject record. Numeric flags are parsed
// leniently so shell-quoted values with thousands separators still work.
func subjectFromFlags() model.PropertyRecord {
	subject := model.PropertyRecord{
		CaseNo:                 recSubjectCaseNo,
		Address:                recSubjectAddress,
		Usage:                  recSubjectUsage,
		BuildingArea:           model.ParseFloat(recSubjectBuildingArea),
		LandArea:               model.ParseFloat(recSubjectLandArea),
		BuildingAppraisalPrice: model.ParseFloat(recSubjectBuildingApp),
		LandAppraisalPrice:     model.ParseFloat(recSubjectLandApp),
		TotalAppraisalPrice:    model.ParseFloat(recSubjectTotalApp),
		AuctionDate:            model.ParseDate(recSubjectDate),
		Lat:                    model.ParseFloat(recSubjectLat),
		Lon:                    model.ParseFloat(recSubjectLon),
	}
	subject.RegionBig, subject.RegionMid, subject.RegionSmall = model.ParseRegions(subject.Address)
	return subject
}

// loadPoolAndRules loads the candidate pool and rule table, falling back
// to configured paths when flags are empty.
func loadPoolAndRules(poolPath, poolSheet string) ([]model.PropertyRecord, *recommend.RuleSet, error) {
	if poolPath == "" {
		poolPath = cfg.Pool.Path
	}
	if poolPath == "" {
		return nil, nil, eris.New("no pool file configured; set pool.path or pass --pool")
	}
	if poolSheet == "" {
		poolSheet = cfg.Pool.Sheet
	}

	pool, err := fetcher.LoadPool(poolPath, poolSheet)
	if err != nil {
		return nil, nil, err
	}
	zap.L().Info("pool loaded", zap.String("path", poolPath), zap.Int("records", len(pool)))

	rules, err := recommend.LoadRules(cfg.Rules.Path)
	if err != nil {
		return nil, nil, err
	}
	return pool, rules, nil
}

func outputFormat(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.Export.Format
}
