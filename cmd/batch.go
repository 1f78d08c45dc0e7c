package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/comps-cli/internal/fetcher"
	"github.com/sells-group/comps-cli/internal/model"
	"github.com/sells-group/comps-cli/internal/recommend"
	"github.com/sells-group/comps-cli/internal/store"
)

var (
	batchBankPath  string
	batchBankSheet string
	batchRuleMap   string
	batchLimit     int
	batchTopK      int
	batchScope     string
	batchOutDir    string
	batchFormat    string
	batchAllRanks  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Recommend comparables for every subject in a bank sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sheet := batchBankSheet
		if sheet == "" {
			sheet = cfg.Batch.BankSheet
		}
		subjects, err := extractSubjects(batchBankPath, sheet)
		if err != nil {
			return err
		}

		pool, rules, err := loadPoolAndRules("", "")
		if err != nil {
			return err
		}

		ruleMap, err := parseRuleMap(batchRuleMap)
		if err != nil {
			return err
		}

		outDir := batchOutDir
		if outDir == "" {
			outDir = cfg.Export.Dir
		}

		st, err := store.NewSQLite(cfg.Batch.HistoryPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		run, err := st.CreateRun(ctx, batchBankPath, len(subjects))
		if err != nil {
			return err
		}

		stats, batchErr := processBatch(ctx, batchOptions{
			runID:    run.ID,
			subjects: subjects,
			pool:     pool,
			engine:   recommend.NewEngine(rules),
			ruleMap:  ruleMap,
			limit:    batchLimit,
			allRanks: batchAllRanks,
			topK:     batchTopK,
			scope:    model.RegionScope(batchScope),
			outDir:   outDir,
			format:   outputFormat(batchFormat),
			workers:  cfg.Batch.MaxConcurrentSubjects,
		})

		status := model.RunStatusCompleted
		if batchErr != nil {
			status = model.RunStatusFailed
		}
		if err := st.FinishRun(ctx, run.ID, status, stats); err != nil {
			zap.L().Warn("failed to record run result", zap.Error(err))
		}
		return batchErr
	},
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchBankPath, "bank", "", "bank collateral workbook (required)")
	f.StringVar(&batchBankSheet, "sheet", "", "bank sheet name, defaults to config")
	f.StringVar(&batchRuleMap, "rule-map", "", `per-category rule indices, e.g. "APT_OFFICETEL=2" or "1,2,3,2,1"`)
	f.IntVar(&batchLimit, "limit", 0, "max subjects to process (0 = all)")
	f.IntVar(&batchTopK, "topk", 10, "max results per subject and rank")
	f.StringVar(&batchScope, "scope", "", "region scope: big (default) or mid")
	f.StringVar(&batchOutDir, "out", "", "output directory, defaults to config")
	f.StringVar(&batchFormat, "format", "", "output format: csv or xlsx, defaults to config")
	f.BoolVar(&batchAllRanks, "all-ranks", false, "run every rule rank per subject")

	_ = batchCmd.MarkFlagRequired("bank")

	rootCmd.AddCommand(batchCmd)
}

type batchOptions struct {
	runID    string
	subjects []model.PropertyRecord
	pool     []model.PropertyRecord
	engine   *recommend.Engine
	ruleMap  map[model.Category]int
	limit    int
	allRanks bool
	topK     int
	scope    model.RegionScope
	outDir   string
	format   string
	workers  int
}

// processBatch runs recommendations for each subject concurrently. Failures
// on individual subjects are counted and logged, never abort the batch.
func processBatch(ctx context.Context, opts batchOptions) (store.RunStats, error) {
	subjects := opts.subjects
	if len(subjects) == 0 {
		zap.L().Info("no subjects found in bank sheet")
		return store.RunStats{}, nil
	}
	if opts.limit > 0 && len(subjects) > opts.limit {
		subjects = subjects[:opts.limit]
	}

	workers := opts.workers
	if workers <= 0 {
		workers = 5
	}

	runID := opts.runID
	if runID == "" {
		runID = uuid.New().String()
	}
	zap.L().Info("processing batch",
		zap.String("run_id", runID),
		zap.Int("subjects", len(subjects)),
		zap.Int("pool", len(opts.pool)),
		zap.Int("concurrency", workers),
	)

	var succeeded, failed, empty atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, subject := range subjects {
		subject := subject
		g.Go(func() error {
			log := zap.L().With(
				zap.String("run_id", runID),
				zap.String("subject", subject.SerialKey()),
			)

			n, err := processSubject(gctx, subject, opts)
			if err != nil {
				failed.Add(1)
				log.Error("subject failed", zap.Error(err))
				return nil // keep the rest of the batch going
			}
			if n == 0 {
				empty.Add(1)
			}
			succeeded.Add(1)
			log.Info("subject complete", zap.Int("matches", n))
			return nil
		})
	}

	stats := func() store.RunStats {
		return store.RunStats{
			Subjects:  len(subjects),
			Succeeded: int(succeeded.Load()),
			Failed:    int(failed.Load()),
			Empty:     int(empty.Load()),
		}
	}

	if err := g.Wait(); err != nil {
		return stats(), eris.Wrap(err, "batch processing")
	}

	s := stats()
	zap.L().Info("batch complete",
		zap.String("run_id", runID),
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
		zap.Int("empty", s.Empty),
	)
	return s, nil
}

// processSubject runs one subject through the engine and writes its result
// files. Land-heavy categories additionally get a similar-land pass saved
// with a _land suffix. Returns the total number of matches across passes.
func processSubject(ctx context.Context, subject model.PropertyRecord, opts batchOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	cat := opts.engine.ResolveCategory(subject, recommend.Options{})

	total, err := runPass(subject, cat, false, "", opts)
	if err != nil {
		return total, err
	}

	if cat == model.CategoryPlantWarehouseEtc || cat == model.CategoryOtherBig {
		n, err := runPass(subject, cat, true, "_land", opts)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// runPass executes one recommendation pass and writes per-rank files.
func runPass(subject model.PropertyRecord, cat model.Category, similarLand bool, suffix string, opts batchOptions) (int, error) {
	engineOpts := recommend.Options{
		SimilarLand: similarLand,
		RegionScope: opts.scope,
		TopK:        opts.topK,
	}
	if idx, ok := opts.ruleMap[cat]; ok {
		engineOpts.RuleIndex = idx
	} else {
		engineOpts.RuleIndex = 1
	}

	var byRank map[int][]model.Recommendation
	if opts.allRanks {
		var err error
		byRank, err = opts.engine.RecommendAll(subject, opts.pool, engineOpts)
		if err != nil {
			return 0, err
		}
	} else {
		recs, err := opts.engine.Recommend(subject, opts.pool, engineOpts)
		if err != nil {
			return 0, err
		}
		byRank = map[int][]model.Recommendation{engineOpts.RuleIndex: recs}
	}

	total := 0
	for rank, recs := range byRank {
		total += len(recs)
		path := resultPath(opts.outDir, subject.SerialKey()+suffix, rank, opts.format)
		if err := writeResults(nil, path, opts.format, recs); err != nil {
			return total, err
		}
	}
	return total, nil
}

// extractSubjects loads and logs the bank-sheet subjects.
func extractSubjects(path, sheet string) ([]model.PropertyRecord, error) {
	subjects, err := fetcher.ExtractSubjects(path, sheet)
	if err != nil {
		return nil, err
	}
	zap.L().Info("subjects extracted",
		zap.String("path", path),
		zap.String("sheet", sheet),
		zap.Int("count", len(subjects)),
	)
	return subjects, nil
}
