package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/comps-cli/internal/export"
	"github.com/sells-group/comps-cli/internal/fetcher"
	"github.com/sells-group/comps-cli/pkg/geocode"
)

var (
	geoPoolPath    string
	geoPoolSheet   string
	geoOut         string
	geoConcurrency int
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Backfill missing pool coordinates via VWorld",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		poolPath := geoPoolPath
		if poolPath == "" {
			poolPath = cfg.Pool.Path
		}
		if poolPath == "" {
			return eris.New("no pool file configured; set pool.path or pass --pool")
		}
		sheet := geoPoolSheet
		if sheet == "" {
			sheet = cfg.Pool.Sheet
		}

		pool, err := fetcher.LoadPool(poolPath, sheet)
		if err != nil {
			return err
		}

		provider, err := geocode.NewVWorld(geocode.VWorldConfig{
			BaseURL:       cfg.Geocode.BaseURL,
			Keys:          cfg.Geocode.Keys,
			DailyKeyQuota: cfg.Geocode.DailyKeyQuota,
			QPS:           cfg.Geocode.QPS,
			Timeout:       time.Duration(cfg.Geocode.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return err
		}

		cache, err := geocode.NewSQLiteCache(cfg.Geocode.CachePath)
		if err != nil {
			return err
		}
		defer cache.Close()

		client := geocode.NewClient(provider, cache)

		filled, err := client.Backfill(ctx, pool, geoConcurrency)
		if err != nil {
			return err
		}
		zap.L().Info("backfill complete",
			zap.Int("pool", len(pool)),
			zap.Int("filled", filled),
		)

		return export.WritePoolCSVFile(geoOut, pool)
	},
}

func init() {
	f := geocodeCmd.Flags()
	f.StringVar(&geoPoolPath, "pool", "", "auction pool file, defaults to config")
	f.StringVar(&geoPoolSheet, "pool-sheet", "", "pool sheet name, defaults to config")
	f.StringVar(&geoOut, "out", "pool_geocoded.csv", "output CSV with coordinates filled")
	f.IntVar(&geoConcurrency, "concurrency", 10, "parallel geocode lookups")

	rootCmd.AddCommand(geocodeCmd)
}
