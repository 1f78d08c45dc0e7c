package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/comps-cli/internal/export"
	"github.com/sells-group/comps-cli/internal/model"
)

// writeResults persists recommendations to path in the given format.
// An empty path prints JSON to w instead.
func writeResults(w io.Writer, path, format string, recs []model.Recommendation) error {
	if path == "" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(recs), "output: encode json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "output: create dir for %s", path)
	}

	switch strings.ToLower(format) {
	case "csv":
		if err := export.WriteCSVFile(path, recs); err != nil {
			return err
		}
	case "xlsx", "":
		if err := export.WriteXLSX(path, recs); err != nil {
			return err
		}
	default:
		return eris.Errorf("output: unknown format %q", format)
	}

	zap.L().Info("results written",
		zap.String("path", path),
		zap.Int("rows", len(recs)),
	)
	return nil
}

// resultPath builds an output file name under dir for one subject and rank.
func resultPath(dir, serial string, rank int, format string) string {
	ext := "xlsx"
	if strings.EqualFold(format, "csv") {
		ext = "csv"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_rank%d.%s", sanitizeFileName(serial), rank, ext))
}

// sanitizeFileName replaces path-hostile characters in serial keys.
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
