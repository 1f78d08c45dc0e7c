// Package fetcher loads the tabular inputs of a recommendation run: the
// historical auction pool and the bank collateral sheets, from XLSX or CSV.
package fetcher

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter rune // default ','
	// EUCKR decodes the legacy Korean encoding still produced by some
	// court-auction exports. UTF-8 (with or without BOM) is the default.
	EUCKR      bool
	LazyQuotes bool
	TrimSpace  bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads all rows from r, the header row first.
func ReadCSV(r io.Reader, opts CSVOptions) ([][]string, error) {
	if opts.EUCKR {
		r = transform.NewReader(r, korean.EUCKR.NewDecoder())
	} else {
		r = skipBOM(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		if opts.TrimSpace {
			for i, field := range record {
				record[i] = strings.TrimSpace(field)
			}
		}
		rows = append(rows, record)
	}
}

// skipBOM strips a leading UTF-8 byte order mark if present.
func skipBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && bytes.Equal(buf, utf8BOM) {
		return r
	}
	return io.MultiReader(bytes.NewReader(buf[:n]), r)
}
