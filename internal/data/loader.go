// Package data loads and cleans OHLCV price history from CSV files on
// disk, one file per ticker.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"quantanalysis/internal/fault"
	"quantanalysis/internal/model"
)

// Supported timestamp layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// Loader reads ticker price history from <Dir>/<TICKER>.csv. Files must
// carry a header row with Date, Open, High, Low, Close and Volume columns
// (case-insensitive, any order; extra columns are ignored).
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads the full price history for one ticker. Unparseable numeric
// cells become NaN (the cleaning step drops those rows); a missing file,
// missing required column or empty body is a validation error.
func (l *Loader) Load(ticker string) (model.PriceSeries, error) {
	path := filepath.Join(l.dir, ticker+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Validationf("no data file for %s: %v", ticker, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fault.Validationf("%s: cannot read header: %v", path, err)
	}
	idx, err := columnIndex(header, path)
	if err != nil {
		return nil, err
	}

	var series model.PriceSeries
	row := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fault.Validationf("%s: row %d: %v", path, row, err)
		}
		row++

		date, err := parseDate(rec[idx.date])
		if err != nil {
			return nil, fault.Validationf("%s: row %d: %v", path, row, err)
		}
		series = append(series, model.Bar{
			Date:   date,
			Open:   parseFloat(rec[idx.open]),
			High:   parseFloat(rec[idx.high]),
			Low:    parseFloat(rec[idx.low]),
			Close:  parseFloat(rec[idx.close]),
			Volume: parseFloat(rec[idx.volume]),
		})
	}

	if len(series) == 0 {
		return nil, fault.Validationf("%s: no data rows", path)
	}
	return series, nil
}

type columns struct {
	date, open, high, low, close, volume int
}

func columnIndex(header []string, path string) (columns, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := columns{}
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{"date", &idx.date},
		{"open", &idx.open},
		{"high", &idx.high},
		{"low", &idx.low},
		{"close", &idx.close},
		{"volume", &idx.volume},
	} {
		i, ok := pos[c.name]
		if !ok {
			return columns{}, fault.Validationf("%s: missing required column %q", path, c.name)
		}
		*c.dst = i
	}
	return idx, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseFloat maps unparseable or empty cells to NaN rather than failing
// the whole file; Clean drops the affected rows.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
