// Package report writes per-ticker analysis artifacts as flat files:
// metrics (CSV and JSON), the trade ledger, the returns/positions series
// and a plain-text summary.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"quantanalysis/internal/backtest"
	"quantanalysis/internal/signal"
)

const dateLayout = "2006-01-02"

// Writer writes artifacts under Dir/<ticker>/.
type Writer struct {
	dir string
}

// NewWriter creates a report writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

func (w *Writer) tickerDir(ticker string) (string, error) {
	dir := filepath.Join(w.dir, ticker)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create %s: %w", dir, err)
	}
	return dir, nil
}

// WriteMetrics writes metrics.csv and metrics.json, keys sorted for
// stable diffs. Non-finite values render as empty CSV cells and JSON
// nulls.
func (w *Writer) WriteMetrics(ticker string, metrics map[string]float64) error {
	dir, err := w.tickerDir(ticker)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := [][]string{{"metric", "value"}}
	jsonOut := make(map[string]any, len(metrics))
	for _, k := range keys {
		v := metrics[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			rows = append(rows, []string{k, ""})
			jsonOut[k] = nil
			continue
		}
		rows = append(rows, []string{k, formatFloat(v)})
		jsonOut[k] = v
	}

	if err := writeCSV(filepath.Join(dir, "metrics.csv"), rows); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, "metrics.json"), jsonOut)
}

// WriteTrades writes the closed-trade ledger as trades.csv.
func (w *Writer) WriteTrades(ticker string, trades []backtest.Trade) error {
	dir, err := w.tickerDir(ticker)
	if err != nil {
		return err
	}

	rows := [][]string{{"entry_date", "exit_date", "position", "entry_price", "exit_price", "return", "duration_days"}}
	for _, t := range trades {
		rows = append(rows, []string{
			t.EntryDate.Format(dateLayout),
			t.ExitDate.Format(dateLayout),
			strconv.Itoa(t.Position),
			formatFloat(t.EntryPrice),
			formatFloat(t.ExitPrice),
			formatFloat(t.Return),
			strconv.Itoa(t.Duration),
		})
	}
	return writeCSV(filepath.Join(dir, "trades.csv"), rows)
}

// WriteBacktest writes the positions and net returns series as
// backtest.csv. Positions exist for every date; the first date has no
// return and gets an empty cell.
func (w *Writer) WriteBacktest(ticker string, res *backtest.Result) error {
	dir, err := w.tickerDir(ticker)
	if err != nil {
		return err
	}

	rows := [][]string{{"date", "position", "return"}}
	for i, d := range res.Dates {
		ret := ""
		if i > 0 {
			ret = formatFloat(res.Returns[i-1])
		}
		rows = append(rows, []string{
			d.Format(dateLayout),
			strconv.Itoa(res.Positions[i]),
			ret,
		})
	}
	return writeCSV(filepath.Join(dir, "backtest.csv"), rows)
}

// WriteSignals writes the signal series as signals.csv.
func (w *Writer) WriteSignals(ticker string, s signal.Series) error {
	dir, err := w.tickerDir(ticker)
	if err != nil {
		return err
	}

	rows := [][]string{{"date", "signal"}}
	for i, d := range s.Dates {
		rows = append(rows, []string{d.Format(dateLayout), s.Values[i].String()})
	}
	return writeCSV(filepath.Join(dir, "signals.csv"), rows)
}

// WriteSummary writes a short plain-text summary.
func (w *Writer) WriteSummary(ticker string, start, end time.Time, bars int, metrics map[string]float64, trades int) error {
	dir, err := w.tickerDir(ticker)
	if err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "summary.txt"))
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "%s  %s to %s  (%d bars)\n\n", ticker, start.Format(dateLayout), end.Format(dateLayout), bars)
	fmt.Fprintf(f, "closed trades: %d\n", trades)

	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := metrics[k]
		if math.IsNaN(v) {
			fmt.Fprintf(f, "%-24s n/a\n", k)
			continue
		}
		fmt.Fprintf(f, "%-24s %.6f\n", k, v)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("report: encode %s: %w", path, err)
	}
	return nil
}
