package data

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quantanalysis/internal/fault"
)

func writeCSV(t *testing.T, dir, ticker, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ticker+".csv"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadBasic(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "AAPL", `Date,Open,High,Low,Close,Volume
2024-01-02,100,105,99,104,1000000
2024-01-03,104,108,103,107,1200000
`)

	series, err := NewLoader(dir).Load("AAPL")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("rows = %d, want 2", len(series))
	}
	if series[0].Close != 104 || series[1].Close != 107 {
		t.Errorf("closes = %v, %v", series[0].Close, series[1].Close)
	}
	want := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	if !series[0].Date.Equal(want) {
		t.Errorf("date = %s, want %s", series[0].Date, want)
	}
}

func TestLoadHeaderCaseAndOrder(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "MSFT", `volume,close,LOW,HIGH,open,date
500,101,98,102,100,2024-01-02
`)

	series, err := NewLoader(dir).Load("MSFT")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	b := series[0]
	if b.Open != 100 || b.High != 102 || b.Low != 98 || b.Close != 101 || b.Volume != 500 {
		t.Errorf("bar fields scrambled: %+v", b)
	}
}

func TestLoadExtraColumnsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "TSLA", `Date,Open,High,Low,Close,Adj Close,Volume
2024-01-02,100,105,99,104,103.5,1000
`)

	series, err := NewLoader(dir).Load("TSLA")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if series[0].Close != 104 {
		t.Errorf("close = %v, want 104", series[0].Close)
	}
}

func TestLoadUnparseableCellBecomesNaN(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "NVDA", `Date,Open,High,Low,Close,Volume
2024-01-02,100,105,99,n/a,1000
2024-01-03,104,108,103,107,
`)

	series, err := NewLoader(dir).Load("NVDA")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !math.IsNaN(series[0].Close) {
		t.Errorf("close = %v, want NaN", series[0].Close)
	}
	if !math.IsNaN(series[1].Volume) {
		t.Errorf("volume = %v, want NaN", series[1].Volume)
	}
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader(dir).Load("NOPE")
		assertValidation(t, err)
	})

	t.Run("missing column", func(t *testing.T) {
		writeCSV(t, dir, "NOVOL", `Date,Open,High,Low,Close
2024-01-02,100,105,99,104
`)
		_, err := NewLoader(dir).Load("NOVOL")
		assertValidation(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		writeCSV(t, dir, "EMPTY", "Date,Open,High,Low,Close,Volume\n")
		_, err := NewLoader(dir).Load("EMPTY")
		assertValidation(t, err)
	})

	t.Run("bad date", func(t *testing.T) {
		writeCSV(t, dir, "BADDATE", `Date,Open,High,Low,Close,Volume
not-a-date,100,105,99,104,1000
`)
		_, err := NewLoader(dir).Load("BADDATE")
		assertValidation(t, err)
	})
}

func TestCleanDropsNaNRows(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "MIX", `Date,Open,High,Low,Close,Volume
2024-01-02,100,105,99,104,1000
2024-01-03,104,108,103,,1200
2024-01-04,107,110,106,109,900
`)

	series, err := Prepare(NewLoader(dir), "MIX")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("rows after clean = %d, want 2", len(series))
	}
	if series[1].Close != 109 {
		t.Errorf("second clean row close = %v, want 109", series[1].Close)
	}
}

func TestCleanAllNaNFails(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "ALLNAN", `Date,Open,High,Low,Close,Volume
2024-01-02,,,,,
`)
	_, err := Prepare(NewLoader(dir), "ALLNAN")
	assertValidation(t, err)
}

func TestCleanRejectsDuplicateDates(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "DUP", `Date,Open,High,Low,Close,Volume
2024-01-02,100,105,99,104,1000
2024-01-02,104,108,103,107,1200
`)
	_, err := Prepare(NewLoader(dir), "DUP")
	assertValidation(t, err)
}

func assertValidation(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
}
