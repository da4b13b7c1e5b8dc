// Package model defines the shared data types for the analysis pipeline.
package model

import (
	"math"
	"time"

	"quantanalysis/internal/fault"
)

// Bar represents one OHLCV price bar.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// HasNaN reports whether any price or volume field is NaN.
func (b Bar) HasNaN() bool {
	return math.IsNaN(b.Open) || math.IsNaN(b.High) || math.IsNaN(b.Low) ||
		math.IsNaN(b.Close) || math.IsNaN(b.Volume)
}

// PriceSeries is an ordered series of bars. Invariant: dates are unique and
// strictly increasing. No gap filling is assumed or performed.
type PriceSeries []Bar

// Validate checks the series invariants: non-empty, strictly increasing
// unique dates.
func (s PriceSeries) Validate() error {
	if len(s) == 0 {
		return fault.Validationf("empty price series")
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return fault.Validationf("timestamps not strictly increasing at index %d (%s after %s)",
				i, s[i].Date.Format(time.RFC3339), s[i-1].Date.Format(time.RFC3339))
		}
	}
	return nil
}

// Dates returns the date index of the series.
func (s PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s))
	for i, b := range s {
		dates[i] = b.Date
	}
	return dates
}

// Closes returns the close prices of the series.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s))
	for i, b := range s {
		closes[i] = b.Close
	}
	return closes
}
