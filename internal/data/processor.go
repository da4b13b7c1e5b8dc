package data

import (
	"quantanalysis/internal/model"
)

// Clean drops rows containing NaN values and validates the remaining
// series (non-empty, strictly increasing dates). Rows are dropped whole:
// a NaN in any OHLCV field removes the bar. No interpolation, no gap
// filling.
func Clean(series model.PriceSeries) (model.PriceSeries, error) {
	clean := make(model.PriceSeries, 0, len(series))
	for _, b := range series {
		if b.HasNaN() {
			continue
		}
		clean = append(clean, b)
	}
	if err := clean.Validate(); err != nil {
		return nil, err
	}
	return clean, nil
}

// Prepare is the load-then-clean path the pipeline uses.
func Prepare(l *Loader, ticker string) (model.PriceSeries, error) {
	series, err := l.Load(ticker)
	if err != nil {
		return nil, err
	}
	return Clean(series)
}
