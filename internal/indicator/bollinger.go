package indicator

// computeBollinger calculates Bollinger Bands: rolling mean ± stdDev
// multiplier × rolling sample standard deviation.
func computeBollinger(closes []float64, window int, stdDev float64) (upper, lower []float64) {
	mean := rollingMean(closes, window)
	std := rollingStd(closes, window)

	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))
	for i := range closes {
		upper[i] = mean[i] + std[i]*stdDev
		lower[i] = mean[i] - std[i]*stdDev
	}
	return upper, lower
}
