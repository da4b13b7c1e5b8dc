package indicator

// computeRSI calculates the Relative Strength Index over rolling-window
// averages of gains and losses (not Wilder smoothing): gains and losses
// are clamped at zero before averaging, RS = avgGain/avgLoss, and
// RSI = 100 − 100/(1+RS).
//
// Division policy (documented contract, see tests):
//   - avgLoss == 0 and avgGain > 0: RS is +Inf, RSI is exactly 100.
//   - avgLoss == 0 and avgGain == 0 (flat prices): RS is 0/0, RSI is NaN.
//
// The first `period` entries are NaN: the delta at index 0 is undefined,
// so the first full window of deltas completes at index `period`.
func computeRSI(closes []float64, period int) []float64 {
	deltas := diff(closes)

	gains := make([]float64, len(deltas))
	losses := make([]float64, len(deltas))
	for i, d := range deltas {
		// NaN deltas stay NaN in both slices so the rolling mean keeps
		// the warm-up prefix undefined.
		gains[i] = d
		losses[i] = -d
		if d < 0 {
			gains[i] = 0
		}
		if d > 0 {
			losses[i] = 0
		}
	}

	avgGain := rollingMean(gains, period)
	avgLoss := rollingMean(losses, period)

	rsi := make([]float64, len(closes))
	for i := range rsi {
		rs := avgGain[i] / avgLoss[i]
		rsi[i] = 100 - 100/(1+rs)
	}
	return rsi
}
