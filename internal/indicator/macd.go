package indicator

// computeMACD calculates the MACD line (fast EWMA − slow EWMA) and its
// signal line (EWMA of the MACD line).
func computeMACD(closes []float64, fastSpan, slowSpan, signalSpan int) (macd, signalLine []float64) {
	fast := ewma(closes, fastSpan)
	slow := ewma(closes, slowSpan)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fast[i] - slow[i]
	}
	signalLine = ewma(macd, signalSpan)
	return macd, signalLine
}
