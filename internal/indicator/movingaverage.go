package indicator

// computeMovingAverages calculates the short and long simple moving
// averages. The relative ordering of the windows is a configuration
// concern and is not enforced here.
func computeMovingAverages(closes []float64, shortWindow, longWindow int) (short, long []float64) {
	return rollingMean(closes, shortWindow), rollingMean(closes, longWindow)
}
