package indicator

import "math"

// rollingMean computes a simple rolling mean with a running sum. Entries
// before the window fills, and windows containing NaN, are NaN.
func rollingMean(x []float64, window int) []float64 {
	out := nanSlice(len(x))
	if window <= 0 || window > len(x) {
		return out
	}

	sum := 0.0
	nans := 0
	for i, v := range x {
		if math.IsNaN(v) {
			nans++
		} else {
			sum += v
		}
		if i >= window {
			old := x[i-window]
			if math.IsNaN(old) {
				nans--
			} else {
				sum -= old
			}
		}
		if i >= window-1 && nans == 0 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd computes a rolling sample standard deviation (ddof=1).
// A window of 1 has no variance estimate and yields NaN.
func rollingStd(x []float64, window int) []float64 {
	out := nanSlice(len(x))
	if window <= 1 || window > len(x) {
		return out
	}

	sum, sumSq := 0.0, 0.0
	nans := 0
	for i, v := range x {
		if math.IsNaN(v) {
			nans++
		} else {
			sum += v
			sumSq += v * v
		}
		if i >= window {
			old := x[i-window]
			if math.IsNaN(old) {
				nans--
			} else {
				sum -= old
				sumSq -= old * old
			}
		}
		if i >= window-1 && nans == 0 {
			n := float64(window)
			variance := (sumSq - sum*sum/n) / (n - 1)
			if variance < 0 {
				variance = 0 // guard against rounding below zero
			}
			out[i] = math.Sqrt(variance)
		}
	}
	return out
}

// ewma computes a recursive exponentially weighted moving average with
// α = 2/(span+1), seeded from the first finite value (entries before the
// seed stay NaN). This matches the conventional recursive EMA without
// bias adjustment, so there is no window warm-up beyond the seed.
func ewma(x []float64, span int) []float64 {
	out := nanSlice(len(x))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)

	seeded := false
	prev := 0.0
	for i, v := range x {
		if math.IsNaN(v) {
			if seeded {
				out[i] = prev // carry the last estimate over a gap
			}
			continue
		}
		if !seeded {
			prev = v
			seeded = true
		} else {
			prev = alpha*v + (1-alpha)*prev
		}
		out[i] = prev
	}
	return out
}

// diff computes one-step differences; the first entry is NaN.
func diff(x []float64) []float64 {
	out := nanSlice(len(x))
	for i := 1; i < len(x); i++ {
		out[i] = x[i] - x[i-1]
	}
	return out
}

// nanSlice returns a slice of n NaNs.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
