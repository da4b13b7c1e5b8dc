// Package indicator computes technical indicator series over price data.
//
// Indicators are identified by a closed Kind enum — unknown names are
// rejected when the configuration is parsed, never at computation time.
// All rolling computations leave the warm-up prefix (window−1 entries, or
// window entries for RSI because the first price delta is undefined) as
// NaN. Callers must never treat warm-up entries as zero.
package indicator

import "quantanalysis/internal/fault"

// Kind identifies one of the supported indicators.
type Kind int

const (
	RSI Kind = iota
	MovingAverage
	Bollinger
	MACD
)

var kindNames = map[Kind]string{
	RSI:           "rsi",
	MovingAverage: "moving_average",
	Bollinger:     "bollinger",
	MACD:          "macd",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a configuration name to a Kind. Unknown names fail with a
// configuration error; there is no fallback indicator.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fault.Configf(name, "unknown indicator")
}

// Spec enumerates the enabled indicators and their parameters. It is
// produced by a validated signal configuration; the engine assumes the
// values are already range-checked.
type Spec struct {
	Enabled []Kind

	RSIPeriod int

	MAShortWindow int
	MALongWindow  int

	BollingerWindow int
	BollingerStdDev float64

	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
}

// Has reports whether the given indicator is enabled.
func (s Spec) Has(kind Kind) bool {
	for _, k := range s.Enabled {
		if k == kind {
			return true
		}
	}
	return false
}

// Column names produced by the engine. The price columns come first,
// indicator columns are appended in Enabled order.
const (
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"

	ColRSI        = "RSI"
	ColMAShort    = "MA_Short"
	ColMALong     = "MA_Long"
	ColBBUpper    = "BB_Upper"
	ColBBLower    = "BB_Lower"
	ColMACD       = "MACD"
	ColSignalLine = "Signal_Line"
)
