// Package signal turns indicator tables into discrete trading signals.
//
// A Signal is a closed enumeration; strong variants project onto their
// simple counterparts via Simplify, which is the vocabulary the backtester
// accepts.
package signal

import "time"

// Signal is a discrete trading decision at one timestamp.
type Signal int

const (
	Neutral Signal = iota
	Buy
	Sell
	StrongBuy
	StrongSell
)

func (s Signal) String() string {
	switch s {
	case Neutral:
		return "NEUTRAL"
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case StrongBuy:
		return "STRONG_BUY"
	case StrongSell:
		return "STRONG_SELL"
	default:
		return "UNKNOWN"
	}
}

// Simplify collapses strong signals onto their simple counterparts:
// STRONG_BUY → BUY, STRONG_SELL → SELL. Other values are unchanged.
func (s Signal) Simplify() Signal {
	switch s {
	case StrongBuy:
		return Buy
	case StrongSell:
		return Sell
	default:
		return s
	}
}

// IsSimple reports whether the signal belongs to the backtester's
// vocabulary {NEUTRAL, BUY, SELL}.
func (s Signal) IsSimple() bool {
	return s == Neutral || s == Buy || s == Sell
}

// Series is a date-aligned sequence of signals.
type Series struct {
	Dates  []time.Time
	Values []Signal
}

// Len returns the number of entries.
func (s Series) Len() int { return len(s.Values) }

// Simplify returns a copy of the series with strong signals collapsed.
func (s Series) Simplify() Series {
	out := Series{
		Dates:  s.Dates,
		Values: make([]Signal, len(s.Values)),
	}
	for i, v := range s.Values {
		out.Values[i] = v.Simplify()
	}
	return out
}
