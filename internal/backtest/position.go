package backtest

import (
	"time"

	"quantanalysis/internal/signal"
)

// Position values held at each timestamp.
const (
	Flat  = 0
	Long  = 1
	Short = -1
)

// NextPosition applies the position transition rule to one signal:
//
//	BUY while position ≤ 0  → LONG  (a short flips directly, no close step)
//	SELL while position ≥ 0 → SHORT
//	anything else           → position carried forward
//
// Repeated same-direction signals are idempotent.
func NextPosition(pos int, sig signal.Signal) int {
	switch {
	case sig == signal.Buy && pos <= 0:
		return Long
	case sig == signal.Sell && pos >= 0:
		return Short
	default:
		return pos
	}
}

// Trade is one closed position interval. Records are immutable once
// appended to the ledger.
type Trade struct {
	EntryDate  time.Time `json:"entry_date"`
	ExitDate   time.Time `json:"exit_date"`
	Position   int       `json:"position"` // +1 long, −1 short
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Return     float64   `json:"return"`        // Position × (exit−entry)/entry
	Duration   int       `json:"duration_days"` // calendar days held
}

// ledger reconstructs discrete trades from the position series, one step
// at a time. Each step is a pure fold over (held position, new position).
type ledger struct {
	trades     []Trade
	position   int
	entryDate  time.Time
	entryPrice float64
}

// step observes the position at one timestamp. When the position changes,
// the previous non-flat position is closed into a Trade and a new one is
// opened if the new position is non-flat. Returns the closed trade, if any.
func (l *ledger) step(date time.Time, price float64, newPos int) (Trade, bool) {
	if newPos == l.position {
		return Trade{}, false
	}

	var closed Trade
	var didClose bool
	if l.position != Flat {
		closed = Trade{
			EntryDate:  l.entryDate,
			ExitDate:   date,
			Position:   l.position,
			EntryPrice: l.entryPrice,
			ExitPrice:  price,
			Return:     float64(l.position) * (price - l.entryPrice) / l.entryPrice,
			Duration:   int(date.Sub(l.entryDate).Hours() / 24),
		}
		l.trades = append(l.trades, closed)
		didClose = true
	}

	if newPos != Flat {
		l.entryDate = date
		l.entryPrice = price
	}
	l.position = newPos
	return closed, didClose
}

// open reports whether a position is still held (the final trade of a
// series may be left open; it is never force-closed).
func (l *ledger) open() bool { return l.position != Flat }
