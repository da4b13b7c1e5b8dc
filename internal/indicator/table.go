package indicator

import "time"

// Table is a date-indexed collection of named float columns: the price
// columns plus one column per enabled indicator output. Columns keep
// insertion order so downstream metadata is stable.
type Table struct {
	dates []time.Time
	cols  map[string][]float64
	order []string
}

// NewTable creates an empty table over the given date index.
func NewTable(dates []time.Time) *Table {
	return &Table{
		dates: dates,
		cols:  make(map[string][]float64, 12),
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.dates) }

// Dates returns the date index.
func (t *Table) Dates() []time.Time { return t.dates }

// add stores a column. Adding an existing name overwrites in place and
// keeps the original position.
func (t *Table) add(name string, values []float64) {
	if _, exists := t.cols[name]; !exists {
		t.order = append(t.order, name)
	}
	t.cols[name] = values
}

// Column returns the named column and whether it exists.
func (t *Table) Column(name string) ([]float64, bool) {
	col, ok := t.cols[name]
	return col, ok
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}
