// Package dataset loads historical gauge/weather observations and selects the
// columns a regression run needs.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// MinUsableRows is the fewest paired observations a feature needs in comparison mode.
const MinUsableRows = 10

var (
	// ErrMissingFile is returned when the source file does not exist.
	ErrMissingFile = errors.New("could not find file")
	// ErrInsufficientData is returned when too few rows survive missing-value filtering.
	ErrInsufficientData = errors.New("not enough data")
)

// MissingColumnError names a requested column that is not in the table.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("column '%s' not found", e.Column)
}

// Table is the loaded dataset. Numeric columns use NaN for missing cells and
// the date column uses the zero time for unparsable values.
type Table struct {
	columns  []string
	numeric  map[string][]float64
	dates    map[string][]time.Time
	rowCount int
}

// NewTable builds a table from numeric columns given in order. Used by loaders and tests.
func NewTable(columns []string, values map[string][]float64) (*Table, error) {
	t := &Table{
		numeric: make(map[string][]float64, len(columns)),
		dates:   make(map[string][]time.Time),
	}
	for i, c := range columns {
		v, ok := values[c]
		if !ok {
			return nil, &MissingColumnError{Column: c}
		}
		if i == 0 {
			t.rowCount = len(v)
		} else if len(v) != t.rowCount {
			return nil, fmt.Errorf("column %s has %d rows, expected %d", c, len(v), t.rowCount)
		}
		t.columns = append(t.columns, c)
		t.numeric[c] = v
	}
	return t, nil
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rowCount
}

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	if _, ok := t.numeric[column]; ok {
		return true
	}
	_, ok := t.dates[column]
	return ok
}

// Float returns a numeric column.
func (t *Table) Float(column string) ([]float64, error) {
	v, ok := t.numeric[column]
	if !ok {
		return nil, &MissingColumnError{Column: column}
	}
	return v, nil
}

// Dates returns a date column.
func (t *Table) Dates(column string) ([]time.Time, error) {
	v, ok := t.dates[column]
	if !ok {
		return nil, &MissingColumnError{Column: column}
	}
	return v, nil
}

// IsDate reports whether the column was parsed as dates.
func (t *Table) IsDate(column string) bool {
	_, ok := t.dates[column]
	return ok
}

// MissingCount returns the number of missing cells in a column.
func (t *Table) MissingCount(column string) int {
	n := 0
	if v, ok := t.numeric[column]; ok {
		for _, x := range v {
			if math.IsNaN(x) {
				n++
			}
		}
	}
	if v, ok := t.dates[column]; ok {
		for _, d := range v {
			if d.IsZero() {
				n++
			}
		}
	}
	return n
}
