package dataset

import (
	"errors"
	"math"
)

// Frame is the model-ready view of a table: one target and ordered features,
// with every row that had a missing value removed.
type Frame struct {
	Features []string
	Target   string
	X        [][]float64
	Y        []float64
}

// Len returns the number of usable rows.
func (f *Frame) Len() int {
	return len(f.Y)
}

// Column returns the values of one feature column.
func (f *Frame) Column(feature string) ([]float64, bool) {
	for j, name := range f.Features {
		if name == feature {
			out := make([]float64, len(f.X))
			for i, row := range f.X {
				out[i] = row[j]
			}
			return out, true
		}
	}
	return nil, false
}

// Subset returns the rows at idx, in idx order. Rows are shared, not copied.
func (f *Frame) Subset(idx []int) *Frame {
	out := &Frame{
		Features: f.Features,
		Target:   f.Target,
		X:        make([][]float64, len(idx)),
		Y:        make([]float64, len(idx)),
	}
	for i, j := range idx {
		out.X[i] = f.X[j]
		out.Y[i] = f.Y[j]
	}
	return out
}

// Select extracts target and features from the table and drops every row
// with a missing value in any of them. Missing columns yield *MissingColumnError.
func Select(t *Table, target string, features ...string) (*Frame, error) {
	if len(features) == 0 {
		return nil, errors.New("at least one feature column is required")
	}
	y, err := t.Float(target)
	if err != nil {
		return nil, err
	}
	cols := make([][]float64, len(features))
	for j, name := range features {
		if cols[j], err = t.Float(name); err != nil {
			return nil, err
		}
	}

	frame := &Frame{
		Features: append([]string(nil), features...),
		Target:   target,
	}
rows:
	for i := 0; i < t.Len(); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		row := make([]float64, len(features))
		for j := range cols {
			if math.IsNaN(cols[j][i]) {
				continue rows
			}
			row[j] = cols[j][i]
		}
		frame.X = append(frame.X, row)
		frame.Y = append(frame.Y, y[i])
	}
	return frame, nil
}

// SelectAllExcept uses every numeric column other than the target and the
// excluded ones as features, in table order. The date column is never a feature.
func SelectAllExcept(t *Table, target string, exclude ...string) (*Frame, error) {
	if !t.Has(target) {
		return nil, &MissingColumnError{Column: target}
	}
	skip := make(map[string]struct{}, len(exclude)+1)
	skip[target] = struct{}{}
	for _, c := range exclude {
		skip[c] = struct{}{}
	}

	var features []string
	for _, c := range t.columns {
		if _, ok := skip[c]; ok || t.IsDate(c) {
			continue
		}
		features = append(features, c)
	}
	if len(features) == 0 {
		return nil, errors.New("no feature columns left after excluding target")
	}
	return Select(t, target, features...)
}

// RequireRows returns ErrInsufficientData when the frame has fewer than min rows.
func (f *Frame) RequireRows(min int) error {
	if f.Len() < min {
		return ErrInsufficientData
	}
	return nil
}
