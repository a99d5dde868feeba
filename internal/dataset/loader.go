package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// missingMarkers are cell values treated as missing without a warning.
var missingMarkers = map[string]struct{}{
	"": {}, "nan": {}, "NaN": {}, "NA": {}, "N/A": {}, "null": {}, "NULL": {}, "-": {},
}

// LoadOptions controls how a source file is turned into a Table.
type LoadOptions struct {
	// RenameMap maps raw headers to canonical column names.
	RenameMap map[string]string
	// DateColumn is parsed as dates when present (after renaming).
	DateColumn string
}

// Load reads a CSV file with one header row into a Table, renaming the
// headers and parsing the date column. A missing file yields ErrMissingFile.
func Load(path string, opts LoadOptions, logger *zap.Logger) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()

	table, err := Read(file, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("Loaded raw data",
		zap.String("path", path),
		zap.Int("rows", table.Len()),
		zap.Int("columns", len(table.columns)))
	return table, nil
}

// Read parses CSV content from r. See Load.
func Read(r io.Reader, opts LoadOptions, logger *zap.Logger) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Read the header row
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty csv file")
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, raw := range header {
		name := canonicalName(raw, opts.RenameMap)
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column %q (header positions %d and %d)", name, prev, i)
		}
		seen[name] = i
		columns[i] = name
	}

	cells := make([][]string, len(columns))
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		for i := range columns {
			v := ""
			if i < len(record) {
				v = record[i]
			}
			cells[i] = append(cells[i], v)
		}
	}

	rows := 0
	if len(cells) > 0 {
		rows = len(cells[0])
	}
	t := &Table{
		columns:  columns,
		numeric:  make(map[string][]float64, len(columns)),
		dates:    make(map[string][]time.Time),
		rowCount: rows,
	}

	for i, name := range columns {
		if opts.DateColumn != "" && name == opts.DateColumn {
			dates, bad := parseDates(cells[i])
			if bad > 0 {
				logger.Warn("Unparsable dates coerced to null", zap.String("column", name), zap.Int("count", bad))
			}
			t.dates[name] = dates
			continue
		}
		values, bad := parseFloats(cells[i])
		if bad > 0 {
			logger.Warn("Non-numeric cells treated as missing", zap.String("column", name), zap.Int("count", bad))
		}
		t.numeric[name] = values
	}

	logger.Debug("Column names after renaming", zap.Strings("columns", columns))
	return t, nil
}

func canonicalName(raw string, rename map[string]string) string {
	if v, ok := rename[raw]; ok {
		return v
	}
	// Spreadsheet exports sometimes carry CRLF inside quoted headers or trailing spaces.
	normalized := strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n"))
	if v, ok := rename[normalized]; ok {
		return v
	}
	return normalized
}

func parseFloats(cells []string) ([]float64, int) {
	out := make([]float64, len(cells))
	bad := 0
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if _, missing := missingMarkers[c]; missing {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil || math.IsInf(v, 0) {
			out[i] = math.NaN()
			bad++
			continue
		}
		out[i] = v
	}
	return out, bad
}

func parseDates(cells []string) ([]time.Time, int) {
	out := make([]time.Time, len(cells))
	bad := 0
	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		parsed := false
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, c); err == nil {
				out[i] = d
				parsed = true
				break
			}
		}
		if !parsed {
			bad++
		}
	}
	return out, bad
}
