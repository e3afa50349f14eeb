package trips

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/flowarc"
)

// column is a required field with its accepted header spellings.
type column struct {
	name    string
	aliases []string
}

// table walks the data rows of a CSV input with header-addressed columns.
type table struct {
	r     *csv.Reader
	opts  options
	index []int
	cols  []column
}

func newTable(r io.Reader, cols []column, opts []Option) (*table, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cr := csv.NewReader(r)
	cr.Comma = o.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("trips: read header: %w", err)
	}

	names := make(map[string]int, len(header))
	for i, h := range header {
		names[normalize(h)] = i
	}

	t := &table{r: cr, opts: o, cols: cols, index: make([]int, len(cols))}
	for i, c := range cols {
		idx, ok := lookup(names, c)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c.name)
		}
		t.index[i] = idx
	}
	return t, nil
}

func normalize(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func lookup(names map[string]int, c column) (int, bool) {
	if i, ok := names[c.name]; ok {
		return i, true
	}
	for _, a := range c.aliases {
		if i, ok := names[a]; ok {
			return i, true
		}
	}
	return 0, false
}

// each calls fn with the required fields of every data row. Malformed rows
// are skipped and returned; in strict mode the first one is returned as the
// error instead.
func (t *table) each(numeric []bool, fn func(fields []string, values []float64, line int) error) ([]RowError, error) {
	var skipped []RowError
	values := make([]float64, len(t.cols))
	fields := make([]string, len(t.cols))

	for {
		record, err := t.r.Read()
		if errors.Is(err, io.EOF) {
			return skipped, nil
		}

		var rowErr *RowError
		var line int
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return skipped, fmt.Errorf("trips: read: %w", err)
			}
			rowErr = &RowError{Line: pe.Line, Err: pe.Err}
		} else {
			line, _ = t.r.FieldPos(0)
			rowErr = t.row(record, line, fields, values, numeric)
		}
		if rowErr == nil {
			rowErr = asRowError(fn(fields, values, line), line)
		}
		if rowErr != nil {
			if t.opts.strict {
				return skipped, rowErr
			}
			flowarc.Logger().Warn("trips: skipping row", slog.String("err", rowErr.Error()))
			skipped = append(skipped, *rowErr)
		}
	}
}

func (t *table) row(record []string, line int, fields []string, values []float64, numeric []bool) *RowError {
	for i, idx := range t.index {
		if idx >= len(record) {
			return &RowError{Line: line, Column: t.cols[i].name, Err: errors.New("field missing")}
		}
		fields[i] = strings.TrimSpace(record[idx])
		if !numeric[i] {
			continue
		}
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return &RowError{Line: line, Column: t.cols[i].name, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &RowError{Line: line, Column: t.cols[i].name, Err: errors.New("not a finite number")}
		}
		values[i] = v
	}
	return nil
}

func asRowError(err error, line int) *RowError {
	if err == nil {
		return nil
	}
	var re *RowError
	if errors.As(err, &re) {
		return re
	}
	return &RowError{Line: line, Err: err}
}
