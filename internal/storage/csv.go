package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/hurstlab/internal/fractal"
	"github.com/san-kum/hurstlab/internal/mfdfa"
)

// Record is one F_q(s) value.
type Record struct {
	Q     float64 `json:"q"`
	Scale int     `json:"scale"`
	F     float64 `json:"f"`
}

// Records flattens the fluctuation map of res, ordered by q then scale.
func Records(res *mfdfa.Result) []Record {
	out := make([]Record, 0, len(res.Fluctuation))
	for k, f := range res.Fluctuation {
		out = append(out, Record{Q: k.Q, Scale: k.Scale, F: f})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Q != out[j].Q {
			return out[i].Q < out[j].Q
		}
		return out[i].Scale < out[j].Scale
	})
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteSeriesCSV(w io.Writer, series fractal.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"index", "value"}); err != nil {
		return err
	}
	for i, v := range series {
		if err := cw.Write([]string{strconv.Itoa(i), formatFloat(v)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSeriesCSV reads one column of a CSV file as a series. column is a
// header name or a zero-based index; empty selects the last column. A first
// row that does not parse as numbers is taken as the header.
func ReadSeriesCSV(r io.Reader, column string) (fractal.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv: %w", fractal.ErrInsufficientData)
	}

	var header []string
	if !numericRow(records[0]) {
		header = records[0]
		records = records[1:]
	}

	col, err := columnIndex(header, records, column)
	if err != nil {
		return nil, err
	}

	series := make(fractal.Series, 0, len(records))
	for i, rec := range records {
		if col >= len(rec) {
			return nil, fmt.Errorf("row %d has no column %d", i+1, col)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		series = append(series, v)
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func numericRow(rec []string) bool {
	for _, field := range rec {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return false
		}
	}
	return true
}

func columnIndex(header []string, records [][]string, column string) (int, error) {
	if column == "" {
		width := len(header)
		if width == 0 && len(records) > 0 {
			width = len(records[0])
		}
		if width == 0 {
			return 0, fmt.Errorf("csv has no columns")
		}
		return width - 1, nil
	}
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), column) {
			return i, nil
		}
	}
	idx, err := strconv.Atoi(column)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("unknown column %q", column)
	}
	return idx, nil
}

func WriteFluctuationCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"q", "scale", "f"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{formatFloat(r.Q), strconv.Itoa(r.Scale), formatFloat(r.F)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadFluctuationCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	out := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		q, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d q: %w", i+1, err)
		}
		s, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("row %d scale: %w", i+1, err)
		}
		f, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d f: %w", i+1, err)
		}
		out = append(out, Record{Q: q, Scale: s, F: f})
	}
	return out, nil
}

// Curves groups records by q. Each curve is ordered by scale.
func Curves(records []Record) map[float64][]Record {
	out := make(map[float64][]Record)
	for _, r := range records {
		if math.IsNaN(r.F) {
			continue
		}
		out[r.Q] = append(out[r.Q], r)
	}
	for q := range out {
		c := out[q]
		sort.Slice(c, func(i, j int) bool { return c[i].Scale < c[j].Scale })
	}
	return out
}
