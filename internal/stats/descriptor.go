// Package stats computes descriptive statistics over loaded market
// record tables, for the reporting surface downstream of the simulation
// core.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"estatesim/server/internal/models"
)

var (
	ErrEmptyData         = errors.New("data is empty")
	ErrUnknownColumn     = errors.New("unknown column")
	ErrInvalidPercentile = errors.New("percentile must be between 0 and 100")
)

// numericShare is the fraction of non-missing values that must parse as
// numbers for a column to count as numeric.
const numericShare = 0.9

// Descriptor computes per-column statistics over a record table.
type Descriptor struct {
	records []models.RawRecord
	columns []string
}

// NewDescriptor builds a descriptor over the given records. Columns fix
// the table schema; records may miss any subset of them.
func NewDescriptor(records []models.RawRecord, columns []string) (*Descriptor, error) {
	if len(records) == 0 {
		return nil, ErrEmptyData
	}
	if len(columns) == 0 {
		return nil, errors.New("no columns given")
	}
	return &Descriptor{records: records, columns: columns}, nil
}

// resolve validates requested column names; an empty request means all
// columns.
func (d *Descriptor) resolve(columns []string) ([]string, error) {
	if len(columns) == 0 {
		return d.columns, nil
	}
	known := make(map[string]bool, len(d.columns))
	for _, column := range d.columns {
		known[column] = true
	}
	for _, column := range columns {
		if !known[column] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
		}
	}
	return columns, nil
}

// values returns the column's non-missing raw values.
func (d *Descriptor) values(column string) []string {
	var out []string
	for _, record := range d.records {
		if value, ok := record[column]; ok {
			out = append(out, value)
		}
	}
	return out
}

// numericValues parses the column as floats when it qualifies as numeric.
func numericValues(raw []string) ([]float64, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	parsed := make([]float64, 0, len(raw))
	for _, value := range raw {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		parsed = append(parsed, f)
	}
	if float64(len(parsed))/float64(len(raw)) < numericShare {
		return nil, false
	}
	return parsed, true
}

// MissingRatio reports the share of missing values per column. No
// columns means all columns.
func (d *Descriptor) MissingRatio(columns ...string) (map[string]float64, error) {
	resolved, err := d.resolve(columns)
	if err != nil {
		return nil, err
	}
	ratios := make(map[string]float64, len(resolved))
	for _, column := range resolved {
		present := len(d.values(column))
		ratios[column] = float64(len(d.records)-present) / float64(len(d.records))
	}
	return ratios, nil
}

// Average reports the mean of each numeric column, omitting missing
// values. Non-numeric columns are skipped.
func (d *Descriptor) Average(columns ...string) (map[string]float64, error) {
	resolved, err := d.resolve(columns)
	if err != nil {
		return nil, err
	}
	averages := make(map[string]float64)
	for _, column := range resolved {
		values, ok := numericValues(d.values(column))
		if !ok || len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		averages[column] = sum / float64(len(values))
	}
	return averages, nil
}

// Median reports the median of each numeric column.
func (d *Descriptor) Median(columns ...string) (map[string]float64, error) {
	return d.percentileOf(50, columns)
}

// Percentile reports the given percentile of each numeric column, with
// linear interpolation between ranks.
func (d *Descriptor) Percentile(p float64, columns ...string) (map[string]float64, error) {
	if p < 0 || p > 100 {
		return nil, ErrInvalidPercentile
	}
	return d.percentileOf(p, columns)
}

func (d *Descriptor) percentileOf(p float64, columns []string) (map[string]float64, error) {
	resolved, err := d.resolve(columns)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, column := range resolved {
		values, ok := numericValues(d.values(column))
		if !ok || len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		rank := p / 100 * float64(len(values)-1)
		lower := int(math.Floor(rank))
		upper := int(math.Ceil(rank))
		if lower == upper {
			out[column] = values[lower]
		} else {
			frac := rank - float64(lower)
			out[column] = values[lower] + frac*(values[upper]-values[lower])
		}
	}
	return out, nil
}

// ColumnSummary describes one column: its inferred kind plus a
// representative value — the mean for numeric columns, the most frequent
// value for categorical ones.
type ColumnSummary struct {
	Kind string  `json:"kind"`
	Mean float64 `json:"mean,omitempty"`
	Mode string  `json:"mode,omitempty"`
}

// Describe infers each column's kind and representative value.
func (d *Descriptor) Describe(columns ...string) (map[string]ColumnSummary, error) {
	resolved, err := d.resolve(columns)
	if err != nil {
		return nil, err
	}
	out := make(map[string]ColumnSummary, len(resolved))
	for _, column := range resolved {
		raw := d.values(column)
		if values, ok := numericValues(raw); ok && len(values) > 0 {
			var sum float64
			for _, v := range values {
				sum += v
			}
			out[column] = ColumnSummary{Kind: "numeric", Mean: sum / float64(len(values))}
			continue
		}
		counts := make(map[string]int, len(raw))
		mode := ""
		best := 0
		for _, value := range raw {
			counts[value]++
			if counts[value] > best {
				best = counts[value]
				mode = value
			}
		}
		out[column] = ColumnSummary{Kind: "categorical", Mode: mode}
	}
	return out, nil
}
