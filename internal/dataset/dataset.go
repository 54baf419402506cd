// Package dataset reads and writes the delimited measurement tables that
// segmentation jobs consume and produce.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/chrissnell/hsegment/internal/segment"
)

// ErrNoHeader is returned for an input without a header row.
var ErrNoHeader = errors.New("dataset: missing header row")

// Dataset is a CSV table held as text, so that rows can be written back
// unchanged with label columns appended.
type Dataset struct {
	Header  []string
	Records [][]string
	index   map[string]int
}

// Read parses a CSV stream whose first row is the header.
func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	d := &Dataset{
		Header:  header,
		Records: records,
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		if _, dup := d.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		d.index[name] = i
	}
	return d, nil
}

// ReadFile reads the CSV file at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Records)
}

func (d *Dataset) column(name string) (int, error) {
	i, ok := d.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", segment.ErrUnknownColumn, name)
	}
	return i, nil
}

// Floats parses the named column. Empty, unparsable and non-finite cells
// (Inf, -Inf, NaN) become NaN, which marks the row as missing for
// segmentation.
func (d *Dataset) Floats(name string) ([]float64, error) {
	col, err := d.column(name)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(d.Records))
	for i, rec := range d.Records {
		values[i] = parseFloat(rec[col])
	}
	return values, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// Table returns the named columns, restricted to rows, as a numeric table.
// A nil rows selects every row.
func (d *Dataset) Table(rows []int, names ...string) (segment.Table, error) {
	table := segment.Table{Columns: make(map[string][]float64, len(names))}
	for _, name := range names {
		if _, done := table.Columns[name]; done {
			continue
		}
		values, err := d.Floats(name)
		if err != nil {
			return table, err
		}
		if rows != nil {
			picked := make([]float64, len(rows))
			for i, r := range rows {
				picked[i] = values[r]
			}
			values = picked
		}
		table.Columns[name] = values
	}
	return table, nil
}

// Partition is a set of rows sharing the same key column values.
type Partition struct {
	Key  string
	Rows []int
}

// Partition splits the rows by the values of the key columns. Partitions
// are ordered by first appearance and keep their rows in input order. Rows
// are grouped on the exact tuple of cell values; Key is only a readable
// label and may coincide for distinct tuples. With no key columns every row
// lands in one partition with an empty key.
func (d *Dataset) Partition(keys []string) ([]Partition, error) {
	cols := make([]int, len(keys))
	for i, name := range keys {
		col, err := d.column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}

	var parts []Partition
	seen := make(map[string]int)
	for r, rec := range d.Records {
		fields := make([]string, len(cols))
		for i, col := range cols {
			fields[i] = rec[col]
		}
		tuple := fmt.Sprintf("%q", fields)

		p, ok := seen[tuple]
		if !ok {
			p = len(parts)
			seen[tuple] = p
			parts = append(parts, Partition{Key: strings.Join(fields, "/")})
		}
		parts[p].Rows = append(parts[p].Rows, r)
	}
	return parts, nil
}

// Write writes the dataset to w with extra columns appended to every row.
// extra(r) must return one value per name in columns.
func (d *Dataset) Write(w io.Writer, columns []string, extra func(row int) []string) error {
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(d.Header)+len(columns))
	header = append(header, d.Header...)
	if err := writer.Write(append(header, columns...)); err != nil {
		return err
	}

	for r, rec := range d.Records {
		row := make([]string, 0, len(rec)+len(columns))
		row = append(row, rec...)
		values := extra(r)
		if len(values) != len(columns) {
			return fmt.Errorf("row %d: %d extra values for %d columns", r, len(values), len(columns))
		}
		if err := writer.Write(append(row, values...)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
