package segment

import "fmt"

// MeasureRange names the columns holding the start and end of each row's
// interval along the linear reference.
type MeasureRange struct {
	Start string
	End   string
}

// Table is a column-oriented numeric table keyed by column name.
type Table struct {
	Columns map[string][]float64
}

// Len returns the common column length.
func (t Table) Len() (int, error) {
	n := -1
	for name, col := range t.Columns {
		if n >= 0 && len(col) != n {
			return 0, fmt.Errorf("%w: column %q has %d rows, expected %d", ErrRaggedTable, name, len(col), n)
		}
		n = len(col)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// Observations builds one Observation per row from the named columns.
// Values follow the order of variables.
func (t Table) Observations(measure MeasureRange, variables []string) ([]Observation, error) {
	if len(variables) == 0 {
		return nil, ErrNoVariables
	}
	n, err := t.Len()
	if err != nil {
		return nil, err
	}

	column := func(name string) ([]float64, error) {
		col, ok := t.Columns[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		return col, nil
	}

	start, err := column(measure.Start)
	if err != nil {
		return nil, err
	}
	end, err := column(measure.End)
	if err != nil {
		return nil, err
	}
	vars := make([][]float64, len(variables))
	for v, name := range variables {
		if vars[v], err = column(name); err != nil {
			return nil, err
		}
	}

	obs := make([]Observation, n)
	for i := range obs {
		values := make([]float64, len(vars))
		for v, col := range vars {
			values[v] = col[i]
		}
		obs[i] = Observation{Start: start[i], End: end[i], Values: values}
	}
	return obs, nil
}
