// Package utils provides utility functions for data handling
package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// DataFrame is a simple named-column table of float64 observations,
// bridging sampled data and the matrix form the estimators consume.
type DataFrame struct {
	Columns []string
	rows    [][]float64
}

// NewDataFrame creates an empty data frame with the given columns.
func NewDataFrame(columns []string) *DataFrame {
	return &DataFrame{Columns: append([]string(nil), columns...)}
}

// NewDataFrameFromMatrix creates a data frame from a matrix with one
// column per name.
func NewDataFrameFromMatrix(data *mat.Dense, columns []string) (*DataFrame, error) {
	rows, cols := data.Dims()
	if cols != len(columns) {
		return nil, fmt.Errorf("utils: %d columns named for a %d-column matrix", len(columns), cols)
	}
	df := NewDataFrame(columns)
	for r := 0; r < rows; r++ {
		row := make([]float64, cols)
		for c := 0; c < cols; c++ {
			row[c] = data.At(r, c)
		}
		df.rows = append(df.rows, row)
	}
	return df, nil
}

// AddRow appends an observation with one value per column.
func (df *DataFrame) AddRow(row []float64) error {
	if len(row) != len(df.Columns) {
		return fmt.Errorf("utils: row has %d values, expected %d", len(row), len(df.Columns))
	}
	df.rows = append(df.rows, append([]float64(nil), row...))
	return nil
}

// Len returns the number of rows.
func (df *DataFrame) Len() int {
	return len(df.rows)
}

// Column returns all values of a column.
func (df *DataFrame) Column(name string) ([]float64, error) {
	idx := -1
	for i, c := range df.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("utils: no column %s", name)
	}
	values := make([]float64, len(df.rows))
	for i, row := range df.rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Matrix returns the observations as a dense matrix, one column per
// data frame column.
func (df *DataFrame) Matrix() *mat.Dense {
	data := mat.NewDense(len(df.rows), len(df.Columns), nil)
	for r, row := range df.rows {
		for c, v := range row {
			data.Set(r, c, v)
		}
	}
	return data
}

// LoadCSV reads a data frame from a CSV file with a header row.
func LoadCSV(path string) (*DataFrame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("utils: empty CSV file %s", path)
	}

	df := NewDataFrame(records[0])
	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for i, field := range record {
			row[i], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("utils: parsing %q: %v", field, err)
			}
		}
		if err := df.AddRow(row); err != nil {
			return nil, err
		}
	}
	return df, nil
}

// SaveCSV writes the data frame to a CSV file with a header row.
func (df *DataFrame) SaveCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(df.Columns); err != nil {
		return err
	}
	for _, row := range df.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
