package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/abgdnv/cloudshop/internal/product/model"
)

var requiredColumns = []string{"title", "description", "price", "count"}

// ReadRecords yields one ImportRecord per CSV data row. The first row is the header; column
// names are matched case-insensitively and extra columns are ignored. Iteration stops after
// the first error, which is a *RowError for content problems.
func ReadRecords(r io.Reader) iter.Seq2[model.ImportRecord, error] {
	return func(yield func(model.ImportRecord, error) bool) {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		reader.ReuseRecord = true

		header, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(model.ImportRecord{}, &RowError{Line: 1, Err: err})
			return
		}
		index, err := columnIndex(header)
		if err != nil {
			yield(model.ImportRecord{}, &RowError{Line: 1, Err: err})
			return
		}

		for {
			row, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				line := 0
				var parseErr *csv.ParseError
				if errors.As(err, &parseErr) {
					line = parseErr.Line
				}
				yield(model.ImportRecord{}, &RowError{Line: line, Err: err})
				return
			}
			line, _ := reader.FieldPos(0)
			record, err := toRecord(row, index, line)
			if !yield(record, err) || err != nil {
				return
			}
		}
	}
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

func toRecord(row []string, index map[string]int, line int) (model.ImportRecord, error) {
	field := func(col string) (string, error) {
		i := index[col]
		if i >= len(row) {
			return "", &RowError{Line: line, Column: col, Err: errors.New("missing value")}
		}
		return strings.TrimSpace(row[i]), nil
	}

	var rec model.ImportRecord
	var err error
	if rec.Title, err = field("title"); err != nil {
		return rec, err
	}
	if rec.Description, err = field("description"); err != nil {
		return rec, err
	}
	price, err := field("price")
	if err != nil {
		return rec, err
	}
	if rec.Price, err = strconv.ParseFloat(price, 64); err != nil {
		return rec, &RowError{Line: line, Column: "price", Err: fmt.Errorf("not a number: %q", price)}
	}
	count, err := field("count")
	if err != nil {
		return rec, err
	}
	if rec.Count, err = strconv.ParseInt(count, 10, 64); err != nil {
		return rec, &RowError{Line: line, Column: "count", Err: fmt.Errorf("not an integer: %q", count)}
	}
	return rec, nil
}
