package formats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

type csvCodec struct{}

func (csvCodec) write(path string, ds Dataset, o options) error {
	rows, err := pickTable(ds, o)
	if err != nil {
		return err
	}
	columns := unionColumns(rows)

	return writeFile(path, func(w io.Writer) error {
		if len(columns) == 0 {
			return nil
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(columns); err != nil {
			return err
		}
		line := make([]string, len(columns))
		for _, row := range rows {
			for i, col := range columns {
				cell, err := cellString(row[col])
				if err != nil {
					return fmt.Errorf("column %s: %w", col, err)
				}
				line[i] = cell
			}
			if err := cw.Write(line); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func (csvCodec) read(path string, o options) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []Record
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		row := make(Record, len(header))
		for i, col := range header {
			row[col] = inferCell(line[i])
		}
		rows = append(rows, row)
	}

	if rows == nil {
		rows = []Record{}
	}
	return Dataset{o.tableName(): rows}, nil
}
