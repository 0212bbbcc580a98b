package formats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	txtDelimiter   = "|"
	txtPipeEscaped = `\u007c`
)

type txtCodec struct{}

func (txtCodec) write(path string, ds Dataset, o options) error {
	rows, err := pickTable(ds, o)
	if err != nil {
		return err
	}
	columns := o.columns
	if len(columns) == 0 {
		columns = unionColumns(rows)
	}

	return writeFile(path, func(w io.Writer) error {
		fields := make([]string, len(columns))
		for n, row := range rows {
			for i, col := range columns {
				cell, err := txtCell(row[col])
				if err != nil {
					return fmt.Errorf("row %d column %s: %w", n+1, col, err)
				}
				fields[i] = cell
			}
			if _, err := io.WriteString(w, strings.Join(fields, txtDelimiter)+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// txtCell renders a cell for the pipe format. JSON cells may carry the delimiter
// as an escape; plain strings may not.
func txtCell(v any) (string, error) {
	cell, err := cellString(v)
	if err != nil {
		return "", err
	}
	switch normalizeValue(v).(type) {
	case map[string]any, []any:
		cell = strings.ReplaceAll(cell, txtDelimiter, txtPipeEscaped)
	}
	if strings.Contains(cell, txtDelimiter) {
		return "", fmt.Errorf("value %q contains the %q delimiter", cell, txtDelimiter)
	}
	if strings.ContainsAny(cell, "\r\n") {
		return "", fmt.Errorf("value %q contains a line break", cell)
	}
	return cell, nil
}

func (txtCodec) read(path string, o options) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := []Record{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, txtDelimiter)
		row := make(Record, len(fields))
		for i, value := range fields {
			row[txtColumn(o.columns, i)] = value
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read txt: %w", err)
	}
	return Dataset{o.tableName(): rows}, nil
}

func txtColumn(columns []string, i int) string {
	if i < len(columns) {
		return columns[i]
	}
	return fmt.Sprintf("field_%d", i)
}
