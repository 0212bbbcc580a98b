package formats

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

// Format names a supported file encoding.
type Format string

const (
	JSON   Format = "json"
	CSV    Format = "csv"
	TXT    Format = "txt"
	YAML   Format = "yaml"
	SQLite Format = "sqlite"
)

// DefaultTable names the collection produced when a source carries no table name.
const DefaultTable = "records"

// Formats lists every supported format.
func Formats() []Format {
	return []Format{JSON, CSV, TXT, YAML, SQLite}
}

// ParseFormat accepts a format name such as "json" or "yml".
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "txt", "text", "pipe":
		return TXT, nil
	case "yaml", "yml":
		return YAML, nil
	case "sqlite", "sqlite3", "db":
		return SQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, value)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", models.ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// SingleTable reports whether the format can only hold one collection.
func (f Format) SingleTable() bool {
	return f == CSV || f == TXT
}

// Record is one entity flattened to field name -> value. Values are nil, string,
// bool, int64, float64, []any or map[string]any.
type Record = map[string]any

// Dataset maps a table (entity kind) to its rows.
type Dataset map[string][]Record

// Tables returns the table names in sorted order.
func (d Dataset) Tables() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len counts rows across all tables.
func (d Dataset) Len() int {
	total := 0
	for _, rows := range d {
		total += len(rows)
	}
	return total
}

// Rows returns the rows of name. When name is absent and the dataset holds a
// single table, that table is returned instead.
func (d Dataset) Rows(name string) []Record {
	if rows, ok := d[name]; ok {
		return rows
	}
	if len(d) == 1 {
		for _, rows := range d {
			return rows
		}
	}
	return nil
}

func (d Dataset) nonEmpty() []string {
	var names []string
	for _, name := range d.Tables() {
		if len(d[name]) > 0 {
			names = append(names, name)
		}
	}
	return names
}

// Option tunes a single save, load or convert call.
type Option func(*options)

type options struct {
	columns []string
	table   string
	now     func() time.Time
}

// WithColumns fixes the field order for positional formats. On load it supplies
// the header for files written without one.
func WithColumns(columns ...string) Option {
	return func(o *options) {
		o.columns = append([]string(nil), columns...)
	}
}

// WithTable selects the table to write for single-table formats and names the
// collection produced when loading them.
func WithTable(name string) Option {
	return func(o *options) {
		o.table = name
	}
}

func (o options) tableName() string {
	if o.table != "" {
		return o.table
	}
	return DefaultTable
}

func collectOptions(now func() time.Time, opts []Option) options {
	o := options{now: now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// pickTable resolves the one collection a single-table format will write.
func pickTable(ds Dataset, o options) ([]Record, error) {
	if o.table != "" {
		return ds[o.table], nil
	}
	names := ds.nonEmpty()
	switch len(names) {
	case 0:
		return nil, nil
	case 1:
		return ds[names[0]], nil
	default:
		return nil, fmt.Errorf("%w: got tables %s", models.ErrMultipleCollections, strings.Join(names, ", "))
	}
}

// unionColumns returns the sorted union of keys across rows.
func unionColumns(rows []Record) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for key := range row {
			seen[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}
