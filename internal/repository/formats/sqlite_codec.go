package formats

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// sqliteCodec stores one TEXT-column table per dataset key. Columns come from
// the first row; keys introduced by later rows are dropped for that table.
type sqliteCodec struct{}

func openSQLite(path string) (*gorm.DB, func(), error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	closer := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closer, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteCodec) write(path string, ds Dataset, _ options) error {
	for _, table := range ds.Tables() {
		if !identifierPattern.MatchString(table) {
			return fmt.Errorf("table name %q is not a valid identifier", table)
		}
	}

	db, closeDB, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer closeDB()

	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range ds.Tables() {
			rows := ds[table]
			if len(rows) == 0 {
				continue
			}
			if err := writeTable(tx, table, rows); err != nil {
				return fmt.Errorf("table %s: %w", table, err)
			}
		}
		return nil
	})
}

func writeTable(tx *gorm.DB, table string, rows []Record) error {
	columns := make([]string, 0, len(rows[0]))
	for key := range rows[0] {
		if !identifierPattern.MatchString(key) {
			return fmt.Errorf("column name %q is not a valid identifier", key)
		}
		columns = append(columns, key)
	}
	sort.Strings(columns)

	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = quoteIdent(col) + " TEXT"
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if err := tx.Exec(ddl).Error; err != nil {
		return err
	}

	values := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		value := make(map[string]any, len(columns))
		for _, col := range columns {
			if row[col] == nil {
				value[col] = nil
				continue
			}
			cell, err := cellString(row[col])
			if err != nil {
				return fmt.Errorf("column %s: %w", col, err)
			}
			value[col] = cell
		}
		values = append(values, value)
	}
	return tx.Table(table).CreateInBatches(values, 200).Error
}

func (sqliteCodec) read(path string, _ options) (Dataset, error) {
	db, closeDB, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	var tables []struct{ Name string }
	err = db.Raw("SELECT name FROM sqlite_master WHERE type = ? AND name NOT LIKE ? ORDER BY name", "table", "sqlite_%").
		Scan(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	ds := make(Dataset, len(tables))
	for _, t := range tables {
		table := t.Name
		var raw []map[string]any
		if err := db.Table(table).Order("rowid").Find(&raw).Error; err != nil {
			return nil, fmt.Errorf("read table %s: %w", table, err)
		}
		rows := make([]Record, 0, len(raw))
		for _, r := range raw {
			row := make(Record, len(r))
			for col, value := range r {
				row[col] = sqliteValue(value)
			}
			rows = append(rows, row)
		}
		ds[table] = rows
	}
	return ds, nil
}

// sqliteValue applies the flat-cell inference to TEXT values read back.
func sqliteValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return inferCell(x)
	case []byte:
		return inferCell(string(x))
	default:
		return normalizeValue(x)
	}
}
