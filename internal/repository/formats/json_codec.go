package formats

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

const schemaVersion = "1.0"

type jsonEnvelope struct {
	Data     Dataset      `json:"data"`
	Metadata jsonMetadata `json:"metadata"`
}

type jsonMetadata struct {
	CreatedAt string `json:"created_at"`
	Format    string `json:"format"`
	Version   string `json:"version"`
}

type jsonCodec struct{}

func (jsonCodec) write(path string, ds Dataset, o options) error {
	envelope := jsonEnvelope{
		Data: normalizeDataset(ds),
		Metadata: jsonMetadata{
			CreatedAt: o.now().Format(time.RFC3339),
			Format:    string(JSON),
			Version:   schemaVersion,
		},
	}
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		return enc.Encode(envelope)
	})
}

func (jsonCodec) read(path string, o options) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	if obj, ok := doc.(map[string]any); ok {
		if data, hasData := obj["data"]; hasData {
			if _, hasMeta := obj["metadata"]; hasMeta {
				doc = data
			}
		}
	}
	return shapeDataset(normalizeValue(doc), o.tableName())
}

// shapeDataset accepts a list of rows, a mapping of table -> rows, or a single
// row object, and rejects anything else.
func shapeDataset(doc any, table string) (Dataset, error) {
	switch v := doc.(type) {
	case nil:
		return Dataset{}, nil
	case []any:
		rows, err := toRows(v)
		if err != nil {
			return nil, err
		}
		return Dataset{table: rows}, nil
	case map[string]any:
		if isTableMap(v) {
			ds := make(Dataset, len(v))
			for name, value := range v {
				list, _ := value.([]any)
				rows, err := toRows(list)
				if err != nil {
					return nil, fmt.Errorf("table %s: %w", name, err)
				}
				ds[name] = rows
			}
			return ds, nil
		}
		return Dataset{table: {Record(v)}}, nil
	default:
		return nil, fmt.Errorf("unexpected document of type %T", doc)
	}
}

func isTableMap(obj map[string]any) bool {
	if len(obj) == 0 {
		return true
	}
	for _, value := range obj {
		if value == nil {
			continue
		}
		if _, ok := value.([]any); !ok {
			return false
		}
	}
	return true
}

func toRows(list []any) ([]Record, error) {
	rows := make([]Record, 0, len(list))
	for i, item := range list {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d is %T, expected an object", i+1, item)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeDataset(ds Dataset) Dataset {
	out := make(Dataset, len(ds))
	for name, rows := range ds {
		normalized := make([]Record, len(rows))
		for i, row := range rows {
			normalized[i] = normalizeRecord(row)
		}
		out[name] = normalized
	}
	return out
}
