package formats

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type yamlCodec struct{}

func (yamlCodec) write(path string, ds Dataset, _ options) error {
	return writeFile(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(normalizeDataset(ds)); err != nil {
			return err
		}
		return enc.Close()
	})
}

func (yamlCodec) read(path string, o options) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return shapeDataset(normalizeValue(doc), o.tableName())
}
