package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ProductPatch is a partial update keyed by field name. Only the fields listed in
// patchableFields are applied; unknown keys are ignored.
type ProductPatch map[string]any

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindBool
)

var patchableFields = map[string]fieldKind{
	"name":                    kindString,
	"category_main":           kindString,
	"category_sub":            kindString,
	"description":             kindString,
	"preferred_supplier_id":   kindString,
	"quantity":                kindInt,
	"min_quantity":            kindInt,
	"reorder_point":           kindInt,
	"price":                   kindFloat,
	"requires_batch_tracking": kindBool,
}

// Keys returns the recognised keys present in the patch, sorted.
func (p ProductPatch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if _, ok := patchableFields[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// PatchValues holds the type-checked values of a patch.
type PatchValues struct {
	strings map[string]string
	ints    map[string]int
	floats  map[string]float64
	bools   map[string]bool
}

// String returns the checked string value for field.
func (v PatchValues) String(field string) (string, bool) {
	s, ok := v.strings[field]
	return s, ok
}

// Int returns the checked integer value for field.
func (v PatchValues) Int(field string) (int, bool) {
	n, ok := v.ints[field]
	return n, ok
}

// Float returns the checked float value for field.
func (v PatchValues) Float(field string) (float64, bool) {
	f, ok := v.floats[field]
	return f, ok
}

// Bool returns the checked boolean value for field.
func (v PatchValues) Bool(field string) (bool, bool) {
	b, ok := v.bools[field]
	return b, ok
}

// Check type-checks every recognised field. No field is applied when any fails.
func (p ProductPatch) Check() (PatchValues, error) {
	values := PatchValues{
		strings: map[string]string{},
		ints:    map[string]int{},
		floats:  map[string]float64{},
		bools:   map[string]bool{},
	}

	for _, field := range p.Keys() {
		raw := p[field]
		switch patchableFields[field] {
		case kindString:
			s, ok := raw.(string)
			if !ok {
				return values, InvalidField(field, "expected string, got %T", raw)
			}
			if field == "name" && strings.TrimSpace(s) == "" {
				return values, InvalidField(field, "must not be empty")
			}
			values.strings[field] = s
		case kindInt:
			n, err := asInt(raw)
			if err != nil {
				return values, InvalidField(field, "%v", err)
			}
			if n < 0 {
				return values, InvalidField(field, "must not be negative, got %d", n)
			}
			values.ints[field] = n
		case kindFloat:
			f, err := asFloat(raw)
			if err != nil {
				return values, InvalidField(field, "%v", err)
			}
			if f < 0 {
				return values, InvalidField(field, "must not be negative, got %.2f", f)
			}
			values.floats[field] = f
		case kindBool:
			b, ok := raw.(bool)
			if !ok {
				return values, InvalidField(field, "expected boolean, got %T", raw)
			}
			values.bools[field] = b
		}
	}

	return values, nil
}

// ApplyScalars writes the checked scalar fields onto the product. Batch tracking
// toggles and quantity changes on tracked products are left to the caller.
func (v PatchValues) ApplyScalars(p *Product) {
	for field, s := range v.strings {
		switch field {
		case "name":
			p.Name = s
		case "category_main":
			p.CategoryMain = s
		case "category_sub":
			p.CategorySub = s
		case "description":
			p.Description = s
		case "preferred_supplier_id":
			p.PreferredSupplierID = s
		}
	}
	for field, n := range v.ints {
		switch field {
		case "quantity":
			p.Quantity = n
		case "min_quantity":
			p.MinQuantity = n
		case "reorder_point":
			p.ReorderPoint = n
		}
	}
	if f, ok := v.floats["price"]; ok {
		p.Price = f
	}
}

func asInt(raw any) (int, error) {
	switch n := raw.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("expected integer, got %v", n)
		}
		return int(n), nil
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", n.String())
		}
		return i, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func asFloat(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("expected number, got %q", n.String())
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}
