package formats

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stockroom/internal/domain/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(t.TempDir(), "backups", nil)
	store.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	return store
}

func sampleProducts() []models.Product {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	expires := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	return []models.Product{
		{
			ProductID:    "PRD-0a1b2c3d",
			Name:         "Espresso Beans",
			CategoryMain: "Food & Beverages",
			CategorySub:  "Beverages",
			Quantity:     12,
			Price:        14.5,
			Description:  "Dark roast, 1kg",
			MinQuantity:  2,
			ReorderPoint: 6,
			CreatedAt:    created,
			UpdatedAt:    created,
		},
		{
			ProductID:             "PRD-9f8e7d6c",
			Name:                  "Greek Yogurt",
			CategoryMain:          "Food & Beverages",
			CategorySub:           "Dairy",
			Quantity:              30,
			Price:                 3,
			PreferredSupplierID:   "SUP0001",
			RequiresBatchTracking: true,
			Batches: []models.Batch{
				{
					BatchID:           "BAT-11112222",
					Quantity:          30,
					ManufacturingDate: created,
					ExpirationDate:    &expires,
					LotNumber:         "LOT-A|7",
					SupplierID:        "SUP0001",
					CostPerUnit:       1.25,
					Location:          "Cooler",
				},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func productDataset(t *testing.T) Dataset {
	t.Helper()
	rows, err := EncodeRecords(sampleProducts())
	require.NoError(t, err)
	return Dataset{"products": rows}
}

func TestRoundTripEveryFormat(t *testing.T) {
	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			store := newTestStore(t)
			target := "inventory." + string(format)
			opts := []Option{WithTable("products"), WithColumns(models.ProductFields...)}

			require.NoError(t, store.Save(productDataset(t), format, target, opts...))

			ds, err := store.Load(format, target, opts...)
			require.NoError(t, err)

			got, err := DecodeRecords[models.Product](ds.Rows("products"))
			require.NoError(t, err)
			assert.Equal(t, sampleProducts(), got)
		})
	}
}

func TestJSONEnvelope(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(productDataset(t), JSON, "inventory.json"))

	raw, err := os.ReadFile(store.Path("inventory.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"metadata"`)
	assert.Contains(t, string(raw), `"version": "1.0"`)
	assert.Contains(t, string(raw), `"created_at": "2024-03-01T09:30:00Z"`)
}

func TestJSONLoadsBareArray(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path("legacy.json"), []byte(`[{"name":"Tea","quantity":3}]`), 0o644))

	ds, err := store.Load(JSON, "legacy.json")
	require.NoError(t, err)

	require.Len(t, ds[DefaultTable], 1)
	assert.Equal(t, "Tea", ds[DefaultTable][0]["name"])
	assert.Equal(t, int64(3), ds[DefaultTable][0]["quantity"])
}

func TestCSVTypeInference(t *testing.T) {
	store := newTestStore(t)
	content := "active,code,note,price,qty\nTRUE,007,,2.50,5\nfalse,A-1,hello,-3.0,-2\n"
	require.NoError(t, os.WriteFile(store.Path("cells.csv"), []byte(content), 0o644))

	ds, err := store.Load(CSV, "cells.csv")
	require.NoError(t, err)

	rows := ds[DefaultTable]
	require.Len(t, rows, 2)

	assert.Equal(t, true, rows[0]["active"])
	assert.Equal(t, int64(7), rows[0]["code"], "zero padded codes are read back as numbers")
	assert.Nil(t, rows[0]["note"])
	assert.Equal(t, 2.5, rows[0]["price"])
	assert.Equal(t, int64(5), rows[0]["qty"])

	assert.Equal(t, false, rows[1]["active"])
	assert.Equal(t, "A-1", rows[1]["code"])
	assert.Equal(t, "hello", rows[1]["note"])
	assert.Equal(t, -3.0, rows[1]["price"])
	assert.Equal(t, int64(-2), rows[1]["qty"])
}

func TestCSVHeaderIsSortedUnion(t *testing.T) {
	store := newTestStore(t)
	ds := Dataset{"items": {
		{"b": "x", "a": int64(1)},
		{"c": true},
	}}
	require.NoError(t, store.Save(ds, CSV, "items.csv"))

	raw, err := os.ReadFile(store.Path("items.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, []string{"a,b,c", "1,x,", ",,true"}, lines)
}

func TestSingleTableFormatsRejectSeveralCollections(t *testing.T) {
	store := newTestStore(t)
	ds := Dataset{
		"products":  {{"name": "a"}},
		"suppliers": {{"name": "b"}},
	}

	for _, format := range []Format{CSV, TXT} {
		err := store.Save(ds, format, "mixed."+string(format))
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrMultipleCollections)
		assert.ErrorIs(t, err, models.ErrPersistence)
		assert.NoFileExists(t, store.Path("mixed."+string(format)))
	}

	require.NoError(t, store.Save(ds, CSV, "products.csv", WithTable("products")))
}

func TestTXTFixedOrderWithoutHeader(t *testing.T) {
	store := newTestStore(t)
	ds := Dataset{"pos": {
		{"product_id": "PRD-1", "name": "Tea", "price": 2.5, "quantity": int64(4)},
	}}
	cols := []string{"product_id", "name", "price", "quantity"}
	require.NoError(t, store.Save(ds, TXT, "pos.txt", WithColumns(cols...)))

	raw, err := os.ReadFile(store.Path("pos.txt"))
	require.NoError(t, err)
	assert.Equal(t, "PRD-1|Tea|2.5|4\n", string(raw))

	loaded, err := store.Load(TXT, "pos.txt")
	require.NoError(t, err)
	assert.Equal(t, Record{"field_0": "PRD-1", "field_1": "Tea", "field_2": "2.5", "field_3": "4"}, loaded[DefaultTable][0])

	named, err := store.Load(TXT, "pos.txt", WithColumns(cols...))
	require.NoError(t, err)
	assert.Equal(t, "Tea", named[DefaultTable][0]["name"])
}

func TestTXTRejectsDelimiterInPlainField(t *testing.T) {
	store := newTestStore(t)
	ds := Dataset{"products": {{"name": "a|b"}}}

	err := store.Save(ds, TXT, "bad.txt")
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.NoFileExists(t, store.Path("bad.txt"))
}

func TestSQLiteFixesColumnsFromFirstRow(t *testing.T) {
	store := newTestStore(t)
	ds := Dataset{
		"products": {
			{"name": "Tea", "quantity": int64(4)},
			{"name": "Coffee", "quantity": int64(2), "extra": "dropped"},
		},
		"suppliers": {
			{"id": "SUP0001", "active": true},
		},
	}
	require.NoError(t, store.Save(ds, SQLite, "stock.db"))

	loaded, err := store.Load(SQLite, "stock.db")
	require.NoError(t, err)

	assert.Equal(t, []string{"products", "suppliers"}, loaded.Tables())
	require.Len(t, loaded["products"], 2)
	assert.Equal(t, Record{"name": "Coffee", "quantity": int64(2)}, loaded["products"][1])
	assert.Equal(t, Record{"id": "SUP0001", "active": true}, loaded["suppliers"][0])
}

func TestConvertFailureLeavesTargetUntouched(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path("broken.json"), []byte(`{"data": [`), 0o644))

	err := store.Convert("broken.json", JSON, "out.csv", CSV)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPersistence)
	assert.NoFileExists(t, store.Path("out.csv"))

	require.NoError(t, os.WriteFile(store.Path("existing.csv"), []byte("name\nkeep\n"), 0o644))
	err = store.Convert("broken.json", JSON, "existing.csv", CSV)
	require.Error(t, err)
	raw, readErr := os.ReadFile(store.Path("existing.csv"))
	require.NoError(t, readErr)
	assert.Equal(t, "name\nkeep\n", string(raw))
}

func TestConvertRejectsEmptySource(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path("empty.csv"), nil, 0o644))

	err := store.Convert("empty.csv", CSV, "out.json", JSON)
	assert.ErrorIs(t, err, models.ErrEmptyDataset)
	assert.NoFileExists(t, store.Path("out.json"))
}

func TestConvertCSVToYAML(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(productDataset(t), CSV, "products.csv", WithTable("products")))

	require.NoError(t, store.Convert("products.csv", CSV, "products.yaml", YAML, WithTable("products")))

	ds, err := store.Load(YAML, "products.yaml")
	require.NoError(t, err)
	got, err := DecodeRecords[models.Product](ds["products"])
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), got)
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)
	for _, format := range Formats() {
		_, err := store.Load(format, "missing."+string(format))
		assert.ErrorIs(t, err, models.ErrPersistence)
		assert.ErrorIs(t, err, os.ErrNotExist)
	}
	assert.NoFileExists(t, store.Path("missing.sqlite"))
}

func TestBackupFileInfoAndList(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(productDataset(t), JSON, "inventory.json"))

	backup, err := store.Backup("inventory.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Path("backups"), "inventory.json.20240301_093000"), backup)
	assert.FileExists(t, backup)

	info, err := store.FileInfo("inventory.json")
	require.NoError(t, err)
	assert.Equal(t, "json", info.Format)
	assert.Positive(t, info.Size)

	files, err := store.List("inventory*")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("backups", "inventory.json.20240301_093000"), "inventory.json"}, files)

	_, err = store.Backup("nope.json")
	assert.ErrorIs(t, err, models.ErrPersistence)
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"a.json":       JSON,
		"a.CSV":        CSV,
		"a.txt":        TXT,
		"a.yml":        YAML,
		"a.yaml":       YAML,
		"a.db":         SQLite,
		"dir/a.sqlite": SQLite,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("a.xlsx")
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
	_, err = FormatFromPath("noext")
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}
