package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Tree maps a main category to its sub categories.
type Tree map[string][]string

// DefaultMain is assigned to products whose category cannot be resolved.
const DefaultMain = "Other"

var builtin = Tree{
	"Electronics":           {"Phones", "Computers", "Audio", "Accessories"},
	"Clothing & Apparel":    {"Men", "Women", "Kids", "Shoes"},
	"Books & Media":         {"Books", "Music", "Movies"},
	"Home & Garden":         {"Furniture", "Decor", "Garden & Landscaping", "Lighting & Electrical"},
	"Health & Beauty":       {"Skincare", "Bathroom & Personal Care", "Medical & First Aid"},
	"Food & Beverages":      {"Beverages", "Snacks", "Dairy", "Produce", "Bakery"},
	"Office Supplies":       {"Paper", "Writing", "Storage & Organization"},
	"Tools & Hardware":      {"Hand Tools", "Power Tools", "Plumbing & Fixtures", "Building Materials", "Safety Equipment"},
	"Toys & Games":          {"Board Games", "Puzzles", "Outdoor Toys"},
	"Sports & Recreation":   {"Fitness", "Outdoor & Camping", "Team Sports"},
	"Automotive":            {"Parts", "Care"},
	"Kitchen & Dining":      {"Cookware", "Tableware", "Appliances"},
	"Pet Supplies":          {"Food", "Toys", "Grooming"},
	"Cleaning Supplies":     {"Household", "Laundry"},
	"Art & Crafts":          {"Handmade Items", "Supplies"},
	"Collectibles":          {"Antiques", "Vintage Items"},
	"Jewelry & Accessories": {"Watches", "Bags"},
	"Digital Products":      {"Software", "Services"},
	DefaultMain:             {"Seasonal Items", "Miscellaneous"},
}

// Base returns a copy of the built-in category tree.
func Base() Tree {
	return builtin.clone()
}

func (t Tree) clone() Tree {
	out := make(Tree, len(t))
	for main, subs := range t {
		out[main] = append([]string(nil), subs...)
	}
	return out
}

// LoadOverride reads a YAML mapping of main category to sub categories. A missing
// file yields an empty tree.
func LoadOverride(path string) (Tree, error) {
	if path == "" {
		return Tree{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Tree{}, nil
		}
		return nil, fmt.Errorf("read category override %s: %w", path, err)
	}

	var tree Tree
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("parse category override %s: %w", path, err)
	}
	if tree == nil {
		tree = Tree{}
	}
	return tree, nil
}

// Catalog is the merged category tree for a session. It is read-only once built.
type Catalog struct {
	tree    Tree
	mains   []string
	byLower map[string]string
	subOf   map[string]string
}

// Merge combines base with override. The override can add main categories and
// sub categories but never removes any.
func Merge(base, override Tree) *Catalog {
	merged := base.clone()
	for main, subs := range override {
		main = strings.TrimSpace(main)
		if main == "" {
			continue
		}
		canonical := main
		for existing := range merged {
			if strings.EqualFold(existing, main) {
				canonical = existing
				break
			}
		}
		current := merged[canonical]
		for _, sub := range subs {
			sub = strings.TrimSpace(sub)
			if sub != "" && !containsFold(current, sub) {
				current = append(current, sub)
			}
		}
		merged[canonical] = current
	}

	c := &Catalog{
		tree:    merged,
		byLower: make(map[string]string, len(merged)),
		subOf:   map[string]string{},
	}
	for main, subs := range merged {
		c.mains = append(c.mains, main)
		c.byLower[strings.ToLower(main)] = main
		sort.Strings(subs)
	}
	sort.Strings(c.mains)

	// first main in alphabetical order owns a sub category name shared by several mains
	for _, main := range c.mains {
		for _, sub := range merged[main] {
			key := strings.ToLower(sub)
			if _, taken := c.subOf[key]; !taken {
				c.subOf[key] = main
			}
		}
	}
	return c
}

// Load merges the built-in tree with the override file at path.
func Load(path string, logger *zap.Logger) (*Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	override, err := LoadOverride(path)
	if err != nil {
		return nil, err
	}
	c := Merge(Base(), override)
	logger.Debug("category catalog loaded",
		zap.String("override", path),
		zap.Int("override_mains", len(override)),
		zap.Int("mains", len(c.mains)),
	)
	return c, nil
}

// Default is the catalog without any override.
func Default() *Catalog {
	return Merge(Base(), nil)
}

// Mains lists main categories in alphabetical order.
func (c *Catalog) Mains() []string {
	return append([]string(nil), c.mains...)
}

// Subs lists the sub categories of main.
func (c *Catalog) Subs(main string) []string {
	canonical, ok := c.byLower[strings.ToLower(main)]
	if !ok {
		return nil
	}
	return append([]string(nil), c.tree[canonical]...)
}

// Tree returns a copy of the merged tree.
func (c *Catalog) Tree() Tree {
	return c.tree.clone()
}

// Has reports whether the pair is known. An empty sub only checks main.
func (c *Catalog) Has(main, sub string) bool {
	canonical, ok := c.byLower[strings.ToLower(main)]
	if !ok {
		return false
	}
	return sub == "" || containsFold(c.tree[canonical], sub)
}

// Upgrade converts a legacy single-field category into the two-level form.
// "Main > Sub" and "Main/Sub" are split; a bare known sub category is placed
// under its main; unknown values are kept as the main category.
func (c *Catalog) Upgrade(legacy string) (main, sub string) {
	legacy = strings.TrimSpace(legacy)
	if legacy == "" {
		return DefaultMain, ""
	}

	for _, sep := range []string{">", "/"} {
		if left, right, found := strings.Cut(legacy, sep); found {
			main, sub = strings.TrimSpace(left), strings.TrimSpace(right)
			if canonical, ok := c.byLower[strings.ToLower(main)]; ok {
				main = canonical
			}
			return main, sub
		}
	}

	if canonical, ok := c.byLower[strings.ToLower(legacy)]; ok {
		return canonical, ""
	}
	if owner, ok := c.subOf[strings.ToLower(legacy)]; ok {
		return owner, c.canonicalSub(owner, legacy)
	}
	return legacy, ""
}

func (c *Catalog) canonicalSub(main, sub string) string {
	for _, candidate := range c.tree[main] {
		if strings.EqualFold(candidate, sub) {
			return candidate
		}
	}
	return sub
}

func containsFold(values []string, needle string) bool {
	for _, v := range values {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
