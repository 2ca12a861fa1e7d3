// Package categories holds the transaction category catalog and the free-text
// matcher used to file receipts and bank imports under a known category.
package categories

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"wealth-server/src/models"
)

//go:embed categories.yaml
var defaultCatalog []byte

type Category struct {
	ID    string                 `yaml:"id" json:"id"`
	Name  string                 `yaml:"name" json:"name"`
	Type  models.TransactionType `yaml:"type" json:"type"`
	Color string                 `yaml:"color" json:"color"`
}

// Heuristic maps keywords found in free text onto a category family.
type Heuristic struct {
	Key      string   `yaml:"key"`
	Keywords []string `yaml:"keywords"`
}

type Catalog struct {
	Categories []Category  `yaml:"categories"`
	Heuristics []Heuristic `yaml:"heuristics"`

	byID map[string]Category
}

// Parse decodes a YAML catalog and checks it for duplicate ids and unknown types.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing category catalog: %w", err)
	}
	c.byID = make(map[string]Category, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.ID == "" || cat.Name == "" {
			return nil, fmt.Errorf("category %q: id and name are required", cat.ID)
		}
		if !cat.Type.Valid() {
			return nil, fmt.Errorf("category %q: invalid type %q", cat.ID, cat.Type)
		}
		if _, dup := c.byID[cat.ID]; dup {
			return nil, fmt.Errorf("category %q: duplicate id", cat.ID)
		}
		c.byID[cat.ID] = cat
	}
	return &c, nil
}

var builtin *Catalog

func init() {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	builtin = c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return builtin
}

func (c *Catalog) All() []Category {
	return c.Categories
}

// ByType returns the categories of type t, or all of them when t is empty.
func (c *Catalog) ByType(t models.TransactionType) []Category {
	if t == "" {
		return c.Categories
	}
	var out []Category
	for _, cat := range c.Categories {
		if cat.Type == t {
			out = append(out, cat)
		}
	}
	return out
}

func (c *Catalog) Get(id string) (Category, bool) {
	cat, ok := c.byID[id]
	return cat, ok
}

// Valid reports whether id names a category usable for a transaction of type t.
func (c *Catalog) Valid(id string, t models.TransactionType) bool {
	cat, ok := c.byID[id]
	return ok && cat.Type == t
}

// Match maps free text (a receipt's category, a bank's category label) onto a category id.
// Precedence: exact name, substring in either direction, keyword heuristics, first
// category of targetType, an "uncategorized" category, the first category. Empty text
// matches nothing.
func (c *Catalog) Match(text string, targetType models.TransactionType) string {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return ""
	}

	for _, cat := range c.Categories {
		if strings.ToLower(cat.Name) == s {
			return cat.ID
		}
	}

	for _, cat := range c.Categories {
		name := strings.ToLower(cat.Name)
		if strings.Contains(name, s) || strings.Contains(s, name) {
			return cat.ID
		}
	}

	for _, h := range c.Heuristics {
		if !containsAny(s, h.Keywords) {
			continue
		}
		// A category named after the family beats one that merely contains a keyword
		// ("bus" sits inside "Business").
		for _, cat := range c.Categories {
			if strings.Contains(strings.ToLower(cat.Name), h.Key) {
				return cat.ID
			}
		}
		for _, cat := range c.Categories {
			if containsAny(strings.ToLower(cat.Name), h.Keywords) {
				return cat.ID
			}
		}
	}

	if targetType != "" {
		for _, cat := range c.Categories {
			if cat.Type == targetType {
				return cat.ID
			}
		}
	}

	for _, cat := range c.Categories {
		n := strings.ToLower(cat.Name)
		if n == "uncategorized" || n == "uncat" || strings.Contains(n, "uncategor") {
			return cat.ID
		}
	}

	if len(c.Categories) > 0 {
		return c.Categories[0].ID
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
