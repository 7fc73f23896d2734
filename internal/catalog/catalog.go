package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed data/oscars_2024_nominees.json
var defaultCatalog []byte

// Ceremony describes the event the catalog belongs to.
type Ceremony struct {
	Name  string `json:"ceremony"`
	Year  int    `json:"year"`
	Date  string `json:"date"`
	Venue string `json:"venue"`
	Host  string `json:"host"`
}

type Category struct {
	Name     string
	Nominees []Nominee
}

// Catalog is the fixed, ordered list of categories for one ceremony.
// It is immutable after Parse and safe for concurrent use.
type Catalog struct {
	Ceremony   Ceremony
	categories []Category
	index      map[string]map[string]int
	position   map[string]int
}

type file struct {
	Ceremony
	Categories []struct {
		Category string       `json:"category"`
		Nominees []RawNominee `json:"nominees"`
	} `json:"categories"`
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	c := &Catalog{
		Ceremony: f.Ceremony,
		index:    make(map[string]map[string]int, len(f.Categories)),
		position: make(map[string]int, len(f.Categories)),
	}
	for i, rc := range f.Categories {
		name := strings.TrimSpace(rc.Category)
		if name == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
		if _, dup := c.position[name]; dup {
			return nil, fmt.Errorf("duplicate category %q", name)
		}
		if len(rc.Nominees) == 0 {
			return nil, fmt.Errorf("category %q has no nominees", name)
		}
		keys := make(map[string]int, len(rc.Nominees))
		cat := Category{Name: name, Nominees: make([]Nominee, 0, len(rc.Nominees))}
		for j, raw := range rc.Nominees {
			n := Resolve(raw)
			key := n.PickKey()
			if key == "" {
				return nil, fmt.Errorf("category %q nominee %d has no pick key", name, j)
			}
			if _, dup := keys[key]; dup {
				return nil, fmt.Errorf("category %q: duplicate pick key %q", name, key)
			}
			keys[key] = j
			cat.Nominees = append(cat.Nominees, n)
		}
		c.position[name] = len(c.categories)
		c.index[name] = keys
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Default returns the catalog bundled with the binary.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic("catalog: embedded catalog is invalid: " + err.Error())
	}
	return c
}

// Len is the number of categories on a full ballot.
func (c *Catalog) Len() int { return len(c.categories) }

// Categories returns the categories in ballot order.
func (c *Catalog) Categories() []Category { return c.categories }

func (c *Catalog) Category(name string) (Category, bool) {
	i, ok := c.position[name]
	if !ok {
		return Category{}, false
	}
	return c.categories[i], true
}

// Lookup finds the nominee with pickKey in category.
func (c *Catalog) Lookup(category, pickKey string) (Nominee, bool) {
	keys, ok := c.index[category]
	if !ok {
		return Nominee{}, false
	}
	j, ok := keys[pickKey]
	if !ok {
		return Nominee{}, false
	}
	return c.categories[c.position[category]].Nominees[j], true
}
