// Package catalog holds the product catalog: the products viewers can ask
// for and the display scenes they map to. The catalog is immutable once
// built; configuration reloads replace it atomically so in-flight
// resolutions always work against a single consistent snapshot.
package catalog

import (
	"fmt"
	"strings"
	"sync/atomic"

	"stagehand/internal/config"
)

// Product is one catalog entry. Name is the unique user-visible identity,
// Scene names the display-surface scene to switch to, and Description holds
// optional free-text matching hints (comma-separated keywords).
type Product struct {
	Name        string
	Scene       string
	Description string
}

// Catalog is an ordered, immutable set of products. Order is significant:
// it breaks resolver score ties deterministically.
type Catalog struct {
	products []Product
	byName   map[string]int
}

// New builds a catalog from products. Duplicate names (case-insensitive)
// are rejected.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byName:   make(map[string]int, len(products)),
	}
	for _, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		p.Scene = strings.TrimSpace(p.Scene)
		if p.Name == "" {
			return nil, fmt.Errorf("catalog: product with empty name")
		}
		key := strings.ToLower(p.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate product %q", p.Name)
		}
		c.byName[key] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// FromConfig builds a catalog from the configuration product tables.
func FromConfig(cfg *config.Config) (*Catalog, error) {
	products := make([]Product, 0, len(cfg.Products))
	for _, p := range cfg.Products {
		products = append(products, Product{Name: p.Name, Scene: p.Scene, Description: p.Description})
	}
	return New(products)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Products returns the ordered product list. Callers must not mutate it.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return c.products
}

// Lookup finds a product by name, case-insensitively.
func (c *Catalog) Lookup(name string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	idx, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Product{}, false
	}
	return c.products[idx], true
}

// Names returns the product names in catalog order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.products))
	for i, p := range c.products {
		names[i] = p.Name
	}
	return names
}

// Store publishes the current catalog. Replace swaps the snapshot atomically;
// readers holding an older snapshot keep resolving against it.
type Store struct {
	current atomic.Pointer[Catalog]
}

// NewStore creates a store seeded with the given catalog.
func NewStore(c *Catalog) *Store {
	s := &Store{}
	if c == nil {
		c = &Catalog{byName: map[string]int{}}
	}
	s.current.Store(c)
	return s
}

// Snapshot returns the current catalog.
func (s *Store) Snapshot() *Catalog {
	return s.current.Load()
}

// Replace swaps in a new catalog built from products.
func (s *Store) Replace(products []Product) (*Catalog, error) {
	c, err := New(products)
	if err != nil {
		return nil, err
	}
	s.current.Store(c)
	return c, nil
}
