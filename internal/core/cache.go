package core

// cache.go holds the per-run view of existing entities.
//
// The cache is built once from full store scans and then kept in step with
// every write the run makes, so a product created on row 2 is found on
// row 7. Callers mutate a copy, persist it, and only then put it back.

import (
	"context"
	"fmt"
	"strings"
)

type entityCache struct {
	categories    map[string]Category
	products      map[string]Product
	productByCode map[string]string // code key -> name key
	customers     map[string]Customer
}

// normalizeKey is the natural-key form used by every cache map.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func newEntityCache() *entityCache {
	return &entityCache{
		categories:    make(map[string]Category),
		products:      make(map[string]Product),
		productByCode: make(map[string]string),
		customers:     make(map[string]Customer),
	}
}

// warmCache loads every category, product and customer from the store.
func warmCache(ctx context.Context, store Store) (*entityCache, error) {
	c := newEntityCache()

	categories, err := store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for _, cat := range categories {
		c.putCategory(cat)
	}

	products, err := store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for _, p := range products {
		c.putProduct(p)
	}

	customers, err := store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	for _, cu := range customers {
		c.putCustomer(cu)
	}

	return c, nil
}

func (c *entityCache) category(name string) (Category, bool) {
	cat, ok := c.categories[normalizeKey(name)]
	return cat, ok
}

func (c *entityCache) putCategory(cat Category) {
	c.categories[normalizeKey(cat.Name)] = cat
}

func (c *entityCache) product(name string) (Product, bool) {
	p, ok := c.products[normalizeKey(name)]
	return p, ok
}

// productKeyByCode returns the name key of the product carrying code.
func (c *entityCache) productKeyByCode(code string) (string, bool) {
	key, ok := c.productByCode[normalizeKey(code)]
	if !ok {
		return "", false
	}
	if _, exists := c.products[key]; !exists {
		return "", false
	}
	return key, true
}

func (c *entityCache) putProduct(p Product) {
	key := normalizeKey(p.Name)
	if prev, ok := c.products[key]; ok && prev.Code != "" && !strings.EqualFold(prev.Code, p.Code) {
		delete(c.productByCode, normalizeKey(prev.Code))
	}
	c.products[key] = p
	if p.Code != "" {
		c.productByCode[normalizeKey(p.Code)] = key
	}
}

func (c *entityCache) customer(email string) (Customer, bool) {
	cu, ok := c.customers[normalizeKey(email)]
	return cu, ok
}

func (c *entityCache) putCustomer(cu Customer) {
	c.customers[normalizeKey(cu.Email)] = cu
}

func (c *entityCache) counts() (categories, products, customers int) {
	return len(c.categories), len(c.products), len(c.customers)
}
