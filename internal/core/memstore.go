package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is a Store kept in process memory. It backs dry runs and
// tests; IDs are assigned sequentially per entity kind.
type MemoryStore struct {
	mu         sync.RWMutex
	categories map[int64]Category
	products   map[int64]Product
	customers  map[int64]Customer
	sales      map[int64]Sale
	nextID     map[string]int64
}

// NewMemoryStore returns a store holding only the fallback category, the
// same row the PostgreSQL schema seeds.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithFallback(DefaultFallbackCategoryID)
}

// NewMemoryStoreWithFallback seeds the fallback category under fallbackID.
func NewMemoryStoreWithFallback(fallbackID int64) *MemoryStore {
	s := &MemoryStore{
		categories: make(map[int64]Category),
		products:   make(map[int64]Product),
		customers:  make(map[int64]Customer),
		sales:      make(map[int64]Sale),
		nextID:     make(map[string]int64),
	}
	s.SeedCategory(Category{
		ID:          fallbackID,
		Name:        FallbackCategoryName,
		Description: FallbackCategoryDescription,
	})
	return s
}

// SeedCategory stores c under its own ID. Later categories are numbered
// after the highest seeded ID.
func (s *MemoryStore) SeedCategory(c Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	if c.ID > s.nextID["category"] {
		s.nextID["category"] = c.ID
	}
}

func (s *MemoryStore) id(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AddCategory(ctx context.Context, c Category) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id("category")
	s.categories[c.ID] = c
	return c, nil
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AddProduct(ctx context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id("product")
	s.products[p.ID] = p
	return p, nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return fmt.Errorf("product %d not found", p.ID)
	}
	s.products[p.ID] = p
	return nil
}

func (s *MemoryStore) ListCustomers(ctx context.Context) ([]Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) AddCustomer(ctx context.Context, c Customer) (Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id("customer")
	s.customers[c.ID] = c
	return c, nil
}

func (s *MemoryStore) UpdateCustomer(ctx context.Context, c Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.ID]; !ok {
		return fmt.Errorf("customer %d not found", c.ID)
	}
	s.customers[c.ID] = c
	return nil
}

func (s *MemoryStore) AddSale(ctx context.Context, sale Sale) (Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale.ID = s.id("sale")
	sale.Items = append([]SaleItem(nil), sale.Items...)
	s.sales[sale.ID] = sale
	return sale, nil
}

// Sales returns every stored sale ordered by ID.
func (s *MemoryStore) Sales() []Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Sale, 0, len(s.sales))
	for _, sale := range s.sales {
		out = append(out, sale)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
